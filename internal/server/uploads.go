package server

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadBytes = 10 << 20

// allowedUploadTypes maps accepted sniffed MIME types to the stored
// extension. The sniffed type wins over whatever the client claims.
var allowedUploadTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/gif":       ".gif",
	"application/pdf": ".pdf",
	"application/zip": ".zip",
}

func (s *Server) HandleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "missing_file", "file is required"))
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		AbortWithError(c, newValidationError("file", "too_large", "file exceeds 10MB"))
		return
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		AbortWithError(c, err)
		return
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	ext, ok := allowedUploadTypes[contentType]
	if !ok {
		AbortWithError(c, newValidationError("file", "unsupported_type", "unsupported file type"))
		return
	}

	category := sanitizeCategory(c.PostForm("category"))
	dir := filepath.Join(s.cfg.UploadDir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		AbortWithError(c, err)
		return
	}

	// Server-generated name: the client filename never touches the
	// filesystem.
	name := uuid.NewString() + ext
	path := filepath.Join(dir, name)

	dst, err := os.Create(path)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer dst.Close()

	if _, err := dst.Write(head); err != nil {
		AbortWithError(c, err)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(path)
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"filename":     name,
		"category":     category,
		"content_type": contentType,
		"size":         header.Size,
		"url":          "/uploads/" + category + "/" + name,
	})
}

func sanitizeCategory(raw string) string {
	category := strings.ToLower(strings.TrimSpace(raw))
	if category == "" {
		return "misc"
	}
	var b strings.Builder
	for _, r := range category {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "misc"
	}
	return b.String()
}
