package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) HandleSitemap(c *gin.Context) {
	body, err := s.seo.Sitemap(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

func (s *Server) HandleRobots(c *gin.Context) {
	c.String(http.StatusOK, s.seo.Robots())
}

func (s *Server) HandleOGImage(c *gin.Context) {
	title := c.Query("title")
	subtitle := c.Query("subtitle")
	c.Data(http.StatusOK, "image/svg+xml", s.seo.OGImage(title, subtitle))
}
