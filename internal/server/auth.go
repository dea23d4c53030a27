package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/sds-studio/sds/internal/auth/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) HandleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.authSvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.RawToken, result.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{
		"user":       result.User,
		"expires_at": result.ExpiresAt,
	})
}

func (s *Server) HandleLogout(c *gin.Context) {
	if token, ok := s.sessions.ReadToken(c); ok {
		if err := s.authSvc.Logout(c.Request.Context(), token); err != nil {
			s.log.Warn("logout failed")
		}
	}
	s.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) HandleMe(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type changePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

func (s *Server) HandleChangePassword(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authSvc.ChangePassword(c.Request.Context(), user.ID, req.NewPassword); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
