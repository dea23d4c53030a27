package server

import (
	"time"

	"github.com/gin-gonic/gin"
	authdomain "github.com/sds-studio/sds/internal/auth/domain"
	"go.uber.org/zap"
)

const (
	ctxUserKey    = "auth.user"
	ctxSessionKey = "auth.session"
)

// RequestLogger logs one line per request, after the handler ran.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// AuthRequired resolves the session cookie to a live user. Requests
// without a valid session never reach the handler.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		sess, user, err := s.authSvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set(ctxSessionKey, sess)
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// RequireRole gates a route to the given roles. Must run after
// AuthRequired.
func (s *Server) RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *authdomain.User {
	value, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*authdomain.User)
	if !ok {
		return nil
	}
	return user
}
