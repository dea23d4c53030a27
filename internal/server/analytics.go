package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type analyticsEventRequest struct {
	Event      string         `json:"event"`
	Page       string         `json:"page"`
	SessionID  string         `json:"session_id"`
	Properties map[string]any `json:"properties"`
}

// HandleRecordAnalyticsEvent appends a client-side event. Failures are
// swallowed: analytics never breaks the page that sent them.
func (s *Server) HandleRecordAnalyticsEvent(c *gin.Context) {
	var req analyticsEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Event) == "" {
		AbortWithError(c, newValidationError("event", "required", "event is required"))
		return
	}

	if err := s.analytics.Record(c.Request.Context(), req.Event, req.Page, req.SessionID, req.Properties); err != nil {
		s.log.Warn("analytics record failed")
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "ok"})
}
