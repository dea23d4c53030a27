package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/sds-studio/sds/internal/payment/domain"
	"go.uber.org/zap"
)

// HandlePaymentWebhook ingests one provider delivery. Anything already
// recorded answers 200 so the provider stops retrying.
func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	provider := c.Param("provider")

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, paymentdomain.ErrInvalidPayload)
		return
	}

	err = s.ingestor.IngestWebhook(c.Request.Context(), provider, payload, c.Request.Header)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventAlreadyProcessed) {
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		s.log.Warn("webhook rejected",
			zap.String("provider", provider),
			zap.Error(err),
		)
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// HandleListUnprocessedPaymentEvents surfaces deliveries whose
// fulfilment failed after the durable insert. These rows need manual
// reconciliation.
func (s *Server) HandleListUnprocessedPaymentEvents(c *gin.Context) {
	limit := queryInt(c, "limit", 100)

	events, err := s.paymentRepo.ListUnprocessed(c.Request.Context(), s.db, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  len(events),
	})
}
