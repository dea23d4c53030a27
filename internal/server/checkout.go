package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/sds-studio/sds/internal/checkout/domain"
)

type stripeCheckoutRequest struct {
	PackageID     string `json:"package_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

func (s *Server) HandleCreateStripeSession(c *gin.Context) {
	var req stripeCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.checkoutSvc.CreateStripeSession(c.Request.Context(), checkoutdomain.StripeCheckoutRequest{
		PackageID:     req.PackageID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		IPAddress:     c.ClientIP(),
		UserAgent:     c.Request.UserAgent(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordCheckoutStarted("stripe")
	c.JSON(http.StatusOK, result)
}

func (s *Server) HandleGetStripeSession(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("session_id"))
	if sessionID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	info, err := s.checkoutSvc.GetStripeSession(c.Request.Context(), sessionID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

type cryptoCheckoutRequest struct {
	PackageID     string `json:"package_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

func (s *Server) HandleCreateCryptoCharge(c *gin.Context) {
	var req cryptoCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.checkoutSvc.CreateCryptoCharge(c.Request.Context(), checkoutdomain.CryptoCheckoutRequest{
		PackageID:     req.PackageID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		IPAddress:     c.ClientIP(),
		UserAgent:     c.Request.UserAgent(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordCheckoutStarted("coinbase")
	c.JSON(http.StatusOK, result)
}

func (s *Server) HandleGetCryptoCharge(c *gin.Context) {
	chargeID := strings.TrimSpace(c.Param("charge_id"))
	if chargeID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	info, err := s.checkoutSvc.GetCryptoCharge(c.Request.Context(), chargeID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}
