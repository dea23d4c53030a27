package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	invoicedomain "github.com/sds-studio/sds/internal/invoice/domain"
)

type createInvoiceRequest struct {
	ProjectID string  `json:"project_id"`
	Subtotal  int64   `json:"subtotal"`
	TaxRate   float64 `json:"tax_rate"`
	Currency  string  `json:"currency"`
	DueDate   string  `json:"due_date"`
}

func (s *Server) HandleCreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var projectID *snowflake.ID
	if strings.TrimSpace(req.ProjectID) != "" {
		id, err := parseID(req.ProjectID)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		projectID = &id
	}

	var dueDate time.Time
	if strings.TrimSpace(req.DueDate) != "" {
		parsed, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		dueDate = parsed
	}

	invoice, err := s.invoiceSvc.Create(c.Request.Context(), invoicedomain.CreateRequest{
		ProjectID: projectID,
		Subtotal:  req.Subtotal,
		TaxRate:   req.TaxRate,
		Currency:  req.Currency,
		DueDate:   dueDate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"invoice": invoice})
}

func (s *Server) HandleListInvoices(c *gin.Context) {
	invoices, total, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListRequest{
		Status: strings.TrimSpace(c.Query("status")),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invoices": invoices,
		"total":    total,
	})
}

func (s *Server) HandleGetInvoice(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoice, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}

type updateInvoiceStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) HandleUpdateInvoiceStatus(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invoice, err := s.invoiceSvc.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": invoice})
}
