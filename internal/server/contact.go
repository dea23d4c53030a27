package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	contactdomain "github.com/sds-studio/sds/internal/contact/domain"
)

type contactIntakeRequest struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Phone    string `json:"phone" form:"phone"`
	Project  string `json:"project" form:"project"`
	Budget   string `json:"budget" form:"budget"`
	Message  string `json:"message" form:"message"`
	Timeline string `json:"timeline" form:"timeline"`
	// Honeypot fields. Humans never see them; bots fill them.
	Website        string `json:"website" form:"website"`
	CompanyWebsite string `json:"company_website" form:"company_website"`
	HPField        string `json:"hp_field" form:"hp_field"`
}

func (r contactIntakeRequest) honeypot() string {
	return r.Website + r.CompanyWebsite + r.HPField
}

func (s *Server) HandleContactIntake(c *gin.Context) {
	isForm := isFormRequest(c)

	var req contactIntakeRequest
	var bindErr error
	if isForm {
		bindErr = c.ShouldBind(&req)
	} else {
		bindErr = c.ShouldBindJSON(&req)
	}
	if bindErr != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if !s.limiter.Allow(c.Request.Context(), c.ClientIP()) {
		s.metrics.RecordContactIntake("rate_limited")
		AbortWithError(c, contactdomain.ErrRateLimited)
		return
	}

	result, err := s.contactSvc.Intake(c.Request.Context(), contactdomain.IntakeRequest{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Project:   req.Project,
		Budget:    req.Budget,
		Message:   req.Message,
		Timeline:  req.Timeline,
		Honeypot:  req.honeypot(),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		var fieldErrs contactdomain.FieldErrors
		if asFieldErrors(err, &fieldErrs) {
			s.metrics.RecordContactIntake("invalid")
			c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrs})
			return
		}
		AbortWithError(c, err)
		return
	}

	if result.Dropped {
		s.metrics.RecordContactIntake("dropped")
	} else {
		s.metrics.RecordContactIntake("accepted")
	}

	// The honeypot path answers exactly like a success so the bot learns
	// nothing.
	if isForm {
		c.Redirect(http.StatusSeeOther, "/success")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}

func asFieldErrors(err error, target *contactdomain.FieldErrors) bool {
	fieldErrs, ok := err.(contactdomain.FieldErrors)
	if !ok {
		return false
	}
	*target = fieldErrs
	return true
}

func isFormRequest(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == "application/x-www-form-urlencoded" || strings.HasPrefix(ct, "multipart/form-data")
}

func (s *Server) HandleListContacts(c *gin.Context) {
	req := contactdomain.ListRequest{
		Status: strings.TrimSpace(c.Query("status")),
		Limit:  queryInt(c, "limit", 50),
		Offset: queryInt(c, "offset", 0),
	}

	contacts, total, err := s.contactSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contacts": contacts,
		"total":    total,
	})
}

func (s *Server) HandleGetContact(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	contact, err := s.contactSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contact": contact})
}

type updateContactStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) HandleUpdateContactStatus(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var req updateContactStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	contact, err := s.contactSvc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contact": contact})
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

func queryInt(c *gin.Context, key string, def int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
