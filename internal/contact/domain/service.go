package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// IntakeRequest is a sanitized lead submission from the public contact form.
type IntakeRequest struct {
	Name      string
	Email     string
	Phone     string
	Project   string
	Budget    string
	Message   string
	Timeline  string
	Honeypot  string
	IPAddress string
	UserAgent string
}

// FieldErrors maps form field names to human-readable error messages.
type FieldErrors map[string]string

func (f FieldErrors) Error() string { return "validation failed" }

type IntakeResult struct {
	Contact *Contact
	// Dropped is true when the honeypot tripped: the caller must still
	// answer with a success-shaped response.
	Dropped bool
}

type ListRequest struct {
	Status string
	Limit  int
	Offset int
}

type Service interface {
	Intake(ctx context.Context, req IntakeRequest) (*IntakeResult, error)
	// MarkWon atomically creates or promotes the contact for a confirmed
	// payment, keyed on the unique email.
	MarkWon(ctx context.Context, req MarkWonRequest) (*Contact, error)
	List(ctx context.Context, req ListRequest) ([]Contact, int64, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Contact, error)
	UpdateStatus(ctx context.Context, id snowflake.ID, status string) (*Contact, error)
}

type MarkWonRequest struct {
	Email       string
	Name        string
	Phone       string
	Company     string
	Message     string
	ProjectType string
	Budget      int64
	Source      string
}

var (
	ErrNotFound      = errors.New("contact_not_found")
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrRateLimited   = errors.New("rate_limited")
)

func ValidStatus(status string) bool {
	switch status {
	case StatusNew, StatusContacted, StatusQualified, StatusWon, StatusLost:
		return true
	default:
		return false
	}
}
