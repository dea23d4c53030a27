package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type UpsertRequest struct {
	Number           string
	ProjectID        *snowflake.ID
	Subtotal         int64
	TaxAmount        int64
	Total            int64
	Currency         string
	Status           string
	ProviderChargeID string
	DueDate          time.Time
	PaidDate         *time.Time
}

type CreateRequest struct {
	ProjectID *snowflake.ID
	Subtotal  int64
	TaxRate   float64
	Total     int64
	Currency  string
	DueDate   time.Time
}

type ListRequest struct {
	Status string
	Limit  int
	Offset int
}

type Service interface {
	// UpsertByNumber creates or refreshes an invoice in one atomic
	// statement keyed on the unique number.
	UpsertByNumber(ctx context.Context, req UpsertRequest) (*Invoice, error)
	// MarkPaidByCharge sets PAID + paid date on every invoice carrying the
	// charge id. Zero matched rows is a normal outcome, not an error.
	MarkPaidByCharge(ctx context.Context, chargeID string, paidAt time.Time) (int64, error)
	// SetStatusByCharge projects a provider lifecycle state onto matching
	// invoices. Assignment, not increment: safe under redelivery.
	SetStatusByCharge(ctx context.Context, chargeID, status string) (int64, error)
	Create(ctx context.Context, req CreateRequest) (*Invoice, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Invoice, error)
	List(ctx context.Context, req ListRequest) ([]Invoice, int64, error)
	SetStatus(ctx context.Context, id snowflake.ID, status string) (*Invoice, error)
}

var (
	ErrNotFound      = errors.New("invoice_not_found")
	ErrInvalidNumber = errors.New("invalid_number")
	ErrInvalidAmount = errors.New("invalid_amount")
	ErrInvalidStatus = errors.New("invalid_status")
)
