package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Invoice amounts are integer minor-currency units. Number is the
// human-readable unique key; for provider-driven invoices it is a pure
// function of the immutable external charge id, which is what makes the
// confirmation flow safe to re-run.
type Invoice struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	Number           string       `gorm:"not null;uniqueIndex" json:"number"`
	ProjectID        *snowflake.ID `gorm:"index" json:"project_id,omitempty"`
	Subtotal         int64        `gorm:"not null" json:"subtotal"`
	TaxRate          float64      `json:"tax_rate"`
	TaxAmount        int64        `json:"tax_amount"`
	Total            int64        `gorm:"not null" json:"total"`
	Currency         string       `gorm:"not null;default:'EUR'" json:"currency"`
	Status           string       `gorm:"not null;default:'DRAFT';index" json:"status"`
	ProviderChargeID string       `gorm:"index" json:"provider_charge_id,omitempty"`
	DueDate          time.Time    `json:"due_date"`
	PaidDate         *time.Time   `json:"paid_date,omitempty"`
	CreatedAt        time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null" json:"updated_at"`
}

func (Invoice) TableName() string { return "invoices" }

const (
	StatusDraft     = "DRAFT"
	StatusSent      = "SENT"
	StatusPaid      = "PAID"
	StatusOverdue   = "OVERDUE"
	StatusCancelled = "CANCELLED"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	default:
		return false
	}
}
