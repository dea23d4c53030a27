package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// EventRecord is the dedup ledger for provider webhook deliveries. The
// (provider, provider_event_id) pair is unique; a row with a nil
// ProcessedAt is a delivery whose fulfilment did not finish and needs
// manual reconciliation.
type EventRecord struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	Provider        string         `json:"provider" gorm:"type:text;not null;uniqueIndex:idx_payment_events_provider_event"`
	ProviderEventID string         `json:"provider_event_id" gorm:"type:text;not null;uniqueIndex:idx_payment_events_provider_event"`
	EventType       string         `json:"event_type" gorm:"type:text;not null"`
	ChargeID        string         `json:"charge_id" gorm:"type:text;index"`
	Payload         datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	ReceivedAt      time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt     *time.Time     `json:"processed_at"`
}

func (EventRecord) TableName() string { return "payment_events" }

const (
	KindCreated   = "charge_created"
	KindConfirmed = "charge_confirmed"
	KindFailed    = "charge_failed"
	KindDelayed   = "charge_delayed"
	KindPending   = "charge_pending"
)

// Event is the canonical provider-neutral payment event produced by
// adapters. ChargeRef is the derived invoice number and is a pure
// function of the immutable provider charge id.
type Event struct {
	Provider        string
	ProviderEventID string
	Kind            string
	ChargeID        string
	ChargeRef       string
	CustomerName    string
	CustomerEmail   string
	PackageID       string
	PackageName     string
	Amount          int64
	Currency        string
	CryptoCurrency  string
	CryptoAmount    string
	CryptoTxHash    string
	OccurredAt      time.Time
	RawPayload      []byte
}
