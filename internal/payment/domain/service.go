package domain

import (
	"context"
	"errors"
	"net/http"
)

// PaymentAdapter verifies a provider's webhook signature over the raw
// body and normalizes the payload into an Event.
type PaymentAdapter interface {
	Provider() string
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*Event, error)
}

type Service interface {
	// ProcessEvent records the delivery in the dedup ledger, runs the
	// fulfilment flow for the event kind, and marks the row processed.
	ProcessEvent(ctx context.Context, event *Event, payload []byte) error
}

type Ingestor interface {
	IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error
}

var (
	ErrInvalidProvider       = errors.New("invalid_provider")
	ErrProviderNotFound      = errors.New("provider_not_found")
	ErrInvalidSignature      = errors.New("invalid_signature")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrInvalidEvent          = errors.New("invalid_event")
	ErrEventIgnored          = errors.New("event_ignored")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
)
