package domain

import (
	"context"
	"errors"
	"time"
)

type StripeCheckoutRequest struct {
	PackageID     string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	IPAddress     string
	UserAgent     string
}

type StripeCheckoutResult struct {
	SessionID  string `json:"session_id"`
	URL        string `json:"url"`
	CustomerID string `json:"customer"`
}

type StripeSessionInfo struct {
	SessionID     string `json:"session_id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	AmountTotal   int64  `json:"amount_total"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

type CryptoCheckoutRequest struct {
	PackageID     string
	CustomerName  string
	CustomerEmail string
	IPAddress     string
	UserAgent     string
}

type CryptoCheckoutResult struct {
	ChargeID  string    `json:"charge_id"`
	Code      string    `json:"code"`
	HostedURL string    `json:"hosted_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type CryptoChargeInfo struct {
	ChargeID  string    `json:"charge_id"`
	Code      string    `json:"code"`
	Status    string    `json:"status"`
	HostedURL string    `json:"hosted_url"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service interface {
	// CreateStripeSession validates the package before any provider
	// call, provisions the Stripe customer and checkout session, and
	// records a preliminary lead contact.
	CreateStripeSession(ctx context.Context, req StripeCheckoutRequest) (*StripeCheckoutResult, error)
	GetStripeSession(ctx context.Context, sessionID string) (*StripeSessionInfo, error)
	CreateCryptoCharge(ctx context.Context, req CryptoCheckoutRequest) (*CryptoCheckoutResult, error)
	GetCryptoCharge(ctx context.Context, chargeID string) (*CryptoChargeInfo, error)
}

var (
	ErrUnknownPackage = errors.New("unknown_package")
	ErrInvalidEmail   = errors.New("invalid_email")
	ErrInvalidName    = errors.New("invalid_name")
	ErrNotFound       = errors.New("checkout_not_found")
)
