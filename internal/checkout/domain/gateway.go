package domain

import (
	"context"
	"time"

	"github.com/sds-studio/sds/internal/catalog"
)

// StripeGateway is the narrow slice of the Stripe API checkout needs.
// The concrete SDK client sits behind it so tests can substitute fakes
// and assert zero provider calls on validation failures.
type StripeGateway interface {
	// SearchCustomerByEmail returns the existing customer id or empty
	// when none matches.
	SearchCustomerByEmail(ctx context.Context, email string) (string, error)
	CreateCustomer(ctx context.Context, name, email, phone string) (string, error)
	CreateCheckoutSession(ctx context.Context, params StripeSessionParams) (*StripeCheckoutResult, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*StripeSessionInfo, error)
}

type StripeSessionParams struct {
	CustomerID    string
	CustomerEmail string
	CustomerName  string
	Package       catalog.Package
	SuccessURL    string
	CancelURL     string
	ExpiresAt     time.Time
}

type CoinbaseGateway interface {
	CreateCharge(ctx context.Context, params CoinbaseChargeParams) (*CryptoCheckoutResult, error)
	GetCharge(ctx context.Context, chargeID string) (*CryptoChargeInfo, error)
}

type CoinbaseChargeParams struct {
	CustomerName  string
	CustomerEmail string
	Package       catalog.Package
	RedirectURL   string
	CancelURL     string
}
