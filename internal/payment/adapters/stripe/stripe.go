package stripe

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	paymentdomain "github.com/sds-studio/sds/internal/payment/domain"
	"github.com/stripe/stripe-go/v83/webhook"
)

type Adapter struct {
	webhookSecret string
}

func NewAdapter(webhookSecret string) *Adapter {
	return &Adapter{webhookSecret: strings.TrimSpace(webhookSecret)}
}

func (a *Adapter) Provider() string {
	return "stripe"
}

func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	sigHeader := strings.TrimSpace(headers.Get("Stripe-Signature"))
	if sigHeader == "" || a.webhookSecret == "" {
		return paymentdomain.ErrInvalidSignature
	}
	_, err := webhook.ConstructEventWithOptions(payload, sigHeader, a.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.Event, error) {
	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	switch strings.TrimSpace(event.Type) {
	case "checkout.session.completed":
		return a.parseCheckoutSession(event, payload)
	case "payment_intent.succeeded":
		return a.parsePaymentIntent(event, payload, paymentdomain.KindConfirmed)
	case "payment_intent.payment_failed":
		return a.parsePaymentIntent(event, payload, paymentdomain.KindFailed)
	case "invoice.payment_succeeded":
		return a.parseInvoice(event, payload, paymentdomain.KindConfirmed)
	case "invoice.payment_failed":
		return a.parseInvoice(event, payload, paymentdomain.KindFailed)
	default:
		return nil, paymentdomain.ErrEventIgnored
	}
}

type stripeEvent struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Created int64           `json:"created"`
	Data    stripeEventData `json:"data"`
}

type stripeEventData struct {
	Object json.RawMessage `json:"object"`
}

type stripeCheckoutSession struct {
	ID              string                 `json:"id"`
	PaymentIntent   string                 `json:"payment_intent"`
	AmountTotal     int64                  `json:"amount_total"`
	Currency        string                 `json:"currency"`
	CustomerDetails *stripeCustomerDetails `json:"customer_details"`
	Metadata        map[string]string      `json:"metadata"`
	Created         int64                  `json:"created"`
}

type stripeCustomerDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type stripePaymentIntent struct {
	ID             string            `json:"id"`
	Amount         int64             `json:"amount"`
	AmountReceived int64             `json:"amount_received"`
	Currency       string            `json:"currency"`
	ReceiptEmail   string            `json:"receipt_email"`
	Metadata       map[string]string `json:"metadata"`
	Created        int64             `json:"created"`
}

type stripeInvoice struct {
	ID            string `json:"id"`
	AmountPaid    int64  `json:"amount_paid"`
	AmountDue     int64  `json:"amount_due"`
	Currency      string `json:"currency"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Created       int64  `json:"created"`
}

func (a *Adapter) parseCheckoutSession(event stripeEvent, payload []byte) (*paymentdomain.Event, error) {
	var session stripeCheckoutSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(session.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	chargeID := strings.TrimSpace(session.PaymentIntent)
	if chargeID == "" {
		chargeID = session.ID
	}

	name := session.Metadata["customer_name"]
	email := session.Metadata["customer_email"]
	if session.CustomerDetails != nil {
		if session.CustomerDetails.Name != "" {
			name = session.CustomerDetails.Name
		}
		if session.CustomerDetails.Email != "" {
			email = session.CustomerDetails.Email
		}
	}

	return &paymentdomain.Event{
		Provider:        "stripe",
		ProviderEventID: event.ID,
		Kind:            paymentdomain.KindConfirmed,
		ChargeID:        chargeID,
		ChargeRef:       "PI-" + chargeID,
		CustomerName:    strings.TrimSpace(name),
		CustomerEmail:   strings.ToLower(strings.TrimSpace(email)),
		PackageID:       strings.TrimSpace(session.Metadata["package_id"]),
		PackageName:     strings.TrimSpace(session.Metadata["package_name"]),
		Amount:          session.AmountTotal,
		Currency:        strings.ToUpper(strings.TrimSpace(session.Currency)),
		OccurredAt:      timestamp(session.Created, event.Created),
		RawPayload:      payload,
	}, nil
}

func (a *Adapter) parsePaymentIntent(event stripeEvent, payload []byte, kind string) (*paymentdomain.Event, error) {
	var intent stripePaymentIntent
	if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(intent.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	amount := intent.AmountReceived
	if amount <= 0 {
		amount = intent.Amount
	}

	return &paymentdomain.Event{
		Provider:        "stripe",
		ProviderEventID: event.ID,
		Kind:            kind,
		ChargeID:        intent.ID,
		ChargeRef:       "PI-" + intent.ID,
		CustomerName:    strings.TrimSpace(intent.Metadata["customer_name"]),
		CustomerEmail:   strings.ToLower(strings.TrimSpace(firstNonEmpty(intent.Metadata["customer_email"], intent.ReceiptEmail))),
		PackageID:       strings.TrimSpace(intent.Metadata["package_id"]),
		PackageName:     strings.TrimSpace(intent.Metadata["package_name"]),
		Amount:          amount,
		Currency:        strings.ToUpper(strings.TrimSpace(intent.Currency)),
		OccurredAt:      timestamp(intent.Created, event.Created),
		RawPayload:      payload,
	}, nil
}

// Stripe invoice events carry no package metadata; they resolve to the
// invoice-only fulfilment path keyed on the invoice's own charge id.
func (a *Adapter) parseInvoice(event stripeEvent, payload []byte, kind string) (*paymentdomain.Event, error) {
	var in stripeInvoice
	if err := json.Unmarshal(event.Data.Object, &in); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(in.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	amount := in.AmountPaid
	if amount <= 0 {
		amount = in.AmountDue
	}

	return &paymentdomain.Event{
		Provider:        "stripe",
		ProviderEventID: event.ID,
		Kind:            kind,
		ChargeID:        in.ID,
		ChargeRef:       "PI-" + in.ID,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		CustomerEmail:   strings.ToLower(strings.TrimSpace(in.CustomerEmail)),
		Amount:          amount,
		Currency:        strings.ToUpper(strings.TrimSpace(in.Currency)),
		OccurredAt:      timestamp(in.Created, event.Created),
		RawPayload:      payload,
	}, nil
}

func timestamp(primary, fallback int64) time.Time {
	value := primary
	if value == 0 {
		value = fallback
	}
	if value == 0 {
		return time.Now().UTC()
	}
	return time.Unix(value, 0).UTC()
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
