package coinbase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	paymentdomain "github.com/sds-studio/sds/internal/payment/domain"
)

type Adapter struct {
	webhookSecret string
}

func NewAdapter(webhookSecret string) *Adapter {
	return &Adapter{webhookSecret: strings.TrimSpace(webhookSecret)}
}

func (a *Adapter) Provider() string {
	return "coinbase"
}

// Verify checks the X-CC-Webhook-Signature header: a hex HMAC-SHA256 of
// the raw request body under the shared webhook secret.
func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	signature := strings.TrimSpace(headers.Get("X-CC-Webhook-Signature"))
	if signature == "" || a.webhookSecret == "" {
		return paymentdomain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	_, _ = mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*paymentdomain.Event, error) {
	var envelope coinbaseEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	event := envelope.Event
	if strings.TrimSpace(event.ID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	var kind string
	switch strings.TrimSpace(event.Type) {
	case "charge:created":
		kind = paymentdomain.KindCreated
	case "charge:confirmed":
		kind = paymentdomain.KindConfirmed
	case "charge:failed":
		kind = paymentdomain.KindFailed
	case "charge:delayed":
		kind = paymentdomain.KindDelayed
	case "charge:pending":
		kind = paymentdomain.KindPending
	default:
		return nil, paymentdomain.ErrEventIgnored
	}

	charge := event.Data
	chargeID := strings.TrimSpace(charge.ID)
	if chargeID == "" {
		chargeID = strings.TrimSpace(charge.Code)
	}
	if chargeID == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	amount, currency := charge.Pricing.Local.cents()

	out := &paymentdomain.Event{
		Provider:        "coinbase",
		ProviderEventID: event.ID,
		Kind:            kind,
		ChargeID:        chargeID,
		ChargeRef:       "CB-" + chargeID,
		CustomerName:    strings.TrimSpace(charge.Metadata["customer_name"]),
		CustomerEmail:   strings.ToLower(strings.TrimSpace(charge.Metadata["customer_email"])),
		PackageID:       strings.TrimSpace(charge.Metadata["package_id"]),
		PackageName:     strings.TrimSpace(charge.Metadata["package_name"]),
		Amount:          amount,
		Currency:        currency,
		OccurredAt:      occurredAt(charge.CreatedAt, event.CreatedAt),
		RawPayload:      payload,
	}

	// The last settled payment carries the on-chain details used by the
	// confirmation analytics event.
	for _, payment := range charge.Payments {
		if payment.Value.Crypto.Amount != "" {
			out.CryptoAmount = payment.Value.Crypto.Amount
			out.CryptoCurrency = strings.ToUpper(strings.TrimSpace(payment.Value.Crypto.Currency))
		}
		if payment.TransactionID != "" {
			out.CryptoTxHash = payment.TransactionID
		}
	}

	return out, nil
}

type coinbaseEnvelope struct {
	Event coinbaseEvent `json:"event"`
}

type coinbaseEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	CreatedAt string         `json:"created_at"`
	Data      coinbaseCharge `json:"data"`
}

type coinbaseCharge struct {
	ID        string            `json:"id"`
	Code      string            `json:"code"`
	CreatedAt string            `json:"created_at"`
	Pricing   coinbasePricing   `json:"pricing"`
	Metadata  map[string]string `json:"metadata"`
	Payments  []coinbasePayment `json:"payments"`
}

type coinbasePricing struct {
	Local coinbaseMoney `json:"local"`
}

type coinbaseMoney struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// cents converts the provider's decimal string to integer minor units,
// rounding half away from zero.
func (m coinbaseMoney) cents() (int64, string) {
	currency := strings.ToUpper(strings.TrimSpace(m.Currency))
	value, err := strconv.ParseFloat(strings.TrimSpace(m.Amount), 64)
	if err != nil {
		return 0, currency
	}
	return int64(math.Round(value * 100)), currency
}

type coinbasePayment struct {
	TransactionID string        `json:"transaction_id"`
	Value         coinbaseValue `json:"value"`
}

type coinbaseValue struct {
	Crypto coinbaseMoney `json:"crypto"`
}

func occurredAt(primary, fallback string) time.Time {
	for _, raw := range []string{primary, fallback} {
		if raw == "" {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Now().UTC()
}
