package coinbasegw

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	checkoutdomain "github.com/sds-studio/sds/internal/checkout/domain"
)

const (
	defaultBaseURL = "https://api.commerce.coinbase.com"
	apiVersion     = "2018-03-22"
)

// Client is a minimal Coinbase Commerce charges client. The Commerce
// API has no maintained Go SDK, so this talks to the REST surface
// directly.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewWithBaseURL exists for tests pointing at an httptest server.
func NewWithBaseURL(apiKey, baseURL string) *Client {
	c := New(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type chargeRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	PricingType string            `json:"pricing_type"`
	LocalPrice  money             `json:"local_price"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	RedirectURL string            `json:"redirect_url,omitempty"`
	CancelURL   string            `json:"cancel_url,omitempty"`
}

type money struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type chargeEnvelope struct {
	Data chargeData `json:"data"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type chargeData struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	HostedURL string `json:"hosted_url"`
	ExpiresAt string `json:"expires_at"`
	Timeline  []struct {
		Status string `json:"status"`
	} `json:"timeline"`
	Pricing struct {
		Local money `json:"local"`
	} `json:"pricing"`
}

func (c *Client) CreateCharge(ctx context.Context, params checkoutdomain.CoinbaseChargeParams) (*checkoutdomain.CryptoCheckoutResult, error) {
	pkg := params.Package
	body := chargeRequest{
		Name:        fmt.Sprintf("Pack %s", pkg.Name),
		Description: pkg.Description,
		PricingType: "fixed_price",
		LocalPrice: money{
			Amount:   formatCents(pkg.Price),
			Currency: pkg.Currency,
		},
		Metadata: map[string]string{
			"package_id":     pkg.ID,
			"package_name":   pkg.Name,
			"project_type":   pkg.ProjectType,
			"customer_name":  params.CustomerName,
			"customer_email": params.CustomerEmail,
		},
		RedirectURL: params.RedirectURL,
		CancelURL:   params.CancelURL,
	}

	var envelope chargeEnvelope
	if err := c.do(ctx, http.MethodPost, "/charges", body, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data.ID == "" {
		return nil, fmt.Errorf("coinbase charge create: empty response")
	}

	return &checkoutdomain.CryptoCheckoutResult{
		ChargeID:  envelope.Data.ID,
		Code:      envelope.Data.Code,
		HostedURL: envelope.Data.HostedURL,
		ExpiresAt: parseTime(envelope.Data.ExpiresAt),
	}, nil
}

func (c *Client) GetCharge(ctx context.Context, chargeID string) (*checkoutdomain.CryptoChargeInfo, error) {
	var envelope chargeEnvelope
	if err := c.do(ctx, http.MethodGet, "/charges/"+chargeID, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data.ID == "" {
		return nil, checkoutdomain.ErrNotFound
	}

	status := "NEW"
	if n := len(envelope.Data.Timeline); n > 0 {
		status = envelope.Data.Timeline[n-1].Status
	}

	return &checkoutdomain.CryptoChargeInfo{
		ChargeID:  envelope.Data.ID,
		Code:      envelope.Data.Code,
		Status:    status,
		HostedURL: envelope.Data.HostedURL,
		Amount:    envelope.Data.Pricing.Local.Amount,
		Currency:  envelope.Data.Pricing.Local.Currency,
		ExpiresAt: parseTime(envelope.Data.ExpiresAt),
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CC-Api-Key", c.apiKey)
	req.Header.Set("X-CC-Version", apiVersion)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("coinbase request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return checkoutdomain.ErrNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("coinbase request: status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func formatCents(cents int64) string {
	return strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
}

func parseTime(raw string) time.Time {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
