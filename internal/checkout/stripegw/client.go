package stripegw

import (
	"context"
	"fmt"
	"strings"

	checkoutdomain "github.com/sds-studio/sds/internal/checkout/domain"
	"github.com/stripe/stripe-go/v83"
)

// Client wraps the Stripe SDK behind the checkout gateway interface.
type Client struct {
	sc *stripe.Client
}

func New(apiKey string) *Client {
	return &Client{sc: stripe.NewClient(strings.TrimSpace(apiKey))}
}

func (c *Client) SearchCustomerByEmail(ctx context.Context, email string) (string, error) {
	params := &stripe.CustomerSearchParams{}
	params.Query = fmt.Sprintf("email:'%s'", email)

	for cust, err := range c.sc.V1Customers.Search(ctx, params) {
		if err != nil {
			return "", fmt.Errorf("stripe customer search: %w", err)
		}
		// Search can return partial matches; keep only the exact email.
		if strings.EqualFold(cust.Email, email) {
			return cust.ID, nil
		}
	}
	return "", nil
}

func (c *Client) CreateCustomer(ctx context.Context, name, email, phone string) (string, error) {
	params := &stripe.CustomerCreateParams{
		Email: stripe.String(email),
	}
	if name != "" {
		params.Name = stripe.String(name)
	}
	if phone != "" {
		params.Phone = stripe.String(phone)
	}

	cust, err := c.sc.V1Customers.Create(ctx, params)
	if err != nil {
		return "", fmt.Errorf("stripe customer create: %w", err)
	}
	return cust.ID, nil
}

func (c *Client) CreateCheckoutSession(ctx context.Context, in checkoutdomain.StripeSessionParams) (*checkoutdomain.StripeCheckoutResult, error) {
	pkg := in.Package
	params := &stripe.CheckoutSessionCreateParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(strings.ToLower(pkg.Currency)),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("Pack %s", pkg.Name)),
						Description: stripe.String(pkg.Description),
					},
					UnitAmount: stripe.Int64(pkg.Price),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(in.SuccessURL),
		CancelURL:  stripe.String(in.CancelURL),
	}

	// The webhook handler reconciles on this metadata; losing it breaks
	// project provisioning for the payment.
	params.Metadata = map[string]string{
		"package_id":     pkg.ID,
		"package_name":   pkg.Name,
		"project_type":   pkg.ProjectType,
		"customer_name":  in.CustomerName,
		"customer_email": in.CustomerEmail,
	}
	params.PaymentIntentData = &stripe.CheckoutSessionCreatePaymentIntentDataParams{
		Metadata: map[string]string{
			"package_id":     pkg.ID,
			"package_name":   pkg.Name,
			"customer_name":  in.CustomerName,
			"customer_email": in.CustomerEmail,
		},
	}

	if in.CustomerID != "" {
		params.Customer = stripe.String(in.CustomerID)
	} else {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	if !in.ExpiresAt.IsZero() {
		params.ExpiresAt = stripe.Int64(in.ExpiresAt.Unix())
	}

	session, err := c.sc.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout session create: %w", err)
	}
	return &checkoutdomain.StripeCheckoutResult{
		SessionID:  session.ID,
		URL:        session.URL,
		CustomerID: in.CustomerID,
	}, nil
}

func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*checkoutdomain.StripeSessionInfo, error) {
	session, err := c.sc.V1CheckoutSessions.Retrieve(ctx, sessionID, nil)
	if err != nil {
		return nil, checkoutdomain.ErrNotFound
	}

	info := &checkoutdomain.StripeSessionInfo{
		SessionID:     session.ID,
		Status:        string(session.Status),
		PaymentStatus: string(session.PaymentStatus),
		AmountTotal:   session.AmountTotal,
		Currency:      strings.ToUpper(string(session.Currency)),
	}
	if session.CustomerDetails != nil {
		info.CustomerEmail = session.CustomerDetails.Email
	}
	return info, nil
}
