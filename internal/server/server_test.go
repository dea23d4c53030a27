package server

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	analyticsdomain "github.com/sds-studio/sds/internal/analytics/domain"
	analyticsservice "github.com/sds-studio/sds/internal/analytics/service"
	authdomain "github.com/sds-studio/sds/internal/auth/domain"
	authrepo "github.com/sds-studio/sds/internal/auth/repository"
	authservice "github.com/sds-studio/sds/internal/auth/service"
	"github.com/sds-studio/sds/internal/auth/session"
	checkoutdomain "github.com/sds-studio/sds/internal/checkout/domain"
	checkoutservice "github.com/sds-studio/sds/internal/checkout/service"
	"github.com/sds-studio/sds/internal/config"
	contactdomain "github.com/sds-studio/sds/internal/contact/domain"
	contactrepo "github.com/sds-studio/sds/internal/contact/repository"
	contactservice "github.com/sds-studio/sds/internal/contact/service"
	invoicedomain "github.com/sds-studio/sds/internal/invoice/domain"
	invoicerepo "github.com/sds-studio/sds/internal/invoice/repository"
	invoiceservice "github.com/sds-studio/sds/internal/invoice/service"
	"github.com/sds-studio/sds/internal/observability/metrics"
	"github.com/sds-studio/sds/internal/payment/adapters"
	"github.com/sds-studio/sds/internal/payment/adapters/coinbase"
	stripeadapter "github.com/sds-studio/sds/internal/payment/adapters/stripe"
	paymentdomain "github.com/sds-studio/sds/internal/payment/domain"
	paymentrepo "github.com/sds-studio/sds/internal/payment/repository"
	paymentservice "github.com/sds-studio/sds/internal/payment/service"
	"github.com/sds-studio/sds/internal/payment/webhook"
	projectdomain "github.com/sds-studio/sds/internal/project/domain"
	projectrepo "github.com/sds-studio/sds/internal/project/repository"
	projectservice "github.com/sds-studio/sds/internal/project/service"
	"github.com/sds-studio/sds/internal/providers/email"
	"github.com/sds-studio/sds/internal/ratelimit"
	"github.com/sds-studio/sds/internal/seo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	coinbaseSecret = "cb-test-secret"
	stripeSecret   = "whsec_test"
	adminPassword  = "sup3rsecret"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStripeGateway struct {
	calls int
}

func (f *fakeStripeGateway) SearchCustomerByEmail(ctx context.Context, email string) (string, error) {
	f.calls++
	return "", nil
}

func (f *fakeStripeGateway) CreateCustomer(ctx context.Context, name, email, phone string) (string, error) {
	f.calls++
	return "cus_test", nil
}

func (f *fakeStripeGateway) CreateCheckoutSession(ctx context.Context, params checkoutdomain.StripeSessionParams) (*checkoutdomain.StripeCheckoutResult, error) {
	f.calls++
	return &checkoutdomain.StripeCheckoutResult{
		SessionID: "cs_test_1",
		URL:       "https://checkout.stripe.com/pay/cs_test_1",
	}, nil
}

func (f *fakeStripeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*checkoutdomain.StripeSessionInfo, error) {
	f.calls++
	return &checkoutdomain.StripeSessionInfo{SessionID: sessionID, Status: "complete", PaymentStatus: "paid"}, nil
}

type fakeCoinbaseGateway struct {
	calls int
}

func (f *fakeCoinbaseGateway) CreateCharge(ctx context.Context, params checkoutdomain.CoinbaseChargeParams) (*checkoutdomain.CryptoCheckoutResult, error) {
	f.calls++
	return &checkoutdomain.CryptoCheckoutResult{
		ChargeID:  "charge_test",
		Code:      "TESTCODE",
		HostedURL: "https://commerce.coinbase.com/charges/TESTCODE",
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeCoinbaseGateway) GetCharge(ctx context.Context, chargeID string) (*checkoutdomain.CryptoChargeInfo, error) {
	f.calls++
	return &checkoutdomain.CryptoChargeInfo{ChargeID: chargeID, Status: "NEW"}, nil
}

type fixture struct {
	engine   *gin.Engine
	db       *gorm.DB
	node     *snowflake.Node
	stripe   *fakeStripeGateway
	coinbase *fakeCoinbaseGateway
	authSvc  authdomain.Service
	adminID  snowflake.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&authdomain.User{},
		&authdomain.Session{},
		&contactdomain.Contact{},
		&projectdomain.Project{},
		&projectdomain.Task{},
		&invoicedomain.Invoice{},
		&paymentdomain.EventRecord{},
		&analyticsdomain.Event{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()
	cfg := config.Config{
		AppName:     "sds",
		Environment: "test",
		SiteURL:     "https://sds.example.com",
	}

	userRepo, sessionRepo := authrepo.New(db)
	authSvc := authservice.New(logger, userRepo, sessionRepo, node)

	admin, err := authSvc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: adminPassword,
		Role:     authdomain.RoleAdmin,
	})
	require.NoError(t, err)

	analytics := analyticsservice.New(analyticsservice.Params{DB: db, Log: logger, GenID: node})
	contactSvc := contactservice.New(contactservice.Params{
		DB:        db,
		Log:       logger,
		GenID:     node,
		Cfg:       cfg,
		Repo:      contactrepo.Provide(),
		Analytics: analytics,
		Email:     &email.NoOpProvider{},
	})
	projectSvc := projectservice.New(projectservice.Params{DB: db, Log: logger, GenID: node, Repo: projectrepo.Provide()})
	invoiceSvc := invoiceservice.New(invoiceservice.Params{DB: db, Log: logger, GenID: node, Repo: invoicerepo.Provide()})

	paymentRepo := paymentrepo.Provide()
	paymentSvc := paymentservice.NewService(paymentservice.Params{
		DB:         db,
		Log:        logger,
		GenID:      node,
		Cfg:        cfg,
		Repo:       paymentRepo,
		ContactSvc: contactSvc,
		ProjectSvc: projectSvc,
		InvoiceSvc: invoiceSvc,
		Analytics:  analytics,
	})
	registry := adapters.NewRegistry(
		stripeadapter.NewAdapter(stripeSecret),
		coinbase.NewAdapter(coinbaseSecret),
	)
	ingestor := webhook.NewService(webhook.Params{Log: logger, PaymentSvc: paymentSvc, Adapters: registry})

	stripeGW := &fakeStripeGateway{}
	coinbaseGW := &fakeCoinbaseGateway{}
	checkoutSvc := checkoutservice.New(checkoutservice.Params{
		DB:          db,
		Log:         logger,
		GenID:       node,
		Cfg:         cfg,
		Stripe:      stripeGW,
		Coinbase:    coinbaseGW,
		ContactRepo: contactrepo.Provide(),
		Analytics:   analytics,
	})

	seoSvc := seo.New(seo.Params{Log: logger, Cfg: cfg, ProjectSvc: projectSvc})

	srv := NewServer(ServerParams{
		Log:         logger,
		Cfg:         cfg,
		DB:          db,
		Metrics:     metrics.New(cfg),
		Sessions:    session.NewManager(cfg),
		AuthSvc:     authSvc,
		ContactSvc:  contactSvc,
		Limiter:     ratelimit.NewContactLimiter(cfg, logger),
		CheckoutSvc: checkoutSvc,
		Ingestor:    ingestor,
		PaymentRepo: paymentRepo,
		ProjectSvc:  projectSvc,
		InvoiceSvc:  invoiceSvc,
		Analytics:   analytics,
		SEO:         seoSvc,
	})

	return &fixture{
		engine:   srv.NewEngine(),
		db:       db,
		node:     node,
		stripe:   stripeGW,
		coinbase: coinbaseGW,
		authSvc:  authSvc,
		adminID:  admin.ID,
	}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target string, body any) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func signCoinbase(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(coinbaseSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func coinbaseConfirmedPayload(eventID, chargeID string) []byte {
	return []byte(fmt.Sprintf(`{
		"event": {
			"id": %q,
			"type": "charge:confirmed",
			"created_at": "2024-05-01T10:00:00Z",
			"data": {
				"id": %q,
				"pricing": {"local": {"amount": "2490.00", "currency": "EUR"}},
				"metadata": {
					"customer_name": "Marie Dupont",
					"customer_email": "marie@example.com",
					"package_id": "professionnel",
					"package_name": "Professionnel"
				}
			}
		}
	}`, eventID, chargeID))
}

func (f *fixture) login(t *testing.T, emailAddr, password string) *http.Cookie {
	t.Helper()
	rec := f.do(jsonRequest(http.MethodPost, "/auth/login", gin.H{
		"email":    emailAddr,
		"password": password,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == session.DefaultCookieName {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPaymentWebhook_CoinbaseConfirmed(t *testing.T) {
	f := newFixture(t)

	payload := coinbaseConfirmedPayload("evt-http-1", "charge-http-1")
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhooks/coinbase", bytes.NewReader(payload))
	req.Header.Set("X-CC-Webhook-Signature", signCoinbase(payload))

	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"received": true}`, rec.Body.String())

	var invoice invoicedomain.Invoice
	require.NoError(t, f.db.Where("number = ?", "CB-charge-http-1").First(&invoice).Error)
	assert.Equal(t, invoicedomain.StatusPaid, invoice.Status)

	var contact contactdomain.Contact
	require.NoError(t, f.db.Where("email = ?", "marie@example.com").First(&contact).Error)
	assert.Equal(t, contactdomain.StatusWon, contact.Status)

	var projects int64
	f.db.Model(&projectdomain.Project{}).Count(&projects)
	assert.Equal(t, int64(1), projects)
}

func TestPaymentWebhook_RedeliveryAnswers200(t *testing.T) {
	f := newFixture(t)

	payload := coinbaseConfirmedPayload("evt-http-dup", "charge-http-dup")
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/payments/webhooks/coinbase", bytes.NewReader(payload))
		req.Header.Set("X-CC-Webhook-Signature", signCoinbase(payload))
		rec := f.do(req)
		assert.Equal(t, http.StatusOK, rec.Code, "delivery %d", i)
	}

	var invoices, events int64
	f.db.Model(&invoicedomain.Invoice{}).Count(&invoices)
	f.db.Model(&paymentdomain.EventRecord{}).Count(&events)
	assert.Equal(t, int64(1), invoices)
	assert.Equal(t, int64(1), events)
}

func TestPaymentWebhook_BadSignature(t *testing.T) {
	f := newFixture(t)

	payload := coinbaseConfirmedPayload("evt-bad-sig", "charge-bad-sig")
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhooks/coinbase", bytes.NewReader(payload))
	req.Header.Set("X-CC-Webhook-Signature", "deadbeef")

	rec := f.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var events int64
	f.db.Model(&paymentdomain.EventRecord{}).Count(&events)
	assert.Equal(t, int64(0), events, "rejected delivery must not touch the store")
}

func TestPaymentWebhook_UnknownProvider(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhooks/paypal", strings.NewReader(`{}`))
	rec := f.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentWebhook_IgnoredEventTypeAnswers200(t *testing.T) {
	f := newFixture(t)

	payload := []byte(`{"event":{"id":"evt-ig","type":"charge:resolved","data":{"id":"ch"}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhooks/coinbase", bytes.NewReader(payload))
	req.Header.Set("X-CC-Webhook-Signature", signCoinbase(payload))

	rec := f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContactIntake_JSON(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/contact", gin.H{
		"name":    "Paul Durand",
		"email":   "paul@example.com",
		"project": "vitrine",
		"message": "Bonjour, je souhaite un site.",
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var contact contactdomain.Contact
	require.NoError(t, f.db.Where("email = ?", "paul@example.com").First(&contact).Error)
	assert.Equal(t, contactdomain.StatusNew, contact.Status)
	assert.Equal(t, "SITE_VITRINE", contact.ProjectType)
}

func TestContactIntake_FieldErrors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/contact", gin.H{
		"email":   "not-an-email",
		"project": "vitrine",
	}))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Errors, "name")
	assert.Contains(t, body.Errors, "email")
	assert.Contains(t, body.Errors, "message")
}

func TestContactIntake_HoneypotLooksLikeSuccess(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/contact", gin.H{
		"name":    "Bot",
		"email":   "bot@example.com",
		"project": "vitrine",
		"message": "spam",
		"website": "https://spam.example.com",
	}))
	assert.Equal(t, http.StatusCreated, rec.Code, "bot must see a success shape")

	var contacts int64
	f.db.Model(&contactdomain.Contact{}).Count(&contacts)
	assert.Equal(t, int64(0), contacts)
}

func TestContactIntake_FormRedirects(t *testing.T) {
	f := newFixture(t)

	form := url.Values{}
	form.Set("name", "Claire Petit")
	form.Set("email", "claire@example.com")
	form.Set("project", "boutique")
	form.Set("message", "Je veux une boutique en ligne.")

	req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := f.do(req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/success", rec.Header().Get("Location"))
}

func TestContactIntake_RateLimited(t *testing.T) {
	f := newFixture(t)

	var last int
	for i := 0; i < 6; i++ {
		req := jsonRequest(http.MethodPost, "/api/contact", gin.H{
			"name":    "Repeat",
			"email":   "repeat@example.com",
			"project": "vitrine",
			"message": "encore",
		})
		req.RemoteAddr = "10.1.2.3:40000"
		last = f.do(req).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestCheckout_UnknownPackageSkipsProviders(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/checkout/stripe", gin.H{
		"package_id":     "premium",
		"customer_name":  "Marie",
		"customer_email": "marie@example.com",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, f.stripe.calls, "validation failures must not reach the provider")

	rec = f.do(jsonRequest(http.MethodPost, "/api/checkout/crypto", gin.H{
		"package_id":     "premium",
		"customer_name":  "Marie",
		"customer_email": "marie@example.com",
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, f.coinbase.calls)
}

func TestCheckout_StripeSession(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/checkout/stripe", gin.H{
		"package_id":     "professionnel",
		"customer_name":  "Marie Dupont",
		"customer_email": "marie@example.com",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body checkoutdomain.StripeCheckoutResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "cs_test_1", body.SessionID)
	assert.NotEmpty(t, body.URL)

	var contact contactdomain.Contact
	require.NoError(t, f.db.Where("email = ?", "marie@example.com").First(&contact).Error)
	assert.Equal(t, "stripe_checkout", contact.Source)
	assert.Equal(t, int64(249000), contact.Budget)
}

func TestCheckout_CryptoCharge(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/checkout/crypto", gin.H{
		"package_id":     "essentiel",
		"customer_name":  "Jean Martin",
		"customer_email": "jean@example.com",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body checkoutdomain.CryptoCheckoutResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "charge_test", body.ChargeID)
	assert.NotEmpty(t, body.HostedURL)
}

func TestAuth_LoginAndMe(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/auth/login", gin.H{
		"email":    "admin@example.com",
		"password": "wrong-password",
	}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	cookie := f.login(t, "admin@example.com", adminPassword)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(cookie)
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin@example.com")

	rec = f.do(httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_RequiresSession(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmin_RoleGate(t *testing.T) {
	f := newFixture(t)

	_, err := f.authSvc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Name:     "Viewer",
		Email:    "viewer@example.com",
		Password: "viewerpass1",
		Role:     authdomain.RoleViewer,
	})
	require.NoError(t, err)
	cookie := f.login(t, "viewer@example.com", "viewerpass1")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts", nil)
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusOK, f.do(req).Code, "viewers can read")

	req = httptest.NewRequest(http.MethodDelete, "/api/admin/projects/123", nil)
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusForbidden, f.do(req).Code, "viewers cannot delete")
}

func TestAdmin_ContactLifecycle(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t, "admin@example.com", adminPassword)

	rec := f.do(jsonRequest(http.MethodPost, "/api/contact", gin.H{
		"name":    "Lead",
		"email":   "lead@example.com",
		"project": "vitrine",
		"message": "bonjour",
	}))
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/contacts?status=NEW", nil)
	req.AddCookie(cookie)
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list struct {
		Contacts []contactdomain.Contact `json:"contacts"`
		Total    int64                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Contacts, 1)

	target := fmt.Sprintf("/api/admin/contacts/%s/status", list.Contacts[0].ID)
	req = jsonRequest(http.MethodPatch, target, gin.H{"status": "CONTACTED"})
	req.AddCookie(cookie)
	rec = f.do(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "CONTACTED")

	req = jsonRequest(http.MethodPatch, target, gin.H{"status": "BROKEN"})
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusBadRequest, f.do(req).Code)
}

func TestAdmin_UnprocessedPaymentEvents(t *testing.T) {
	f := newFixture(t)
	cookie := f.login(t, "admin@example.com", adminPassword)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/payments/events", nil)
	req.AddCookie(cookie)
	rec := f.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":0`)
}

func TestSEO_Robots(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/robots.txt", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Disallow: /", "non-production blocks crawlers")
}

func TestSEO_Sitemap(t *testing.T) {
	f := newFixture(t)

	rec := f.do(httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<urlset")
	assert.Contains(t, body, "https://sds.example.com/tarifs")
}

func TestAnalyticsEvent(t *testing.T) {
	f := newFixture(t)

	rec := f.do(jsonRequest(http.MethodPost, "/api/analytics/events", gin.H{
		"event":      "page_view",
		"page":       "/tarifs",
		"session_id": "abc",
	}))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	var events int64
	f.db.Model(&analyticsdomain.Event{}).Count(&events)
	assert.Equal(t, int64(1), events)
}
