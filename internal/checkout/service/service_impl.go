package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/sds-studio/sds/internal/analytics/domain"
	"github.com/sds-studio/sds/internal/catalog"
	"github.com/sds-studio/sds/internal/checkout/domain"
	"github.com/sds-studio/sds/internal/config"
	contactdomain "github.com/sds-studio/sds/internal/contact/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const sessionExpiry = 24 * time.Hour

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Cfg         config.Config
	Stripe      domain.StripeGateway
	Coinbase    domain.CoinbaseGateway
	ContactRepo contactdomain.Repository
	Analytics   analyticsdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	cfg         config.Config
	stripe      domain.StripeGateway
	coinbase    domain.CoinbaseGateway
	contactRepo contactdomain.Repository
	analytics   analyticsdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("checkout.service"),
		genID:       p.GenID,
		cfg:         p.Cfg,
		stripe:      p.Stripe,
		coinbase:    p.Coinbase,
		contactRepo: p.ContactRepo,
		analytics:   p.Analytics,
	}
}

func (s *Service) CreateStripeSession(ctx context.Context, req domain.StripeCheckoutRequest) (*domain.StripeCheckoutResult, error) {
	pkg, email, err := s.validate(req.PackageID, req.CustomerEmail)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	customerID, err := s.stripe.SearchCustomerByEmail(ctx, email)
	if err != nil {
		s.log.Warn("stripe customer search failed, creating fresh", zap.Error(err))
	}
	if customerID == "" {
		customerID, err = s.stripe.CreateCustomer(ctx, name, email, strings.TrimSpace(req.CustomerPhone))
		if err != nil {
			return nil, err
		}
	}

	result, err := s.stripe.CreateCheckoutSession(ctx, domain.StripeSessionParams{
		CustomerID:    customerID,
		CustomerEmail: email,
		CustomerName:  name,
		Package:       pkg,
		SuccessURL:    s.cfg.SiteURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.cfg.SiteURL + "/tarifs",
		ExpiresAt:     time.Now().Add(sessionExpiry),
	})
	if err != nil {
		return nil, err
	}
	result.CustomerID = customerID

	s.persistLead(ctx, name, email, req.CustomerPhone, pkg,
		"Session Stripe "+result.SessionID, "stripe_checkout", req.IPAddress, req.UserAgent)
	s.recordStarted(ctx, "stripe", pkg)

	return result, nil
}

func (s *Service) GetStripeSession(ctx context.Context, sessionID string) (*domain.StripeSessionInfo, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, domain.ErrNotFound
	}
	return s.stripe.GetCheckoutSession(ctx, sessionID)
}

func (s *Service) CreateCryptoCharge(ctx context.Context, req domain.CryptoCheckoutRequest) (*domain.CryptoCheckoutResult, error) {
	pkg, email, err := s.validate(req.PackageID, req.CustomerEmail)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	result, err := s.coinbase.CreateCharge(ctx, domain.CoinbaseChargeParams{
		CustomerName:  name,
		CustomerEmail: email,
		Package:       pkg,
		RedirectURL:   s.cfg.SiteURL + "/success",
		CancelURL:     s.cfg.SiteURL + "/tarifs",
	})
	if err != nil {
		return nil, err
	}

	s.persistLead(ctx, name, email, "", pkg,
		"Charge Coinbase "+result.ChargeID, "crypto_checkout", req.IPAddress, req.UserAgent)
	s.recordStarted(ctx, "coinbase", pkg)

	return result, nil
}

func (s *Service) GetCryptoCharge(ctx context.Context, chargeID string) (*domain.CryptoChargeInfo, error) {
	chargeID = strings.TrimSpace(chargeID)
	if chargeID == "" {
		return nil, domain.ErrNotFound
	}
	return s.coinbase.GetCharge(ctx, chargeID)
}

// validate rejects bad input before any provider call.
func (s *Service) validate(packageID, email string) (catalog.Package, string, error) {
	pkg, ok := catalog.Lookup(packageID)
	if !ok {
		return catalog.Package{}, "", domain.ErrUnknownPackage
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return catalog.Package{}, "", domain.ErrInvalidEmail
	}
	return pkg, email, nil
}

// persistLead records the preliminary contact for the started checkout.
// Best-effort: a store failure must not lose the provider session the
// customer is already paying through.
func (s *Service) persistLead(ctx context.Context, name, email, phone string, pkg catalog.Package, message, source, ip, userAgent string) {
	now := time.Now().UTC()
	contact := &contactdomain.Contact{
		ID:          s.genID.Generate(),
		Name:        name,
		Email:       email,
		Phone:       strings.TrimSpace(phone),
		Message:     message,
		ProjectType: pkg.ProjectType,
		Budget:      pkg.Price,
		Status:      contactdomain.StatusNew,
		Source:      source,
		IPAddress:   ip,
		UserAgent:   userAgent,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.contactRepo.UpsertLead(ctx, s.db, contact); err != nil {
		s.log.Warn("checkout lead persistence failed",
			zap.String("source", source), zap.Error(err))
	}
}

func (s *Service) recordStarted(ctx context.Context, provider string, pkg catalog.Package) {
	err := s.analytics.Record(ctx, "checkout_started", "", "", map[string]any{
		"provider": provider,
		"package":  pkg.ID,
		"amount":   pkg.Price,
		"currency": pkg.Currency,
	})
	if err != nil {
		s.log.Warn("analytics append failed", zap.Error(err))
	}
}
