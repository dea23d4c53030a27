package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/sds-studio/sds/internal/analytics/domain"
	"github.com/sds-studio/sds/internal/catalog"
	"github.com/sds-studio/sds/internal/config"
	contactdomain "github.com/sds-studio/sds/internal/contact/domain"
	invoicedomain "github.com/sds-studio/sds/internal/invoice/domain"
	"github.com/sds-studio/sds/internal/observability/metrics"
	paymentdomain "github.com/sds-studio/sds/internal/payment/domain"
	projectdomain "github.com/sds-studio/sds/internal/project/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Cfg        config.Config
	Repo       paymentdomain.Repository
	ContactSvc contactdomain.Service
	ProjectSvc projectdomain.Service
	InvoiceSvc invoicedomain.Service
	Analytics  analyticsdomain.Service
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	cfg        config.Config
	repo       paymentdomain.Repository
	contactSvc contactdomain.Service
	projectSvc projectdomain.Service
	invoiceSvc invoicedomain.Service
	analytics  analyticsdomain.Service
	metrics    *metrics.Metrics
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("payment.service"),
		genID:      p.GenID,
		cfg:        p.Cfg,
		repo:       p.Repo,
		contactSvc: p.ContactSvc,
		projectSvc: p.ProjectSvc,
		invoiceSvc: p.InvoiceSvc,
		analytics:  p.Analytics,
		metrics:    p.Metrics,
	}
}

// ProcessEvent inserts the dedup row, runs the fulfilment flow for the
// event kind, then stamps the row processed. A fulfilment failure is
// logged and leaves processed_at NULL so the delivery shows up in the
// unprocessed ledger; it never bubbles up to the webhook response.
func (s *Service) ProcessEvent(ctx context.Context, event *paymentdomain.Event, payload []byte) error {
	if event == nil {
		return paymentdomain.ErrInvalidEvent
	}
	event.Provider = strings.ToLower(strings.TrimSpace(event.Provider))
	if event.Provider == "" {
		return paymentdomain.ErrInvalidProvider
	}
	event.ProviderEventID = strings.TrimSpace(event.ProviderEventID)
	if event.ProviderEventID == "" {
		return paymentdomain.ErrInvalidEvent
	}
	if !json.Valid(payload) {
		return paymentdomain.ErrInvalidPayload
	}

	now := time.Now().UTC()
	received := paymentdomain.EventRecord{
		ID:              s.genID.Generate(),
		Provider:        event.Provider,
		ProviderEventID: event.ProviderEventID,
		EventType:       event.Kind,
		ChargeID:        event.ChargeID,
		Payload:         datatypes.JSON(payload),
		ReceivedAt:      now,
	}

	inserted, err := s.repo.InsertEvent(ctx, s.db, &received)
	if err != nil {
		return err
	}
	if inserted {
		s.metrics.RecordPaymentEvent(event.Provider, event.Kind)
	}
	stored := &received
	if !inserted {
		stored, err = s.repo.FindEvent(ctx, s.db, event.Provider, event.ProviderEventID)
		if err != nil {
			return err
		}
		if stored == nil {
			return paymentdomain.ErrInvalidEvent
		}
		if stored.ProcessedAt != nil {
			return paymentdomain.ErrEventAlreadyProcessed
		}
	}

	if err := s.dispatch(ctx, event); err != nil {
		s.log.Error("payment event fulfilment failed",
			zap.String("provider", event.Provider),
			zap.String("event_id", event.ProviderEventID),
			zap.String("kind", event.Kind),
			zap.Error(err),
		)
		return nil
	}

	return s.repo.MarkProcessed(ctx, s.db, stored.ID, time.Now().UTC())
}

func (s *Service) dispatch(ctx context.Context, event *paymentdomain.Event) error {
	switch event.Kind {
	case paymentdomain.KindConfirmed:
		return s.processConfirmed(ctx, event)
	case paymentdomain.KindCreated:
		return s.processCreated(ctx, event)
	case paymentdomain.KindFailed:
		return s.processFailed(ctx, event)
	case paymentdomain.KindDelayed, paymentdomain.KindPending:
		_, err := s.invoiceSvc.SetStatusByCharge(ctx, event.ChargeID, invoicedomain.StatusSent)
		return err
	default:
		return paymentdomain.ErrInvalidEvent
	}
}

func (s *Service) processConfirmed(ctx context.Context, event *paymentdomain.Event) error {
	paidAt := event.OccurredAt
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}

	// Invoices already referencing the charge flip to PAID first. Zero
	// matched rows just means this charge never had a placeholder.
	if _, err := s.invoiceSvc.MarkPaidByCharge(ctx, event.ChargeID, paidAt); err != nil {
		return err
	}

	if event.CustomerEmail == "" || event.PackageID == "" {
		s.recordAnalytics(ctx, "payment_confirmed", event)
		return nil
	}

	contact, err := s.contactSvc.MarkWon(ctx, contactdomain.MarkWonRequest{
		Email:       event.CustomerEmail,
		Name:        event.CustomerName,
		ProjectType: event.PackageID,
		Budget:      event.Amount,
		Source:      event.Provider + "_payment",
	})
	if err != nil {
		return err
	}

	ownerID, ok := s.resolveOwner(ctx)
	if !ok {
		s.log.Warn("no admin owner resolvable, skipping project and invoice fulfilment",
			zap.String("charge_id", event.ChargeID))
		s.recordAnalytics(ctx, "payment_confirmed", event)
		return nil
	}

	project, err := s.projectSvc.UpsertFromPayment(ctx, projectdomain.UpsertFromPaymentRequest{
		ContactID:   contact.ID,
		OwnerID:     ownerID,
		PackageID:   event.PackageID,
		PackageName: event.PackageName,
		ClientName:  event.CustomerName,
		ChargeRef:   event.ChargeRef,
		Budget:      event.Amount,
	})
	if err != nil {
		return err
	}

	if _, err := s.invoiceSvc.UpsertByNumber(ctx, invoicedomain.UpsertRequest{
		Number:           event.ChargeRef,
		ProjectID:        &project.ID,
		Subtotal:         event.Amount,
		Total:            event.Amount,
		Currency:         event.Currency,
		Status:           invoicedomain.StatusPaid,
		ProviderChargeID: event.ChargeID,
		DueDate:          paidAt,
		PaidDate:         &paidAt,
	}); err != nil {
		return err
	}

	s.recordAnalytics(ctx, "payment_confirmed", event)
	return nil
}

func (s *Service) processCreated(ctx context.Context, event *paymentdomain.Event) error {
	if _, err := s.invoiceSvc.UpsertByNumber(ctx, invoicedomain.UpsertRequest{
		Number:           event.ChargeRef,
		Subtotal:         event.Amount,
		Total:            event.Amount,
		Currency:         event.Currency,
		Status:           invoicedomain.StatusSent,
		ProviderChargeID: event.ChargeID,
	}); err != nil {
		return err
	}
	s.recordAnalytics(ctx, "payment_created", event)
	return nil
}

func (s *Service) processFailed(ctx context.Context, event *paymentdomain.Event) error {
	// A failed crypto charge is terminal; a failed card invoice stays
	// collectible, so it goes overdue instead.
	status := invoicedomain.StatusOverdue
	if event.Provider == "coinbase" {
		status = invoicedomain.StatusCancelled
	}
	if _, err := s.invoiceSvc.SetStatusByCharge(ctx, event.ChargeID, status); err != nil {
		return err
	}
	s.recordAnalytics(ctx, "payment_failed", event)
	return nil
}

// resolveOwner picks the user that owns provisioned projects: the
// configured admin id when set, otherwise the oldest ADMIN account.
func (s *Service) resolveOwner(ctx context.Context) (snowflake.ID, bool) {
	if raw := strings.TrimSpace(s.cfg.AdminUserID); raw != "" {
		if id, err := snowflake.ParseString(raw); err == nil {
			return id, true
		}
		s.log.Warn("malformed admin user id in config", zap.String("admin_user_id", raw))
	}

	var id snowflake.ID
	err := s.db.WithContext(ctx).Raw(
		`SELECT id FROM users WHERE role = 'ADMIN' ORDER BY created_at ASC LIMIT 1`,
	).Scan(&id).Error
	if err != nil {
		s.log.Warn("admin owner lookup failed", zap.Error(err))
		return 0, false
	}
	if id == 0 {
		return 0, false
	}
	return id, true
}

func (s *Service) recordAnalytics(ctx context.Context, name string, event *paymentdomain.Event) {
	props := map[string]any{
		"provider":  event.Provider,
		"charge_id": event.ChargeID,
		"amount":    event.Amount,
		"currency":  event.Currency,
	}
	if event.PackageID != "" {
		props["package"] = event.PackageID
		if pkg, ok := catalog.Lookup(event.PackageID); ok {
			props["package_name"] = pkg.Name
		}
	}
	if event.CryptoTxHash != "" {
		props["tx_hash"] = event.CryptoTxHash
	}
	if event.CryptoCurrency != "" {
		props["crypto_currency"] = event.CryptoCurrency
		props["crypto_amount"] = event.CryptoAmount
	}
	if err := s.analytics.Record(ctx, name, "", "", props); err != nil {
		s.log.Warn("analytics append failed", zap.String("event", name), zap.Error(err))
	}
}
