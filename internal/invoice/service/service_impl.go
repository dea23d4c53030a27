package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sds-studio/sds/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) UpsertByNumber(ctx context.Context, req domain.UpsertRequest) (*domain.Invoice, error) {
	number := strings.TrimSpace(req.Number)
	if number == "" {
		return nil, domain.ErrInvalidNumber
	}
	if req.Total < 0 || req.Subtotal < 0 {
		return nil, domain.ErrInvalidAmount
	}

	status := req.Status
	if status == "" {
		status = domain.StatusDraft
	}
	if !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "EUR"
	}

	now := time.Now().UTC()
	dueDate := req.DueDate
	if dueDate.IsZero() {
		dueDate = now
	}

	invoice := &domain.Invoice{
		ID:               s.genID.Generate(),
		Number:           number,
		ProjectID:        req.ProjectID,
		Subtotal:         req.Subtotal,
		TaxAmount:        req.TaxAmount,
		Total:            req.Total,
		Currency:         currency,
		Status:           status,
		ProviderChargeID: req.ProviderChargeID,
		DueDate:          dueDate,
		PaidDate:         req.PaidDate,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	id, err := s.repo.UpsertByNumber(ctx, s.db, invoice)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *Service) MarkPaidByCharge(ctx context.Context, chargeID string, paidAt time.Time) (int64, error) {
	if strings.TrimSpace(chargeID) == "" {
		return 0, nil
	}
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}
	return s.repo.MarkPaidByCharge(ctx, s.db, chargeID, paidAt)
}

func (s *Service) SetStatusByCharge(ctx context.Context, chargeID, status string) (int64, error) {
	if strings.TrimSpace(chargeID) == "" {
		return 0, nil
	}
	if !domain.ValidStatus(status) {
		return 0, domain.ErrInvalidStatus
	}
	return s.repo.SetStatusByCharge(ctx, s.db, chargeID, status)
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Invoice, error) {
	if req.Subtotal < 0 || req.Total < 0 {
		return nil, domain.ErrInvalidAmount
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "EUR"
	}

	now := time.Now().UTC()
	taxAmount := int64(float64(req.Subtotal) * req.TaxRate)
	total := req.Total
	if total == 0 {
		total = req.Subtotal + taxAmount
	}

	dueDate := req.DueDate
	if dueDate.IsZero() {
		dueDate = now.AddDate(0, 0, 30)
	}

	invoice := &domain.Invoice{
		ID:        s.genID.Generate(),
		Number:    "INV-" + now.Format("20060102") + "-" + s.genID.Generate().Base36(),
		ProjectID: req.ProjectID,
		Subtotal:  req.Subtotal,
		TaxRate:   req.TaxRate,
		TaxAmount: taxAmount,
		Total:     total,
		Currency:  currency,
		Status:    domain.StatusDraft,
		DueDate:   dueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, domain.ErrNotFound
	}
	return invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Invoice, int64, error) {
	return s.repo.List(ctx, s.db, req)
}

func (s *Service) SetStatus(ctx context.Context, id snowflake.ID, status string) (*domain.Invoice, error) {
	if !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	var paidAt *time.Time
	if status == domain.StatusPaid {
		now := time.Now().UTC()
		paidAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, s.db, id, status, paidAt); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}
