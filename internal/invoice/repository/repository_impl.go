package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sds-studio/sds/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) UpsertByNumber(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) (snowflake.ID, error) {
	var id snowflake.ID
	err := db.WithContext(ctx).Raw(
		`INSERT INTO invoices (id, number, project_id, subtotal, tax_rate, tax_amount, total, currency, status, provider_charge_id, due_date, paid_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (number) DO UPDATE SET
		   project_id = COALESCE(excluded.project_id, invoices.project_id),
		   subtotal = excluded.subtotal,
		   tax_amount = excluded.tax_amount,
		   total = excluded.total,
		   status = excluded.status,
		   paid_date = COALESCE(excluded.paid_date, invoices.paid_date),
		   updated_at = excluded.updated_at
		 RETURNING id`,
		invoice.ID,
		invoice.Number,
		invoice.ProjectID,
		invoice.Subtotal,
		invoice.TaxRate,
		invoice.TaxAmount,
		invoice.Total,
		invoice.Currency,
		invoice.Status,
		invoice.ProviderChargeID,
		invoice.DueDate,
		invoice.PaidDate,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	).Scan(&id).Error
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) MarkPaidByCharge(ctx context.Context, db *gorm.DB, chargeID string, paidAt time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, paid_date = ?, updated_at = ? WHERE provider_charge_id = ?`,
		domain.StatusPaid, paidAt, paidAt, chargeID,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) SetStatusByCharge(ctx context.Context, db *gorm.DB, chargeID, status string) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE invoices SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE provider_charge_id = ?`,
		status, chargeID,
	)
	return res.RowsAffected, res.Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM invoices WHERE id = ?`, id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, number string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM invoices WHERE number = ?`, number,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListRequest) ([]domain.Invoice, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Invoice{})
	if req.Status != "" {
		stmt = stmt.Where("status = ?", req.Status)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	var invoices []domain.Invoice
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit).
		Offset(req.Offset).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, paidAt *time.Time) error {
	stmt := db.WithContext(ctx).Model(&domain.Invoice{}).Where("id = ?", id)
	updates := map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if paidAt != nil {
		updates["paid_date"] = *paidAt
	}
	res := stmt.Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
