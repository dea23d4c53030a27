package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	UpsertByNumber(ctx context.Context, db *gorm.DB, invoice *Invoice) (snowflake.ID, error)
	MarkPaidByCharge(ctx context.Context, db *gorm.DB, chargeID string, paidAt time.Time) (int64, error)
	SetStatusByCharge(ctx context.Context, db *gorm.DB, chargeID, status string) (int64, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Invoice, error)
	List(ctx context.Context, db *gorm.DB, req ListRequest) ([]Invoice, int64, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string, paidAt *time.Time) error
}
