package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertEvent writes the dedup row. Returns false when a delivery
	// with the same (provider, provider_event_id) already exists.
	InsertEvent(ctx context.Context, db *gorm.DB, event *EventRecord) (bool, error)
	FindEvent(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*EventRecord, error)
	MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error
	ListUnprocessed(ctx context.Context, db *gorm.DB, limit int) ([]EventRecord, error)
}
