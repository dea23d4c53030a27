package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sds-studio/sds/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertEvent(ctx context.Context, db *gorm.DB, event *domain.EventRecord) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO payment_events (
			id, provider, provider_event_id, event_type, charge_id,
			payload, received_at, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider, provider_event_id) DO NOTHING`,
		event.ID,
		event.Provider,
		event.ProviderEventID,
		event.EventType,
		event.ChargeID,
		event.Payload,
		event.ReceivedAt,
		event.ProcessedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindEvent(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*domain.EventRecord, error) {
	var item domain.EventRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, provider, provider_event_id, event_type, charge_id,
			payload, received_at, processed_at
		 FROM payment_events
		 WHERE provider = ? AND provider_event_id = ?
		 LIMIT 1`,
		provider,
		providerEventID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payment_events
		 SET processed_at = ?
		 WHERE id = ?`,
		processedAt,
		id,
	).Error
}

func (r *repo) ListUnprocessed(ctx context.Context, db *gorm.DB, limit int) ([]domain.EventRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	var items []domain.EventRecord
	err := db.WithContext(ctx).Raw(
		`SELECT id, provider, provider_event_id, event_type, charge_id,
			payload, received_at, processed_at
		 FROM payment_events
		 WHERE processed_at IS NULL
		 ORDER BY received_at ASC
		 LIMIT ?`,
		limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
