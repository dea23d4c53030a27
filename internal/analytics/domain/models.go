package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Event is an append-only audit record. Rows are never updated or
// deduplicated; the table is a history, not a current-state projection.
type Event struct {
	ID         snowflake.ID   `gorm:"primaryKey" json:"id"`
	Event      string         `gorm:"not null;index" json:"event"`
	Page       string         `json:"page"`
	SessionID  string         `gorm:"index" json:"session_id"`
	Properties datatypes.JSON `gorm:"type:jsonb" json:"properties,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
}

func (Event) TableName() string { return "analytics_events" }

type Service interface {
	// Record appends one event. Callers treat failures as best-effort:
	// log and move on, never fail the primary operation.
	Record(ctx context.Context, event, page, sessionID string, properties map[string]any) error
}
