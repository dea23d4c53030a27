package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// UpsertLead inserts a new lead or, when the email already exists,
	// refreshes its message and phone without touching the status. One
	// atomic statement, never lookup-then-branch.
	UpsertLead(ctx context.Context, db *gorm.DB, contact *Contact) error
	// UpsertWon inserts the contact with status WON or promotes the
	// existing row for the same email to WON, returning the row id.
	UpsertWon(ctx context.Context, db *gorm.DB, contact *Contact) (snowflake.ID, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Contact, error)
	List(ctx context.Context, db *gorm.DB, req ListRequest) ([]Contact, int64, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string) error
}
