package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, project *Project) error
	// UpsertByContact inserts or refreshes the single project row for a
	// contact, returning the row id.
	UpsertByContact(ctx context.Context, db *gorm.DB, project *Project) (snowflake.ID, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Project, error)
	List(ctx context.Context, db *gorm.DB, req ListRequest) ([]Project, int64, error)
	Update(ctx context.Context, db *gorm.DB, project *Project) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error

	InsertTasks(ctx context.Context, db *gorm.DB, tasks []Task) error
	ListTasks(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]Task, error)
	FindTask(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Task, error)
	UpdateTask(ctx context.Context, db *gorm.DB, task *Task) error
}
