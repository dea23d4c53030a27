package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Project is the unit of work sold to a client. Exactly one project exists
// per contact; the unique index on ContactID backs the payment-fulfilment
// upsert.
type Project struct {
	ID            snowflake.ID   `gorm:"primaryKey" json:"id"`
	ContactID     snowflake.ID   `gorm:"not null;uniqueIndex" json:"contact_id"`
	OwnerID       snowflake.ID   `gorm:"not null;index" json:"owner_id"`
	Title         string         `gorm:"not null" json:"title"`
	Slug          string         `gorm:"index" json:"slug"`
	Description   string         `gorm:"type:text" json:"description"`
	Type          string         `gorm:"not null" json:"type"`
	Status        string         `gorm:"not null;default:'PENDING';index" json:"status"`
	Budget        int64          `json:"budget"`
	TimelineDays  int            `json:"timeline_days"`
	Technologies  datatypes.JSON `gorm:"type:jsonb" json:"technologies,omitempty"`
	Features      datatypes.JSON `gorm:"type:jsonb" json:"features,omitempty"`
	ProductionURL string         `json:"production_url,omitempty"`
	StartDate     *time.Time     `json:"start_date,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null" json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusDelivered  = "DELIVERED"
	StatusCancelled  = "CANCELLED"
)

type Task struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	ProjectID      snowflake.ID `gorm:"not null;index" json:"project_id"`
	Title          string       `gorm:"not null" json:"title"`
	Description    string       `gorm:"type:text" json:"description"`
	Priority       string       `gorm:"not null;default:'MEDIUM'" json:"priority"`
	Status         string       `gorm:"not null;default:'TODO'" json:"status"`
	EstimatedHours int          `json:"estimated_hours"`
	CreatedAt      time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"not null" json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }

const (
	TaskStatusTodo       = "TODO"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusDone       = "DONE"

	TaskPriorityLow    = "LOW"
	TaskPriorityMedium = "MEDIUM"
	TaskPriorityHigh   = "HIGH"
)

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusInProgress, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

func ValidTaskStatus(status string) bool {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}
