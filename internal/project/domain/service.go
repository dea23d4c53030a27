package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateRequest struct {
	Title        string
	Description  string
	Type         string
	ContactID    snowflake.ID
	OwnerID      snowflake.ID
	Budget       int64
	TimelineDays int
	Technologies []string
	Features     []string
}

type UpdateRequest struct {
	Title         *string
	Description   *string
	Status        *string
	Budget        *int64
	TimelineDays  *int
	ProductionURL *string
}

// UpsertFromPaymentRequest carries what the webhook fulfilment flow knows
// about a confirmed order.
type UpsertFromPaymentRequest struct {
	ContactID   snowflake.ID
	OwnerID     snowflake.ID
	PackageID   string
	PackageName string
	ClientName  string
	ChargeRef   string
	Budget      int64
}

type UpdateTaskRequest struct {
	Status         *string
	EstimatedHours *int
}

type ListRequest struct {
	Status     string
	Type       string
	PublicOnly bool
	Limit      int
	Offset     int
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Project, error)
	// UpsertFromPayment creates the project for a contact's first confirmed
	// payment or refreshes budget and status on redelivery. One atomic
	// statement keyed on the unique contact id.
	UpsertFromPayment(ctx context.Context, req UpsertFromPaymentRequest) (*Project, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Project, error)
	List(ctx context.Context, req ListRequest) ([]Project, int64, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateRequest) (*Project, error)
	Delete(ctx context.Context, id snowflake.ID) error

	ListTasks(ctx context.Context, projectID snowflake.ID) ([]Task, error)
	UpdateTask(ctx context.Context, taskID snowflake.ID, req UpdateTaskRequest) (*Task, error)
}

var (
	ErrNotFound        = errors.New("project_not_found")
	ErrTaskNotFound    = errors.New("task_not_found")
	ErrInvalidContact  = errors.New("invalid_contact")
	ErrInvalidOwner    = errors.New("invalid_owner")
	ErrInvalidTitle    = errors.New("invalid_title")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrContactHasOwner = errors.New("contact_already_has_project")
)
