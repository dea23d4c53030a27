package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/sds-studio/sds/internal/catalog"
	"github.com/sds-studio/sds/internal/project/domain"
	"github.com/sds-studio/sds/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:   p.Log.Named("project.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Project, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.ErrInvalidTitle
	}
	if req.ContactID == 0 {
		return nil, domain.ErrInvalidContact
	}
	if req.OwnerID == 0 {
		return nil, domain.ErrInvalidOwner
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:           s.genID.Generate(),
		ContactID:    req.ContactID,
		OwnerID:      req.OwnerID,
		Title:        title,
		Slug:         slug.Make(title),
		Description:  strings.TrimSpace(req.Description),
		Type:         req.Type,
		Status:       domain.StatusPending,
		Budget:       req.Budget,
		TimelineDays: req.TimelineDays,
		Technologies: toJSON(req.Technologies),
		Features:     toJSON(req.Features),
		StartDate:    &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &project); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrContactHasOwner
			}
			return err
		}
		return s.repo.InsertTasks(ctx, tx, s.defaultTasks(project.ID, project.Type, now))
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *Service) UpsertFromPayment(ctx context.Context, req domain.UpsertFromPaymentRequest) (*domain.Project, error) {
	if req.ContactID == 0 {
		return nil, domain.ErrInvalidContact
	}
	if req.OwnerID == 0 {
		return nil, domain.ErrInvalidOwner
	}

	pkg, _ := catalog.Lookup(req.PackageID)
	packageName := req.PackageName
	if packageName == "" {
		packageName = pkg.Name
	}

	title := fmt.Sprintf("Projet %s - %s", packageName, req.ClientName)
	now := time.Now().UTC()
	project := domain.Project{
		ID:           s.genID.Generate(),
		ContactID:    req.ContactID,
		OwnerID:      req.OwnerID,
		Title:        title,
		Slug:         slug.Make(title),
		Description:  fmt.Sprintf("Projet %s commande et paye en ligne. Reference: %s", packageName, req.ChargeRef),
		Type:         pkg.ProjectType,
		Status:       domain.StatusPending,
		Budget:       req.Budget,
		TimelineDays: catalog.TimelineDays(req.PackageID),
		Technologies: toJSON(pkg.Technologies),
		Features:     toJSON(pkg.Features),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	id, err := s.repo.UpsertByContact(ctx, s.db, &project)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, s.db, id)
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Project, error) {
	project, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}
	return project, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Project, int64, error) {
	if req.Status != "" && !domain.ValidStatus(req.Status) {
		return nil, 0, domain.ErrInvalidStatus
	}
	return s.repo.List(ctx, s.db, req)
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req domain.UpdateRequest) (*domain.Project, error) {
	project, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, domain.ErrNotFound
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		project.Title = strings.TrimSpace(*req.Title)
		project.Slug = slug.Make(project.Title)
	}
	if req.Description != nil {
		project.Description = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		if !domain.ValidStatus(*req.Status) {
			return nil, domain.ErrInvalidStatus
		}
		project.Status = *req.Status
	}
	if req.Budget != nil {
		project.Budget = *req.Budget
	}
	if req.TimelineDays != nil {
		project.TimelineDays = *req.TimelineDays
	}
	if req.ProductionURL != nil {
		project.ProductionURL = strings.TrimSpace(*req.ProductionURL)
	}
	project.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) ListTasks(ctx context.Context, projectID snowflake.ID) ([]domain.Task, error) {
	return s.repo.ListTasks(ctx, s.db, projectID)
}

func (s *Service) UpdateTask(ctx context.Context, taskID snowflake.ID, req domain.UpdateTaskRequest) (*domain.Task, error) {
	task, err := s.repo.FindTask(ctx, s.db, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}

	if req.Status != nil {
		if !domain.ValidTaskStatus(*req.Status) {
			return nil, domain.ErrInvalidStatus
		}
		task.Status = *req.Status
	}
	if req.EstimatedHours != nil && *req.EstimatedHours >= 0 {
		task.EstimatedHours = *req.EstimatedHours
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateTask(ctx, s.db, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) defaultTasks(projectID snowflake.ID, projectType string, now time.Time) []domain.Task {
	devHours := 16
	if projectType == catalog.ProjectTypeEcommerce {
		devHours = 24
	}

	specs := []struct {
		title       string
		description string
		priority    string
		hours       int
	}{
		{"Analyse des besoins", "Definir les specifications fonctionnelles et techniques", domain.TaskPriorityHigh, 4},
		{"Design et maquettes", "Creer les maquettes et definir l'identite visuelle", domain.TaskPriorityHigh, 8},
		{"Developpement", "Developpement des fonctionnalites", domain.TaskPriorityHigh, devHours},
		{"Tests et optimisations", "Tests fonctionnels et optimisation des performances", domain.TaskPriorityMedium, 4},
		{"Mise en ligne", "Deploiement et configuration du domaine", domain.TaskPriorityMedium, 2},
	}

	tasks := make([]domain.Task, 0, len(specs))
	for _, spec := range specs {
		tasks = append(tasks, domain.Task{
			ID:             s.genID.Generate(),
			ProjectID:      projectID,
			Title:          spec.title,
			Description:    spec.description,
			Priority:       spec.priority,
			Status:         domain.TaskStatusTodo,
			EstimatedHours: spec.hours,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}
	return tasks
}

func toJSON(values []string) datatypes.JSON {
	if len(values) == 0 {
		return datatypes.JSON("[]")
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}
