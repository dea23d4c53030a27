package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sds-studio/sds/internal/project/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).Create(project).Error
}

func (r *repo) UpsertByContact(ctx context.Context, db *gorm.DB, project *domain.Project) (snowflake.ID, error) {
	var id snowflake.ID
	err := db.WithContext(ctx).Raw(
		`INSERT INTO projects (id, contact_id, owner_id, title, slug, description, type, status, budget, timeline_days, technologies, features, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (contact_id) DO UPDATE SET
		   budget = excluded.budget,
		   status = excluded.status,
		   updated_at = excluded.updated_at
		 RETURNING id`,
		project.ID,
		project.ContactID,
		project.OwnerID,
		project.Title,
		project.Slug,
		project.Description,
		project.Type,
		project.Status,
		project.Budget,
		project.TimelineDays,
		project.Technologies,
		project.Features,
		project.CreatedAt,
		project.UpdatedAt,
	).Scan(&id).Error
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Project, error) {
	var project domain.Project
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM projects WHERE id = ?`, id,
	).Scan(&project).Error
	if err != nil {
		return nil, err
	}
	if project.ID == 0 {
		return nil, nil
	}
	return &project, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListRequest) ([]domain.Project, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Project{})
	if req.PublicOnly {
		stmt = stmt.Where("status = ?", domain.StatusDelivered)
	} else if req.Status != "" {
		stmt = stmt.Where("status = ?", req.Status)
	}
	if req.Type != "" {
		stmt = stmt.Where("type = ?", req.Type)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	var projects []domain.Project
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit).
		Offset(req.Offset).
		Find(&projects).Error
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).Save(project).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM tasks WHERE project_id = ?`, id).Error; err != nil {
			return err
		}
		res := tx.Exec(`DELETE FROM projects WHERE id = ?`, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *repo) InsertTasks(ctx context.Context, db *gorm.DB, tasks []domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&tasks).Error
}

func (r *repo) ListTasks(ctx context.Context, db *gorm.DB, projectID snowflake.ID) ([]domain.Task, error) {
	var tasks []domain.Task
	err := db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at asc").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *repo) FindTask(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Task, error) {
	var task domain.Task
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM tasks WHERE id = ?`, id,
	).Scan(&task).Error
	if err != nil {
		return nil, err
	}
	if task.ID == 0 {
		return nil, nil
	}
	return &task, nil
}

func (r *repo) UpdateTask(ctx context.Context, db *gorm.DB, task *domain.Task) error {
	return db.WithContext(ctx).Save(task).Error
}
