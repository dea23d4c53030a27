package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/sds-studio/sds/internal/contact/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertLead(ctx context.Context, db *gorm.DB, contact *domain.Contact) error {
	var id snowflake.ID
	err := db.WithContext(ctx).Raw(
		`INSERT INTO contacts (id, name, email, phone, company, message, project_type, budget, status, source, ip_address, user_agent, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (email) DO UPDATE SET
		   phone = excluded.phone,
		   message = excluded.message,
		   updated_at = excluded.updated_at
		 RETURNING id`,
		contact.ID,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Company,
		contact.Message,
		contact.ProjectType,
		contact.Budget,
		contact.Status,
		contact.Source,
		contact.IPAddress,
		contact.UserAgent,
		contact.CreatedAt,
		contact.UpdatedAt,
	).Scan(&id).Error
	if err != nil {
		return err
	}
	contact.ID = id
	return nil
}

func (r *repo) UpsertWon(ctx context.Context, db *gorm.DB, contact *domain.Contact) (snowflake.ID, error) {
	var id snowflake.ID
	err := db.WithContext(ctx).Raw(
		`INSERT INTO contacts (id, name, email, phone, company, message, project_type, budget, status, source, ip_address, user_agent, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (email) DO UPDATE SET
		   name = CASE WHEN excluded.name <> '' THEN excluded.name ELSE contacts.name END,
		   status = ?,
		   budget = excluded.budget,
		   updated_at = excluded.updated_at
		 RETURNING id`,
		contact.ID,
		contact.Name,
		contact.Email,
		contact.Phone,
		contact.Company,
		contact.Message,
		contact.ProjectType,
		contact.Budget,
		domain.StatusWon,
		contact.Source,
		contact.IPAddress,
		contact.UserAgent,
		contact.CreatedAt,
		contact.UpdatedAt,
		domain.StatusWon,
	).Scan(&id).Error
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Contact, error) {
	var contact domain.Contact
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM contacts WHERE id = ?`, id,
	).Scan(&contact).Error
	if err != nil {
		return nil, err
	}
	if contact.ID == 0 {
		return nil, nil
	}
	return &contact, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListRequest) ([]domain.Contact, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Contact{})
	if req.Status != "" {
		stmt = stmt.Where("status = ?", req.Status)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}

	var contacts []domain.Contact
	err := stmt.
		Order("created_at desc, id desc").
		Limit(limit).
		Offset(req.Offset).
		Find(&contacts).Error
	if err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string) error {
	res := db.WithContext(ctx).Exec(
		`UPDATE contacts SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
