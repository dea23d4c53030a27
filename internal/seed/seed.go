package seed

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/sds-studio/sds/internal/auth/domain"
	"github.com/sds-studio/sds/internal/auth/password"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@sds.studio"
	defaultAdminPassword = "changeme1"
	defaultAdminName     = "SDS Admin"
)

// EnsureAdmin seeds the bootstrap ADMIN account so a fresh install can
// log into the admin area. Credentials come from ADMIN_EMAIL and
// ADMIN_PASSWORD, falling back to known defaults for local use.
func EnsureAdmin(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL")))
	if email == "" {
		email = defaultAdminEmail
	}
	pass := os.Getenv("ADMIN_PASSWORD")
	if pass == "" {
		pass = defaultAdminPassword
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).
			Model(&authdomain.User{}).
			Where("role = ?", authdomain.RoleAdmin).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hashed, err := password.Hash(pass)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		user := authdomain.User{
			ID:           node.Generate(),
			Name:         defaultAdminName,
			Email:        email,
			PasswordHash: &hashed,
			Role:         authdomain.RoleAdmin,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.WithContext(ctx).Create(&user).Error
	})
}
