// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type User struct {
	ID                  snowflake.ID `gorm:"primaryKey" json:"id"`
	Name                string       `gorm:"not null" json:"name"`
	Email               string       `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash        *string      `gorm:"type:text" json:"-"`
	Role                string       `gorm:"not null;default:'VIEWER';index" json:"role"`
	LastPasswordChanged *time.Time   `json:"-"`
	CreatedAt           time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time    `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

const (
	RoleAdmin  = "ADMIN"
	RoleEditor = "EDITOR"
	RoleViewer = "VIEWER"
)

func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	default:
		return false
	}
}

// Session is a persisted login. Only the SHA-256 of the opaque token is
// stored; the raw value lives in the client cookie.
type Session struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	UserID           snowflake.ID `gorm:"not null;index"`
	SessionTokenHash string       `gorm:"type:text;not null;uniqueIndex"`
	UserAgent        string       `gorm:"type:text"`
	IPAddress        string       `gorm:"type:text"`
	ExpiresAt        time.Time    `gorm:"not null;index"`
	RevokedAt        *time.Time
	CreatedAt        time.Time `gorm:"not null"`
	LastSeenAt       time.Time `gorm:"not null"`
}

func (Session) TableName() string { return "sessions" }
