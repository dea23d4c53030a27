package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Contact struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"not null" json:"name"`
	Email       string       `gorm:"not null;uniqueIndex" json:"email"`
	Phone       string       `json:"phone,omitempty"`
	Company     string       `json:"company,omitempty"`
	Message     string       `gorm:"type:text" json:"message"`
	ProjectType string       `gorm:"not null" json:"project_type"`
	Budget      int64        `json:"budget"`
	Status      string       `gorm:"not null;default:'NEW';index" json:"status"`
	Source      string       `json:"source"`
	IPAddress   string       `json:"-"`
	UserAgent   string       `json:"-"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (Contact) TableName() string { return "contacts" }

const (
	StatusNew       = "NEW"
	StatusContacted = "CONTACTED"
	StatusQualified = "QUALIFIED"
	StatusWon       = "WON"
	StatusLost      = "LOST"
)
