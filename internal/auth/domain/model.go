// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// User represents a dashboard user account.
type User struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	Email        string            `gorm:"not null;uniqueIndex" json:"email"`
	DisplayName  string            `gorm:"column:display_name" json:"display_name,omitempty"`
	PasswordHash *string           `gorm:"type:text" json:"-"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session is a server-side login session. Only a hash of the raw token
// is stored.
type Session struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	UserID    snowflake.ID `gorm:"not null;index"`
	TokenHash string       `gorm:"not null;uniqueIndex"`
	UserAgent string       `gorm:"column:user_agent"`
	IPAddress string       `gorm:"column:ip_address"`
	ExpiresAt time.Time    `gorm:"not null"`
	RevokedAt *time.Time   `gorm:""`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

func (s Session) Revoked() bool {
	return s.RevokedAt != nil
}
