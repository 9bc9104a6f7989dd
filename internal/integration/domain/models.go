// Package domain contains persistence models for linked third-party
// accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderNotion Provider = "notion"
	ProviderSlack  Provider = "slack"
)

// Account holds the credentials a sink adapter needs to call a provider on
// the owner's behalf. Tokens are written by the OAuth callback handlers,
// which live outside this service.
type Account struct {
	ID           snowflake.ID      `gorm:"primaryKey"`
	UserID       string            `gorm:"type:text;not null;index"`
	Provider     Provider          `gorm:"type:text;not null;index"`
	AccessToken  string            `gorm:"type:text;not null"`
	RefreshToken *string           `gorm:"type:text"`
	TokenExpiry  *time.Time        `gorm:""`
	Workspace    datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "integration_accounts" }
