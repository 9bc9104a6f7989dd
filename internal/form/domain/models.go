// Package domain contains persistence models and contracts for forms.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Form owns the routing configuration for one endpoint. Forms are never
// hard-deleted; deactivation clears Active.
type Form struct {
	ID     snowflake.ID `gorm:"primaryKey"`
	UserID string       `gorm:"type:text;not null;index"`
	Title  string       `gorm:"type:text;not null"`
	Slug   string       `gorm:"type:text;not null;uniqueIndex"`

	SpreadsheetID   string        `gorm:"type:text"`
	SheetTitle      string        `gorm:"type:text"`
	GoogleAccountID *snowflake.ID `gorm:""`

	NotionEnabled    bool          `gorm:"not null;default:false"`
	NotionDatabaseID string        `gorm:"type:text"`
	NotionAccountID  *snowflake.ID `gorm:""`

	SlackEnabled   bool          `gorm:"not null;default:false"`
	SlackChannel   string        `gorm:"type:text"`
	SlackAccountID *snowflake.ID `gorm:""`

	EmailEnabled      bool   `gorm:"not null;default:false"`
	NotificationEmail string `gorm:"type:text"`

	UploadsEnabled   bool                        `gorm:"not null;default:false"`
	MaxFiles         int                         `gorm:"not null;default:0"`
	AllowedMimeTypes datatypes.JSONSlice[string] `gorm:"type:jsonb"`

	RedirectURL    string                      `gorm:"type:text"`
	AllowedDomains datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Active         bool                        `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Form) TableName() string { return "forms" }

// SheetTab returns the configured tab title, defaulting to the form title.
func (f *Form) SheetTab() string {
	if f.SheetTitle != "" {
		return f.SheetTitle
	}
	return f.Title
}
