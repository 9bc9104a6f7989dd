package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateFormRequest struct {
	UserID           string   `json:"-"`
	Title            string   `json:"title"`
	Slug             string   `json:"slug"`
	SpreadsheetID    string   `json:"spreadsheet_id"`
	SheetTitle       string   `json:"sheet_title"`
	GoogleAccountID  string   `json:"google_account_id"`
	NotionEnabled    bool     `json:"notion_enabled"`
	NotionDatabaseID string   `json:"notion_database_id"`
	NotionAccountID  string   `json:"notion_account_id"`
	SlackEnabled     bool     `json:"slack_enabled"`
	SlackChannel     string   `json:"slack_channel"`
	SlackAccountID   string   `json:"slack_account_id"`
	EmailEnabled     bool     `json:"email_enabled"`
	NotificationEmail string  `json:"notification_email"`
	UploadsEnabled   bool     `json:"uploads_enabled"`
	MaxFiles         int      `json:"max_files"`
	AllowedMimeTypes []string `json:"allowed_mime_types"`
	RedirectURL      string   `json:"redirect_url"`
	AllowedDomains   []string `json:"allowed_domains"`
}

type UpdateFormRequest struct {
	Title             *string   `json:"title"`
	SpreadsheetID     *string   `json:"spreadsheet_id"`
	SheetTitle        *string   `json:"sheet_title"`
	NotionEnabled     *bool     `json:"notion_enabled"`
	NotionDatabaseID  *string   `json:"notion_database_id"`
	SlackEnabled      *bool     `json:"slack_enabled"`
	SlackChannel      *string   `json:"slack_channel"`
	EmailEnabled      *bool     `json:"email_enabled"`
	NotificationEmail *string   `json:"notification_email"`
	UploadsEnabled    *bool     `json:"uploads_enabled"`
	MaxFiles          *int      `json:"max_files"`
	AllowedMimeTypes  *[]string `json:"allowed_mime_types"`
	RedirectURL       *string   `json:"redirect_url"`
	AllowedDomains    *[]string `json:"allowed_domains"`
}

type Service interface {
	Create(ctx context.Context, req CreateFormRequest) (*Form, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Form, error)
	GetBySlug(ctx context.Context, slug string) (*Form, error)
	ListByUser(ctx context.Context, userID string) ([]*Form, error)
	Update(ctx context.Context, id snowflake.ID, userID string, req UpdateFormRequest) (*Form, error)
	Deactivate(ctx context.Context, id snowflake.ID, userID string) error
}

var (
	ErrFormNotFound   = errors.New("form_not_found")
	ErrInvalidTitle   = errors.New("invalid_title")
	ErrInvalidSlug    = errors.New("invalid_slug")
	ErrSlugTaken      = errors.New("slug_taken")
	ErrFormLimit      = errors.New("form_limit_reached")
	ErrNotOwner       = errors.New("form_not_owned")
)
