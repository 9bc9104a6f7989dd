package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/heysheet/heysheet/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, submission *Submission) error
	// CountForUserSince counts submissions across all of the user's forms
	// with created_at in [from, now). Quota checks recompute this range
	// query on every admission; there is no counter field.
	CountForUserSince(ctx context.Context, db *gorm.DB, userID string, from time.Time) (int64, error)
	ListByForm(ctx context.Context, db *gorm.DB, formID snowflake.ID, page pagination.Pagination) ([]*Submission, error)
	MarkCompleted(ctx context.Context, id snowflake.ID, sheetRow int64, results map[string]string) error
	MarkFailed(ctx context.Context, id snowflake.ID, results map[string]string) error
}
