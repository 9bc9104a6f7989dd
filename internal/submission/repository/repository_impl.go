package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/heysheet/heysheet/internal/submission/domain"
	"github.com/heysheet/heysheet/pkg/db/option"
	"github.com/heysheet/heysheet/pkg/db/pagination"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, submission *domain.Submission) error {
	return db.WithContext(ctx).Create(submission).Error
}

func (r *repo) CountForUserSince(ctx context.Context, db *gorm.DB, userID string, from time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Submission{}).
		Where("form_id IN (?)",
			db.Table("forms").Select("id").Where("user_id = ?", userID),
		).
		Where("created_at >= ?", from).
		Count(&count).Error
	return count, err
}

func (r *repo) ListByForm(ctx context.Context, db *gorm.DB, formID snowflake.ID, page pagination.Pagination) ([]*domain.Submission, error) {
	var submissions []*domain.Submission
	stmt := db.WithContext(ctx).
		Model(&domain.Submission{}).
		Where("form_id = ?", formID)
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&submissions).Error
	return submissions, err
}

func (r *repo) MarkCompleted(ctx context.Context, id snowflake.ID, sheetRow int64, results map[string]string) error {
	updates := map[string]any{
		"status":       domain.StatusCompleted,
		"sink_results": resultsJSON(results),
		"updated_at":   time.Now().UTC(),
	}
	if sheetRow > 0 {
		updates["sheet_row_number"] = sheetRow
	}
	return r.transition(ctx, id, updates)
}

func (r *repo) MarkFailed(ctx context.Context, id snowflake.ID, results map[string]string) error {
	return r.transition(ctx, id, map[string]any{
		"status":       domain.StatusFailed,
		"sink_results": resultsJSON(results),
		"updated_at":   time.Now().UTC(),
	})
}

// transition guards the state machine: only processing rows move, so a
// terminal status can never be overwritten.
func (r *repo) transition(ctx context.Context, id snowflake.ID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&domain.Submission{}).
		Where("id = ? AND status = ?", id, domain.StatusProcessing).
		Updates(updates).Error
}

func resultsJSON(results map[string]string) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(results))
	for sink, outcome := range results {
		out[sink] = outcome
	}
	return out
}
