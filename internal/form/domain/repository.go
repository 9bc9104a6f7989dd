package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, form *Form) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Form, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Form, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID string) ([]*Form, error)
	CountByUser(ctx context.Context, db *gorm.DB, userID string) (int64, error)
	Update(ctx context.Context, db *gorm.DB, form *Form) error
}
