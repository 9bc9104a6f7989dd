package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/heysheet/heysheet/internal/form/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, form *domain.Form) error {
	return db.WithContext(ctx).Create(form).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Form, error) {
	var form domain.Form
	err := db.WithContext(ctx).Where("id = ?", id).First(&form).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &form, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Form, error) {
	var form domain.Form
	err := db.WithContext(ctx).Where("slug = ?", slug).First(&form).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &form, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID string) ([]*domain.Form, error) {
	var forms []*domain.Form
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&forms).Error
	return forms, err
}

func (r *repo) CountByUser(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Form{}).
		Where("user_id = ? AND active = ?", userID, true).
		Count(&count).Error
	return count, err
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, form *domain.Form) error {
	return db.WithContext(ctx).Save(form).Error
}
