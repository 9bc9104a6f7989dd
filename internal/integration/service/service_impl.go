package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/heysheet/heysheet/internal/integration/domain"
	"github.com/heysheet/heysheet/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	log  *zap.Logger
	repo repository.Repository[domain.Account]
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:  p.Log.Named("integration.service"),
		repo: repository.ProvideStore[domain.Account](p.DB),
	}
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Account, error) {
	if id == 0 {
		return nil, domain.ErrAccountNotFound
	}
	account, err := s.repo.FindOne(ctx, &domain.Account{ID: id})
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}
