package service

import (
	"context"
	"strings"

	"github.com/heysheet/heysheet/internal/plan"
	"github.com/heysheet/heysheet/internal/subscription/domain"
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
	repo repository.Repository[domain.Subscription]
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		log:  p.Log.Named("subscription.service"),
		repo: repository.ProvideStore[domain.Subscription](p.DB),
	}
}

func (s *Service) GetByUser(ctx context.Context, userID string) (*domain.Subscription, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidUser
	}

	sub, err := s.repo.FindOne(ctx, &domain.Subscription{UserID: userID})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		// No billing record means the user never upgraded.
		return &domain.Subscription{
			UserID: userID,
			Plan:   plan.TierFree,
			Status: domain.SubscriptionStatusActive,
		}, nil
	}
	return sub, nil
}
