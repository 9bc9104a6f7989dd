package domain

import (
	"context"
	"errors"
)

type Service interface {
	// GetByUser returns the user's subscription. Users without a row are on
	// the implicit free plan and get a synthetic free subscription back.
	GetByUser(ctx context.Context, userID string) (*Subscription, error)
}

var ErrInvalidUser = errors.New("invalid_user")
