package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	GetByID(ctx context.Context, id snowflake.ID) (*Account, error)
}

var ErrAccountNotFound = errors.New("integration_account_not_found")
