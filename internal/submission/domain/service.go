package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/heysheet/heysheet/internal/analytics"
	"github.com/heysheet/heysheet/internal/sink"
	"github.com/heysheet/heysheet/internal/storage"
	"github.com/heysheet/heysheet/pkg/db/pagination"
)

// AcceptRequest is everything the submit endpoint extracted from the
// request. Field order follows the multipart body.
type AcceptRequest struct {
	Slug      string
	Origin    string
	Fields    []sink.Field
	Files     []storage.File
	Analytics analytics.Record
	UTM       analytics.UTM
}

// AcceptResponse is returned to the submitter before fan-out runs.
type AcceptResponse struct {
	ID          snowflake.ID
	RedirectURL string
}

type ListRequest struct {
	FormID snowflake.ID
	UserID string
	Page   pagination.Pagination
}

type ListResponse struct {
	pagination.PageInfo
	Submissions []Submission `json:"submissions"`
}

type Service interface {
	// Accept runs the synchronous submission path: admission, uploads,
	// enrichment, persistence. Fan-out happens after it returns.
	Accept(ctx context.Context, req AcceptRequest) (*AcceptResponse, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrFormNotFound        = errors.New("form_not_found")
	ErrDomainNotAllowed    = errors.New("domain_not_allowed")
	ErrSubscriptionExpired = errors.New("subscription_expired")
	ErrLimitReached        = errors.New("limit_reached")
	ErrRateLimited         = errors.New("rate_limited")
	ErrNotOwner            = errors.New("form_not_owned")
)
