package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/heysheet/heysheet/internal/clock"
	formdomain "github.com/heysheet/heysheet/internal/form/domain"
	"github.com/heysheet/heysheet/internal/observability/metrics"
	"github.com/heysheet/heysheet/internal/plan"
	"github.com/heysheet/heysheet/internal/ratelimit"
	"github.com/heysheet/heysheet/internal/sink"
	"github.com/heysheet/heysheet/internal/storage"
	"github.com/heysheet/heysheet/internal/submission/domain"
	subscriptiondomain "github.com/heysheet/heysheet/internal/subscription/domain"
	"github.com/heysheet/heysheet/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       domain.Repository
	FormSvc    formdomain.Service
	SubSvc     subscriptiondomain.Service
	Uploader   *storage.Uploader
	Dispatcher *sink.Dispatcher
	Limiter    *ratelimit.SubmitLimiter `optional:"true"`
	Metrics    *metrics.Metrics         `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	formSvc    formdomain.Service
	subSvc     subscriptiondomain.Service
	uploader   *storage.Uploader
	dispatcher *sink.Dispatcher
	limiter    *ratelimit.SubmitLimiter
	metrics    *metrics.Metrics

	// dispatchAsync is swapped out in tests to run the fan-out inline.
	dispatchAsync func(delivery sink.Delivery, limits plan.Limits)
}

func NewService(p ServiceParam) domain.Service {
	s := &Service{
		db:         p.DB,
		log:        p.Log.Named("submission.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		formSvc:    p.FormSvc,
		subSvc:     p.SubSvc,
		uploader:   p.Uploader,
		dispatcher: p.Dispatcher,
		limiter:    p.Limiter,
		metrics:    p.Metrics,
	}
	s.dispatchAsync = func(delivery sink.Delivery, limits plan.Limits) {
		// Detached from the request cycle so submitter latency is bounded
		// by persistence, not by downstream integrations.
		go s.dispatcher.Dispatch(context.Background(), delivery, limits)
	}
	return s
}

func (s *Service) Accept(ctx context.Context, req domain.AcceptRequest) (*domain.AcceptResponse, error) {
	form, err := s.formSvc.GetBySlug(ctx, req.Slug)
	if err != nil {
		s.recordSubmission("rejected_not_found")
		return nil, domain.ErrFormNotFound
	}
	if !form.Active {
		s.recordSubmission("rejected_not_found")
		return nil, domain.ErrFormNotFound
	}

	if !domainAllowed(form.AllowedDomains, req.Origin) {
		s.recordSubmission("rejected_domain")
		return nil, domain.ErrDomainNotAllowed
	}

	limits, err := s.admit(ctx, form)
	if err != nil {
		return nil, err
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, form.ID.String())
		if err != nil {
			// Limiter outages never block submissions.
			s.log.Warn("rate limiter unavailable", zap.Error(err))
		} else if !allowed {
			s.recordSubmission("rejected_rate_limited")
			return nil, domain.ErrRateLimited
		}
	}

	submissionID := s.genID.Generate()

	fields := req.Fields
	if len(req.Files) > 0 {
		urls, err := s.uploader.UploadAll(ctx, form, limits, submissionID, req.Files)
		if err != nil {
			s.recordSubmission("rejected_file_policy")
			return nil, err
		}
		// File fields join the field list in multipart order, their values
		// replaced by signed URLs.
		for _, file := range req.Files {
			fields = append(fields, sink.Field{Name: file.FieldName, Value: urls[file.FieldName]})
		}
	}

	now := s.clock.Now()
	record := &domain.Submission{
		ID:        submissionID,
		FormID:    form.ID,
		Fields:    fieldsJSON(fields),
		Analytics: datatypes.JSONMap(req.Analytics.ToMap()),
		UTM:       datatypes.JSONMap(req.UTM.ToMap()),
		Status:    domain.StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, record); err != nil {
		s.recordSubmission("persist_error")
		return nil, err
	}
	s.recordSubmission("accepted")

	s.dispatchAsync(sink.Delivery{
		Form:         form,
		SubmissionID: submissionID,
		Fields:       fields,
	}, limits)

	return &domain.AcceptResponse{
		ID:          submissionID,
		RedirectURL: form.RedirectURL,
	}, nil
}

// admit applies subscription and monthly-quota checks. The count is a point
// read with no locking, so concurrent submissions near the boundary can
// transiently overshoot the quota.
func (s *Service) admit(ctx context.Context, form *formdomain.Form) (plan.Limits, error) {
	sub, err := s.subSvc.GetByUser(ctx, form.UserID)
	if err != nil {
		return plan.Limits{}, err
	}
	limits := plan.LimitsFor(sub.Plan)

	now := s.clock.Now()

	// The free tier has no billing period and never expires.
	if sub.Plan != plan.TierFree {
		if sub.Status == subscriptiondomain.SubscriptionStatusCanceled ||
			(sub.CurrentPeriodEnd != nil && sub.CurrentPeriodEnd.Before(now)) {
			s.recordSubmission("rejected_expired")
			return plan.Limits{}, domain.ErrSubscriptionExpired
		}
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	count, err := s.repo.CountForUserSince(ctx, s.db, form.UserID, monthStart)
	if err != nil {
		return plan.Limits{}, err
	}
	if count >= limits.MaxMonthlySubmissions {
		s.recordSubmission("rejected_quota")
		return plan.Limits{}, domain.ErrLimitReached
	}

	return limits, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	form, err := s.formSvc.GetByID(ctx, req.FormID)
	if err != nil {
		return domain.ListResponse{}, domain.ErrFormNotFound
	}
	if form.UserID != req.UserID {
		return domain.ListResponse{}, domain.ErrNotOwner
	}

	page := req.Page
	if page.PageSize <= 0 {
		page.PageSize = 25
	}

	items, err := s.repo.ListByForm(ctx, s.db, req.FormID, page)
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, page.PageSize, func(record *domain.Submission) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        record.ID.String(),
			CreatedAt: record.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo.HasMore && len(items) > page.PageSize {
		items = items[:page.PageSize]
	}

	records := make([]domain.Submission, 0, len(items))
	for _, item := range items {
		records = append(records, *item)
	}

	return domain.ListResponse{
		PageInfo:    *pageInfo,
		Submissions: records,
	}, nil
}

func (s *Service) recordSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSubmission(outcome)
	}
}

func fieldsJSON(fields []sink.Field) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(fields))
	for _, field := range fields {
		out[field.Name] = field.Value
	}
	return out
}

// domainAllowed checks the request origin against the form's allow-list.
// An empty list allows every origin.
func domainAllowed(allowed []string, origin string) bool {
	if len(allowed) == 0 {
		return true
	}
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return false
	}
	host := origin
	if parsed, err := url.Parse(origin); err == nil && parsed.Host != "" {
		host = parsed.Host
	}
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	if idx := strings.Index(host, ":"); idx > 0 {
		host = host[:idx]
	}
	for _, candidate := range allowed {
		candidate = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(candidate), "www."))
		if candidate == host {
			return true
		}
	}
	return false
}
