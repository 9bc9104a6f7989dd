package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/heysheet/heysheet/internal/clock"
	formdomain "github.com/heysheet/heysheet/internal/form/domain"
	"github.com/heysheet/heysheet/internal/plan"
	"github.com/heysheet/heysheet/internal/sink"
	"github.com/heysheet/heysheet/internal/storage"
	"github.com/heysheet/heysheet/internal/submission/domain"
	"github.com/heysheet/heysheet/internal/submission/repository"
	subscriptiondomain "github.com/heysheet/heysheet/internal/subscription/domain"
	"github.com/heysheet/heysheet/pkg/db"
	"github.com/heysheet/heysheet/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type formStub struct {
	form *formdomain.Form
	err  error
}

func (s *formStub) Create(ctx context.Context, req formdomain.CreateFormRequest) (*formdomain.Form, error) {
	return nil, s.err
}

func (s *formStub) GetByID(ctx context.Context, id snowflake.ID) (*formdomain.Form, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.form, nil
}

func (s *formStub) GetBySlug(ctx context.Context, slug string) (*formdomain.Form, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.form, nil
}

func (s *formStub) ListByUser(ctx context.Context, userID string) ([]*formdomain.Form, error) {
	return nil, s.err
}

func (s *formStub) Update(ctx context.Context, id snowflake.ID, userID string, req formdomain.UpdateFormRequest) (*formdomain.Form, error) {
	return nil, s.err
}

func (s *formStub) Deactivate(ctx context.Context, id snowflake.ID, userID string) error {
	return s.err
}

type subscriptionStub struct {
	sub *subscriptiondomain.Subscription
	err error
}

func (s *subscriptionStub) GetByUser(ctx context.Context, userID string) (*subscriptiondomain.Subscription, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sub, nil
}

type fixture struct {
	svc        *Service
	conn       *gorm.DB
	node       *snowflake.Node
	clk        *clock.FakeClock
	forms      *formStub
	subs       *subscriptionStub
	dispatched []sink.Delivery
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Submission{}, &formdomain.Form{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC))

	forms := &formStub{}
	subs := &subscriptionStub{
		sub: &subscriptiondomain.Subscription{
			UserID: "user-1",
			Plan:   plan.TierFree,
			Status: subscriptiondomain.SubscriptionStatusActive,
		},
	}

	f := &fixture{
		conn:  conn,
		node:  node,
		clk:   clk,
		forms: forms,
		subs:  subs,
	}

	svc := NewService(ServiceParam{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    clk,
		Repo:     repository.Provide(conn),
		FormSvc:  forms,
		SubSvc:   subs,
		Uploader: storage.NewUploader(zap.NewNop(), nil, nil),
	}).(*Service)
	svc.dispatchAsync = func(delivery sink.Delivery, limits plan.Limits) {
		f.dispatched = append(f.dispatched, delivery)
	}
	f.svc = svc
	return f
}

func (f *fixture) activeForm(t *testing.T) *formdomain.Form {
	t.Helper()
	form := &formdomain.Form{
		ID:     f.node.Generate(),
		UserID: "user-1",
		Title:  "Contact",
		Slug:   "contact",
		Active: true,
	}
	require.NoError(t, f.conn.Create(form).Error)
	f.forms.form = form
	return form
}

func (f *fixture) seedSubmissions(t *testing.T, form *formdomain.Form, n int, createdAt time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, f.conn.Create(&domain.Submission{
			ID:        f.node.Generate(),
			FormID:    form.ID,
			Status:    domain.StatusCompleted,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}).Error)
	}
}

func paginationPage(size int, token string) pagination.Pagination {
	return pagination.Pagination{PageSize: size, PageToken: token}
}

func acceptReq(fields ...sink.Field) domain.AcceptRequest {
	return domain.AcceptRequest{
		Slug:   "contact",
		Fields: fields,
	}
}

func TestAcceptPersistsProcessingAndDispatches(t *testing.T) {
	f := newFixture(t)
	form := f.activeForm(t)
	form.RedirectURL = "https://example.com/thanks"

	resp, err := f.svc.Accept(context.Background(), acceptReq(
		sink.Field{Name: "Name", Value: "Ada"},
		sink.Field{Name: "Email", Value: "ada@example.com"},
	))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/thanks", resp.RedirectURL)

	var record domain.Submission
	require.NoError(t, f.conn.First(&record, "id = ?", resp.ID).Error)
	assert.Equal(t, domain.StatusProcessing, record.Status)
	assert.Equal(t, "Ada", record.Fields["Name"])

	require.Len(t, f.dispatched, 1)
	assert.Equal(t, resp.ID, f.dispatched[0].SubmissionID)
	assert.Equal(t, []sink.Field{
		{Name: "Name", Value: "Ada"},
		{Name: "Email", Value: "ada@example.com"},
	}, f.dispatched[0].Fields)
}

func TestAcceptRejectsUnknownOrInactiveForm(t *testing.T) {
	f := newFixture(t)
	f.forms.err = formdomain.ErrFormNotFound

	_, err := f.svc.Accept(context.Background(), acceptReq())
	assert.ErrorIs(t, err, domain.ErrFormNotFound)

	f.forms.err = nil
	form := f.activeForm(t)
	form.Active = false

	_, err = f.svc.Accept(context.Background(), acceptReq())
	assert.ErrorIs(t, err, domain.ErrFormNotFound)
	assert.Empty(t, f.dispatched)
}

func TestAcceptFreePlanNeverExpires(t *testing.T) {
	f := newFixture(t)
	f.activeForm(t)

	// A stale period end on a free subscription is meaningless.
	pastEnd := f.clk.Now().Add(-90 * 24 * time.Hour)
	f.subs.sub.CurrentPeriodEnd = &pastEnd
	f.subs.sub.Status = subscriptiondomain.SubscriptionStatusPastDue

	_, err := f.svc.Accept(context.Background(), acceptReq(sink.Field{Name: "a", Value: "b"}))
	assert.NoError(t, err)
}

func TestAcceptPaidPlanExpiryBlocksSubmissions(t *testing.T) {
	f := newFixture(t)
	f.activeForm(t)

	pastEnd := f.clk.Now().Add(-time.Hour)
	f.subs.sub.Plan = plan.TierStarter
	f.subs.sub.CurrentPeriodEnd = &pastEnd

	_, err := f.svc.Accept(context.Background(), acceptReq())
	assert.ErrorIs(t, err, domain.ErrSubscriptionExpired)

	// Same subscription before the period end is fine.
	futureEnd := f.clk.Now().Add(time.Hour)
	f.subs.sub.CurrentPeriodEnd = &futureEnd

	_, err = f.svc.Accept(context.Background(), acceptReq())
	assert.NoError(t, err)
}

func TestAcceptCanceledPaidPlanBlocksSubmissions(t *testing.T) {
	f := newFixture(t)
	f.activeForm(t)

	f.subs.sub.Plan = plan.TierStarter
	f.subs.sub.Status = subscriptiondomain.SubscriptionStatusCanceled

	_, err := f.svc.Accept(context.Background(), acceptReq())
	assert.ErrorIs(t, err, domain.ErrSubscriptionExpired)
}

func TestAcceptMonthlyQuota(t *testing.T) {
	f := newFixture(t)
	form := f.activeForm(t)

	// Free tier allows 100 per calendar month. 99 used: one more fits.
	f.seedSubmissions(t, form, 99, f.clk.Now().Add(-24*time.Hour))

	_, err := f.svc.Accept(context.Background(), acceptReq(sink.Field{Name: "a", Value: "1"}))
	require.NoError(t, err)

	_, err = f.svc.Accept(context.Background(), acceptReq(sink.Field{Name: "a", Value: "2"}))
	assert.ErrorIs(t, err, domain.ErrLimitReached)
}

func TestAcceptQuotaResetsAtMonthBoundary(t *testing.T) {
	f := newFixture(t)
	form := f.activeForm(t)

	// Fill May completely; the clock sits in mid June, so the May rows are
	// outside the current window.
	may := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	f.seedSubmissions(t, form, 100, may)

	_, err := f.svc.Accept(context.Background(), acceptReq(sink.Field{Name: "a", Value: "1"}))
	assert.NoError(t, err)
}

func TestAcceptQuotaCountsAcrossUserForms(t *testing.T) {
	f := newFixture(t)
	form := f.activeForm(t)

	other := &formdomain.Form{
		ID:     f.node.Generate(),
		UserID: "user-1",
		Title:  "Other",
		Slug:   "other",
		Active: true,
	}
	require.NoError(t, f.conn.Create(other).Error)
	f.seedSubmissions(t, other, 100, f.clk.Now().Add(-time.Hour))

	f.forms.form = form
	_, err := f.svc.Accept(context.Background(), acceptReq())
	assert.ErrorIs(t, err, domain.ErrLimitReached)
}

func TestAcceptDomainAllowList(t *testing.T) {
	f := newFixture(t)
	form := f.activeForm(t)
	form.AllowedDomains = []string{"example.com"}

	req := acceptReq(sink.Field{Name: "a", Value: "1"})
	req.Origin = "https://evil.test"
	_, err := f.svc.Accept(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrDomainNotAllowed)

	req.Origin = "https://www.example.com"
	_, err = f.svc.Accept(context.Background(), req)
	assert.NoError(t, err)

	// No Origin header at all is rejected when an allow-list exists.
	req.Origin = ""
	_, err = f.svc.Accept(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrDomainNotAllowed)
}

func TestDomainAllowed(t *testing.T) {
	assert.True(t, domainAllowed(nil, ""))
	assert.True(t, domainAllowed(nil, "https://anywhere.test"))
	assert.True(t, domainAllowed([]string{"example.com"}, "https://example.com"))
	assert.True(t, domainAllowed([]string{"example.com"}, "https://example.com:3000"))
	assert.True(t, domainAllowed([]string{"www.example.com"}, "https://example.com"))
	assert.False(t, domainAllowed([]string{"example.com"}, "https://sub.example.com"))
	assert.False(t, domainAllowed([]string{"example.com"}, ""))
}

func TestListRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	form := f.activeForm(t)

	_, err := f.svc.List(context.Background(), domain.ListRequest{
		FormID: form.ID,
		UserID: "someone-else",
	})
	assert.ErrorIs(t, err, domain.ErrNotOwner)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	f := newFixture(t)
	form := f.activeForm(t)

	base := f.clk.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, f.conn.Create(&domain.Submission{
			ID:        f.node.Generate(),
			FormID:    form.ID,
			Status:    domain.StatusCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	first, err := f.svc.List(context.Background(), domain.ListRequest{
		FormID: form.ID,
		UserID: "user-1",
		Page:   paginationPage(2, ""),
	})
	require.NoError(t, err)
	require.Len(t, first.Submissions, 2)
	assert.True(t, first.HasMore)
	assert.True(t, first.Submissions[0].CreatedAt.After(first.Submissions[1].CreatedAt))

	second, err := f.svc.List(context.Background(), domain.ListRequest{
		FormID: form.ID,
		UserID: "user-1",
		Page:   paginationPage(2, first.NextPageToken),
	})
	require.NoError(t, err)
	require.Len(t, second.Submissions, 2)
	assert.True(t, first.Submissions[1].CreatedAt.After(second.Submissions[0].CreatedAt))
}
