package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	formdomain "github.com/heysheet/heysheet/internal/form/domain"
	"github.com/heysheet/heysheet/internal/plan"
	emailprovider "github.com/heysheet/heysheet/internal/providers/email"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type appenderStub struct {
	row   int64
	err   error
	calls int
}

func (a *appenderStub) Append(ctx context.Context, d Delivery) (int64, error) {
	a.calls++
	if a.err != nil {
		return 0, a.err
	}
	return a.row, nil
}

type sinkStub struct {
	name  string
	err   error
	calls int
}

func (s *sinkStub) Name() string { return s.name }

func (s *sinkStub) Deliver(ctx context.Context, d Delivery) error {
	s.calls++
	return s.err
}

type statusStub struct {
	completedID  snowflake.ID
	completedRow int64
	failedID     snowflake.ID
	results      map[string]string
}

func (s *statusStub) MarkCompleted(ctx context.Context, id snowflake.ID, sheetRow int64, results map[string]string) error {
	s.completedID = id
	s.completedRow = sheetRow
	s.results = results
	return nil
}

func (s *statusStub) MarkFailed(ctx context.Context, id snowflake.ID, results map[string]string) error {
	s.failedID = id
	s.results = results
	return nil
}

type slackProviderStub struct {
	channels []string
	err      error
}

func (p *slackProviderStub) PostMessage(ctx context.Context, channelID, message string) error {
	p.channels = append(p.channels, channelID)
	return p.err
}

type dispatcherFixture struct {
	dispatcher *Dispatcher
	appender   *appenderStub
	slack      *slackProviderStub
	notion     *sinkStub
	statuses   *statusStub
}

func newDispatcherFixture() *dispatcherFixture {
	appender := &appenderStub{row: 7}
	slackProvider := &slackProviderStub{}
	notion := &sinkStub{name: "notion"}
	statuses := &statusStub{}

	dispatcher := NewDispatcher(DispatcherParam{
		Log:      zap.NewNop(),
		Statuses: statuses,
		Appender: appender,
		Slack:    NewSlackSink(slackProvider),
		Email:    NewEmailSink(&emailprovider.NoOpProvider{}),
		Notion:   notion,
	})

	return &dispatcherFixture{
		dispatcher: dispatcher,
		appender:   appender,
		slack:      slackProvider,
		notion:     notion,
		statuses:   statuses,
	}
}

func slackForm(node *snowflake.Node) *formdomain.Form {
	return &formdomain.Form{
		ID:            node.Generate(),
		Title:         "Contact",
		SlackEnabled:  true,
		SlackChannel:  "C123",
		SpreadsheetID: "spreadsheet-1",
	}
}

func TestDispatchCompletesWhenSheetsSucceeds(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	f := newDispatcherFixture()
	id := node.Generate()

	f.dispatcher.Dispatch(context.Background(), Delivery{
		Form:         slackForm(node),
		SubmissionID: id,
		Fields:       []Field{{Name: "Name", Value: "Ada"}},
	}, plan.LimitsFor(plan.TierStarter))

	assert.Equal(t, id, f.statuses.completedID)
	assert.Equal(t, int64(7), f.statuses.completedRow)
	assert.Equal(t, "ok", f.statuses.results["sheets"])
}

func TestDispatchFailsSubmissionWhenSheetsFails(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	f := newDispatcherFixture()
	f.appender.err = errors.New("spreadsheet gone")
	id := node.Generate()

	f.dispatcher.Dispatch(context.Background(), Delivery{
		Form:         slackForm(node),
		SubmissionID: id,
	}, plan.LimitsFor(plan.TierStarter))

	assert.Equal(t, id, f.statuses.failedID)
	assert.Equal(t, snowflake.ID(0), f.statuses.completedID)
	assert.Contains(t, f.statuses.results["sheets"], "failed")
	// Optional sinks still ran.
	assert.Len(t, f.slack.channels, 1)
}

func TestDispatchOptionalSinkFailureDoesNotFailSubmission(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	f := newDispatcherFixture()
	f.slack.err = errors.New("channel archived")
	id := node.Generate()

	f.dispatcher.Dispatch(context.Background(), Delivery{
		Form:         slackForm(node),
		SubmissionID: id,
	}, plan.LimitsFor(plan.TierStarter))

	assert.Equal(t, id, f.statuses.completedID)
	assert.Contains(t, f.statuses.results["slack"], "failed")
	assert.Equal(t, "ok", f.statuses.results["sheets"])
}

func TestDispatchSkipsSinksOutsidePlan(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	f := newDispatcherFixture()

	// Slack is configured on the form but the free plan has no slack
	// notifications.
	f.dispatcher.Dispatch(context.Background(), Delivery{
		Form:         slackForm(node),
		SubmissionID: node.Generate(),
	}, plan.LimitsFor(plan.TierFree))

	assert.Empty(t, f.slack.channels)
	assert.Equal(t, "skipped", f.statuses.results["slack"])
	assert.Equal(t, "skipped", f.statuses.results["email"])
	assert.Equal(t, "skipped", f.statuses.results["notion"])
}

func TestDispatchSkipsUnconfiguredSinks(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	f := newDispatcherFixture()
	form := slackForm(node)
	form.SlackChannel = ""

	f.dispatcher.Dispatch(context.Background(), Delivery{
		Form:         form,
		SubmissionID: node.Generate(),
	}, plan.LimitsFor(plan.TierStarter))

	assert.Empty(t, f.slack.channels)
	assert.Equal(t, "skipped", f.statuses.results["slack"])
}

func TestDispatchNotionGatedByProPlan(t *testing.T) {
	node, _ := snowflake.NewNode(1)
	f := newDispatcherFixture()
	form := slackForm(node)
	form.NotionEnabled = true
	form.NotionDatabaseID = "db-1"

	f.dispatcher.Dispatch(context.Background(), Delivery{
		Form:         form,
		SubmissionID: node.Generate(),
	}, plan.LimitsFor(plan.TierStarter))
	assert.Equal(t, 0, f.notion.calls)

	f.dispatcher.Dispatch(context.Background(), Delivery{
		Form:         form,
		SubmissionID: node.Generate(),
	}, plan.LimitsFor(plan.TierPro))
	assert.Equal(t, 1, f.notion.calls)
}
