package sink

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/heysheet/heysheet/internal/observability/metrics"
	"github.com/heysheet/heysheet/internal/plan"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	outcomeOK      = "ok"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped"
)

// StatusStore transitions a submission out of processing. Implemented by the
// submission repository; the dispatcher is its only caller.
type StatusStore interface {
	MarkCompleted(ctx context.Context, id snowflake.ID, sheetRow int64, results map[string]string) error
	MarkFailed(ctx context.Context, id snowflake.ID, results map[string]string) error
}

type DispatcherParam struct {
	fx.In

	Log      *zap.Logger
	Statuses StatusStore
	Appender RowAppender
	Slack    *SlackSink
	Email    *EmailSink
	Notion   Sink `name:"notion"`
	Metrics  *metrics.Metrics `optional:"true"`
}

// Dispatcher fans a persisted submission out to its form's sinks. The
// spreadsheet append is mandatory and alone decides the terminal status;
// every other sink is best effort.
type Dispatcher struct {
	log      *zap.Logger
	statuses StatusStore
	appender RowAppender
	slack    *SlackSink
	email    *EmailSink
	notion   Sink
	metrics  *metrics.Metrics
}

func NewDispatcher(p DispatcherParam) *Dispatcher {
	return &Dispatcher{
		log:      p.Log.Named("sink.dispatcher"),
		statuses: p.Statuses,
		appender: p.Appender,
		slack:    p.Slack,
		email:    p.Email,
		notion:   p.Notion,
		metrics:  p.Metrics,
	}
}

// Dispatch runs the fan-out for one submission. Callers detach it from the
// request cycle; it is invoked at most once per submission.
func (d *Dispatcher) Dispatch(ctx context.Context, delivery Delivery, limits plan.Limits) {
	form := delivery.Form
	results := map[string]string{}

	// Sheets is the primary integration and is always attempted.
	sheetRow, sheetsErr := d.appender.Append(ctx, delivery)
	if sheetsErr != nil {
		results["sheets"] = fmt.Sprintf("%s: %v", outcomeFailed, sheetsErr)
		d.recordSink("sheets", outcomeFailed)
		d.log.Error("sheets append failed",
			zap.String("submission_id", delivery.SubmissionID.String()),
			zap.Error(sheetsErr),
		)
	} else {
		results["sheets"] = outcomeOK
		d.recordSink("sheets", outcomeOK)
	}

	d.runOptional(ctx, delivery, results, d.slack,
		limits.Features.SlackNotifications && form.SlackEnabled && form.SlackChannel != "")
	d.runOptional(ctx, delivery, results, d.email,
		limits.Features.EmailNotifications && form.EmailEnabled && form.NotificationEmail != "")
	d.runOptional(ctx, delivery, results, d.notion,
		limits.Features.NotionSync && form.NotionEnabled && form.NotionDatabaseID != "")

	// Completed means "delivered to the primary sheet", not "delivered
	// everywhere": optional sink failures never fail the submission.
	if sheetsErr != nil {
		if err := d.statuses.MarkFailed(ctx, delivery.SubmissionID, results); err != nil {
			d.log.Error("status update failed",
				zap.String("submission_id", delivery.SubmissionID.String()),
				zap.Error(err),
			)
		}
		return
	}
	if err := d.statuses.MarkCompleted(ctx, delivery.SubmissionID, sheetRow, results); err != nil {
		d.log.Error("status update failed",
			zap.String("submission_id", delivery.SubmissionID.String()),
			zap.Error(err),
		)
	}
}

func (d *Dispatcher) runOptional(ctx context.Context, delivery Delivery, results map[string]string, s Sink, enabled bool) {
	if s == nil {
		return
	}
	if !enabled {
		results[s.Name()] = outcomeSkipped
		return
	}
	if err := s.Deliver(ctx, delivery); err != nil {
		results[s.Name()] = fmt.Sprintf("%s: %v", outcomeFailed, err)
		d.recordSink(s.Name(), outcomeFailed)
		d.log.Warn("sink delivery failed",
			zap.String("sink", s.Name()),
			zap.String("submission_id", delivery.SubmissionID.String()),
			zap.Error(err),
		)
		return
	}
	results[s.Name()] = outcomeOK
	d.recordSink(s.Name(), outcomeOK)
}

func (d *Dispatcher) recordSink(name, outcome string) {
	if d.metrics != nil {
		d.metrics.RecordSinkDelivery(name, outcome)
	}
}
