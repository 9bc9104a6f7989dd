// Package sink defines the fan-out contracts and the dispatcher that drives
// submissions through them.
package sink

import (
	"context"

	"github.com/bwmarrin/snowflake"
	formdomain "github.com/heysheet/heysheet/internal/form/domain"
)

// Field is one submitted key/value pair. Order follows the multipart body so
// first-seen column order is stable.
type Field struct {
	Name  string
	Value string
}

// Delivery is the payload handed to every sink for one submission.
type Delivery struct {
	Form         *formdomain.Form
	SubmissionID snowflake.ID
	Fields       []Field
}

// Names returns the field names in submission order.
func (d Delivery) Names() []string {
	names := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		names[i] = f.Name
	}
	return names
}

// Map returns the fields as a lookup table. Submission order is lost, so use
// Fields when order matters.
func (d Delivery) Map() map[string]string {
	out := make(map[string]string, len(d.Fields))
	for _, f := range d.Fields {
		out[f.Name] = f.Value
	}
	return out
}

// Sink is an optional downstream integration. Failures are logged and never
// block other sinks.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, d Delivery) error
}

// RowAppender is the mandatory spreadsheet sink. Its failure fails the
// submission; the returned row number is persisted when the API reports one.
type RowAppender interface {
	Append(ctx context.Context, d Delivery) (rowNumber int64, err error)
}
