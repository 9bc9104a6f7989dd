package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/heysheet/heysheet/internal/providers/slack"
)

// SlackSink posts a submission summary to the form's channel.
type SlackSink struct {
	provider slack.Provider
}

func NewSlackSink(provider slack.Provider) *SlackSink {
	return &SlackSink{provider: provider}
}

func (s *SlackSink) Name() string { return "slack" }

func (s *SlackSink) Deliver(ctx context.Context, d Delivery) error {
	return s.provider.PostMessage(ctx, d.Form.SlackChannel, formatSlackMessage(d))
}

func formatSlackMessage(d Delivery) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":inbox_tray: New submission on *%s*\n", d.Form.Title)
	for _, field := range d.Fields {
		value := field.Value
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "• *%s*: %s\n", field.Name, value)
	}
	return b.String()
}
