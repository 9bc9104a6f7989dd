package slack

import (
	"context"

	slackapi "github.com/slack-go/slack"
)

// APIProvider posts messages through the Slack Web API with a bot token.
type APIProvider struct {
	client *slackapi.Client
}

func NewAPI(botToken string) *APIProvider {
	return &APIProvider{client: slackapi.New(botToken)}
}

func (p *APIProvider) PostMessage(ctx context.Context, channelID string, message string) error {
	_, _, err := p.client.PostMessageContext(ctx, channelID,
		slackapi.MsgOptionText(message, false),
	)
	return err
}
