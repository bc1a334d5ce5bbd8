// Package messaging delivers outbound replies to chat surfaces.
package messaging

import (
	"context"

	"github.com/slack-go/slack"

	"github.com/datachat-labs/datachat/internal/errors"
	"github.com/datachat-labs/datachat/internal/logging"
)

// Sender delivers a message to a recipient on some chat surface
type Sender interface {
	Send(ctx context.Context, to string, text string) error
}

// SlackSender posts messages to Slack channels or DMs
type SlackSender struct {
	client *slack.Client
	log    *logging.Logger
}

// NewSlackSender creates a sender over the Slack Web API
func NewSlackSender(token string, log *logging.Logger) (*SlackSender, error) {
	if token == "" {
		return nil, errors.New(errors.ErrTypeConfig, "slack bot token is required")
	}

	return &SlackSender{client: slack.New(token), log: log}, nil
}

// Send posts text to the given channel ID
func (s *SlackSender) Send(ctx context.Context, to string, text string) error {
	_, _, err := s.client.PostMessageContext(ctx, to, slack.MsgOptionText(text, false))
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeMessaging, "failed to post message")
	}

	s.log.WithField("channel", to).Debug("posted message")

	return nil
}
