package communication

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
)

// Notifier sends short operational messages. Info is for routine summaries,
// Error for failures someone should look at.
type Notifier interface {
	Info(ctx context.Context, message string) error
	Error(ctx context.Context, message string) error
}

type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
}

func NewSlack(token string, options SlackOption, clientOptions ...slack.Option) *Slack {
	client := slack.New(token, clientOptions...)
	return &Slack{client: client, options: options}
}

func (s *Slack) postMessage(ctx context.Context, channelID, message string) error {
	if channelID == "" {
		return nil
	}
	_, _, err := s.client.PostMessageContext(
		ctx,
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) Info(ctx context.Context, message string) error {
	return s.postMessage(ctx, s.options.InfoChannelID, message)
}

// Error posts to the error channel, falling back to the info channel.
func (s *Slack) Error(ctx context.Context, message string) error {
	channel := s.options.ErrorChannelID
	if channel == "" {
		channel = s.options.InfoChannelID
	}
	return s.postMessage(ctx, channel, message)
}

// Multi fans a message out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Info(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.Info(ctx, message))
	}
	return errors.Join(errs...)
}

func (m Multi) Error(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.Error(ctx, message))
	}
	return errors.Join(errs...)
}
