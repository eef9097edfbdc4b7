// internal/cinotify/notify.go
package cinotify

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"campus-notifier/internal/common/discord"
	"campus-notifier/internal/common/errors"
	"campus-notifier/internal/common/logger"
)

var (
	ErrUnsupportedEvent = stderrors.New("UNSUPPORTED_EVENT")
	ErrMissingPRInfo    = stderrors.New("MISSING_PULL_REQUEST")
)

// Sender posts a payload to a webhook URL.
type Sender interface {
	Send(ctx context.Context, url string, payload *discord.Payload) error
}

type Notifier struct {
	env    Env
	git    Git
	sender Sender
	now    func() time.Time
	logger logger.Logger
}

func NewNotifier(env Env, git Git, sender Sender, log logger.Logger) *Notifier {
	return &Notifier{
		env:    env,
		git:    git,
		sender: sender,
		now:    time.Now,
		logger: log.WithFields(map[string]interface{}{"event": env.EventName}),
	}
}

// Run builds and sends the embed for the current event.
func (n *Notifier) Run(ctx context.Context) error {
	if n.env.WebhookURL == "" {
		return errors.NewWebhookNotConfiguredError(string(discord.KindCI))
	}
	if n.env.EventName != EventPush && n.env.EventName != EventPullRequest {
		return fmt.Errorf("%w: %s", ErrUnsupportedEvent, n.env.EventName)
	}

	ev, err := LoadEvent(n.env.EventPath)
	if err != nil {
		return err
	}

	payload, err := n.build(ctx, ev)
	if err != nil {
		return err
	}

	if err := n.sender.Send(ctx, n.env.WebhookURL, payload); err != nil {
		return err
	}
	n.logger.Info("Discord notification sent", map[string]interface{}{
		"title": payload.Embeds[0].Title,
	})
	return nil
}

func (n *Notifier) build(ctx context.Context, ev *Event) (*discord.Payload, error) {
	if n.env.EventName == EventPullRequest {
		if ev.PullRequest == nil {
			return nil, ErrMissingPRInfo
		}
		n.logger.Info("processing pull request", map[string]interface{}{
			"number": ev.PullRequest.Number,
			"action": ev.Action,
		})
		return PullRequestPayload(ev.Action, ev.PullRequest, n.now()), nil
	}

	commit, err := n.git.HeadCommit(ctx)
	if err != nil {
		return nil, fmt.Errorf("commit info: %w", err)
	}

	var changed []string
	if before, after, ok := ev.DiffRange(); ok {
		changed, err = n.git.ChangedFiles(ctx, before, after)
		if err != nil {
			n.logger.Warn("failed to get changed files", map[string]interface{}{"error": err})
			changed = nil
		}
	}

	info := NewPushInfo(n.env, ev, commit, changed)
	n.logger.Info("processing push", map[string]interface{}{
		"branch": info.Branch,
		"hash":   commit.ShortHash,
		"author": commit.Author,
	})
	return PushPayload(info, n.now()), nil
}

// ExitCode maps a Run result to the process exit status. Unsupported events
// are not failures.
func ExitCode(err error) int {
	if err == nil || stderrors.Is(err, ErrUnsupportedEvent) {
		return 0
	}
	return 1
}
