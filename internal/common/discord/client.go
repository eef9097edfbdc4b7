// internal/common/discord/client.go
package discord

import (
	"context"
	"time"

	"campus-notifier/internal/common/errors"
	commonhttp "campus-notifier/internal/common/http"
	"campus-notifier/internal/common/logger"
	"campus-notifier/internal/common/metrics"
)

// DefaultTimeout bounds one webhook POST.
const DefaultTimeout = 8 * time.Second

// maxErrorBody caps how much of a failed response ends up in logs.
const maxErrorBody = 1024

// Notifier is what trigger handlers depend on.
type Notifier interface {
	Notify(ctx context.Context, kind Kind, payload *Payload) error
}

type Client struct {
	http     *commonhttp.Client
	webhooks Webhooks
	logger   logger.Logger
}

func NewClient(webhooks Webhooks, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:     commonhttp.NewClient(timeout),
		webhooks: webhooks,
		logger:   log.WithFields(map[string]interface{}{"component": "discord"}),
	}
}

// Notify sends payload to the webhook configured for kind. A kind with no
// webhook is logged and skipped.
func (c *Client) Notify(ctx context.Context, kind Kind, payload *Payload) error {
	return c.post(ctx, kind, c.webhooks.URLFor(kind), payload)
}

// Send posts payload to an explicit URL.
func (c *Client) Send(ctx context.Context, url string, payload *Payload) error {
	return c.post(ctx, KindCI, url, payload)
}

func (c *Client) post(ctx context.Context, kind Kind, url string, payload *Payload) error {
	if url == "" {
		stdErr := errors.NewWebhookNotConfiguredError(string(kind))
		c.logger.Warn("No Discord webhook URL configured. Skipping message.", map[string]interface{}{
			"kind":      string(kind),
			"errorCode": string(stdErr.Code),
		})
		metrics.DiscordPosts.WithLabelValues(string(kind), metrics.OutcomeSkipped).Inc()
		return nil
	}

	resp, err := c.http.PostJSON(ctx, url, payload, maxErrorBody)
	if err != nil {
		stdErr := errors.NewWebhookDeliveryFailedError(0, "", err)
		c.logger.Error("Failed to post to Discord", map[string]interface{}{
			"kind":  string(kind),
			"error": err,
		})
		metrics.DiscordPosts.WithLabelValues(string(kind), metrics.OutcomeFailure).Inc()
		return stdErr
	}

	if !resp.OK() {
		c.logger.Error("Failed to post to Discord", map[string]interface{}{
			"kind":   string(kind),
			"status": resp.StatusCode,
			"body":   string(resp.Body),
		})
		metrics.DiscordPosts.WithLabelValues(string(kind), metrics.OutcomeFailure).Inc()
		return errors.NewWebhookDeliveryFailedError(resp.StatusCode, string(resp.Body), nil)
	}

	metrics.DiscordPosts.WithLabelValues(string(kind), metrics.OutcomeSuccess).Inc()
	return nil
}
