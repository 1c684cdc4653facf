package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/ports"

	"github.com/go-resty/resty/v2"
)

var _ ports.EventPublisher = (*WebhookPublisher)(nil)

// WebhookConfig tunes the HTTP transport.
type WebhookConfig struct {
	URL          string
	Timeout      time.Duration
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
}

// WebhookPublisher POSTs each envelope to a fixed URL. Transport errors and 5xx
// answers are retried; any other non-2xx answer fails the publish at once.
type WebhookPublisher struct {
	client *resty.Client
	url    string
	logger *slog.Logger
}

func NewWebhookPublisher(cfg WebhookConfig, logger *slog.Logger) *WebhookPublisher {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &WebhookPublisher{
		client: client,
		url:    cfg.URL,
		logger: logger.With("component", "webhook_publisher"),
	}
}

// Publish posts every envelope of the event, stopping at the first failure.
func (p *WebhookPublisher) Publish(ctx context.Context, e order.Event) error {
	envelopes, err := Envelopes(e)
	if err != nil {
		return err
	}

	for _, env := range envelopes {
		if err = p.post(ctx, e, env); err != nil {
			return err
		}
	}
	return nil
}

func (p *WebhookPublisher) post(ctx context.Context, e order.Event, env Envelope) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Event-Id", env.EventID).
		SetHeader("X-Event-Type", env.RoutingKey).
		SetHeader("X-Event-Audience", env.Audience).
		SetBody(env.Body).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("post event %s: %w", e.ID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("post event %s: webhook answered %d", e.ID, resp.StatusCode())
	}

	p.logger.DebugContext(ctx, "event delivered",
		"event_id", env.EventID, "audience", env.Audience,
		"status_code", resp.StatusCode(), "attempts", resp.Request.Attempt)
	return nil
}
