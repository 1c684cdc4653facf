package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/aws/smithy-go"
)

var _ ports.EventPublisher = (*SQSPublisher)(nil)

// SQSAPI is the subset of *sqs.Client used here.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends each envelope to one queue with order_id, status and
// audience message attributes for subscription filtering.
type SQSPublisher struct {
	client   SQSAPI
	queueURL string
	logger   *slog.Logger
}

func NewSQSPublisher(client SQSAPI, queueURL string, logger *slog.Logger) *SQSPublisher {
	return &SQSPublisher{
		client:   client,
		queueURL: queueURL,
		logger:   logger.With("component", "sqs_publisher"),
	}
}

// NewSQSClient loads the default AWS configuration. A non-empty endpoint
// overrides the service URL, e.g. for a local emulator.
func NewSQSClient(ctx context.Context, region, endpoint string) (*sqs.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// Publish sends every envelope of the event, stopping at the first failure.
func (p *SQSPublisher) Publish(ctx context.Context, e order.Event) error {
	envelopes, err := Envelopes(e)
	if err != nil {
		return err
	}

	for _, env := range envelopes {
		if err = p.send(ctx, e, env); err != nil {
			return err
		}
	}
	return nil
}

func (p *SQSPublisher) send(ctx context.Context, e order.Event, env Envelope) error {
	attrs := map[string]string{
		"order_id":    e.OrderID.String(),
		"status":      e.Status.String(),
		"event_id":    env.EventID,
		"audience":    env.Audience,
		"routing_key": env.RoutingKey,
	}
	if env.Audience == AudienceCustomer {
		attrs["customer_id"] = e.CustomerID.String()
	}
	msgAttrs := make(map[string]sqstypes.MessageAttributeValue, len(attrs))
	for k, v := range attrs {
		msgAttrs[k] = sqstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}

	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(string(env.Body)),
		MessageAttributes: msgAttrs,
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("send event %s: %s: %w", e.ID, apiErr.ErrorCode(), err)
		}
		return fmt.Errorf("send event %s: %w", e.ID, err)
	}

	if out != nil {
		p.logger.DebugContext(ctx, "event sent",
			"event_id", env.EventID, "audience", env.Audience, "message_id", aws.ToString(out.MessageId))
	}
	return nil
}
