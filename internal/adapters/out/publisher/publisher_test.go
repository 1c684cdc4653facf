package publisher_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"trackit/internal/adapters/out/publisher"
	"trackit/internal/core/domain/model/kernel"
	"trackit/internal/core/domain/model/order"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/smithy-go"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func outForDeliveryEvent() order.Event {
	carrierID := kernel.NewUUID()
	tok := "TRACKIT_CUSTOMERDELIVERY_x"
	return order.Event{
		ID:             kernel.NewUUID(),
		OrderID:        kernel.NewUUID(),
		Status:         order.OutForDelivery,
		ActorID:        carrierID,
		OccurredAt:     time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC),
		RecipientToken: &tok,
		CustomerID:     kernel.NewUUID(),
		VendorID:       kernel.NewUUID(),
		CarrierID:      &carrierID,
	}
}

func pendingEvent() order.Event {
	e := outForDeliveryEvent()
	e.Status = order.Pending
	e.ActorID = e.CustomerID
	e.RecipientToken = nil
	e.CarrierID = nil
	return e
}

func TestEncode_BroadcastOmitsRecipientToken(t *testing.T) {
	e := outForDeliveryEvent()

	body, err := publisher.Encode(e)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, e.ID.String(), got["id"])
	assert.Equal(t, e.OrderID.String(), got["orderId"])
	assert.Equal(t, "out_for_delivery", got["newStatus"])
	assert.Equal(t, e.ActorID.String(), got["actorId"])
	assert.Equal(t, "2026-03-04T10:30:00Z", got["timestamp"])
	assert.Equal(t, e.CustomerID.String(), got["customerId"])
	assert.Equal(t, e.VendorID.String(), got["vendorId"])
	assert.Equal(t, e.CarrierID.String(), got["carrierId"])
	assert.NotContains(t, got, "recipientToken")
	assert.NotContains(t, string(body), "TRACKIT_CUSTOMERDELIVERY_x")
}

func TestEncode_OmitsAbsentOptionalFields(t *testing.T) {
	body, err := publisher.Encode(pendingEvent())
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	assert.NotContains(t, got, "recipientToken")
	assert.NotContains(t, got, "carrierId")
	assert.Equal(t, "pending", got["newStatus"])
}

func TestRoutingKeys(t *testing.T) {
	e := outForDeliveryEvent()
	assert.Equal(t, "order.out_for_delivery", publisher.RoutingKey(e))
	assert.Equal(t, "customer."+e.CustomerID.String()+".order.out_for_delivery", publisher.CustomerRoutingKey(e))
}

func TestEnvelopes(t *testing.T) {
	t.Run("should send a single broadcast copy without a token", func(t *testing.T) {
		envs, err := publisher.Envelopes(pendingEvent())
		require.NoError(t, err)
		require.Len(t, envs, 1)
		assert.Equal(t, publisher.AudienceBroadcast, envs[0].Audience)
		assert.Equal(t, "order.pending", envs[0].RoutingKey)
	})

	t.Run("should route the recipient token to the customer only", func(t *testing.T) {
		e := outForDeliveryEvent()

		envs, err := publisher.Envelopes(e)
		require.NoError(t, err)
		require.Len(t, envs, 2)

		broadcast, customer := envs[0], envs[1]
		assert.Equal(t, publisher.AudienceBroadcast, broadcast.Audience)
		assert.Equal(t, "order.out_for_delivery", broadcast.RoutingKey)
		assert.NotContains(t, string(broadcast.Body), "TRACKIT_CUSTOMERDELIVERY_x")

		assert.Equal(t, publisher.AudienceCustomer, customer.Audience)
		assert.Equal(t, publisher.CustomerRoutingKey(e), customer.RoutingKey)
		var m publisher.Message
		require.NoError(t, json.Unmarshal(customer.Body, &m))
		require.NotNil(t, m.RecipientToken)
		assert.Equal(t, "TRACKIT_CUSTOMERDELIVERY_x", *m.RecipientToken)
		assert.Equal(t, e.ID.String(), customer.EventID)
	})
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	e := outForDeliveryEvent()

	require.NoError(t, publisher.NewLogPublisher(logger).Publish(t.Context(), e))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "order event", line["msg"])
	assert.Equal(t, e.OrderID.String(), line["order_id"])
	assert.Equal(t, "out_for_delivery", line["status"])
	assert.Equal(t, true, line["recipient_token_issued"])
	assert.NotContains(t, buf.String(), "TRACKIT_CUSTOMERDELIVERY_x")
}

func webhookConfig(url string) publisher.WebhookConfig {
	return publisher.WebhookConfig{
		URL:          url,
		Timeout:      2 * time.Second,
		RetryCount:   2,
		RetryWait:    5 * time.Millisecond,
		RetryMaxWait: 10 * time.Millisecond,
	}
}

type webhookDelivery struct {
	audience string
	key      string
	eventID  string
	body     publisher.Message
}

func TestWebhookPublisher_PostsEveryEnvelope(t *testing.T) {
	e := outForDeliveryEvent()
	var (
		mu  sync.Mutex
		got []webhookDelivery
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		d := webhookDelivery{
			audience: r.Header.Get("X-Event-Audience"),
			key:      r.Header.Get("X-Event-Type"),
			eventID:  r.Header.Get("X-Event-Id"),
		}
		_ = json.NewDecoder(r.Body).Decode(&d.body)
		mu.Lock()
		got = append(got, d)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := publisher.NewWebhookPublisher(webhookConfig(srv.URL), discardLogger()).Publish(t.Context(), e)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, publisher.AudienceBroadcast, got[0].audience)
	assert.Equal(t, "order.out_for_delivery", got[0].key)
	assert.Equal(t, e.ID.String(), got[0].eventID)
	assert.Equal(t, e.OrderID.String(), got[0].body.OrderID)
	assert.Nil(t, got[0].body.RecipientToken)

	assert.Equal(t, publisher.AudienceCustomer, got[1].audience)
	assert.Equal(t, publisher.CustomerRoutingKey(e), got[1].key)
	require.NotNil(t, got[1].body.RecipientToken)
}

func TestWebhookPublisher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := publisher.NewWebhookPublisher(webhookConfig(srv.URL), discardLogger()).Publish(t.Context(), pendingEvent())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhookPublisher_ClientErrorFailsWithoutRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := publisher.NewWebhookPublisher(webhookConfig(srv.URL), discardLogger()).Publish(t.Context(), outForDeliveryEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Equal(t, int32(1), calls.Load())
}

type fakeConfirmation struct {
	done  chan struct{}
	acked bool
}

func (c *fakeConfirmation) Done() <-chan struct{} { return c.done }
func (c *fakeConfirmation) Acked() bool           { return c.acked }

func resolved(ack bool) *fakeConfirmation {
	c := &fakeConfirmation{done: make(chan struct{}), acked: ack}
	close(c.done)
	return c
}

func pending() *fakeConfirmation {
	return &fakeConfirmation{done: make(chan struct{})}
}

type MockAMQPChannel struct {
	mock.Mock
}

func (m *MockAMQPChannel) PublishWithConfirm(
	ctx context.Context,
	exchange, key string,
	msg amqp.Publishing,
) (publisher.Confirmation, error) {
	args := m.Called(ctx, exchange, key, msg)
	c, _ := args.Get(0).(publisher.Confirmation)
	return c, args.Error(1)
}

func TestRabbitMQPublisher_PublishesPersistentMessage(t *testing.T) {
	e := pendingEvent()
	ch := new(MockAMQPChannel)
	ch.On("PublishWithConfirm", mock.Anything, publisher.ExchangeName, "order.pending",
		mock.MatchedBy(func(msg amqp.Publishing) bool {
			var m publisher.Message
			return msg.DeliveryMode == amqp.Persistent &&
				msg.ContentType == "application/json" &&
				msg.MessageId == e.ID.String() &&
				msg.Type == publisher.AudienceBroadcast &&
				json.Unmarshal(msg.Body, &m) == nil &&
				m.OrderID == e.OrderID.String()
		})).Return(resolved(true), nil).Once()

	p := publisher.NewRabbitMQPublisher(ch, publisher.ExchangeName, discardLogger())
	require.NoError(t, p.Publish(t.Context(), e))
	ch.AssertExpectations(t)
}

func TestRabbitMQPublisher_RoutesRecipientTokenToCustomer(t *testing.T) {
	e := outForDeliveryEvent()
	ch := new(MockAMQPChannel)
	mock.InOrder(
		ch.On("PublishWithConfirm", mock.Anything, publisher.ExchangeName, "order.out_for_delivery",
			mock.MatchedBy(func(msg amqp.Publishing) bool {
				return !bytes.Contains(msg.Body, []byte("TRACKIT_CUSTOMERDELIVERY_x"))
			})).Return(resolved(true), nil).Once(),
		ch.On("PublishWithConfirm", mock.Anything, publisher.ExchangeName, publisher.CustomerRoutingKey(e),
			mock.MatchedBy(func(msg amqp.Publishing) bool {
				return msg.Type == publisher.AudienceCustomer &&
					bytes.Contains(msg.Body, []byte("TRACKIT_CUSTOMERDELIVERY_x"))
			})).Return(resolved(true), nil).Once(),
	)

	p := publisher.NewRabbitMQPublisher(ch, publisher.ExchangeName, discardLogger())
	require.NoError(t, p.Publish(t.Context(), e))
	ch.AssertExpectations(t)
}

func TestRabbitMQPublisher_Nack(t *testing.T) {
	ch := new(MockAMQPChannel)
	ch.On("PublishWithConfirm", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(resolved(false), nil).Once()

	p := publisher.NewRabbitMQPublisher(ch, publisher.ExchangeName, discardLogger())
	err := p.Publish(t.Context(), outForDeliveryEvent())
	require.ErrorIs(t, err, publisher.ErrPublishNacked)
	ch.AssertNumberOfCalls(t, "PublishWithConfirm", 1)
}

func TestRabbitMQPublisher_PublishError(t *testing.T) {
	boom := errors.New("channel closed")
	ch := new(MockAMQPChannel)
	ch.On("PublishWithConfirm", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, boom).Once()

	p := publisher.NewRabbitMQPublisher(ch, publisher.ExchangeName, discardLogger())
	err := p.Publish(t.Context(), pendingEvent())
	require.ErrorIs(t, err, boom)
}

func TestRabbitMQPublisher_LateConfirmDoesNotLeakIntoNextPublish(t *testing.T) {
	first, second := pendingEvent(), pendingEvent()
	late := pending()

	ch := new(MockAMQPChannel)
	ch.On("PublishWithConfirm", mock.Anything, mock.Anything, mock.Anything,
		mock.MatchedBy(func(msg amqp.Publishing) bool { return msg.MessageId == first.ID.String() })).
		Return(late, nil).Once()
	ch.On("PublishWithConfirm", mock.Anything, mock.Anything, mock.Anything,
		mock.MatchedBy(func(msg amqp.Publishing) bool { return msg.MessageId == second.ID.String() })).
		Return(resolved(false), nil).Once()

	p := publisher.NewRabbitMQPublisher(ch, publisher.ExchangeName, discardLogger())

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	err := p.Publish(ctx, first)
	require.ErrorIs(t, err, context.Canceled)

	// The first message is acked after its caller gave up; the second
	// publish still sees its own nack.
	late.acked = true
	close(late.done)
	err = p.Publish(t.Context(), second)
	require.ErrorIs(t, err, publisher.ErrPublishNacked)
	ch.AssertExpectations(t)
}

type MockSQS struct {
	mock.Mock
}

func (m *MockSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*sqs.SendMessageOutput)
	return out, args.Error(1)
}

func TestSQSPublisher_SendsWithAttributes(t *testing.T) {
	e := pendingEvent()
	client := &MockSQS{}
	client.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
		var m publisher.Message
		return aws.ToString(in.QueueUrl) == "https://sqs.local/q" &&
			json.Unmarshal([]byte(aws.ToString(in.MessageBody)), &m) == nil &&
			m.ID == e.ID.String() &&
			aws.ToString(in.MessageAttributes["order_id"].StringValue) == e.OrderID.String() &&
			aws.ToString(in.MessageAttributes["status"].StringValue) == "pending" &&
			aws.ToString(in.MessageAttributes["audience"].StringValue) == publisher.AudienceBroadcast &&
			aws.ToString(in.MessageAttributes["status"].DataType) == "String"
	})).Return(&sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil).Once()

	p := publisher.NewSQSPublisher(client, "https://sqs.local/q", discardLogger())
	require.NoError(t, p.Publish(t.Context(), e))
	client.AssertExpectations(t)
}

func TestSQSPublisher_CustomerCopyCarriesToken(t *testing.T) {
	e := outForDeliveryEvent()
	client := &MockSQS{}
	mock.InOrder(
		client.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
			return aws.ToString(in.MessageAttributes["audience"].StringValue) == publisher.AudienceBroadcast &&
				!bytes.Contains([]byte(aws.ToString(in.MessageBody)), []byte("TRACKIT_CUSTOMERDELIVERY_x"))
		})).Return(&sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil).Once(),
		client.On("SendMessage", mock.Anything, mock.MatchedBy(func(in *sqs.SendMessageInput) bool {
			return aws.ToString(in.MessageAttributes["audience"].StringValue) == publisher.AudienceCustomer &&
				aws.ToString(in.MessageAttributes["customer_id"].StringValue) == e.CustomerID.String() &&
				bytes.Contains([]byte(aws.ToString(in.MessageBody)), []byte("TRACKIT_CUSTOMERDELIVERY_x"))
		})).Return(&sqs.SendMessageOutput{MessageId: aws.String("m-2")}, nil).Once(),
	)

	p := publisher.NewSQSPublisher(client, "https://sqs.local/q", discardLogger())
	require.NoError(t, p.Publish(t.Context(), e))
	client.AssertExpectations(t)
}

func TestSQSPublisher_APIError(t *testing.T) {
	client := &MockSQS{}
	apiErr := &smithy.GenericAPIError{Code: "QueueDoesNotExist", Message: "no queue"}
	client.On("SendMessage", mock.Anything, mock.Anything).Return(nil, apiErr).Once()

	p := publisher.NewSQSPublisher(client, "https://sqs.local/q", discardLogger())
	err := p.Publish(t.Context(), outForDeliveryEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QueueDoesNotExist")

	var got smithy.APIError
	assert.ErrorAs(t, err, &got)
}
