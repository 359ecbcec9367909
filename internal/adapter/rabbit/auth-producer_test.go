package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
	"github.com/Temutjin2k/jwt-auth/internal/domain/types"
	wrap "github.com/Temutjin2k/jwt-auth/pkg/logger/wrapper"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeClient struct {
	calls    []published
	failures int
	err      error
}

func (c *fakeClient) Publish(_ context.Context, exchange, key string, msg amqp.Publishing) error {
	c.calls = append(c.calls, published{exchange: exchange, key: key, msg: msg})
	if c.failures > 0 {
		c.failures--
		return c.err
	}
	return nil
}

func TestAuthEventProducer_PublishUserRegistered(t *testing.T) {
	client := &fakeClient{}
	p := NewAuthEventProducer(client, "")

	event := models.UserRegisteredEvent{
		UserID:     uuid.New(),
		Email:      "ann@example.com",
		Name:       "Ann",
		OccurredAt: time.Now().UTC(),
	}
	ctx := wrap.WithRequestID(context.Background(), "req-1")

	require.NoError(t, p.PublishUserRegistered(ctx, event))
	require.Len(t, client.calls, 1)

	call := client.calls[0]
	assert.Equal(t, ExchangeAuthTopic, call.exchange)
	assert.Equal(t, types.RoutingKeyUserRegistered, call.key)
	assert.Equal(t, "application/json", call.msg.ContentType)
	assert.Equal(t, "req-1", call.msg.CorrelationId)
	assert.NotEmpty(t, call.msg.MessageId)

	var got models.UserRegisteredEvent
	require.NoError(t, json.Unmarshal(call.msg.Body, &got))
	assert.Equal(t, event.UserID, got.UserID)
	assert.Equal(t, event.Email, got.Email)
}

func TestAuthEventProducer_PublishUserLoggedIn(t *testing.T) {
	client := &fakeClient{}
	p := NewAuthEventProducer(client, "custom_exchange")

	err := p.PublishUserLoggedIn(context.Background(), models.UserLoggedInEvent{UserID: uuid.New(), TokenID: "jti"})
	require.NoError(t, err)

	require.Len(t, client.calls, 1)
	assert.Equal(t, "custom_exchange", client.calls[0].exchange)
	assert.Equal(t, types.RoutingKeyUserLoggedIn, client.calls[0].key)
	assert.Empty(t, client.calls[0].msg.CorrelationId)
}

func TestAuthEventProducer_RetriesTransientFailures(t *testing.T) {
	client := &fakeClient{failures: 1, err: errors.New("channel closed")}
	p := NewAuthEventProducer(client, "")

	err := p.PublishUserLoggedIn(context.Background(), models.UserLoggedInEvent{UserID: uuid.New()})
	require.NoError(t, err)
	assert.Len(t, client.calls, 2)
}

func TestAuthEventProducer_GivesUp(t *testing.T) {
	client := &fakeClient{failures: publishAttempts, err: errors.New("broker down")}
	p := NewAuthEventProducer(client, "")

	err := p.PublishUserLoggedIn(context.Background(), models.UserLoggedInEvent{UserID: uuid.New()})
	assert.ErrorIs(t, err, types.ErrPublishFailed)
	assert.Len(t, client.calls, publishAttempts)
}

func TestRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := retry(ctx, 5, time.Hour, func() error {
		calls++
		return errors.New("boom")
	})

	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetry_UnrecoverableError(t *testing.T) {
	calls := 0
	err := retry(context.Background(), 5, time.Millisecond, func() error {
		calls++
		return context.DeadlineExceeded
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)
}
