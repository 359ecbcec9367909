package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Temutjin2k/jwt-auth/internal/domain/models"
	"github.com/Temutjin2k/jwt-auth/internal/domain/types"
	wrap "github.com/Temutjin2k/jwt-auth/pkg/logger/wrapper"
	"github.com/Temutjin2k/jwt-auth/pkg/metrics"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeAuthTopic = "auth_topic"

	publishAttempts = 3
	publishBackoff  = 200 * time.Millisecond
)

var errUnmarshalable = errors.New("failed to marshal message")

// Publisher is the part of the rabbit client the producer needs.
type Publisher interface {
	Publish(ctx context.Context, exchange, key string, msg amqp.Publishing) error
}

// AuthEventProducer publishes user lifecycle events to the auth topic exchange.
type AuthEventProducer struct {
	client   Publisher
	exchange string
}

func NewAuthEventProducer(client Publisher, exchange string) *AuthEventProducer {
	if exchange == "" {
		exchange = ExchangeAuthTopic
	}
	return &AuthEventProducer{
		client:   client,
		exchange: exchange,
	}
}

// PublishUserRegistered публикует событие о регистрации пользователя
func (p *AuthEventProducer) PublishUserRegistered(ctx context.Context, event models.UserRegisteredEvent) error {
	return p.publish(ctx, "AuthEventProducer.PublishUserRegistered", types.RoutingKeyUserRegistered, event)
}

// PublishUserLoggedIn публикует событие о входе пользователя
func (p *AuthEventProducer) PublishUserLoggedIn(ctx context.Context, event models.UserLoggedInEvent) error {
	return p.publish(ctx, "AuthEventProducer.PublishUserLoggedIn", types.RoutingKeyUserLoggedIn, event)
}

func (p *AuthEventProducer) publish(ctx context.Context, op, key string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		ctx = wrap.WithAction(ctx, "marshal_event")
		return wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, errUnmarshalable, err))
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		AppId:        types.ServiceName,
		Body:         body,
		Timestamp:    time.Now().UTC(),
	}
	if requestID := wrap.FromContext(ctx).RequestID; requestID != "" {
		msg.CorrelationId = requestID
	}

	err = retry(ctx, publishAttempts, publishBackoff, func() error {
		return p.client.Publish(ctx, p.exchange, key, msg)
	})
	metrics.RecordRabbitMQPublish(types.ServiceName, key, err)
	if err != nil {
		ctx = wrap.WithAction(ctx, "publish_message")
		return wrap.Error(ctx, fmt.Errorf("%s: %w: %w", op, types.ErrPublishFailed, err))
	}

	return nil
}
