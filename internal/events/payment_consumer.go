package events

import (
	"context"
	"strings"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// PaymentCallbackHandler is implemented by the booking application
// service; both handlers must be idempotent since the gateway may
// redeliver.
type PaymentCallbackHandler interface {
	HandlePaymentSucceeded(ctx context.Context, ev PaymentCallbackEvent) error
	HandlePaymentFailed(ctx context.Context, ev PaymentCallbackEvent) error
}

// PaymentEventConsumer listens to gateway callback events and drives the
// booking state machine accordingly.
type PaymentEventConsumer struct {
	consumer *Consumer
	handler  PaymentCallbackHandler
	logger   *zap.Logger
}

// NewPaymentEventConsumer creates a consumer for gateway callbacks.
func NewPaymentEventConsumer(brokers []string, groupID string, handler PaymentCallbackHandler, logger *zap.Logger) *PaymentEventConsumer {
	return &PaymentEventConsumer{
		consumer: NewConsumer(brokers, groupID, TopicPaymentEvents, logger),
		handler:  handler,
		logger:   logger,
	}
}

// Start begins consuming. It blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	ce, err := ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return err
	}

	c.logger.Info("received payment event",
		zap.String("type", ce.Type),
		zap.String("id", ce.ID),
	)

	switch {
	case strings.EqualFold(ce.Type, PaymentSucceeded):
		var ev PaymentCallbackEvent
		if err := ce.ParseData(&ev); err != nil {
			return err
		}
		return c.handler.HandlePaymentSucceeded(ctx, ev)

	case strings.EqualFold(ce.Type, PaymentFailed):
		var ev PaymentCallbackEvent
		if err := ce.ParseData(&ev); err != nil {
			return err
		}
		return c.handler.HandlePaymentFailed(ctx, ev)

	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", ce.Type),
		)
		return nil
	}
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}
