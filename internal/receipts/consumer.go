package receipts

import (
	"context"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/outbox"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/storefront-backend/pkg/outbox/registry"
)

const receiptConsumerName = "order-receipts"

type idempotencyChecker interface {
	Claim(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Release(ctx context.Context, consumer string, eventID uuid.UUID) error
}

type receiptStore interface {
	SetReceipt(ctx context.Context, orderID uuid.UUID, ref string) error
}

// Consumer turns order_created events into stored receipts and e-mail requests.
// Its failures never touch the committed order beyond the receipt reference.
type Consumer struct {
	subscription *pubsub.Subscriber
	idempotency  idempotencyChecker
	store        receiptStore
	renderer     Renderer
	decoders     *registry.DecoderRegistry
	logg         *logger.Logger
}

// NewConsumer builds a receipt consumer. subscription may be nil when only Handle is used.
func NewConsumer(subscription *pubsub.Subscriber, manager idempotencyChecker, store receiptStore, renderer Renderer, logg *logger.Logger) (*Consumer, error) {
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if store == nil {
		return nil, fmt.Errorf("receipt store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if renderer == nil {
		renderer = PathRenderer{}
	}
	return &Consumer{
		subscription: subscription,
		idempotency:  manager,
		store:        store,
		renderer:     renderer,
		decoders:     registry.OrderDecoders(),
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	if c.subscription == nil {
		return fmt.Errorf("orders subscription required")
	}
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		logCtx := c.logg.WithField(ctx, "message_id", msg.ID)
		if c.Handle(logCtx, enums.OutboxEventType(msg.Attributes["event_type"]), msg.Data) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// Handle processes one published envelope and reports whether it should be acked.
func (c *Consumer) Handle(ctx context.Context, eventType enums.OutboxEventType, data []byte) bool {
	logCtx := c.logg.WithField(ctx, "event_type", string(eventType))
	if eventType != enums.EventOrderCreated {
		c.logg.Debug(logCtx, "skipping event not handled by receipts")
		return true
	}

	envelope, err := outbox.DecodeEnvelope(data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return true
	}
	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return true
	}
	logCtx = c.logg.WithField(logCtx, "event_id", eventID.String())

	claimed, err := c.idempotency.Claim(ctx, receiptConsumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return false
	}
	if !claimed {
		c.logg.Info(logCtx, "event already processed")
		return true
	}

	decoded, err := c.decoders.Decode(eventType, envelope)
	if err != nil {
		c.logg.Error(logCtx, "failed to parse order payload", err)
		return true
	}
	order, ok := decoded.(*payloads.OrderCreatedEvent)
	if !ok {
		c.logg.Error(logCtx, "unexpected order payload type", fmt.Errorf("got %T", decoded))
		return true
	}
	logCtx = c.logg.WithOrderID(logCtx, order.OrderID.String())

	ref, err := c.renderer.Render(ctx, *order)
	if err != nil {
		c.logg.Error(logCtx, "receipt rendering failed", err)
		_ = c.idempotency.Release(ctx, receiptConsumerName, eventID)
		return false
	}
	if err := c.store.SetReceipt(ctx, order.OrderID, ref); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			c.logg.Warn(logCtx, "order for receipt no longer exists")
			return true
		}
		c.logg.Error(logCtx, "failed to store receipt reference", err)
		_ = c.idempotency.Release(ctx, receiptConsumerName, eventID)
		return false
	}

	logCtx = c.logg.WithField(logCtx, "receipt_ref", ref)
	if order.BuyerEmail != "" {
		c.logg.Info(c.logg.WithField(logCtx, "email", order.BuyerEmail), "receipt email requested")
	}
	c.logg.Info(logCtx, "receipt stored")
	return true
}
