package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-content-admin/internal/dto"
	"github.com/noah-isme/gema-content-admin/internal/observability"
)

const eventBufferSize = 32

// Event types published for content mutations.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
	EventFailed  = "failed"
)

// EventBus fans content events out to local subscribers and peer instances.
type EventBus interface {
	Publish(ctx context.Context, event dto.ContentEvent)
	Subscribe() (<-chan dto.ContentEvent, func())
	Start(ctx context.Context)
}

type eventBus struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	sanitizer    *bluemonday.Policy
	broker       *eventBroker
	nodeID       string
	now          func() time.Time
}

type eventEnvelope struct {
	Source string           `json:"source"`
	Event  dto.ContentEvent `json:"event"`
}

type eventBroker struct {
	mu          sync.RWMutex
	subscribers map[chan dto.ContentEvent]struct{}
}

// NewEventBus constructs an event bus. Redis and NATS are optional relays; with neither the bus
// only reaches subscribers of this process.
func NewEventBus(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) EventBus {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".events"
	}

	return &eventBus{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "event_bus").Logger(),
		sanitizer:    bluemonday.StrictPolicy(),
		broker:       &eventBroker{subscribers: make(map[chan dto.ContentEvent]struct{})},
		nodeID:       uuid.NewString(),
		now:          time.Now,
	}
}

func (b *eventBus) Start(ctx context.Context) {
	if b.redis != nil && b.redisChannel != "" {
		go b.consumeRedis(ctx)
	}
	if b.nats != nil && b.natsSubject != "" {
		go b.consumeNATS(ctx)
	}
}

func (b *eventBus) Publish(ctx context.Context, event dto.ContentEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.At.IsZero() {
		event.At = b.now().UTC()
	}
	event.Message = strings.TrimSpace(b.sanitizer.Sanitize(event.Message))

	b.broker.broadcast(event)
	observability.EventsPublished().WithLabelValues(event.Resource, "local").Inc()

	if err := b.relay(ctx, event); err != nil {
		b.logger.Warn().Err(err).Str("event_type", event.Type).Msg("failed to relay content event")
	}
}

func (b *eventBus) Subscribe() (<-chan dto.ContentEvent, func()) {
	channel := make(chan dto.ContentEvent, eventBufferSize)
	b.broker.subscribe(channel)
	observability.EventClientsActive().Inc()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			b.broker.unsubscribe(channel)
			observability.EventClientsActive().Dec()
		})
	}
	return channel, cleanup
}

func (b *eventBus) relay(ctx context.Context, event dto.ContentEvent) error {
	if (b.redis == nil || b.redisChannel == "") && (b.nats == nil || b.natsSubject == "") {
		return nil
	}

	payload, err := json.Marshal(eventEnvelope{Source: b.nodeID, Event: event})
	if err != nil {
		return err
	}

	if b.redis != nil && b.redisChannel != "" {
		if err := b.redis.Publish(ctx, b.redisChannel, payload).Err(); err != nil {
			return err
		}
	}
	if b.nats != nil && b.natsSubject != "" {
		if err := b.nats.Publish(b.natsSubject, payload); err != nil {
			return err
		}
	}
	return nil
}

func (b *eventBus) consumeRedis(ctx context.Context) {
	pubsub := b.redis.Subscribe(ctx, b.redisChannel)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, redis.ErrClosed) {
				return
			}
			b.logger.Error().Err(err).Msg("event redis subscription closed")
			return
		}
		b.handleRemote([]byte(msg.Payload), "redis")
	}
}

func (b *eventBus) consumeNATS(ctx context.Context) {
	// Every instance needs every event, so this is a plain subscription rather than a queue group.
	sub, err := b.nats.Subscribe(b.natsSubject, func(msg *nats.Msg) {
		b.handleRemote(msg.Data, "nats")
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to subscribe to nats events subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to drain events nats subscription")
		}
	}()
}

func (b *eventBus) handleRemote(payload []byte, origin string) {
	var envelope eventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		b.logger.Warn().Err(err).Msg("invalid content event payload")
		return
	}
	if envelope.Source == b.nodeID {
		return
	}

	observability.EventsPublished().WithLabelValues(envelope.Event.Resource, origin).Inc()
	b.broker.broadcast(envelope.Event)
}

func (b *eventBroker) subscribe(ch chan dto.ContentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[ch] = struct{}{}
}

func (b *eventBroker) unsubscribe(ch chan dto.ContentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}

// broadcast never blocks; slow subscribers drop events.
func (b *eventBroker) broadcast(event dto.ContentEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func publishEvent(ctx context.Context, bus EventBus, eventType, resource, resourceID, message string) {
	if bus == nil {
		return
	}
	bus.Publish(ctx, dto.ContentEvent{
		Type:       eventType,
		Resource:   resource,
		ResourceID: resourceID,
		Message:    message,
	})
}
