package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/ice-lfernandes/spring-boot-arconia/internal/logger"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/metrics"
)

// Handler reacts to book lifecycle events. A returned error causes redelivery.
type Handler interface {
	OnBookCreated(ctx context.Context, event BookEvent) error
	OnBookUpdated(ctx context.Context, event BookEvent) error
	OnBookDeleted(ctx context.Context, event BookEvent) error
}

// EnsureStream creates or updates the stream that stores the book topic.
func EnsureStream(ctx context.Context, js jetstream.JetStream, stream, topic string) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       stream,
		Subjects:   []string{topic},
		Retention:  jetstream.LimitsPolicy,
		MaxMsgs:    1000000,
		MaxAge:     7 * 24 * time.Hour, // 7 days
		Storage:    jetstream.FileStorage,
		Duplicates: 2 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("events: ensure stream %s: %w", stream, err)
	}
	return nil
}

type ConsumerConfig struct {
	Stream  string
	Topic   string
	Group   string // durable consumer name
	Handler Handler
}

// Consumer is the single durable subscriber on the book topic. It runs
// independently of the HTTP path and never feeds back into it.
type Consumer struct {
	js     jetstream.JetStream
	cfg    ConsumerConfig
	cancel context.CancelFunc
	done   chan struct{}
}

func NewConsumer(js jetstream.JetStream, cfg ConsumerConfig) *Consumer {
	return &Consumer{js: js, cfg: cfg}
}

// Start creates the durable consumer and begins fetching in the background.
func (c *Consumer) Start(ctx context.Context) error {
	consumer, err := c.js.CreateOrUpdateConsumer(ctx, c.cfg.Stream, jetstream.ConsumerConfig{
		Durable:       c.cfg.Group,
		FilterSubject: c.cfg.Topic,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverNewPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    5,
	})
	if err != nil {
		return fmt.Errorf("events: create consumer %s: %w", c.cfg.Group, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})

	logger.Info("starting book event consumer", map[string]any{
		"group": c.cfg.Group,
		"topic": c.cfg.Topic,
	})

	go c.consumeLoop(ctx, consumer)
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context, consumer jetstream.Consumer) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(5*time.Second))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("fetch book events failed", map[string]any{"error": err.Error()})
			time.Sleep(time.Second)
			continue
		}

		for msg := range msgs.Messages() {
			if err := c.handle(ctx, msg.Data()); err != nil {
				logger.Error("handle book event failed", map[string]any{
					"error":   err.Error(),
					"subject": msg.Subject(),
				})
				_ = msg.Nak()
				continue
			}
			_ = msg.Ack()
		}

		if err := msgs.Error(); err != nil && ctx.Err() == nil {
			logger.Warn("book event batch ended with error", map[string]any{"error": err.Error()})
		}
	}
}

// handle decodes one message and dispatches it on its event type. Messages
// that cannot be decoded or carry an unknown type are logged and dropped.
func (c *Consumer) handle(ctx context.Context, data []byte) error {
	var event BookEvent
	if err := json.Unmarshal(data, &event); err != nil {
		logger.Error("undecodable book event", map[string]any{"error": err.Error()})
		return nil
	}

	metrics.RecordEventConsumed(string(event.EventType))
	logger.Info("received book event", event.fields())

	switch event.EventType {
	case BookCreated:
		return c.cfg.Handler.OnBookCreated(ctx, event)
	case BookUpdated:
		return c.cfg.Handler.OnBookUpdated(ctx, event)
	case BookDeleted:
		return c.cfg.Handler.OnBookDeleted(ctx, event)
	default:
		logger.Warn("unknown book event type", map[string]any{"eventType": string(event.EventType)})
		return nil
	}
}

// Stop cancels the fetch loop and waits for the in-progress batch to finish.
func (c *Consumer) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
}
