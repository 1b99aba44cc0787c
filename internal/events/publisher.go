package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/ice-lfernandes/spring-boot-arconia/internal/logger"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/metrics"
)

const defaultAckWait = 30 * time.Second

var errAckTimeout = errors.New("timed out waiting for publish ack")

// sendFunc hands a message to the broker and returns the channels on which
// the broker reports the outcome.
type sendFunc func(msg *nats.Msg) (<-chan *jetstream.PubAck, <-chan error, error)

// Publisher sends BookEvents to a single topic. Sends are asynchronous and
// their outcome is only logged; nothing is returned to the caller and nothing
// is retried.
type Publisher struct {
	send     sendFunc
	topic    string
	ackWait  time.Duration
	inflight sync.WaitGroup
}

func NewPublisher(js jetstream.JetStream, topic string) *Publisher {
	return newPublisher(func(msg *nats.Msg) (<-chan *jetstream.PubAck, <-chan error, error) {
		future, err := js.PublishMsgAsync(msg)
		if err != nil {
			return nil, nil, err
		}
		return future.Ok(), future.Err(), nil
	}, topic)
}

func newPublisher(send sendFunc, topic string) *Publisher {
	return &Publisher{
		send:    send,
		topic:   topic,
		ackWait: defaultAckWait,
	}
}

// Publish builds a BookEvent with a fresh id and the current time and sends
// it keyed by that id.
func (p *Publisher) Publish(eventType EventType, bookID int64, title, author string) {
	event := BookEvent{
		EventID:    uuid.NewString(),
		EventType:  eventType,
		BookID:     bookID,
		BookTitle:  title,
		BookAuthor: author,
		Timestamp:  time.Now().UTC(),
	}

	logger.Info("sending book event", event.fields())

	data, err := json.Marshal(event)
	if err != nil {
		p.failed(event, fmt.Errorf("marshal event: %w", err))
		return
	}

	msg := nats.NewMsg(p.topic)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, event.EventID)

	ok, errc, err := p.send(msg)
	if err != nil {
		p.failed(event, err)
		return
	}

	p.inflight.Add(1)
	go p.await(event, ok, errc)
}

func (p *Publisher) await(event BookEvent, ok <-chan *jetstream.PubAck, errc <-chan error) {
	defer p.inflight.Done()

	timer := time.NewTimer(p.ackWait)
	defer timer.Stop()

	select {
	case ack := <-ok:
		metrics.RecordEventPublished(string(event.EventType), true)
		logger.Info("book event sent", map[string]any{
			"eventId":   event.EventID,
			"topic":     p.topic,
			"stream":    ack.Stream,
			"sequence":  ack.Sequence,
			"duplicate": ack.Duplicate,
		})
	case err := <-errc:
		p.failed(event, err)
	case <-timer.C:
		p.failed(event, errAckTimeout)
	}
}

func (p *Publisher) failed(event BookEvent, err error) {
	metrics.RecordEventPublished(string(event.EventType), false)
	fields := event.fields()
	fields["topic"] = p.topic
	fields["error"] = err.Error()
	logger.Error("failed to send book event", fields)
}

// Close waits for outstanding publish outcomes or until ctx is done.
func (p *Publisher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
