// Package activity keeps an in-process, event-sourced log of deployment
// attempts on an embedded JetStream stream.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/mark3labs/storelaunch/internal/deploy"
	"github.com/mark3labs/storelaunch/internal/logger"
	"github.com/mark3labs/storelaunch/internal/nats"
)

// Event is one entry of the activity log.
type Event struct {
	ID        string          `json:"id"`        // stream sequence
	Timestamp time.Time       `json:"timestamp"` // when it happened
	Subdomain string          `json:"subdomain"`
	Type      string          `json:"type"`   // deployment, wizard
	Action    string          `json:"action"` // started, accepted, progress, ...
	Meta      json.RawMessage `json:"meta"`
	Data      string          `json:"data"`
}

// Store publishes and replays activity events.
type Store struct {
	js     jetstream.JetStream
	stream jetstream.Stream

	// Set by Open.
	embedded *nats.Embedded
}

// NewStore wraps an existing JetStream context and stream.
func NewStore(js jetstream.JetStream, stream jetstream.Stream) *Store {
	return &Store{js: js, stream: stream}
}

// Open starts an embedded server holding the activity stream. Close
// releases it.
func Open(ctx context.Context) (*Store, error) {
	e, err := nats.Start(ctx)
	if err != nil {
		return nil, err
	}
	s := NewStore(e.JS, e.Stream)
	s.embedded = e
	return s, nil
}

// Close waits briefly for outstanding async publishes, then shuts down
// resources created by Open. It is a no-op for stores made with NewStore.
func (s *Store) Close() error {
	if s.embedded == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := s.flush(ctx); err != nil {
		logger.Warn("Closing activity log with %d events unacknowledged", s.js.PublishAsyncPending())
	}
	err := s.embedded.Close()
	s.embedded = nil
	return err
}

const flushTimeout = 2 * time.Second

// flush waits until every async publish has been acknowledged.
func (s *Store) flush(ctx context.Context) error {
	select {
	case <-s.js.PublishAsyncComplete():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Publish appends an event to the log.
func (s *Store) Publish(ctx context.Context, event Event) (*jetstream.PubAck, error) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := nats.SubjectForEvent(event.Subdomain, event.Type)
	ack, err := s.js.Publish(ctx, subject, data)
	if err != nil {
		logger.Error("Failed to publish event to subject %s: %v", subject, err)
		return nil, fmt.Errorf("failed to publish event: %w", err)
	}
	return ack, nil
}

// publishAsync appends an event without waiting for the stream ack.
// Failed acks are reported by the JetStream error handler.
func (s *Store) publishAsync(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := nats.SubjectForEvent(event.Subdomain, event.Type)
	if _, err := s.js.PublishAsync(subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// deploymentMeta is the Meta payload of deployment events.
type deploymentMeta struct {
	Attempt       uint64         `json:"attempt"`
	Progress      float64        `json:"progress"`
	TimeRemaining int            `json:"time_remaining"`
	Result        *deploy.Result `json:"result,omitempty"`
}

// Recorder returns a deploy.EventSink writing tracker events to the log.
// Events are published without waiting for acks, so recording never blocks
// the tracker's callers on a stream round trip. Failures are logged and
// dropped.
func (s *Store) Recorder() deploy.EventSink {
	return deploy.SinkFunc(func(e deploy.Event) {
		meta, err := json.Marshal(deploymentMeta{
			Attempt:       e.Attempt,
			Progress:      e.Progress,
			TimeRemaining: e.TimeRemaining,
			Result:        e.Result,
		})
		if err != nil {
			logger.Warn("Dropping deployment event: %v", err)
			return
		}
		if err := s.publishAsync(Event{
			Subdomain: e.Subdomain,
			Type:      nats.EventTypeDeployment,
			Action:    string(e.Kind),
			Meta:      meta,
			Data:      e.Error,
		}); err != nil {
			logger.Warn("Dropping deployment event: %v", err)
		}
	})
}

// RecordStep logs a wizard navigation to step.
func (s *Store) RecordStep(ctx context.Context, subdomain string, step int, title string) error {
	meta, err := json.Marshal(struct {
		Step int `json:"step"`
	}{step})
	if err != nil {
		return err
	}
	_, err = s.Publish(ctx, Event{
		Subdomain: subdomain,
		Type:      nats.EventTypeWizard,
		Action:    "step",
		Meta:      meta,
		Data:      title,
	})
	return err
}

// Load replays every event recorded for subdomain and reduces them into a
// Log. Events still awaiting their ack are waited for first.
func (s *Store) Load(ctx context.Context, subdomain string) (*Log, error) {
	if err := s.flush(ctx); err != nil {
		return nil, fmt.Errorf("failed to flush pending events: %w", err)
	}
	consumer, err := s.stream.CreateOrUpdateConsumer(ctx, jetstream.ConsumerConfig{
		FilterSubject: nats.SubjectForStore(subdomain),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}

	log := &Log{Subdomain: subdomain}
	const batchSize = 1000
	for {
		msgs, err := consumer.FetchNoWait(batchSize)
		if err != nil {
			break
		}

		n := 0
		for msg := range msgs.Messages() {
			n++
			var event Event
			if err := json.Unmarshal(msg.Data(), &event); err != nil {
				logger.Warn("Skipping malformed activity event: %v", err)
				_ = msg.Ack()
				continue
			}
			if event.ID == "" {
				if meta, err := msg.Metadata(); err == nil {
					event.ID = fmt.Sprintf("%d", meta.Sequence.Stream)
				}
			}
			log.Apply(event)
			_ = msg.Ack()
		}
		if n < batchSize {
			break
		}
	}

	logger.Debug("Activity loaded for %q: %d attempts, %d steps", subdomain, len(log.Attempts), len(log.Steps))
	return log, nil
}
