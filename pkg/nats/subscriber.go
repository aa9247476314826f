package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"idea-contract-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler processes one event. A returned error makes JetStream redeliver it.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber consumes events from the EVENTS stream through durable consumers.
type Subscriber struct {
	nc      *nats.Conn
	js      jetstream.JetStream
	onError func(subject string, err error)
}

type SubscriberOption func(*Subscriber)

// WithErrorHandler receives decode and handler failures. Without it they are dropped silently.
func WithErrorHandler(fn func(subject string, err error)) SubscriberOption {
	return func(s *Subscriber) { s.onError = fn }
}

func NewSubscriber(url string, opts ...SubscriberOption) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	s := &Subscriber{nc: nc, js: js, onError: func(string, error) {}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Subscribe registers a handler for a subject pattern under a durable name,
// so messages published while the process was down are still delivered.
func (s *Subscriber) Subscribe(subject string, durableName string, handler EventHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(context.Background(), StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer %s: %w", durableName, err)
	}

	_, err = consumer.Consume(func(msg jetstream.Msg) {
		var payload map[string]interface{}
		if err := json.Unmarshal(msg.Data(), &payload); err != nil {
			// poison message, redelivery will not fix it
			s.onError(msg.Subject(), fmt.Errorf("decode event: %w", err))
			_ = msg.Term()
			return
		}

		if err := handler(context.Background(), DecodeEvent(msg.Subject(), payload)); err != nil {
			s.onError(msg.Subject(), err)
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming %s: %w", subject, err)
	}
	return nil
}

func (s *Subscriber) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
