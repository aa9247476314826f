package nats

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"idea-contract-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	StreamName    = "EVENTS"
	subjectPrefix = "events."
	timestampKey  = "occurred_at"
)

func connect(url string) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	return nc, js, nil
}

// Subject maps an event type onto the stream's subject space.
func Subject(eventType string) string {
	return subjectPrefix + eventType
}

// EncodeEvent flattens an event into the JSON body stored on the stream.
// The event time travels under "occurred_at".
func EncodeEvent(event events.Event) ([]byte, error) {
	payload := make(map[string]interface{}, len(event.Payload())+1)
	for k, v := range event.Payload() {
		payload[k] = v
	}
	payload[timestampKey] = event.Timestamp().UTC().Format(time.RFC3339Nano)
	return json.Marshal(payload)
}

// DecodeEvent rebuilds an event from its subject and JSON payload.
func DecodeEvent(subject string, payload map[string]interface{}) events.BaseEvent {
	occurredAt := time.Now()
	if raw, ok := payload[timestampKey].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			occurredAt = t
		}
		delete(payload, timestampKey)
	}
	return events.BaseEvent{
		Type:       strings.TrimPrefix(subject, subjectPrefix),
		Data:       payload,
		OccurredAt: occurredAt,
	}
}
