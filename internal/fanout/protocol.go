package fanout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charleschow/pennant-race/internal/events"
)

// Envelope is the wire format for events sent over the fanout WebSocket.
type Envelope struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	League    string          `json:"league,omitempty"`
	Timestamp time.Time       `json:"ts"`
	Payload   json.RawMessage `json:"payload"`
}

// MarshalEvent serializes an Event into a JSON-encoded Envelope.
func MarshalEvent(evt events.Event) ([]byte, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	env := Envelope{
		Type:      string(evt.Type),
		ID:        evt.ID,
		League:    evt.League,
		Timestamp: evt.Timestamp,
		Payload:   payload,
	}
	return json.Marshal(env)
}

// UnmarshalEvent deserializes a JSON Envelope back into a typed Event.
func UnmarshalEvent(data []byte) (events.Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return events.Event{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	evt := events.Event{
		ID:        env.ID,
		Type:      events.EventType(env.Type),
		League:    env.League,
		Timestamp: env.Timestamp,
	}

	switch evt.Type {
	case events.EventReportUpdated:
		var ru events.ReportUpdatedEvent
		if err := json.Unmarshal(env.Payload, &ru); err != nil {
			return evt, fmt.Errorf("unmarshal report_updated: %w", err)
		}
		evt.Payload = ru
	case events.EventStatusChange:
		var sc events.StatusChangeEvent
		if err := json.Unmarshal(env.Payload, &sc); err != nil {
			return evt, fmt.Errorf("unmarshal status_change: %w", err)
		}
		evt.Payload = sc
	case events.EventGamesIngested:
		var gi events.GamesIngestedEvent
		if err := json.Unmarshal(env.Payload, &gi); err != nil {
			return evt, fmt.Errorf("unmarshal games_ingested: %w", err)
		}
		evt.Payload = gi
	default:
		return evt, fmt.Errorf("unknown event type: %s", env.Type)
	}

	return evt, nil
}
