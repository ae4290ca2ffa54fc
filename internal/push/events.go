package push

import (
	"encoding/json"
	"fmt"
)

// EventType names the push notifications the hub emits
type EventType string

const (
	// EventConnect marks a (re)established push connection. Log only.
	EventConnect EventType = "connect"
	// EventStatusUpdate carries the assistant's state machine transitions
	EventStatusUpdate EventType = "status_update"
	// EventNewMessage carries a chat message (user transcription or
	// assistant reply)
	EventNewMessage EventType = "new_message"
	// EventRefreshStates asks the client for an immediate reconciliation
	// pass outside the normal poll cadence
	EventRefreshStates EventType = "refresh_states"
)

// StatusUpdate is the payload of a status_update event
type StatusUpdate struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewMessage is the payload of a new_message event
type NewMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Event is a decoded push notification. Exactly one payload field is set,
// matching Type; refresh_states and connect carry none.
type Event struct {
	Type    EventType
	Status  *StatusUpdate
	Message *NewMessage
}

// frame is the wire shape of a push notification
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// DecodeFrame parses one websocket text frame into an Event. Unknown event
// names return an error so the listener can log and skip them without
// dropping the connection.
func DecodeFrame(raw []byte) (Event, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Event{}, fmt.Errorf("malformed push frame: %w", err)
	}

	switch EventType(f.Event) {
	case EventConnect:
		return Event{Type: EventConnect}, nil

	case EventStatusUpdate:
		var payload StatusUpdate
		if err := json.Unmarshal(f.Data, &payload); err != nil {
			return Event{}, fmt.Errorf("malformed status_update payload: %w", err)
		}
		return Event{Type: EventStatusUpdate, Status: &payload}, nil

	case EventNewMessage:
		var payload NewMessage
		if err := json.Unmarshal(f.Data, &payload); err != nil {
			return Event{}, fmt.Errorf("malformed new_message payload: %w", err)
		}
		return Event{Type: EventNewMessage, Message: &payload}, nil

	case EventRefreshStates:
		return Event{Type: EventRefreshStates}, nil

	default:
		return Event{}, fmt.Errorf("unknown push event %q", f.Event)
	}
}
