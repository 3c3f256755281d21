package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "STATE_CHANGED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeStateChanged       = "STATE_CHANGED"
	TypeResultSaved        = "RESULT_SAVED"
	TypeClientConnected    = "CLIENT_CONNECTED"
	TypeClientDisconnected = "CLIENT_DISCONNECTED"
)

// StateChanged carries the kind of the state the session just entered.
// Subscribers that need the full state read it from the session manager;
// the event only announces that a transition happened.
func StateChanged(kind string) Event {
	return BaseEvent{
		Type:       TypeStateChanged,
		Data:       map[string]interface{}{"kind": kind},
		OccurredAt: time.Now(),
	}
}

func ResultSaved(experimentKey, resultKey string) Event {
	return BaseEvent{
		Type: TypeResultSaved,
		Data: map[string]interface{}{
			"experiment_key": experimentKey,
			"result_key":     resultKey,
		},
		OccurredAt: time.Now(),
	}
}

// ClientConnected and ClientDisconnected carry the connectivity boolean
// explicitly so consoles read it from the payload instead of inferring
// it from the event name.
func ClientConnected(count int) Event {
	return BaseEvent{
		Type: TypeClientConnected,
		Data: map[string]interface{}{
			"is_connected":     true,
			"subscriber_count": count,
		},
		OccurredAt: time.Now(),
	}
}

func ClientDisconnected(count int) Event {
	return BaseEvent{
		Type: TypeClientDisconnected,
		Data: map[string]interface{}{
			"is_connected":     false,
			"subscriber_count": count,
		},
		OccurredAt: time.Now(),
	}
}
