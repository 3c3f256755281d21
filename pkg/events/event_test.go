package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectivityEventsCarryBoolean(t *testing.T) {
	connected := ClientConnected(3)
	assert.Equal(t, TypeClientConnected, connected.EventType())
	assert.Equal(t, true, connected.Payload()["is_connected"])
	assert.Equal(t, 3, connected.Payload()["subscriber_count"])

	disconnected := ClientDisconnected(0)
	assert.Equal(t, TypeClientDisconnected, disconnected.EventType())
	assert.Equal(t, false, disconnected.Payload()["is_connected"])
	assert.Equal(t, 0, disconnected.Payload()["subscriber_count"])
}

func TestStateChangedCarriesKind(t *testing.T) {
	evt := StateChanged("experiment")
	assert.Equal(t, TypeStateChanged, evt.EventType())
	assert.Equal(t, "experiment", evt.Payload()["kind"])
	assert.False(t, evt.Timestamp().IsZero())
}
