package telnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEncodeServerStatus verifies the payload layout and that key order is
// deterministic regardless of map iteration.
func TestEncodeServerStatus(t *testing.T) {
	status := map[string]string{
		"PLAYERS":  "52",
		"NAME":     "MudForge",
		"CODEBASE": "custom",
	}

	expected := []byte("\x01CODEBASE\x02custom\x01NAME\x02MudForge\x01PLAYERS\x0252")

	for i := 0; i < 10; i++ {
		assert.Equal(t, expected, EncodeServerStatus(status))
	}
}

// TestEncodeServerStatusEmpty verifies an empty table encodes to no bytes.
func TestEncodeServerStatusEmpty(t *testing.T) {
	assert.Empty(t, EncodeServerStatus(nil))
}

// TestSendServerStatusGate verifies nothing goes out until the peer accepts
// MSSP.
func TestSendServerStatusGate(t *testing.T) {
	session := newStartedSession()
	status := map[string]string{"NAME": "MudForge"}

	assert.False(t, session.SendServerStatus(status))
	assert.Empty(t, session.DrainEvents())

	session.ReceiveNegotiate(DO, TelOptMSSP)
	session.DrainEvents()

	require.True(t, session.SendServerStatus(status))
	assert.Equal(t, []Event{
		SubnegotiationEvent{Option: TelOptMSSP, Payload: []byte("\x01NAME\x02MudForge")},
	}, session.DrainEvents())
}

// TestSendServerStatusEmptyTable verifies an empty table is never sent even
// with the option active.
func TestSendServerStatusEmptyTable(t *testing.T) {
	session := newStartedSession()
	session.ReceiveNegotiate(DO, TelOptMSSP)
	session.DrainEvents()

	assert.False(t, session.SendServerStatus(nil))
	assert.Empty(t, session.DrainEvents())
}

// TestConfiguredStatusAutoSend verifies a session built with a status table
// pushes it the moment MSSP comes up, without counting as a capability
// change.
func TestConfiguredStatusAutoSend(t *testing.T) {
	session := NewSession(SessionConfig{
		ServerStatus: map[string]string{"NAME": "MudForge"},
	})
	session.Start()
	session.DrainEvents()

	changed := session.ReceiveNegotiate(DO, TelOptMSSP)

	assert.False(t, changed)
	assert.Equal(t, []Event{
		SubnegotiationEvent{Option: TelOptMSSP, Payload: []byte("\x01NAME\x02MudForge")},
	}, session.DrainEvents())
}
