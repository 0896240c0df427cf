package telnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// terminalTypeReply builds an IS reply payload carrying the given text.
func terminalTypeReply(text string) []byte {
	return append([]byte{ttypeIS}, text...)
}

// newTerminalTypeSession returns a started session whose peer has agreed to
// report terminal types, with the solicitation already drained.
func newTerminalTypeSession() *Session {
	session := newStartedSession()
	session.ReceiveNegotiate(WILL, TelOptTTYPE)
	session.DrainEvents()

	return session
}

// TestTerminalTypeSolicitation verifies the peer accepting the option
// triggers the first SEND request.
func TestTerminalTypeSolicitation(t *testing.T) {
	session := newStartedSession()

	session.ReceiveNegotiate(WILL, TelOptTTYPE)

	assert.Equal(t, []Event{
		SubnegotiationEvent{Option: TelOptTTYPE, Payload: []byte{ttypeSEND}},
	}, session.DrainEvents())
}

// TestTerminalTypeRound0 verifies the first reply sets the client name and
// version, infers color from the name, and solicits the next value.
func TestTerminalTypeRound0(t *testing.T) {
	session := newTerminalTypeSession()

	changed := session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("MUDLET 4.10"))

	assert.True(t, changed)

	caps := session.Capabilities()
	assert.Equal(t, "MUDLET", caps.ClientName)
	assert.Equal(t, "4.10", caps.ClientVersion)
	assert.Equal(t, Color256, caps.Color)

	assert.Equal(t, []Event{
		SubnegotiationEvent{Option: TelOptTTYPE, Payload: []byte{ttypeSEND}},
	}, session.DrainEvents())
}

// TestTerminalTypeRound0NoVersion verifies a bare client name leaves the
// version at its default.
func TestTerminalTypeRound0NoVersion(t *testing.T) {
	session := newTerminalTypeSession()

	changed := session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("TINTIN++"))

	assert.True(t, changed)

	caps := session.Capabilities()
	assert.Equal(t, "TINTIN++", caps.ClientName)
	assert.Equal(t, "UNKNOWN", caps.ClientVersion)
	assert.Equal(t, ColorNone, caps.Color)
}

// TestTerminalTypeUppercases verifies replies are folded to upper case
// before parsing or storage.
func TestTerminalTypeUppercases(t *testing.T) {
	session := newTerminalTypeSession()

	session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("mudlet 4.10"))

	caps := session.Capabilities()
	assert.Equal(t, "MUDLET", caps.ClientName)
	assert.Equal(t, Color256, caps.Color)
}

// TestTerminalTypeCyclingTermination verifies a repeated reply abandons the
// remaining rounds and stops soliciting.
func TestTerminalTypeCyclingTermination(t *testing.T) {
	session := newTerminalTypeSession()

	session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("MUDLET 4.10"))
	session.DrainEvents()

	changed := session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("MUDLET 4.10"))

	assert.False(t, changed)
	assert.Empty(t, session.DrainEvents())

	// Further replies are dead once the cycle ends
	assert.False(t, session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("MTTS 269")))
	assert.Equal(t, "ascii", session.Capabilities().Encoding)

	// With the rounds abandoned, answering the remaining requests settles
	// negotiation completely
	session.ReceiveNegotiate(DO, TelOptSGA)
	session.ReceiveNegotiate(DO, TelOptEOR)
	session.ReceiveNegotiate(WILL, TelOptNAWS)
	session.ReceiveNegotiate(DO, TelOptMSSP)
	assert.True(t, session.NegotiationComplete())
}

// TestTerminalTypeThreeRounds walks the entire discovery cycle: client name,
// terminal type, MTTS bitmask.
func TestTerminalTypeThreeRounds(t *testing.T) {
	session := newTerminalTypeSession()

	changed := session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("TINTIN++ 2.02.41"))
	assert.True(t, changed)
	assert.Equal(t, ColorNone, session.Capabilities().Color)

	changed = session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("XTERM"))
	assert.True(t, changed)
	assert.Equal(t, Color256, session.Capabilities().Color)

	changed = session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("MTTS 333"))
	assert.True(t, changed)

	caps := session.Capabilities()
	assert.Equal(t, "utf8", caps.Encoding)
	assert.True(t, caps.ScreenReader)
	assert.Equal(t, Color256, caps.Color)

	// Two follow-up requests were queued during the cycle, none after the
	// bitmask lands
	assert.Equal(t, []Event{
		SubnegotiationEvent{Option: TelOptTTYPE, Payload: []byte{ttypeSEND}},
		SubnegotiationEvent{Option: TelOptTTYPE, Payload: []byte{ttypeSEND}},
	}, session.DrainEvents())

	assert.False(t, session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("XTERM")))
}

// TestTerminalTypeMTTSBits exercises the individual capability bits and the
// malformed bitmask cases.
func TestTerminalTypeMTTSBits(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		changed bool
		check   func(t *testing.T, caps ClientCapabilities)
	}{
		{
			name:    "ansi",
			reply:   "MTTS 1",
			changed: true,
			check: func(t *testing.T, caps ClientCapabilities) {
				assert.Equal(t, ColorANSI, caps.Color)
			},
		},
		{
			name:    "utf8",
			reply:   "MTTS 4",
			changed: true,
			check: func(t *testing.T, caps ClientCapabilities) {
				assert.Equal(t, "utf8", caps.Encoding)
			},
		},
		{
			name:    "256color",
			reply:   "MTTS 8",
			changed: true,
			check: func(t *testing.T, caps ClientCapabilities) {
				assert.Equal(t, Color256, caps.Color)
			},
		},
		{
			name:    "screen reader",
			reply:   "MTTS 64",
			changed: true,
			check: func(t *testing.T, caps ClientCapabilities) {
				assert.True(t, caps.ScreenReader)
			},
		},
		{
			name:    "unsurfaced bits only",
			reply:   "MTTS 2",
			changed: false,
			check: func(t *testing.T, caps ClientCapabilities) {
				assert.Equal(t, ColorNone, caps.Color)
			},
		},
		{
			name:    "zero mask",
			reply:   "MTTS 0",
			changed: false,
			check:   func(t *testing.T, caps ClientCapabilities) {},
		},
		{
			name:    "unparsable mask",
			reply:   "MTTS banana",
			changed: false,
			check:   func(t *testing.T, caps ClientCapabilities) {},
		},
		{
			name:    "missing marker",
			reply:   "269",
			changed: false,
			check:   func(t *testing.T, caps ClientCapabilities) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newTerminalTypeSession()
			session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("CLIENTX"))
			session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("TERMY"))

			changed := session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply(tt.reply))

			assert.Equal(t, tt.changed, changed)
			tt.check(t, session.Capabilities())
		})
	}
}

// TestTerminalTypeRepeatAtFinalRound verifies repeating the previous value
// in the bitmask round terminates without parsing.
func TestTerminalTypeRepeatAtFinalRound(t *testing.T) {
	session := newTerminalTypeSession()

	session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("CLIENTX"))
	session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("TERMY"))
	session.DrainEvents()

	changed := session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("TERMY"))

	assert.False(t, changed)
	assert.Empty(t, session.DrainEvents())
	assert.Equal(t, "ascii", session.Capabilities().Encoding)
}

// TestTerminalTypeMalformedReplies verifies undersized, mismarked, and
// invalid replies are absorbed without advancing anything.
func TestTerminalTypeMalformedReplies(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "empty", payload: []byte{}},
		{name: "marker only", payload: []byte{ttypeIS}},
		{name: "wrong marker", payload: []byte{ttypeSEND, 'X'}},
		{name: "invalid encoding", payload: []byte{ttypeIS, 0xff, 0xfe}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := newTerminalTypeSession()
			pending := session.PendingNegotiations()

			assert.False(t, session.ReceiveSubnegotiation(TelOptTTYPE, tt.payload))
			assert.Equal(t, "UNKNOWN", session.Capabilities().ClientName)
			assert.Equal(t, pending, session.PendingNegotiations())
			assert.Empty(t, session.DrainEvents())

			// The cycle still works afterward
			require.True(t, session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("MUDLET 4.10")))
		})
	}
}

// TestTerminalTypeClientInitiated verifies a peer volunteering WILL arms the
// discovery rounds even though we never requested the option.
func TestTerminalTypeClientInitiated(t *testing.T) {
	registry := NewRegistry(map[TelOptCode]TelOptUsage{
		TelOptTTYPE: TelOptAllowRemote,
	})

	session := NewSession(SessionConfig{Registry: registry})
	session.Start()
	assert.Empty(t, session.DrainEvents())
	assert.Equal(t, 0, session.PendingNegotiations())

	// A reply with no cycle running goes nowhere
	assert.False(t, session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("MUDLET 4.10")))
	assert.Equal(t, "UNKNOWN", session.Capabilities().ClientName)

	changed := session.ReceiveNegotiate(WILL, TelOptTTYPE)
	assert.False(t, changed)
	assert.Equal(t, []Event{
		NegotiationEvent{Command: DO, Option: TelOptTTYPE},
		SubnegotiationEvent{Option: TelOptTTYPE, Payload: []byte{ttypeSEND}},
	}, session.DrainEvents())
	assert.Equal(t, 3, session.PendingNegotiations())

	assert.True(t, session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("MUDLET 4.10")))
	assert.Equal(t, "MUDLET", session.Capabilities().ClientName)
}

// TestTerminalTypeDisableRestartsDiscovery verifies revoking the option
// abandons the cycle and a later re-enable starts discovery from scratch.
func TestTerminalTypeDisableRestartsDiscovery(t *testing.T) {
	session := newTerminalTypeSession()

	session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("CLIENTX 1.0"))
	session.DrainEvents()

	assert.False(t, session.ReceiveNegotiate(WONT, TelOptTTYPE))
	assert.Equal(t, TelOptInactive, session.RemoteState(TelOptTTYPE))

	// Mid-cycle replies are dead after the revocation
	assert.False(t, session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("XTERM")))
	assert.Equal(t, ColorNone, session.Capabilities().Color)

	// Re-enabling runs a fresh cycle beginning with the client name round
	session.ReceiveNegotiate(WILL, TelOptTTYPE)
	assert.Equal(t, []Event{
		NegotiationEvent{Command: DO, Option: TelOptTTYPE},
		SubnegotiationEvent{Option: TelOptTTYPE, Payload: []byte{ttypeSEND}},
	}, session.DrainEvents())

	assert.True(t, session.ReceiveSubnegotiation(TelOptTTYPE, terminalTypeReply("CLIENTY 2.0")))
	assert.Equal(t, "CLIENTY", session.Capabilities().ClientName)
}
