package telnet

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventQueueFIFO verifies events come back out in push order and a drain
// empties the queue.
func TestEventQueueFIFO(t *testing.T) {
	queue := newEventQueue(4)

	queue.push(NegotiationEvent{Command: WILL, Option: TelOptSGA})
	queue.push(SubnegotiationEvent{Option: TelOptTTYPE, Payload: []byte{ttypeSEND}})
	queue.push(DataEvent{Text: "hello\r\n"})

	require.Equal(t, 3, queue.len())
	assert.Equal(t, []Event{
		NegotiationEvent{Command: WILL, Option: TelOptSGA},
		SubnegotiationEvent{Option: TelOptTTYPE, Payload: []byte{ttypeSEND}},
		DataEvent{Text: "hello\r\n"},
	}, queue.drain())

	assert.Equal(t, 0, queue.len())
	assert.Nil(t, queue.drain())
}

// TestEventQueueGrowth verifies pushing past the initial capacity keeps
// every event in order.
func TestEventQueueGrowth(t *testing.T) {
	queue := newEventQueue(4)

	for i := 0; i < 20; i++ {
		queue.push(DataEvent{Text: fmt.Sprintf("line %d\r\n", i)})
	}

	require.Equal(t, 20, queue.len())

	events := queue.drain()
	require.Len(t, events, 20)
	for i, event := range events {
		assert.Equal(t, DataEvent{Text: fmt.Sprintf("line %d\r\n", i)}, event)
	}
}

// TestEventQueueReuse verifies a queue keeps working across repeated
// fill-and-drain cycles.
func TestEventQueueReuse(t *testing.T) {
	queue := newEventQueue(4)

	for cycle := 0; cycle < 5; cycle++ {
		for i := 0; i < 7; i++ {
			queue.push(NegotiationEvent{Command: DO, Option: TelOptCode(i)})
		}

		events := queue.drain()
		require.Len(t, events, 7)
		assert.Equal(t, NegotiationEvent{Command: DO, Option: TelOptCode(6)}, events[6])
	}
}

// TestEventStrings verifies the debug representations of each event type.
func TestEventStrings(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected string
	}{
		{
			name:     "negotiation",
			event:    NegotiationEvent{Command: DO, Option: TelOptTTYPE},
			expected: "IAC DO TTYPE",
		},
		{
			name:     "negotiation unknown telopt",
			event:    NegotiationEvent{Command: WILL, Option: TelOptCode(99)},
			expected: "IAC WILL UNKNOWN-99",
		},
		{
			name:     "subnegotiation",
			event:    SubnegotiationEvent{Option: TelOptTTYPE, Payload: []byte{ttypeSEND}},
			expected: "IAC SB TTYPE 1 IAC SE",
		},
		{
			name:     "subnegotiation empty payload",
			event:    SubnegotiationEvent{Option: TelOptGMCP},
			expected: "IAC SB GMCP IAC SE",
		},
		{
			name:     "data",
			event:    DataEvent{Text: "look\r\n"},
			expected: `"look\r\n"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.String())
		})
	}
}
