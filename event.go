package telnet

import (
	"fmt"
	"strconv"
	"strings"
)

// Event is one unit of telnet traffic: a negotiation command, a
// subnegotiation, or plain text. The session produces events into its
// outbound queue and a decoder produces them from the inbound byte stream;
// serializing them back to wire bytes is the wire package's job.
//
// The set of implementations is closed. There is deliberately no "nothing
// happened" event; when the session has nothing to say, its queue is simply
// empty.
type Event interface {
	fmt.Stringer

	isEvent()
}

// NegotiationEvent is a three-byte option negotiation: IAC followed by
// WILL/WONT/DO/DONT and a telopt code.
type NegotiationEvent struct {
	Command byte
	Option  TelOptCode
}

func (e NegotiationEvent) isEvent() {}

func (e NegotiationEvent) String() string {
	return "IAC " + CommandName(e.Command) + " " + e.Option.String()
}

// SubnegotiationEvent is a telopt-specific payload carried between IAC SB and
// IAC SE. The payload holds the undoubled bytes; wire-level IAC escaping is
// the codec's concern.
type SubnegotiationEvent struct {
	Option  TelOptCode
	Payload []byte
}

func (e SubnegotiationEvent) isEvent() {}

func (e SubnegotiationEvent) String() string {
	var sb strings.Builder
	sb.WriteString("IAC SB ")
	sb.WriteString(e.Option.String())

	for _, b := range e.Payload {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Itoa(int(b)))
	}

	sb.WriteString(" IAC SE")
	return sb.String()
}

// DataEvent is plain text. Outbound text has already been normalized to
// CR LF line endings by the send helpers.
type DataEvent struct {
	Text string
}

func (e DataEvent) isEvent() {}

func (e DataEvent) String() string {
	return strconv.Quote(e.Text)
}

// eventQueue is a FIFO ring buffer for outbound events. Events pile up at
// endIndex and drain from startIndex; when the tail hits the end of the
// buffer the live region slides back to zero, growing the buffer first if
// it is running out of slack.
type eventQueue struct {
	buffer     []Event
	startIndex int
	endIndex   int
}

func newEventQueue(size int) *eventQueue {
	return &eventQueue{
		buffer: make([]Event, size),
	}
}

func (q *eventQueue) straighten() {
	if q.startIndex == 0 {
		return
	}

	length := q.endIndex - q.startIndex

	if length > 0 {
		copy(q.buffer[:length], q.buffer[q.startIndex:q.endIndex])
	}

	q.startIndex = 0
	q.endIndex = length
}

func (q *eventQueue) push(events ...Event) {
	for i := 0; i < len(events); i++ {
		if q.endIndex < len(q.buffer) {
			q.buffer[q.endIndex] = events[i]
			q.endIndex++
			continue
		}

		q.straighten()

		if q.endIndex*100/len(q.buffer) > 80 {
			newBuffer := make([]Event, len(q.buffer)*2)
			copy(newBuffer, q.buffer)
			q.buffer = newBuffer
		}

		i--
	}
}

func (q *eventQueue) len() int {
	return q.endIndex - q.startIndex
}

// drain returns every queued event in order and empties the queue. Returns
// nil when nothing is pending.
func (q *eventQueue) drain() []Event {
	if q.len() == 0 {
		return nil
	}

	events := make([]Event, q.len())
	copy(events, q.buffer[q.startIndex:q.endIndex])

	for i := q.startIndex; i < q.endIndex; i++ {
		q.buffer[i] = nil
	}

	q.startIndex = 0
	q.endIndex = 0

	return events
}
