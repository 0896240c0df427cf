package wire

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"

	"github.com/mudforge/telnet"
)

// Encoder serializes session events onto a writer, handling charset
// conversion and IAC escaping on the way out.
type Encoder struct {
	w       io.Writer
	charset atomic.Pointer[telnet.Charset]
}

// NewEncoder wraps a writer, usually the write side of a net.Conn. Until
// SetCharset is called, outbound text is written byte for byte.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// SetCharset replaces the charset used to encode outbound text. Like the
// decoder's, the swap is safe from another goroutine.
func (e *Encoder) SetCharset(charset *telnet.Charset) {
	e.charset.Store(charset)
}

// WriteEvents serializes a batch of events in order, usually the result of a
// session's DrainEvents.
func (e *Encoder) WriteEvents(events []telnet.Event) error {
	for _, event := range events {
		if err := e.WriteEvent(event); err != nil {
			return err
		}
	}

	return nil
}

// WriteEvent serializes one event.
func (e *Encoder) WriteEvent(event telnet.Event) error {
	switch typed := event.(type) {
	case telnet.NegotiationEvent:
		return e.writeRaw([]byte{telnet.IAC, typed.Command, byte(typed.Option)})
	case telnet.SubnegotiationEvent:
		return e.writeSubnegotiation(typed)
	case telnet.DataEvent:
		return e.writeText(typed.Text)
	}

	return fmt.Errorf("unwritable event type %T", event)
}

func (e *Encoder) writeSubnegotiation(event telnet.SubnegotiationEvent) error {
	payload := EscapeIAC(event.Payload)

	b := make([]byte, 0, len(payload)+5)
	b = append(b, telnet.IAC, telnet.SB, byte(event.Option))
	b = append(b, payload...)
	b = append(b, telnet.IAC, telnet.SE)

	return e.writeRaw(b)
}

func (e *Encoder) writeText(text string) error {
	raw := []byte(text)

	if charset := e.charset.Load(); charset != nil {
		encoded, err := charset.Encode(text)
		if err != nil {
			return err
		}

		raw = encoded
	}

	return e.writeRaw(EscapeIAC(raw))
}

// writeRaw pushes bytes at the writer, retrying while the error is a
// temporary network condition.
func (e *Encoder) writeRaw(b []byte) error {
	for {
		_, err := e.w.Write(b)

		var netError net.Error
		if errors.As(err, &netError) && netError.Temporary() {
			continue
		}

		return err
	}
}
