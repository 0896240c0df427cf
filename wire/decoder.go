// Package wire frames and unframes telnet byte streams. A Decoder splits a
// reader into the events a telnet.Session consumes; an Encoder serializes the
// session's outbound events back onto a writer. Both directions handle IAC
// escaping and charset conversion, so sessions never touch raw bytes.
package wire

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/mudforge/telnet"
)

// Decoder splits a telnet byte stream into discrete events. Plain text is
// released in chunks as DataEvents; negotiation commands and subnegotiations
// come out as single complete events no matter how the underlying reads were
// chunked.
type Decoder struct {
	scanner *bufio.Scanner
	charset atomic.Pointer[telnet.Charset]
}

// NewDecoder wraps a reader, usually the read side of a net.Conn. Until
// SetCharset is called, inbound text passes through byte for byte.
func NewDecoder(r io.Reader) *Decoder {
	decoder := &Decoder{scanner: bufio.NewScanner(r)}
	decoder.scanner.Split(decoder.scanTelnet)

	return decoder
}

// SetCharset replaces the charset used to decode inbound text. Call it when
// negotiation discovers the peer's real encoding. The swap is safe while
// another goroutine is blocked in Next and applies from the next token.
func (d *Decoder) SetCharset(charset *telnet.Charset) {
	d.charset.Store(charset)
}

// Next blocks until a complete event is available and returns it. The stream
// ending cleanly is reported as io.EOF. NOP and prompt-marker commands are
// absorbed here; they carry nothing a session needs.
func (d *Decoder) Next() (telnet.Event, error) {
	for d.scanner.Scan() {
		token := d.scanner.Bytes()
		if len(token) == 0 {
			continue
		}

		if len(token) > 1 && token[0] == telnet.IAC {
			event, err := parseCommand(token)
			if err != nil {
				return nil, err
			}

			if event == nil {
				continue
			}

			return event, nil
		}

		charset := d.charset.Load()
		if charset == nil {
			return telnet.DataEvent{Text: string(token)}, nil
		}

		text, err := charset.Decode(token)
		if err != nil {
			return nil, err
		}

		return telnet.DataEvent{Text: text}, nil
	}

	if err := d.scanner.Err(); err != nil {
		return nil, err
	}

	return nil, io.EOF
}

// parseCommand turns one complete IAC token from the scanner into an event.
// A nil event with a nil error means the command carries nothing of
// interest.
func parseCommand(data []byte) (telnet.Event, error) {
	switch data[1] {
	case telnet.NOP, telnet.GA, telnet.EOR, telnet.SE:
		return nil, nil
	case telnet.WILL, telnet.WONT, telnet.DO, telnet.DONT:
		if len(data) < 3 {
			return nil, fmt.Errorf("negotiation command without a telopt: %q", streamText(data))
		}

		return telnet.NegotiationEvent{Command: data[1], Option: telnet.TelOptCode(data[2])}, nil
	case telnet.SB:
		if len(data) < 5 || data[len(data)-2] != telnet.IAC || data[len(data)-1] != telnet.SE {
			return nil, fmt.Errorf("subnegotiation did not end with IAC SE: %q", streamText(data))
		}

		return telnet.SubnegotiationEvent{
			Option:  telnet.TelOptCode(data[2]),
			Payload: UnescapeIAC(data[3 : len(data)-2]),
		}, nil
	}

	return nil, fmt.Errorf("command did not have a valid opcode: %q", streamText(data))
}

// streamText renders bytes with command names for error messages, e.g.
// "IAC SB 24".
func streamText(b []byte) string {
	var sb strings.Builder

	for i, value := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(telnet.CommandName(value))
	}

	return sb.String()
}

func (d *Decoder) scanTelnetWithoutEOF(data []byte) (advance int, err error) {
	specialCharIndex := bytes.IndexByte(data, telnet.IAC)

	if specialCharIndex > 0 {
		// Release all data until we get to an IAC
		return specialCharIndex, nil
	} else if specialCharIndex < 0 {
		// No special char, dump everything
		return len(data), nil
	}

	// Release 'IAC IAC' on its own, it's actually escaped text
	if len(data) >= 2 && data[1] == telnet.IAC {
		return 2, nil
	}

	// if it's just IAC by itself, wait for more data
	if len(data) <= 1 {
		return 0, nil
	}

	// IAC GA, IAC EOR, and IAC NOP release on their own
	// SE should never appear here but if it does we should recover by consuming the data
	if data[1] == telnet.GA || data[1] == telnet.NOP || data[1] == telnet.SE || data[1] == telnet.EOR {
		return 2, nil
	}

	// All other codes require at least 3 characters
	if len(data) < 3 {
		return 0, nil
	}

	if data[1] != telnet.SB {
		// Everything else except subnegotiations comes in three code sets
		return 3, nil
	}

	nextIndex := 0

	for {
		nextSpecialCharIndex := bytes.IndexByte(data[nextIndex+1:], telnet.IAC)

		// No more IACs, subnegotiation end is not in buffer yet
		if nextSpecialCharIndex < 0 {
			return 0, nil
		}

		nextIndex += nextSpecialCharIndex + 1
		if len(data) <= nextIndex+1 {
			// IAC is last character, but we need more
			return 0, nil
		}

		if data[nextIndex+1] == telnet.SE {
			// Found subnegotiation end
			return nextIndex + 2, nil
		}

		if data[nextIndex+1] == telnet.IAC {
			// Double 255's should be skipped over
			nextIndex++
		}
	}
}

// scanTelnet is the bufio.SplitFunc behind the decoder. Tokens are either
// runs of text or single complete commands.
func (d *Decoder) scanTelnet(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if len(data) == 0 {
		return 0, nil, nil
	}

	advance, err = d.scanTelnetWithoutEOF(data)

	// A nil token makes the scanner read more input; a non-nil empty token
	// would be handed back to Next without another read.
	if err != nil || (advance == 0 && !atEOF) {
		return advance, nil, err
	}

	if advance == 0 && atEOF {
		return len(data), data, nil
	}

	if advance == 2 && data[0] == telnet.IAC && data[1] == telnet.IAC {
		return 2, data[1:2], nil
	}

	return advance, data[:advance], nil
}
