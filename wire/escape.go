package wire

import (
	"bytes"

	"github.com/mudforge/telnet"
)

// EscapeIAC doubles every 255 byte so it can't read as a command introducer.
// When nothing needs escaping the input is returned unchanged.
func EscapeIAC(data []byte) []byte {
	count := bytes.Count(data, []byte{telnet.IAC})
	if count == 0 {
		return data
	}

	escaped := make([]byte, 0, len(data)+count)
	for _, value := range data {
		if value == telnet.IAC {
			escaped = append(escaped, telnet.IAC)
		}

		escaped = append(escaped, value)
	}

	return escaped
}

// UnescapeIAC collapses doubled 255 bytes back down to one. It always
// returns a fresh slice, so the input may be a reused buffer.
func UnescapeIAC(data []byte) []byte {
	unescaped := make([]byte, 0, len(data))

	for i := 0; i < len(data); i++ {
		unescaped = append(unescaped, data[i])

		if data[i] == telnet.IAC && i+1 < len(data) && data[i+1] == telnet.IAC {
			i++
		}
	}

	return unescaped
}
