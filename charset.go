package telnet

import (
	"errors"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

// Charset converts between the UTF-8 text this library traffics in and the
// encoding a peer actually accepts. Sessions speak UTF-8 internally; a
// Charset sits at the wire boundary, built from the encoding name in the
// session's capability record and rebuilt if that name changes.
type Charset struct {
	name    string
	encoder *encoding.Encoder
	decoder transform.Transformer
}

// NewCharset builds a charset from an encoding name. The capability record
// names "ascii" and "utf8" are understood directly; anything else is looked
// up in the IANA index.
func NewCharset(name string) (*Charset, error) {
	lower := strings.ToLower(name)

	if lower == "utf8" || lower == "utf-8" {
		// A utf-8 character set will replace bad runes with the replacement
		// character but otherwise not touch the text. We use an encoder on
		// the decode side as well because the Replacement encoding works
		// weird- see the difference between the decoder & encoder behaviors
		return &Charset{
			name:    "UTF-8",
			encoder: encoding.Replacement.NewEncoder(),
			decoder: encoding.Replacement.NewEncoder(),
		}, nil
	}

	if lower == "ascii" {
		name = "US-ASCII"
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, errors.New("ianaindex: unsupported encoding")
	}

	ianaName, err := ianaindex.IANA.Name(enc)
	if err != nil {
		return nil, err
	}

	charset := &Charset{
		name:    ianaName,
		encoder: encoding.ReplaceUnsupported(enc.NewEncoder()),
		decoder: enc.NewDecoder(),
	}

	if ianaName == "US-ASCII" {
		// Allow the remote to send us UTF-8 even if we think we're ascii.
		// We'll be good citizens and only send ASCII.
		charset.decoder = encoding.Replacement.NewEncoder()
	}

	return charset, nil
}

// Name returns the canonical name of the character set, e.g. "US-ASCII".
func (c *Charset) Name() string {
	return c.name
}

// Encode converts UTF-8 text into the charset's encoding. Runes the encoding
// cannot represent are substituted rather than failing the write.
func (c *Charset) Encode(text string) ([]byte, error) {
	return c.encoder.Bytes([]byte(text))
}

// Decode converts bytes in the charset's encoding into UTF-8 text.
func (c *Charset) Decode(raw []byte) (string, error) {
	decoded, _, err := transform.Bytes(c.decoder, raw)
	if err != nil {
		return "", err
	}

	return string(decoded), nil
}
