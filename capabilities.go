package telnet

// Capability record defaults. 78x24 rather than 80x24 because a number of
// older clients wrap at 79 columns, and "ascii" until the peer proves it
// handles more.
const (
	defaultClientName = "UNKNOWN"
	defaultEncoding   = "ascii"
	defaultWidth      = 78
	defaultHeight     = 24
)

// ColorDepth describes how much color the peer's terminal has admitted to
// supporting. The zero value means it never told us anything.
type ColorDepth byte

const (
	// ColorNone - no color support has been discovered
	ColorNone ColorDepth = iota
	// ColorANSI - the basic 16 ANSI colors
	ColorANSI
	// Color256 - the 256-color xterm palette
	Color256
)

func (c ColorDepth) String() string {
	switch c {
	case ColorANSI:
		return "ansi"
	case Color256:
		return "256-color"
	default:
		return "none"
	}
}

// MTTS capability bitmask, reported by compliant clients in the final round
// of terminal-type cycling as "MTTS <decimal>".
const (
	MTTSANSI = 1 << iota
	MTTSVT100
	MTTSUTF8
	MTTS256Colors
	MTTSMouseTracking
	MTTSOSCColorPalette
	MTTSScreenReader
	MTTSProxy
	MTTSTrueColor
	MTTSMNES
	MTTSMSLP
	MTTSSSL
)

// ClientCapabilities is everything the session has learned about the peer
// through negotiation. It starts out pessimistic and individual fields are
// upgraded as subnegotiations arrive. Read it through Session.Capabilities
// after any call that reports a change.
type ClientCapabilities struct {
	// ClientName is the peer's self-reported client software, uppercased,
	// e.g. "MUDLET". "UNKNOWN" until terminal-type discovery delivers.
	ClientName string
	// ClientVersion is the peer's self-reported client version, uppercased.
	ClientVersion string
	// Encoding is the text encoding the peer is believed to accept, "ascii"
	// or "utf8".
	Encoding string
	// Color is the deepest color support the peer has admitted to.
	Color ColorDepth
	// Width and Height are the peer's visible text area in cells, from NAWS.
	Width  uint16
	Height uint16
	// OOB reports whether an out-of-band data channel (GMCP/MSDP) is live.
	// Negotiating those subprotocols is left to a higher layer, so the core
	// never sets this itself.
	OOB bool
	// ScreenReader reports that the peer asked for screen-reader-friendly
	// output via MTTS.
	ScreenReader bool
}

func newClientCapabilities() ClientCapabilities {
	return ClientCapabilities{
		ClientName:    defaultClientName,
		ClientVersion: defaultClientName,
		Encoding:      defaultEncoding,
		Width:         defaultWidth,
		Height:        defaultHeight,
	}
}
