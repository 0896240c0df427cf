package telnet

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Terminal-type subnegotiation verbs from RFC 1091.
const (
	ttypeIS   byte = 0
	ttypeSEND byte = 1
)

// color256Clients names the MUD clients known to render 256 colors whether or
// not their terminal-type or MTTS replies say so.
var color256Clients = map[string]struct{}{
	"ATLANTIS":   {},
	"BEIP":       {},
	"CMUD":       {},
	"KILDCLIENT": {},
	"MUDLET":     {},
	"MUSHCLIENT": {},
	"POTATO":     {},
	"PUTTY":      {},
	"TINYFUGUE":  {},
}

// requestTerminalType queues a SEND subnegotiation soliciting the peer's next
// terminal-type value.
func (s *Session) requestTerminalType() {
	s.outbound.push(SubnegotiationEvent{Option: TelOptTTYPE, Payload: []byte{ttypeSEND}})
}

// beginTerminalTypeCycle runs when the peer agrees to report terminal types.
// Start arms the discovery rounds when we requested the option ourselves, so
// an empty pending set here means the peer volunteered and the rounds still
// need arming. Either way the first value gets solicited.
func (s *Session) beginTerminalTypeCycle() bool {
	if !s.handshakes.terminalTypePending() {
		s.handshakes.seedTerminalType()
	}

	s.requestTerminalType()
	return false
}

// resetTerminalType abandons the discovery cycle, returning the pending
// rounds, the round cursor, and the remembered reply to their initial state.
// It runs when the peer refuses or revokes the option and when the cycle
// finishes, so a later re-enable starts discovery from scratch.
func (s *Session) resetTerminalType() bool {
	s.handshakes.clearTerminalType()
	s.ttypeRound = 0
	s.ttypeLast = ""
	s.ttypeHasLast = false
	return false
}

// receiveTerminalType consumes one IS reply and advances the discovery
// cycle. The round cursor decides how the text is interpreted: round 0 is
// the client name, round 1 a terminal type, round 2 the MTTS bitmask. A
// reply identical to the previous one means the peer has run out of values,
// which ends the cycle whatever the round.
func (s *Session) receiveTerminalType(payload []byte) bool {
	if len(payload) < 2 {
		return false
	}

	if !s.handshakes.terminalTypePending() {
		// The cycle never started or already wrapped up
		return false
	}

	if payload[0] != ttypeIS {
		return false
	}

	text := payload[1:]
	if !utf8.Valid(text) {
		return false
	}

	reply := strings.ToUpper(strings.TrimSpace(string(text)))

	if s.ttypeHasLast && reply == s.ttypeLast {
		s.resetTerminalType()
		return false
	}

	switch s.ttypeRound {
	case 0:
		changed := s.receiveClientName(reply)
		s.ttypeLast = reply
		s.ttypeHasLast = true
		s.ttypeRound = 1
		s.handshakes.completeTerminalType(0)
		s.requestTerminalType()

		return changed
	case 1:
		changed := s.applyTerminalHints(reply)
		s.ttypeLast = reply
		s.ttypeRound = 2
		s.handshakes.completeTerminalType(1)
		s.requestTerminalType()

		return changed
	default:
		changed := s.applyMTTS(reply)
		s.resetTerminalType()

		return changed
	}
}

// receiveClientName handles the first reply, which carries the client's name
// and sometimes a version after a single space.
func (s *Session) receiveClientName(reply string) bool {
	name, version, hasVersion := strings.Cut(reply, " ")

	s.caps.ClientName = name
	if hasVersion {
		s.caps.ClientVersion = version
	}

	s.applyTerminalHints(name)
	return true
}

// applyTerminalHints raises the color depth when a terminal-type value gives
// it away: a well-known client name, an xterm-family terminal, or a
// 256-color terminal string.
func (s *Session) applyTerminalHints(value string) bool {
	_, known := color256Clients[value]
	if !known && !strings.HasPrefix(value, "XTERM") && !strings.HasSuffix(value, "-256COLOR") {
		return false
	}

	return s.raiseColor(Color256)
}

// applyMTTS folds a final-round capability bitmask reply into the record.
// The reply must look like "MTTS 269"; anything else is absorbed without
// effect. Bits for capabilities this engine doesn't surface are accepted and
// dropped.
func (s *Session) applyMTTS(reply string) bool {
	value, isMTTS := strings.CutPrefix(reply, "MTTS ")
	if !isMTTS {
		return false
	}

	mask, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || mask <= 0 {
		return false
	}

	changed := false

	if mask&MTTSANSI != 0 && s.raiseColor(ColorANSI) {
		changed = true
	}

	if mask&MTTSUTF8 != 0 && s.caps.Encoding != "utf8" {
		s.caps.Encoding = "utf8"
		changed = true
	}

	if mask&MTTS256Colors != 0 && s.raiseColor(Color256) {
		changed = true
	}

	if mask&MTTSScreenReader != 0 && !s.caps.ScreenReader {
		s.caps.ScreenReader = true
		changed = true
	}

	return changed
}

// raiseColor lifts the color depth to at least the given level, never
// lowering it.
func (s *Session) raiseColor(depth ColorDepth) bool {
	if s.caps.Color >= depth {
		return false
	}

	s.caps.Color = depth
	return true
}
