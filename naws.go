package telnet

// receiveWindowSize parses a window-size report, two big-endian 16-bit
// values, width then height. Undersized payloads are absorbed without
// effect; anything after the fourth byte is tolerated and ignored.
func (s *Session) receiveWindowSize(payload []byte) bool {
	if len(payload) < 4 {
		return false
	}

	width := (uint16(payload[0]) << 8) | uint16(payload[1])
	height := (uint16(payload[2]) << 8) | uint16(payload[3])

	changed := width != s.caps.Width || height != s.caps.Height
	s.caps.Width = width
	s.caps.Height = height

	return changed
}

// resetWindowSize returns the dimensions to their defaults once the peer
// stops reporting its window size, since whatever it told us is no longer
// being kept current.
func (s *Session) resetWindowSize() bool {
	s.caps.Width = defaultWidth
	s.caps.Height = defaultHeight
	return true
}
