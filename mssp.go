package telnet

import "slices"

// MSSP payload markers. Each key in a status table rides behind a VAR byte
// and each value behind a VAL byte.
const (
	msspVar byte = 1
	msspVal byte = 2
)

// EncodeServerStatus renders a status table as an MSSP subnegotiation
// payload. Keys are emitted in sorted order so the same table always
// produces the same bytes.
func EncodeServerStatus(status map[string]string) []byte {
	keys := make([]string, 0, len(status))
	for key := range status {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	size := 0
	for _, key := range keys {
		size += 2 + len(key) + len(status[key])
	}

	payload := make([]byte, 0, size)
	for _, key := range keys {
		payload = append(payload, msspVar)
		payload = append(payload, key...)
		payload = append(payload, msspVal)
		payload = append(payload, status[key]...)
	}

	return payload
}

// SendServerStatus queues an MSSP subnegotiation carrying the given status
// table and reports whether it was sent. Nothing is queued until the peer
// has accepted MSSP, and an empty table is never sent.
func (s *Session) SendServerStatus(status map[string]string) bool {
	if s.LocalState(TelOptMSSP) != TelOptActive || len(status) == 0 {
		return false
	}

	s.outbound.push(SubnegotiationEvent{Option: TelOptMSSP, Payload: EncodeServerStatus(status)})
	return true
}

// sendConfiguredStatus pushes the session's configured status table the
// moment the peer accepts MSSP.
func (s *Session) sendConfiguredStatus() bool {
	s.SendServerStatus(s.serverStatus)
	return false
}
