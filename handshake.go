package telnet

// handshakeTracker records which opening negotiations haven't been answered
// yet. Three sets: local requests we sent WILL for, remote requests we sent
// DO for, and the terminal-type discovery rounds still owed to us. Entries
// only ever leave, so once the tracker drains it stays drained, and a caller
// can treat emptiness as "the opening handshake settled".
//
// The tracker records what is pending, not for how long. Enforcing a deadline
// and proceeding with default capabilities is the caller's job.
type handshakeTracker struct {
	local  map[TelOptCode]struct{}
	remote map[TelOptCode]struct{}
	ttype  map[int]struct{}
}

func newHandshakeTracker() handshakeTracker {
	return handshakeTracker{
		local:  make(map[TelOptCode]struct{}),
		remote: make(map[TelOptCode]struct{}),
		ttype:  make(map[int]struct{}),
	}
}

func (h *handshakeTracker) expectLocal(code TelOptCode) {
	h.local[code] = struct{}{}
}

func (h *handshakeTracker) expectRemote(code TelOptCode) {
	h.remote[code] = struct{}{}
}

// completeLocal removes a local handshake entry. Safe to call for codes that
// were never pending; an accepted offer we didn't solicit completes nothing.
func (h *handshakeTracker) completeLocal(code TelOptCode) {
	delete(h.local, code)
}

func (h *handshakeTracker) completeRemote(code TelOptCode) {
	delete(h.remote, code)
}

// seedTerminalType registers the three discovery rounds the terminal-type
// cycle will consume.
func (h *handshakeTracker) seedTerminalType() {
	h.ttype[0] = struct{}{}
	h.ttype[1] = struct{}{}
	h.ttype[2] = struct{}{}
}

func (h *handshakeTracker) completeTerminalType(round int) {
	delete(h.ttype, round)
}

func (h *handshakeTracker) clearTerminalType() {
	clear(h.ttype)
}

func (h *handshakeTracker) terminalTypePending() bool {
	return len(h.ttype) > 0
}

func (h *handshakeTracker) remaining() int {
	return len(h.local) + len(h.remote) + len(h.ttype)
}

func (h *handshakeTracker) settled() bool {
	return h.remaining() == 0
}
