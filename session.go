// Package telnet implements the option-negotiation core of a MUD server's
// telnet stack. A Session is a sans-IO state machine for one connection: the
// caller feeds it decoded negotiation commands and subnegotiation payloads,
// and the session answers by appending events to an outbound queue and by
// refining a ClientCapabilities record describing what the peer can do.
// Decoding raw bytes into events and writing events back out belongs to the
// wire package.
package telnet

import "strings"

// SessionConfig carries the per-connection knobs for NewSession.
type SessionConfig struct {
	// Registry decides which telopts negotiate and how. Nil means
	// DefaultRegistry.
	Registry *Registry
	// ServerStatus is sent as an MSSP subnegotiation as soon as the peer
	// accepts MSSP. Leave empty to send nothing automatically.
	ServerStatus map[string]string
}

// Session is the per-connection negotiation engine. It owns the negotiation
// state of every tracked telopt, the capability record derived from the
// peer's answers, and the queue of outbound events the caller drains for
// transmission.
//
// A Session is not safe for concurrent use. Every method is a synchronous
// state transition, so the caller's connection loop must serialize access,
// typically by processing one decoded event at a time.
type Session struct {
	registry *Registry
	options  map[TelOptCode]*optionState

	caps       ClientCapabilities
	handshakes handshakeTracker
	outbound   *eventQueue

	ttypeRound   int
	ttypeLast    string
	ttypeHasLast bool

	serverStatus map[string]string
}

// optionHooks binds negotiation side effects to a telopt. Only the entry
// points an option actually needs are set; everything else stays nil and the
// option negotiates pure state.
type optionHooks struct {
	localEnabled   func(*Session) bool
	localDisabled  func(*Session) bool
	remoteEnabled  func(*Session) bool
	remoteDisabled func(*Session) bool
	subnegotiate   func(*Session, []byte) bool
}

// optionHandlers is the side-effect dispatch table. Adding an option with
// behavior means adding a row here, not widening a switch somewhere.
var optionHandlers = map[TelOptCode]optionHooks{
	TelOptTTYPE: {
		remoteEnabled:  (*Session).beginTerminalTypeCycle,
		remoteDisabled: (*Session).resetTerminalType,
		subnegotiate:   (*Session).receiveTerminalType,
	},
	TelOptNAWS: {
		remoteDisabled: (*Session).resetWindowSize,
		subnegotiate:   (*Session).receiveWindowSize,
	},
	TelOptMSSP: {
		localEnabled: (*Session).sendConfiguredStatus,
	},
}

// NewSession builds a session around a shared registry. The session tracks
// exactly the registry's codes; everything else will be refused on the wire.
func NewSession(config SessionConfig) *Session {
	registry := config.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}

	var serverStatus map[string]string
	if len(config.ServerStatus) > 0 {
		serverStatus = make(map[string]string, len(config.ServerStatus))
		for key, value := range config.ServerStatus {
			serverStatus[key] = value
		}
	}

	session := &Session{
		registry:     registry,
		options:      make(map[TelOptCode]*optionState),
		caps:         newClientCapabilities(),
		handshakes:   newHandshakeTracker(),
		outbound:     newEventQueue(16),
		serverStatus: serverStatus,
	}

	for _, code := range registry.Codes() {
		session.options[code] = &optionState{
			local:  TelOptInactive,
			remote: TelOptInactive,
			hooks:  optionHandlers[code],
		}
	}

	return session
}

// Start queues the opening request volley: WILL for every telopt the registry
// wants active locally, DO for every telopt it wants from the peer, in
// ascending code order. Requesting the peer's terminal type also arms the
// three discovery rounds in the handshake tracker. Call it exactly once,
// before feeding any received events.
func (s *Session) Start() {
	for _, code := range s.registry.Codes() {
		usage, _ := s.registry.Usage(code)
		state := s.options[code]

		if usage&telOptOnlyRequestLocal != 0 {
			s.outbound.push(NegotiationEvent{Command: WILL, Option: code})
			state.local = TelOptRequested
			s.handshakes.expectLocal(code)
		}

		if usage&telOptOnlyRequestRemote != 0 {
			s.outbound.push(NegotiationEvent{Command: DO, Option: code})
			state.remote = TelOptRequested
			s.handshakes.expectRemote(code)

			if code == TelOptTTYPE {
				s.handshakes.seedTerminalType()
			}
		}
	}
}

// ReceiveNegotiate runs one WILL/WONT/DO/DONT command through the state
// machine and reports whether the capability record changed. Replies and
// follow-up requests land on the outbound queue.
//
// The state machine never re-acknowledges an option already in its target
// state, so replayed or reflected commands die here instead of ping-ponging
// between the two sides forever.
func (s *Session) ReceiveNegotiate(command byte, option TelOptCode) bool {
	if command != WILL && command != WONT && command != DO && command != DONT {
		return false
	}

	state, tracked := s.options[option]
	if !tracked {
		// Unregistered telopt
		s.refuseNegotiation(command, option)
		return false
	}

	if command == WONT || command == DONT {
		return s.receiveDeactivate(state, command, option)
	}

	return s.receiveActivate(state, command, option)
}

// receiveActivate handles WILL and DO.
func (s *Session) receiveActivate(state *optionState, command byte, option TelOptCode) bool {
	local := command == DO

	current := state.remote
	allowFlag := TelOptAllowRemote
	if local {
		current = state.local
		allowFlag = TelOptAllowLocal
	}

	if current == TelOptActive {
		// Already turned on
		return false
	}

	usage, _ := s.registry.Usage(option)
	if usage&allowFlag == 0 {
		// Tracked but disallowed telopt
		s.refuseNegotiation(command, option)
		return false
	}

	if current == TelOptInactive {
		// Peer-initiated, needs an accept reply. A Requested option is our
		// own request coming home and completes silently.
		s.outbound.push(NegotiationEvent{Command: acceptCommand(command), Option: option})
	}

	if local {
		state.local = TelOptActive
		s.handshakes.completeLocal(option)

		if state.hooks.localEnabled != nil {
			return state.hooks.localEnabled(s)
		}

		return false
	}

	state.remote = TelOptActive
	s.handshakes.completeRemote(option)

	if state.hooks.remoteEnabled != nil {
		return state.hooks.remoteEnabled(s)
	}

	return false
}

// receiveDeactivate handles WONT and DONT. Refusals of our own requests count
// as handshake completion; revocations of an active option run the disable
// hook.
func (s *Session) receiveDeactivate(state *optionState, command byte, option TelOptCode) bool {
	local := command == DONT

	current := state.remote
	if local {
		current = state.local
	}

	if current == TelOptInactive {
		// Already turned off, and a deactivate never needs a reply
		return false
	}

	changed := false

	if local {
		if current == TelOptRequested {
			s.handshakes.completeLocal(option)
		} else if state.hooks.localDisabled != nil {
			changed = state.hooks.localDisabled(s)
		}

		state.local = TelOptInactive
		return changed
	}

	if current == TelOptRequested {
		s.handshakes.completeRemote(option)

		if option == TelOptTTYPE {
			// A refused terminal-type can never deliver discovery rounds
			s.resetTerminalType()
		}
	} else if state.hooks.remoteDisabled != nil {
		changed = state.hooks.remoteDisabled(s)
	}

	state.remote = TelOptInactive
	return changed
}

// refuseNegotiation queues the protocol-correct refusal for an activation
// request. Deactivations of something that was never on need no reply.
func (s *Session) refuseNegotiation(command byte, option TelOptCode) {
	if command == WILL || command == DO {
		s.outbound.push(NegotiationEvent{Command: refuseCommand(command), Option: option})
	}
}

// ReceiveSubnegotiation routes one complete subnegotiation payload to the
// owning option's handler and reports whether the capability record changed.
// Payloads for untracked codes and for options with no handler are absorbed
// without effect; unsolicited data is not an error.
func (s *Session) ReceiveSubnegotiation(option TelOptCode, payload []byte) bool {
	state, tracked := s.options[option]
	if !tracked {
		// Getting subnegotiations for stuff we haven't agreed to
		return false
	}

	if state.hooks.subnegotiate == nil {
		return false
	}

	return state.hooks.subnegotiate(s, payload)
}

// normalizeLineEndings strips carriage returns and then rewrites every line
// feed as CR LF, yielding canonical telnet line termination no matter which
// convention the caller's text used.
func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	return strings.ReplaceAll(text, "\n", "\r\n")
}

// SendText queues text for transmission exactly as given, aside from line
// ending normalization.
func (s *Session) SendText(text string) {
	if len(text) == 0 {
		return
	}

	s.outbound.push(DataEvent{Text: normalizeLineEndings(text)})
}

// SendLine queues text terminated by exactly one CR LF, whether or not the
// caller supplied one.
func (s *Session) SendLine(text string) {
	line := normalizeLineEndings(text)
	if !strings.HasSuffix(line, "\r\n") {
		line += "\r\n"
	}

	s.outbound.push(DataEvent{Text: line})
}

// SendPrompt queues a prompt line.
//
// TODO: suppress the trailing line feed and emit IAC EOR instead once the
// EOR telopt's active state is consulted for prompt marking.
func (s *Session) SendPrompt(text string) {
	s.SendLine(text)
}

// DrainEvents removes and returns everything currently on the outbound
// queue, oldest first. The caller hands the result to an encoder for
// transmission. Returns nil when nothing is pending.
func (s *Session) DrainEvents() []Event {
	return s.outbound.drain()
}

// Capabilities returns a snapshot of everything negotiation has discovered
// about the peer so far.
func (s *Session) Capabilities() ClientCapabilities {
	return s.caps
}

// LocalState reports the negotiation state of a telopt on our side, or
// TelOptUnknown for codes the registry doesn't track.
func (s *Session) LocalState(option TelOptCode) TelOptState {
	state, tracked := s.options[option]
	if !tracked {
		return TelOptUnknown
	}

	return state.local
}

// RemoteState reports the negotiation state of a telopt on the peer's side,
// or TelOptUnknown for codes the registry doesn't track.
func (s *Session) RemoteState(option TelOptCode) TelOptState {
	state, tracked := s.options[option]
	if !tracked {
		return TelOptUnknown
	}

	return state.remote
}

// PendingNegotiations counts the opening requests and terminal-type rounds
// that haven't been answered yet. The count only ever falls.
func (s *Session) PendingNegotiations() int {
	return s.handshakes.remaining()
}

// NegotiationComplete reports whether every opening request and discovery
// round has been answered one way or the other. Callers typically wait on
// this with a deadline and proceed with default capabilities if the peer
// leaves them hanging.
func (s *Session) NegotiationComplete() bool {
	return s.handshakes.settled()
}
