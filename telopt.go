package telnet

import "strconv"

// TelOptCode - each telopt has a unique identification number between 0 and 255
type TelOptCode byte

// Telopt codes this library knows about. Codes absent from a session's
// registry are refused outright, so listing a code here does not by itself
// enable anything.
const (
	// TelOptSGA - Suppress Go-Ahead. Negotiated by nearly every MUD server to
	// move the connection off the ancient half-duplex default.
	TelOptSGA TelOptCode = 3
	// TelOptTTYPE - Terminal Type. Drives the multi-round MTTS capability
	// discovery cycle.
	TelOptTTYPE TelOptCode = 24
	// TelOptEOR - negotiates permission to use the IAC EOR prompt marker.
	TelOptEOR TelOptCode = 25
	// TelOptNAWS - Negotiate About Window Size. The peer reports its visible
	// text area as two 16-bit dimensions.
	TelOptNAWS TelOptCode = 31
	// TelOptLINEMODE - the peer promises not to send anything without a line
	// terminator.
	TelOptLINEMODE TelOptCode = 34
	// TelOptMNES - Mud New-Environ Standard, an environment reporting variant.
	TelOptMNES TelOptCode = 39
	// TelOptMSDP - Mud Server Data Protocol, a generic out-of-band data channel.
	TelOptMSDP TelOptCode = 69
	// TelOptMSSP - Mud Server Status Protocol. The server volunteers key/value
	// facts about itself after activation.
	TelOptMSSP TelOptCode = 70
	// TelOptMCCP2 - Mud Client Compression Protocol v2 (server-to-client).
	TelOptMCCP2 TelOptCode = 86
	// TelOptMCCP3 - Mud Client Compression Protocol v3 (client-to-server).
	TelOptMCCP3 TelOptCode = 87
	// TelOptMXP - Mud eXtension Protocol hypermedia markup.
	TelOptMXP TelOptCode = 91
	// TelOptGMCP - Generic Mud Communication Protocol, JSON out-of-band data.
	TelOptGMCP TelOptCode = 201
)

var telOptNames = map[TelOptCode]string{
	TelOptSGA:      "SGA",
	TelOptTTYPE:    "TTYPE",
	TelOptEOR:      "EOR",
	TelOptNAWS:     "NAWS",
	TelOptLINEMODE: "LINEMODE",
	TelOptMNES:     "MNES",
	TelOptMSDP:     "MSDP",
	TelOptMSSP:     "MSSP",
	TelOptMCCP2:    "MCCP2",
	TelOptMCCP3:    "MCCP3",
	TelOptMXP:      "MXP",
	TelOptGMCP:     "GMCP",
}

func (c TelOptCode) String() string {
	name, hasName := telOptNames[c]
	if !hasName {
		return "UNKNOWN-" + strconv.Itoa(int(c))
	}

	return name
}

// TelOptUsage indicates how a particular telopt is supposed to be used by the
// session.  Whether it is permitted to be activated locally or on the remote, and
// whether we should request activation locally or on the remote when the session starts.
type TelOptUsage byte

// There's no situation where we'd want to request usage of a telopt but not allow the remote to
// propose it, so the TelOptRequestRemote/Local exposed to consumers includes both flags

const (
	// TelOptAllowRemote - if the remote requests to activate this telopt on their side,
	// we will permit it
	TelOptAllowRemote TelOptUsage = 1 << iota
	telOptOnlyRequestRemote
	// TelOptAllowLocal - if the remote requests that we activate this telopt on our side,
	// we will comply
	TelOptAllowLocal
	telOptOnlyRequestLocal
)

const (
	// TelOptRequestRemote - we will request that the remote activate this telopt during
	// session startup
	TelOptRequestRemote TelOptUsage = TelOptAllowRemote | telOptOnlyRequestRemote
	// TelOptRequestLocal - we will request that the remote allow us to activate this
	// telopt on our side during session startup
	TelOptRequestLocal TelOptUsage = TelOptAllowLocal | telOptOnlyRequestLocal
)

// TelOptState indicates whether the telopt is currently active, inactive, or other
type TelOptState byte

const (
	// TelOptUnknown is the zero value for the telopt state value. It is only reported
	// for codes the session's registry does not track
	TelOptUnknown TelOptState = iota
	// TelOptInactive indicates that the option is not currently active
	TelOptInactive
	// TelOptRequested indicates that this side has sent a request to activate the telopt
	// to the other party but has not yet heard back
	TelOptRequested
	// TelOptActive indicates that the option was activated by a completed negotiation
	TelOptActive
)

func (s TelOptState) String() string {
	switch s {
	case TelOptInactive:
		return "Inactive"
	case TelOptRequested:
		return "Requested"
	case TelOptActive:
		return "Active"
	default:
		return "Unknown"
	}
}

// optionState tracks both negotiation perspectives for a single tracked telopt.
// Local is this process activating a feature about itself, remote is the peer
// doing the same on its side. The hooks are looked up once at session
// construction so negotiation never touches the dispatch table.
type optionState struct {
	local  TelOptState
	remote TelOptState
	hooks  optionHooks
}
