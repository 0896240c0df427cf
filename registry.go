package telnet

import "slices"

// Registry maps telopt codes to the way each is permitted to be used. A
// session refuses negotiation for any code its registry doesn't carry, so the
// registry is the complete statement of what a server is willing to talk
// about.
//
// A Registry is immutable once built. Build one at process startup and share
// it between every connection's session; concurrent reads need no locking.
type Registry struct {
	usage map[TelOptCode]TelOptUsage
}

// NewRegistry builds a registry from a map of codes to usage flags. The input
// map is copied, so the caller can't reach in and change a live registry's
// posture afterward.
func NewRegistry(usage map[TelOptCode]TelOptUsage) *Registry {
	table := make(map[TelOptCode]TelOptUsage, len(usage))
	for code, codeUsage := range usage {
		table[code] = codeUsage
	}

	return &Registry{usage: table}
}

// DefaultRegistry returns the negotiation posture a typical MUD server wants:
// request suppress-go-ahead and prompt marking on our side, ask the peer for
// its terminal type and window size, offer server status, and tolerate a few
// client-side options without soliciting them.
//
// MCCP2/MCCP3, MXP, MSDP, and GMCP are carried with no usage flags: their
// codes are tracked so unsolicited subnegotiations are absorbed quietly, but
// negotiation is refused until a layer that actually implements their
// subprotocols takes over.
func DefaultRegistry() *Registry {
	return NewRegistry(map[TelOptCode]TelOptUsage{
		TelOptSGA:      TelOptRequestLocal | TelOptAllowRemote,
		TelOptTTYPE:    TelOptRequestRemote,
		TelOptEOR:      TelOptRequestLocal,
		TelOptNAWS:     TelOptRequestRemote,
		TelOptLINEMODE: TelOptAllowRemote,
		TelOptMNES:     TelOptAllowRemote,
		TelOptMSDP:     0,
		TelOptMSSP:     TelOptRequestLocal,
		TelOptMCCP2:    0,
		TelOptMCCP3:    0,
		TelOptMXP:      0,
		TelOptGMCP:     0,
	})
}

// Usage returns the usage flags for a code and whether the registry tracks it
// at all.
func (r *Registry) Usage(code TelOptCode) (TelOptUsage, bool) {
	usage, tracked := r.usage[code]
	return usage, tracked
}

// Codes returns every tracked code in ascending order. Sessions use this to
// make their opening request volley deterministic.
func (r *Registry) Codes() []TelOptCode {
	codes := make([]TelOptCode, 0, len(r.usage))
	for code := range r.usage {
		codes = append(codes, code)
	}

	slices.Sort(codes)
	return codes
}
