package telnet

import "strconv"

// Telnet opcodes
const (
	// EOR - End Of Record. The real meaning is implementation-specific, but these
	// days IAC EOR is primarily used as an alternative to IAC GA that can indicate
	// where a prompt is without all the historical baggage of GA
	EOR byte = 239
	// SE - Subnegotiation End. IAC SE is used to mark the end of a subnegotiation command
	SE byte = 240
	// NOP - No-Op. IAC NOP doesn't indicate anything at all, and this library ignores it.
	NOP byte = 241
	// GA - Go Ahead. IAC GA is often used to indicate the end of a prompt line, so
	// that clients know where to place a cursor. However, it carries a lot of weird
	// baggage around "kludge line mode", so it is usually preferable not to use this
	// if the remote supports the EOR telopt.
	GA byte = 249
	// SB - Subnegotiation Begin. IAC SB is used to indicate the beginning of a subnegotiation
	// command. These are telopt-specific commands that have telopt-specific meanings.
	SB byte = 250
	// WILL - IAC WILL is used to indicate that this side intends to activate a telopt
	WILL byte = 251
	// WONT - IAC WONT is used to indicate that this side refuses to activate a telopt
	WONT byte = 252
	// DO - IAC DO is used to request that the remote activates a telopt
	DO byte = 253
	// DONT - IAC DONT is used to demand that the remote do not activate a telopt
	DONT byte = 254
	// IAC - This opcode indicates the beginning of a new command
	IAC byte = 255
)

var commandNames = map[byte]string{
	EOR:  "EOR",
	SE:   "SE",
	NOP:  "NOP",
	GA:   "GA",
	SB:   "SB",
	WILL: "WILL",
	WONT: "WONT",
	DO:   "DO",
	DONT: "DONT",
	IAC:  "IAC",
}

// CommandName returns the legible name of a telnet opcode, or its decimal
// value for bytes that aren't commands.
func CommandName(opCode byte) string {
	name, hasName := commandNames[opCode]
	if !hasName {
		return strconv.Itoa(int(opCode))
	}

	return name
}

// acceptCommand returns the opcode that agrees to an activation request
// (DO for WILL, WILL for DO).
func acceptCommand(opCode byte) byte {
	if opCode == WILL {
		return DO
	}

	return WILL
}

// refuseCommand returns the opcode that declines an activation request
// (DONT for WILL, WONT for DO).
func refuseCommand(opCode byte) byte {
	if opCode == WILL {
		return DONT
	}

	return WONT
}
