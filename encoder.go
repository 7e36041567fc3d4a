package telnetio

import "bytes"

// EscapeMessage IAC-escapes data for transmission as application payload:
// every literal IAC byte becomes a doubled IAC IAC, the inverse of the
// Decoder's Data-state handling of IAC IAC. It performs no CR handling —
// the caller is responsible for supplying already-formatted line breaks.
func EscapeMessage(data []byte) []byte {
	if bytes.IndexByte(data, IAC) == -1 {
		out := make([]byte, len(data))
		copy(out, data)
		return out
	}

	out := make([]byte, 0, len(data))
	for _, b := range data {
		out = append(out, b)
		if b == IAC {
			out = append(out, IAC)
		}
	}
	return out
}

// EncodeCommand serializes a 2- or 3-byte IAC command: [IAC, cmd] when opt
// is nil, or [IAC, cmd, *opt] otherwise.
func EncodeCommand(cmd byte, opt *byte) []byte {
	if opt == nil {
		return []byte{IAC, cmd}
	}
	return []byte{IAC, cmd, *opt}
}

// EncodeSubCommand serializes a full subnegotiation frame: IAC SB cmd
// payload... IAC SE, with any IAC bytes inside payload doubled. This is a
// convenience the core never emits on its own — spec.md §4.2 is explicit
// that autonomous subnegotiation is a role-policy concern, not a core one.
func EncodeSubCommand(cmd byte, payload []byte) []byte {
	escaped := EscapeMessage(payload)

	out := make([]byte, 0, 5+len(escaped))
	out = append(out, IAC, SB, cmd)
	out = append(out, escaped...)
	out = append(out, IAC, SE)
	return out
}
