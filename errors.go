package telnetio

// ErrorKind classifies a framing violation surfaced by the Decoder as an
// Error event. Framing errors are never raised as Go errors from the
// decoder itself — see the Error event and spec.md §7.
type ErrorKind int

const (
	// ErrorOther is reserved for non-framing anomalies; the core never
	// produces it today.
	ErrorOther ErrorKind = iota
	// ErrorSEBufferEmpty is IAC SB IAC SE with no payload at all.
	ErrorSEBufferEmpty
	// ErrorSEBufferNUL is a subnegotiation whose payload begins with NUL.
	ErrorSEBufferNUL
	// ErrorSEBufferTooShort is a subnegotiation payload of exactly one
	// byte — a command with no argument.
	ErrorSEBufferTooShort
	// ErrorSBInvalid is an IAC inside a subnegotiation followed by
	// something other than IAC or SE.
	ErrorSBInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorSEBufferEmpty:
		return "SE_BUFFER_EMPTY"
	case ErrorSEBufferNUL:
		return "SE_BUFFER_NUL"
	case ErrorSEBufferTooShort:
		return "SE_BUFFER_TOO_SHORT"
	case ErrorSBInvalid:
		return "SB_INVALID"
	default:
		return "OTHER"
	}
}
