package telnetio

// decoderState is the Decoder's state enum (spec.md §3 "Decoder state").
// A by-the-book switch on (state, byte) — rather than the teacher's
// bufio.Scanner split function or the original Python generator-based
// coroutines — makes chunking independence obvious by construction, per
// the design note in spec.md §9.
type decoderState int

const (
	stateData decoderState = iota
	stateDataCR
	stateCommand
	stateNegotiation
	stateSubOption
	stateSubSubOption
	stateSubData
	stateSubEnd
)

// Decoder is the sans-I/O TELNET byte-in/event-out state machine. It owns
// no I/O of its own: Feed is a pure function of its internal state plus
// the bytes handed to it, and is safe to call with input chunked at any
// boundary (testable property 3) — splitting a call anywhere and feeding
// the pieces in order produces the same events as one call with the whole
// input.
//
// The zero value is ready to use and starts in the Data state; NewDecoder
// returns a pointer to such a value.
type Decoder struct {
	state decoderState

	// pendingCmd holds the command byte while awaiting the option byte of
	// a 3-byte negotiation command (state Negotiation).
	pendingCmd byte

	// subBuf accumulates a subnegotiation payload between SB and SE. Per
	// invariant I1, it never holds more than one in-flight payload; it is
	// cleared on every frame boundary (success or error).
	subBuf []byte

	// data accumulates contiguous decoded bytes so that runs of plain
	// application data coalesce into a single Data event instead of one
	// event per byte, which the spec permits but does not require.
	data []byte

	events []Event
}

// NewDecoder returns a Decoder ready to consume bytes, starting in the Data
// state.
func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) emit(ev Event) {
	d.events = append(d.events, ev)
}

func (d *Decoder) emitData(b byte) {
	d.data = append(d.data, b)
}

func (d *Decoder) flushData() {
	if len(d.data) > 0 {
		d.events = append(d.events, Event{Kind: EventData, Data: d.data})
		d.data = nil
	}
}

// Feed drives the state machine with the next chunk of inbound bytes and
// returns every event produced, in the order the bytes imply. Feed is the
// Decoder's entire contract; it never blocks and never returns an error —
// framing violations arrive as Error events per spec.md §7.
func (d *Decoder) Feed(data []byte) []Event {
	d.events = d.events[:0]

	for _, b := range data {
		d.step(b)
	}

	d.flushData()

	// Return a copy so callers can retain the slice across the next Feed
	// call without it being overwritten by d.events being reused.
	out := make([]Event, len(d.events))
	copy(out, d.events)
	return out
}

func (d *Decoder) step(b byte) {
	switch d.state {
	case stateData:
		d.stepData(b)
	case stateDataCR:
		d.stepDataCR(b)
	case stateCommand:
		d.stepCommand(b)
	case stateNegotiation:
		d.stepNegotiation(b)
	case stateSubOption:
		d.stepSubOption(b)
	case stateSubSubOption:
		d.stepSubSubOption(b)
	case stateSubData:
		d.stepSubData(b)
	case stateSubEnd:
		d.stepSubEnd(b)
	}
}

func (d *Decoder) stepData(b byte) {
	switch b {
	case IAC:
		d.state = stateCommand
	case '\r':
		d.state = stateDataCR
	default:
		d.emitData(b)
	}
}

func (d *Decoder) stepDataCR(b byte) {
	d.state = stateData

	switch b {
	case '\n':
		d.emitData('\n')
	case NUL:
		d.emitData('\r')
	case IAC:
		d.emitData('\r')
		d.state = stateCommand
	default:
		d.emitData('\r')
		d.emitData(b)
	}
}

func (d *Decoder) stepCommand(b byte) {
	d.state = stateData

	switch {
	case isNegotiationCommand(b):
		d.pendingCmd = b
		d.state = stateNegotiation
	case b == SB:
		d.state = stateSubOption
	case b == IAC:
		// Escaped IAC: a literal 0xFF byte of application data.
		d.emitData(IAC)
	default:
		d.flushData()
		d.emit(newCommand(b, nil))
	}
}

func (d *Decoder) stepNegotiation(b byte) {
	d.flushData()
	opt := b
	d.emit(newCommand(d.pendingCmd, &opt))
	d.pendingCmd = 0
	d.state = stateData
}

func (d *Decoder) stepSubOption(b byte) {
	if b == IAC {
		d.state = stateSubEnd
		return
	}
	d.subBuf = append(d.subBuf, b)
	d.state = stateSubSubOption
}

func (d *Decoder) stepSubSubOption(b byte) {
	if b == IAC {
		d.state = stateSubEnd
		return
	}
	d.subBuf = append(d.subBuf, b)
	d.state = stateSubData
}

func (d *Decoder) stepSubData(b byte) {
	if b == IAC {
		d.state = stateSubEnd
		return
	}
	d.subBuf = append(d.subBuf, b)
}

func (d *Decoder) stepSubEnd(b byte) {
	switch b {
	case IAC:
		// Escaped IAC inside the subnegotiation payload (invariant I4).
		d.subBuf = append(d.subBuf, IAC)
		d.state = stateSubData
	case SE:
		d.closeSubnegotiation()
		d.state = stateData
	default:
		d.subBuf = nil
		d.state = stateData
		d.flushData()
		d.emit(newError(ErrorSBInvalid, []byte{b}))
	}
}

// closeSubnegotiation classifies and emits the event for a completed SB
// frame, per spec.md §4.1 "Closing an SB frame at SE". The buffer is
// always cleared before returning, satisfying invariant I1.
func (d *Decoder) closeSubnegotiation() {
	buf := d.subBuf
	d.subBuf = nil
	d.flushData()

	switch {
	case len(buf) == 0:
		d.emit(newError(ErrorSEBufferEmpty, nil))
	case buf[0] == NUL:
		d.emit(newError(ErrorSEBufferNUL, nil))
	case len(buf) == 1:
		d.emit(newError(ErrorSEBufferTooShort, buf))
	default:
		d.emit(newSubCommand(buf[0], buf[1:]))
	}
}
