package telnetio

import (
	"fmt"
	"strconv"
	"strings"
)

// EventKind discriminates the variants of Event. Event is a tagged union
// rather than an interface hierarchy so that ReceiveData can return a plain
// slice of values with no allocation per event beyond the slice itself.
type EventKind int

const (
	EventData EventKind = iota
	EventCommand
	EventSubCommand
	EventError
)

// Event is the sum type the Decoder emits: decoded application bytes, a
// 2- or 3-byte IAC command, a well-formed subnegotiation frame, or a
// framing-error classification. Exactly one of the payload fields is
// meaningful, selected by Kind.
type Event struct {
	Kind EventKind

	// Data holds the decoded application payload for EventData.
	Data []byte

	// Cmd and Opt hold the command octet and, for the 3-byte negotiation
	// commands, the option octet for EventCommand. Opt is nil for 2-byte
	// commands (invariant I3).
	Cmd byte
	Opt *byte

	// SubCmd and Payload hold the subnegotiation command octet and its
	// trailing payload for EventSubCommand. Payload always has length >= 1
	// (invariant I2).
	SubCmd  byte
	Payload []byte

	// ErrKind and ErrData hold the classification and offending bytes for
	// EventError.
	ErrKind ErrorKind
	ErrData []byte
}

func newCommand(cmd byte, opt *byte) Event {
	return Event{Kind: EventCommand, Cmd: cmd, Opt: opt}
}

func newSubCommand(cmd byte, payload []byte) Event {
	return Event{Kind: EventSubCommand, SubCmd: cmd, Payload: payload}
}

func newError(kind ErrorKind, data []byte) Event {
	return Event{Kind: EventError, ErrKind: kind, ErrData: data}
}

// IsNegotiation reports whether a Command event is one of the 3-byte
// DO/DONT/WILL/WONT negotiation commands.
func (e Event) IsNegotiation() bool {
	return e.Kind == EventCommand && e.Opt != nil
}

// ToBytes serializes an event back to wire bytes, per the Event
// serialization contract in spec.md §6. SubCommand.ToBytes intentionally
// omits the IAC SB / IAC SE framing — it returns content, not a frame, so
// callers can compose it into a larger buffer themselves.
func (e Event) ToBytes() []byte {
	switch e.Kind {
	case EventCommand:
		if e.Opt == nil {
			return []byte{IAC, e.Cmd}
		}
		return []byte{IAC, e.Cmd, *e.Opt}
	case EventSubCommand:
		out := make([]byte, 0, 1+len(e.Payload))
		out = append(out, e.SubCmd)
		return append(out, e.Payload...)
	case EventData:
		return append([]byte(nil), e.Data...)
	default:
		return nil
	}
}

func commandName(b byte) string {
	if name, ok := commandNames[b]; ok {
		return name
	}
	return strconv.Itoa(int(b))
}

// String renders an Event for logs and test failure messages.
func (e Event) String() string {
	switch e.Kind {
	case EventData:
		return fmt.Sprintf("Data(%q)", e.Data)
	case EventCommand:
		if e.Opt == nil {
			return fmt.Sprintf("Command(%s)", commandName(e.Cmd))
		}
		return fmt.Sprintf("Command(%s, %d)", commandName(e.Cmd), *e.Opt)
	case EventSubCommand:
		var sb strings.Builder
		sb.WriteString("SubCommand(")
		sb.WriteString(commandName(e.SubCmd))
		for _, b := range e.Payload {
			sb.WriteByte(' ')
			sb.WriteString(strconv.Itoa(int(b)))
		}
		sb.WriteByte(')')
		return sb.String()
	case EventError:
		return fmt.Sprintf("Error(%s, %v)", e.ErrKind, e.ErrData)
	default:
		return "Event(?)"
	}
}
