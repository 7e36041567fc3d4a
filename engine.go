// Package telnetio implements the TELNET protocol (RFC 854/855) as a
// sans-I/O state machine: a decoder that turns inbound bytes into a
// sequence of Events, an encoder that escapes outbound bytes and commands,
// and a small option-negotiation policy layer on top of both. The package
// performs no I/O of its own — see telnetconn for the concurrent adapter
// that drives an Engine over a net.Conn, and legacytelnet for a
// synchronous expect-style client built on the same core.
package telnetio

import "sync"

// Role selects which Policy an Engine drives negotiation with by default.
type Role int

const (
	RoleServer Role = iota
	RoleClient
)

// OutboundSink is the caller-supplied destination for outbound bytes: both
// the caller's own SendMessage/SendCommand calls and the bytes a Policy
// produces in reaction to inbound negotiation. Spec.md §4.5 calls this "an
// outbound-bytes sink the caller registers"; giving it a named interface
// (rather than a bare func) lets telnetconn implement it directly against
// its outbound queue.
type OutboundSink interface {
	Send(data []byte)
}

// OutboundSinkFunc adapts a plain function to OutboundSink.
type OutboundSinkFunc func(data []byte)

func (f OutboundSinkFunc) Send(data []byte) { f(data) }

// EventHook receives every Event an Engine decodes, in order.
type EventHook func(ev Event)

// SendHook receives every slice of bytes an Engine writes to its sink,
// whether from SendMessage, SendCommand, or policy-generated outbound
// commands.
type SendHook func(data []byte)

// eventPublisher is a minimal generic fan-out list, modeled on the
// teacher's EventPublisher[T] type in hooks.go: several independent
// observers (a debug logger, a metrics counter, the caller's own logic)
// can all register for the same stream without fighting over a single
// callback slot.
type eventPublisher[T any] struct {
	mu    sync.Mutex
	hooks []func(T)
}

func (p *eventPublisher[T]) register(hook func(T)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hooks = append(p.hooks, hook)
}

func (p *eventPublisher[T]) fire(v T) {
	p.mu.Lock()
	hooks := make([]func(T), len(p.hooks))
	copy(hooks, p.hooks)
	p.mu.Unlock()

	for _, hook := range hooks {
		hook(v)
	}
}

// Engine composes a Decoder, an Encoder, an OptionTable, and a Policy,
// matching spec.md §4.5's "Engine (composition)". It is the library's
// single entry point: ReceiveData decodes inbound bytes and runs the
// policy over every negotiation command; SendMessage and SendCommand push
// outbound bytes through the same sink the policy uses, which preserves
// the FIFO/call-order interleaving spec.md §5 requires of a well-behaved
// adapter.
//
// Engine itself performs no I/O and holds no locks beyond the hook
// publishers: per spec.md §5, it assumes at-most-one caller at a time and
// a caller that wants to share it across goroutines must serialize calls
// externally.
type Engine struct {
	decoder *Decoder
	options *OptionTable
	policy  Policy
	sink    OutboundSink

	events eventPublisher[Event]
	sends  eventPublisher[[]byte]
}

// NewEngine constructs an Engine for the given role, writing outbound
// bytes to sink. role selects the default Policy (ServerPolicy or
// ClientPolicy); use WithPolicy to supply a custom one.
func NewEngine(role Role, sink OutboundSink) *Engine {
	var policy Policy
	switch role {
	case RoleClient:
		policy = &ClientPolicy{}
	default:
		policy = &ServerPolicy{}
	}

	return &Engine{
		decoder: NewDecoder(),
		options: NewOptionTable(),
		policy:  policy,
		sink:    sink,
	}
}

// WithPolicy replaces the Engine's Policy, for callers that want a custom
// accept list or an entirely different negotiation strategy.
func (e *Engine) WithPolicy(policy Policy) *Engine {
	e.policy = policy
	return e
}

// Options returns the Engine's OptionTable for inspection
// (LocalInEffect/RemoteInEffect) or direct mutation by the embedding
// application — e.g. to pre-seed options a ClientPolicy left
// under-specified per spec.md §9.
func (e *Engine) Options() *OptionTable {
	return e.options
}

// OnEvent registers a hook to be called, in decode order, for every Event
// ReceiveData produces.
func (e *Engine) OnEvent(hook EventHook) {
	e.events.register(func(ev Event) { hook(ev) })
}

// OnSend registers a hook to be called for every slice of bytes written to
// the outbound sink.
func (e *Engine) OnSend(hook SendHook) {
	e.sends.register(func(b []byte) { hook(b) })
}

func (e *Engine) send(data []byte) {
	e.sink.Send(data)
	e.sends.fire(data)
}

// ReceiveData runs the decoder over data, then hands every event to the
// configured Policy — which may enqueue outbound negotiation replies
// through the Engine's sink — and finally returns the decoded events in
// order, per spec.md §4.5.
func (e *Engine) ReceiveData(data []byte) []Event {
	events := e.decoder.Feed(data)

	for _, ev := range events {
		e.events.fire(ev)

		if ev.IsNegotiation() {
			outbound := e.policy.HandleCommand(e.options, ev)
			for _, out := range outbound {
				e.send(out.ToBytes())
			}
		}
	}

	return events
}

// SendMessage IAC-escapes data and writes it to the outbound sink.
func (e *Engine) SendMessage(data []byte) {
	e.send(EscapeMessage(data))
}

// SendCommand encodes a command and writes it to the outbound sink.
func (e *Engine) SendCommand(cmd byte, opt *byte) {
	e.send(EncodeCommand(cmd, opt))
}

// SendSubCommand encodes a full IAC SB ... IAC SE subnegotiation frame and
// writes it to the outbound sink. The core never calls this on its own —
// it exists for applications that negotiate a telopt payload on top of
// this engine.
func (e *Engine) SendSubCommand(cmd byte, payload []byte) {
	e.send(EncodeSubCommand(cmd, payload))
}
