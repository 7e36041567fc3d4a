package telnetio

// Policy reacts to a received 3-byte negotiation Command by mutating an
// OptionTable and returning the outbound commands the reaction produces.
// It is a plain function of (event, table) -> (table', outbound), per
// spec.md §4.4 — "the policy never blocks, never reads from the wire".
//
// Realizing role selection as an interface rather than an inheritance
// hierarchy follows the "dynamic role selection" design note in spec.md
// §9: server vs. client is just a choice of which commands to send
// proactively and which to accept, and a small interface plugged into the
// Engine captures that without needing a type hierarchy.
type Policy interface {
	// HandleCommand is called for every Command event with a 3-byte form
	// (DO/DONT/WILL/WONT). It returns the outbound commands, if any, that
	// the reaction produces, in the order they should be sent.
	HandleCommand(table *OptionTable, ev Event) []Event
}

// DefaultAcceptOptions is the reference accept list from spec.md §4.4:
// ECHO, BINARY, and SGA. ServerPolicy's zero value uses this list.
var DefaultAcceptOptions = []byte{ECHO, BINARY, SGA}

func containsOption(list []byte, opt byte) bool {
	for _, o := range list {
		if o == opt {
			return true
		}
	}
	return false
}

// ServerPolicy implements the reference server-side negotiation behavior
// of spec.md §4.4. On a fresh DO for an option in AcceptOptions it agrees
// locally and replies WILL; for SGA it additionally requests suppression
// in the remote direction with DO(SGA). Options outside the accept list
// are refused with WONT. DONT/WILL/WONT only update the table — see
// DESIGN.md for why this implementation resolves the open question in
// spec.md §9 by doing the RFC-correct update rather than leaving it a
// no-op.
type ServerPolicy struct {
	// AcceptOptions overrides DefaultAcceptOptions when non-nil, letting a
	// caller widen or narrow the accept list without forking the type
	// (spec.md §4.4: "Implementations may choose a wider or narrower
	// accept list").
	AcceptOptions []byte
}

func (p *ServerPolicy) acceptList() []byte {
	if p.AcceptOptions != nil {
		return p.AcceptOptions
	}
	return DefaultAcceptOptions
}

func (p *ServerPolicy) HandleCommand(table *OptionTable, ev Event) []Event {
	if !ev.IsNegotiation() {
		return nil
	}

	opt := *ev.Opt
	state := table.Get(opt)
	state.ReplyPending = false

	switch ev.Cmd {
	case DO:
		return p.handleDo(table, opt, state)
	case DONT:
		// DONT is a request about our own (local) behavior.
		state.LocalAgreed = TriFalse
		table.Set(opt, state)
		return nil
	case WILL:
		// WILL is a statement about the remote's own behavior.
		state.RemoteAgreed = TriTrue
		table.Set(opt, state)
		return nil
	case WONT:
		state.RemoteAgreed = TriFalse
		table.Set(opt, state)
		return nil
	}
	return nil
}

func (p *ServerPolicy) handleDo(table *OptionTable, opt byte, state TelnetOption) []Event {
	if !containsOption(p.acceptList(), opt) {
		table.Set(opt, state)
		o := opt
		return []Event{newCommand(WONT, &o)}
	}

	if state.LocalAgreed == TriTrue {
		// Already agreed; no additional outbound bytes (property P3).
		table.Set(opt, state)
		return nil
	}

	state.LocalAgreed = TriTrue
	table.Set(opt, state)

	o := opt
	outbound := []Event{newCommand(WILL, &o)}
	if opt == SGA {
		o2 := opt
		outbound = append(outbound, newCommand(DO, &o2))
	}
	return outbound
}

// ClientPolicy implements the symmetric client-side reaction: it tracks
// negotiation state the same way but never proactively accepts options
// the remote DOes of us beyond clearing ReplyPending, leaving acceptance
// to the embedding application. This matches spec.md §9's note that the
// source's client-side policy is intentionally under-specified until the
// surrounding application dictates which options it offers.
type ClientPolicy struct{}

func (p *ClientPolicy) HandleCommand(table *OptionTable, ev Event) []Event {
	if !ev.IsNegotiation() {
		return nil
	}

	opt := *ev.Opt
	state := table.Get(opt)
	state.ReplyPending = false

	switch ev.Cmd {
	case DO:
		// A correct RFC client still needs to answer with WILL/WONT for
		// anything it's asked to enable, to avoid the classic
		// negotiation-loop failure mode; we leave LocalAgreed untouched
		// here and let the embedding application call OptionTable.Set /
		// send its own WILL in response, since the core has no option
		// catalogue to consult (spec.md Non-goals) and this mirrors
		// spec.md §9's flagged gap around server-side option acceptance.
		table.Set(opt, state)
		return nil
	case WILL:
		state.RemoteAgreed = TriTrue
		table.Set(opt, state)
		return nil
	case DONT:
		state.LocalAgreed = TriFalse
		table.Set(opt, state)
		return nil
	case WONT:
		state.RemoteAgreed = TriFalse
		table.Set(opt, state)
		return nil
	}
	return nil
}
