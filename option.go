package telnetio

// Tri is a tri-state value: unknown (never negotiated), or explicitly
// true/false. It models TelnetOption's local_agreed/remote_agreed fields
// from spec.md §3, where None means "never negotiated" and Some(false)
// means "explicitly declined" — a distinction a plain bool can't make.
type Tri int

const (
	// Unknown is the zero value: the option has never been negotiated.
	Unknown Tri = iota
	TriFalse
	TriTrue
)

// TelnetOption is the per-option negotiation state spec.md §3 describes.
// Every option code has one in an OptionTable from construction, in the
// never-negotiated zero state; it is mutated by a Policy or by the
// embedding application through OptionTable.Set, and carries no behavior
// of its own — unlike the
// teacher's TelnetOption interface (which binds a factory, Subnegotiate,
// and state-transition hooks per option code), this core deliberately does
// not interpret option payloads, per spec.md's scope.
type TelnetOption struct {
	LocalAgreed  Tri
	RemoteAgreed Tri
	ReplyPending bool
}

// LocalInEffect reports whether the option is active locally.
func (o TelnetOption) LocalInEffect() bool {
	return o.LocalAgreed == TriTrue
}

// RemoteInEffect reports whether the option is active on the remote side.
func (o TelnetOption) RemoteInEffect() bool {
	return o.RemoteAgreed == TriTrue
}

// OptionTable is a dense, defaulted map from option code (0-255) to
// TelnetOption. Reading a code that was never written returns the zero
// TelnetOption ({Unknown, Unknown, false}) without inserting anything;
// writing inserts. There is no eviction — the table lives for the life of
// the session, per spec.md §4.3.
//
// A dense [256]TelnetOption array is chosen over a sparse map (the other
// design-note alternative in spec.md §9) because an option code is
// inherently a single byte: the array indexes directly with no hashing,
// and 256 copies of a 3-field struct is negligible memory next to the
// allocation a map would otherwise do on first write.
type OptionTable struct {
	options [256]TelnetOption
}

// NewOptionTable returns an OptionTable with every option in its default,
// never-negotiated state.
func NewOptionTable() *OptionTable {
	return &OptionTable{}
}

// Get returns the current state for an option code. Querying an option
// that was never Set returns the zero value and does not mutate the table.
func (t *OptionTable) Get(opt byte) TelnetOption {
	return t.options[opt]
}

// Set overwrites the state for an option code.
func (t *OptionTable) Set(opt byte, state TelnetOption) {
	t.options[opt] = state
}

// LocalInEffect reports whether an option is currently active locally.
func (t *OptionTable) LocalInEffect(opt byte) bool {
	return t.options[opt].LocalInEffect()
}

// RemoteInEffect reports whether an option is currently active on the
// remote side.
func (t *OptionTable) RemoteInEffect(opt byte) bool {
	return t.options[opt].RemoteInEffect()
}
