package telnetio

import "testing"

func doEvent(opt byte) Event {
	o := opt
	return newCommand(DO, &o)
}

func dontEvent(opt byte) Event {
	o := opt
	return newCommand(DONT, &o)
}

func willEvent(opt byte) Event {
	o := opt
	return newCommand(WILL, &o)
}

func wontEvent(opt byte) Event {
	o := opt
	return newCommand(WONT, &o)
}

// TestServerPolicyAcceptsFreshDO is scenario P1 from spec.md §8.
func TestServerPolicyAcceptsFreshDO(t *testing.T) {
	table := NewOptionTable()
	p := &ServerPolicy{}

	out := p.HandleCommand(table, doEvent(ECHO))
	if len(out) != 1 || out[0].Cmd != WILL || *out[0].Opt != ECHO {
		t.Fatalf("expected WILL(ECHO), got %v", out)
	}
	if !table.LocalInEffect(ECHO) {
		t.Error("expected ECHO local_agreed = true")
	}
}

// TestServerPolicyMirrorsSGA is scenario P2.
func TestServerPolicyMirrorsSGA(t *testing.T) {
	table := NewOptionTable()
	p := &ServerPolicy{}

	out := p.HandleCommand(table, doEvent(SGA))
	if len(out) != 2 {
		t.Fatalf("expected 2 outbound events, got %v", out)
	}
	if out[0].Cmd != WILL || *out[0].Opt != SGA {
		t.Errorf("expected WILL(SGA) first, got %v", out[0])
	}
	if out[1].Cmd != DO || *out[1].Opt != SGA {
		t.Errorf("expected DO(SGA) second, got %v", out[1])
	}
}

// TestServerPolicyRepeatDOIsSilent is scenario P3.
func TestServerPolicyRepeatDOIsSilent(t *testing.T) {
	table := NewOptionTable()
	p := &ServerPolicy{}

	p.HandleCommand(table, doEvent(ECHO))
	out := p.HandleCommand(table, doEvent(ECHO))
	if len(out) != 0 {
		t.Errorf("expected no outbound bytes on repeat DO, got %v", out)
	}
}

func TestServerPolicyRefusesUnlistedOption(t *testing.T) {
	table := NewOptionTable()
	p := &ServerPolicy{}

	out := p.HandleCommand(table, doEvent(200))
	if len(out) != 1 || out[0].Cmd != WONT || *out[0].Opt != 200 {
		t.Fatalf("expected WONT(200), got %v", out)
	}
	if table.LocalInEffect(200) {
		t.Error("refused option must not be marked in effect")
	}
}

func TestServerPolicyCustomAcceptList(t *testing.T) {
	table := NewOptionTable()
	p := &ServerPolicy{AcceptOptions: []byte{NAWS}}

	out := p.HandleCommand(table, doEvent(ECHO))
	if len(out) != 1 || out[0].Cmd != WONT {
		t.Fatalf("expected ECHO refused under custom accept list, got %v", out)
	}

	out = p.HandleCommand(table, doEvent(NAWS))
	if len(out) != 1 || out[0].Cmd != WILL {
		t.Fatalf("expected NAWS accepted under custom accept list, got %v", out)
	}
}

func TestServerPolicyDONTSetsLocalAgreedFalse(t *testing.T) {
	table := NewOptionTable()
	p := &ServerPolicy{}

	p.HandleCommand(table, doEvent(ECHO))
	p.HandleCommand(table, dontEvent(ECHO))

	if table.LocalInEffect(ECHO) {
		t.Error("expected ECHO local_agreed = false after DONT")
	}
}

func TestServerPolicyWILLSetsRemoteAgreedTrue(t *testing.T) {
	table := NewOptionTable()
	p := &ServerPolicy{}

	out := p.HandleCommand(table, willEvent(BINARY))
	if len(out) != 0 {
		t.Errorf("WILL should not itself produce outbound bytes, got %v", out)
	}
	if !table.RemoteInEffect(BINARY) {
		t.Error("expected BINARY remote_agreed = true after WILL")
	}
}

func TestServerPolicyWONTSetsRemoteAgreedFalse(t *testing.T) {
	table := NewOptionTable()
	p := &ServerPolicy{}

	p.HandleCommand(table, willEvent(BINARY))
	p.HandleCommand(table, wontEvent(BINARY))

	if table.RemoteInEffect(BINARY) {
		t.Error("expected BINARY remote_agreed = false after WONT")
	}
}

func TestServerPolicyIgnoresNonNegotiationCommand(t *testing.T) {
	table := NewOptionTable()
	p := &ServerPolicy{}

	out := p.HandleCommand(table, newCommand(AYT, nil))
	if out != nil {
		t.Errorf("expected nil for a 2-byte command, got %v", out)
	}
}

func TestClientPolicyWILLSetsRemoteAgreedTrue(t *testing.T) {
	table := NewOptionTable()
	p := &ClientPolicy{}

	out := p.HandleCommand(table, willEvent(ECHO))
	if len(out) != 0 {
		t.Errorf("expected no outbound bytes from ClientPolicy, got %v", out)
	}
	if !table.RemoteInEffect(ECHO) {
		t.Error("expected ECHO remote_agreed = true after WILL")
	}
}

func TestClientPolicyDOLeavesLocalAgreedUntouched(t *testing.T) {
	table := NewOptionTable()
	p := &ClientPolicy{}

	p.HandleCommand(table, doEvent(ECHO))
	state := table.Get(ECHO)
	if state.LocalAgreed != Unknown {
		t.Errorf("expected LocalAgreed untouched by DO, got %v", state.LocalAgreed)
	}
}

func TestClientPolicyDONTSetsLocalAgreedFalse(t *testing.T) {
	table := NewOptionTable()
	p := &ClientPolicy{}

	p.HandleCommand(table, dontEvent(ECHO))
	if table.LocalInEffect(ECHO) {
		t.Error("expected ECHO local_agreed = false after DONT")
	}
}

func TestClientPolicyClearsReplyPending(t *testing.T) {
	table := NewOptionTable()
	table.Set(ECHO, TelnetOption{ReplyPending: true})
	p := &ClientPolicy{}

	p.HandleCommand(table, willEvent(ECHO))
	if table.Get(ECHO).ReplyPending {
		t.Error("expected ReplyPending cleared after any negotiation reply")
	}
}
