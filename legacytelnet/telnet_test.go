package legacytelnet

import (
	"bytes"
	"net"
	"regexp"
	"testing"
	"time"

	"github.com/uSpike/telnetio"
)

func TestReadUntilFindsMatch(t *testing.T) {
	client, peer := net.Pipe()
	defer peer.Close()

	c := New(client)
	defer c.Close()

	go peer.Write([]byte("login: "))

	got, err := c.ReadUntil([]byte("login: "), time.Second)
	if err != nil {
		t.Fatalf("ReadUntil: %v", err)
	}
	if !bytes.Equal(got, []byte("login: ")) {
		t.Errorf("got %q", got)
	}
}

func TestReadUntilAccumulatesAcrossReads(t *testing.T) {
	client, peer := net.Pipe()
	defer peer.Close()

	c := New(client)
	defer c.Close()

	go func() {
		peer.Write([]byte("wel"))
		peer.Write([]byte("come\n"))
	}()

	got, err := c.ReadUntil([]byte("\n"), time.Second)
	if err != nil {
		t.Fatalf("ReadUntil: %v", err)
	}
	if !bytes.Equal(got, []byte("welcome\n")) {
		t.Errorf("got %q", got)
	}
}

func TestReadUntilStripsIACEscaping(t *testing.T) {
	client, peer := net.Pipe()
	defer peer.Close()

	c := New(client)
	defer c.Close()

	go peer.Write([]byte{'a', telnetio.IAC, telnetio.IAC, 'b', '\n'})

	got, err := c.ReadUntil([]byte("\n"), time.Second)
	if err != nil {
		t.Fatalf("ReadUntil: %v", err)
	}
	if !bytes.Equal(got, []byte{'a', telnetio.IAC, 'b', '\n'}) {
		t.Errorf("got %v", got)
	}
}

func TestReadUntilTimesOutWithNoMatch(t *testing.T) {
	client, peer := net.Pipe()
	defer peer.Close()

	c := New(client)
	defer c.Close()

	go peer.Write([]byte("partial"))

	got, err := c.ReadUntil([]byte("never"), 50*time.Millisecond)
	if err != ErrNoMatch {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if !bytes.Equal(got, []byte("partial")) {
		t.Errorf("got %q", got)
	}
}

func TestExpectMatchesFirstPattern(t *testing.T) {
	client, peer := net.Pipe()
	defer peer.Close()

	c := New(client)
	defer c.Close()

	go peer.Write([]byte("username: "))

	patterns := []*regexp.Regexp{
		regexp.MustCompile(`username:\s*$`),
		regexp.MustCompile(`password:\s*$`),
	}

	idx, text, err := c.Expect(patterns, time.Second)
	if err != nil {
		t.Fatalf("Expect: %v", err)
	}
	if idx != 0 {
		t.Errorf("expected match index 0, got %d", idx)
	}
	if !bytes.Equal(text, []byte("username: ")) {
		t.Errorf("got %q", text)
	}
}

func TestExpectReturnsEOFOnClosedConnection(t *testing.T) {
	client, peer := net.Pipe()

	c := New(client)
	defer c.Close()

	peer.Close()

	patterns := []*regexp.Regexp{regexp.MustCompile(`x`)}
	_, _, err := c.Expect(patterns, time.Second)
	if err == nil {
		t.Fatal("expected an error from a closed peer")
	}
}

func TestClientNegotiatesAsClient(t *testing.T) {
	client, peer := net.Pipe()
	defer peer.Close()

	c := New(client)
	defer c.Close()

	go peer.Write([]byte{telnetio.IAC, telnetio.WILL, telnetio.ECHO})

	// ClientPolicy tracks state but emits no outbound bytes for a bare
	// WILL. ReadUntil with a pattern that never arrives pumps the
	// connection until its timeout, which feeds the WILL through the
	// engine; the option table is checked afterwards.
	client.SetReadDeadline(time.Now().Add(50 * time.Millisecond))

	done := make(chan struct{})
	go func() {
		c.ReadUntil([]byte("never"), 100*time.Millisecond)
		close(done)
	}()
	<-done

	if !c.engine.Options().RemoteInEffect(telnetio.ECHO) {
		t.Error("expected ECHO remote_agreed = true after WILL")
	}
}
