// Package legacytelnet is a synchronous, blocking client in the shape of
// Python's telnetlib.Telnet: ReadUntil and Expect, built as thin glue over
// the core telnetio engine plus a deadline-aware net.Conn. It is meant for
// scripted interactions (log in, send a command, wait for a prompt), not
// for servers or long-lived interactive sessions — see telnetconn for that.
package legacytelnet

import (
	"context"
	"errors"
	"io"
	"net"
	"regexp"
	"time"

	"github.com/uSpike/telnetio"
)

// ErrNoMatch is returned by Expect when the deadline passes with no
// pattern matching any data received so far.
var ErrNoMatch = errors.New("legacytelnet: no pattern matched before timeout")

// Client is a single-goroutine, blocking telnet client. It is not safe for
// concurrent use by multiple goroutines, mirroring telnetlib.Telnet's own
// contract.
type Client struct {
	conn   net.Conn
	engine *telnetio.Engine

	// cooked accumulates decoded Data bytes not yet consumed by ReadUntil
	// or Expect, matching telnetlib's cookedq.
	cooked  []byte
	eof     bool
	lastErr error
}

// Dial connects to address over network and returns a Client using the
// client role policy. The context bounds only connection establishment.
func Dial(ctx context.Context, network, address string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// New wraps an already-connected net.Conn.
func New(conn net.Conn) *Client {
	c := &Client{conn: conn}
	c.engine = telnetio.NewEngine(telnetio.RoleClient, c)
	c.engine.OnEvent(c.handleEvent)
	return c
}

// Send implements telnetio.OutboundSink.
func (c *Client) Send(data []byte) {
	_, _ = c.conn.Write(data)
}

// SendMessage IAC-escapes and writes application data.
func (c *Client) SendMessage(data []byte) {
	c.engine.SendMessage(data)
}

// SendCommand encodes and writes a 2- or 3-byte IAC command.
func (c *Client) SendCommand(cmd byte, opt *byte) {
	c.engine.SendCommand(cmd, opt)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) handleEvent(ev telnetio.Event) {
	if ev.Kind == telnetio.EventData {
		c.cooked = append(c.cooked, ev.Data...)
	}
}

// receive performs one blocking Read on the connection and feeds it to the
// engine, appending any decoded Data bytes to cooked. A timeout error only
// sets lastErr; any other error also sets eof, matching telnetlib's
// distinction between "nothing arrived by the deadline" and "the
// connection is actually closed".
func (c *Client) receive() {
	buf := make([]byte, 4096)
	n, err := c.conn.Read(buf)
	if n > 0 {
		c.engine.ReceiveData(buf[:n])
	}
	c.lastErr = err
	if err == nil {
		return
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return
	}
	c.eof = true
}

// ReadUntil reads until match appears in the accumulated stream, or until
// timeout elapses. On timeout, or EOF with no match, it returns whatever
// cooked data has accumulated so far along with a non-nil error so the
// caller can distinguish a partial result from a clean match — this is a
// deliberate divergence from telnetlib.read_until (which folds both cases
// into an unmarked return value): a typed Go error is the idiomatic signal
// here. A timeout of 0 blocks forever.
func (c *Client) ReadUntil(match []byte, timeout time.Duration) ([]byte, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	if buf, ok := c.consumeUntil(match); ok {
		return buf, nil
	}

	for !c.eof {
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return c.takeCooked(), ErrNoMatch
			}
			c.conn.SetReadDeadline(time.Now().Add(remaining))
		}

		c.receive()

		if buf, ok := c.consumeUntil(match); ok {
			return buf, nil
		}

		var netErr net.Error
		if errors.As(c.lastErr, &netErr) && netErr.Timeout() {
			return c.takeCooked(), ErrNoMatch
		}
	}

	if len(c.cooked) == 0 {
		return nil, io.EOF
	}
	return c.takeCooked(), io.EOF
}

func (c *Client) consumeUntil(match []byte) ([]byte, bool) {
	idx := indexOf(c.cooked, match)
	if idx < 0 {
		return nil, false
	}
	end := idx + len(match)
	buf := c.cooked[:end]
	c.cooked = c.cooked[end:]
	return buf, true
}

func (c *Client) takeCooked() []byte {
	buf := c.cooked
	c.cooked = nil
	return buf
}

func indexOf(haystack, needle []byte) int {
	if len(needle) == 0 {
		return 0
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if string(haystack[i:i+len(needle)]) == string(needle) {
			return i
		}
	}
	return -1
}

// Expect reads until one of patterns matches the accumulated stream, or
// until timeout elapses. It returns the index of the first matching
// pattern, the matched (and preceding) bytes, and an error that is
// ErrNoMatch on timeout or io.EOF at end of stream with nothing matched.
func (c *Client) Expect(patterns []*regexp.Regexp, timeout time.Duration) (int, []byte, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		for i, pat := range patterns {
			if loc := pat.FindIndex(c.cooked); loc != nil {
				text := c.cooked[:loc[1]]
				c.cooked = c.cooked[loc[1]:]
				return i, text, nil
			}
		}

		if c.eof {
			text := c.takeCooked()
			if len(text) == 0 {
				return -1, nil, io.EOF
			}
			return -1, text, io.EOF
		}

		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return -1, c.takeCooked(), ErrNoMatch
			}
			c.conn.SetReadDeadline(time.Now().Add(remaining))
		}

		c.receive()
	}
}
