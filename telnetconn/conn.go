// Package telnetconn is the concurrent adapter that drives a telnetio.Engine
// over a live connection. The core engine performs no I/O; Conn supplies
// the two cooperative goroutines spec.md's concurrency model calls for — a
// receive loop and a send loop — and the growable outbound queue that ties
// them together.
package telnetconn

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/uSpike/telnetio"
)

// ErrClosed is returned by SendMessage/SendCommand/SendSubCommand once the
// Conn has been closed.
var ErrClosed = errors.New("telnetconn: connection closed")

const defaultQueueSize = 32

// ConnOption configures a Conn at construction time.
type ConnOption func(*Conn)

// WithPolicy overrides the Engine's default role policy.
func WithPolicy(policy telnetio.Policy) ConnOption {
	return func(c *Conn) { c.policy = policy }
}

// WithQueueSize sets the initial capacity of the outbound queue. The queue
// grows on demand (per the teacher's queue[T] growth rule); this only
// avoids early reallocation for callers who know their traffic pattern.
func WithQueueSize(size int) ConnOption {
	return func(c *Conn) { c.queueSize = size }
}

// WithEventHook registers a hook for every Event the Conn decodes, the
// same as calling Conn.Engine().OnEvent after construction.
func WithEventHook(hook telnetio.EventHook) ConnOption {
	return func(c *Conn) { c.eventHooks = append(c.eventHooks, hook) }
}

// Conn owns a telnetio.Engine and a byte stream (normally a net.Conn),
// and runs the receive and send loops described in spec.md §5: a goroutine
// blocked in Read that feeds every chunk to Engine.ReceiveData, and a
// goroutine that drains the outbound queue to Write. SendMessage and
// SendCommand enqueue onto the same queue the policy's own replies use,
// so outbound ordering always matches call order.
//
// Conn implements telnetio.OutboundSink: Engine writes both policy replies
// and caller-requested sends through Conn.Send, which is just an enqueue.
type Conn struct {
	// ID uniquely identifies this connection, useful for correlating log
	// lines and metrics across many simultaneous sessions.
	ID uuid.UUID

	rwc    io.ReadWriteCloser
	engine *telnetio.Engine
	policy telnetio.Policy

	queueSize  int
	eventHooks []telnetio.EventHook

	mu       sync.Mutex
	outbound *byteQueue
	notify   chan struct{}

	closeOnce sync.Once
	closed    chan struct{}

	recvDone chan error
	sendDone chan error
}

// Dial connects to address over network (e.g. "tcp") and returns a Conn
// driving it. The context governs only the dial itself; use ctx with a
// timeout if the connection establishment should be bounded.
func Dial(ctx context.Context, network, address string, role telnetio.Role, opts ...ConnOption) (*Conn, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return New(nc, role, opts...), nil
}

// New wraps an already-established byte stream, starting the receive and
// send loops immediately. rwc is typically a net.Conn but may be any
// io.ReadWriteCloser, including net.Pipe() for tests.
func New(rwc io.ReadWriteCloser, role telnetio.Role, opts ...ConnOption) *Conn {
	c := &Conn{
		ID:        uuid.New(),
		rwc:       rwc,
		queueSize: defaultQueueSize,
		closed:    make(chan struct{}),
		notify:    make(chan struct{}, 1),
		recvDone:  make(chan error, 1),
		sendDone:  make(chan error, 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.outbound = newByteQueue(c.queueSize)
	c.engine = telnetio.NewEngine(role, c)
	if c.policy != nil {
		c.engine.WithPolicy(c.policy)
	}
	for _, hook := range c.eventHooks {
		c.engine.OnEvent(hook)
	}

	go c.receiveLoop()
	go c.sendLoop()

	return c
}

// Engine returns the underlying Engine, for registering additional
// OnEvent/OnSend hooks or inspecting the OptionTable.
func (c *Conn) Engine() *telnetio.Engine {
	return c.engine
}

// Send implements telnetio.OutboundSink by enqueueing data for the send
// loop. It is called both by Engine's own SendMessage/SendCommand and by
// outbound bytes a Policy produces while reacting to inbound negotiation.
func (c *Conn) Send(data []byte) {
	select {
	case <-c.closed:
		return
	default:
	}

	c.mu.Lock()
	c.outbound.Queue(data)
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// SendMessage IAC-escapes and enqueues application data.
func (c *Conn) SendMessage(data []byte) error {
	if c.isClosed() {
		return ErrClosed
	}
	c.engine.SendMessage(data)
	return nil
}

// SendCommand encodes and enqueues a 2- or 3-byte IAC command.
func (c *Conn) SendCommand(cmd byte, opt *byte) error {
	if c.isClosed() {
		return ErrClosed
	}
	c.engine.SendCommand(cmd, opt)
	return nil
}

// SendSubCommand encodes and enqueues a full subnegotiation frame.
func (c *Conn) SendSubCommand(cmd byte, payload []byte) error {
	if c.isClosed() {
		return ErrClosed
	}
	c.engine.SendSubCommand(cmd, payload)
	return nil
}

func (c *Conn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *Conn) receiveLoop() {
	buf := make([]byte, 4096)
	var err error

	for {
		var n int
		n, err = c.rwc.Read(buf)
		if n > 0 {
			c.engine.ReceiveData(buf[:n])
		}
		if err != nil {
			break
		}
	}

	c.recvDone <- err
	c.closeInternal()
}

func (c *Conn) sendLoop() {
	var err error

loop:
	for {
		select {
		case <-c.notify:
		case <-c.closed:
		}

		for {
			c.mu.Lock()
			frame, ok := c.outbound.Dequeue()
			c.mu.Unlock()
			if !ok {
				break
			}

			if werr := writeAll(c.rwc, frame); werr != nil {
				err = werr
				break loop
			}
		}

		if c.isClosed() {
			break
		}
	}

	c.sendDone <- err
}

func writeAll(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return err
		}
		data = data[n:]
	}
	return nil
}

// Close cancels both loops and closes the underlying stream. It is safe to
// call more than once, and safe to call alongside WaitForExit from another
// goroutine; every call blocks until both loops have exited.
func (c *Conn) Close() error {
	c.closeInternal()
	c.waitDone()
	return nil
}

func (c *Conn) closeInternal() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.rwc.Close()
	})
}

// waitDone reads both completion channels and immediately pushes the values
// back, the same push-back-after-read pattern the teacher's printer.go uses
// for its complete channel, so that Close and WaitForExit can each be called
// any number of times, in either order, without blocking on an
// already-drained channel.
func (c *Conn) waitDone() (recvErr, sendErr error) {
	recvErr = <-c.recvDone
	c.recvDone <- recvErr
	sendErr = <-c.sendDone
	c.sendDone <- sendErr
	return recvErr, sendErr
}

// WaitForExit blocks until both the receive and send loops have exited.
// It returns the error that ended the receive loop unless that error is
// io.EOF or net.ErrClosed; otherwise it returns the send loop's error
// unless that is net.ErrClosed; otherwise nil.
func (c *Conn) WaitForExit() error {
	recvErr, sendErr := c.waitDone()

	if recvErr != nil && !errors.Is(recvErr, io.EOF) && !errors.Is(recvErr, net.ErrClosed) {
		return recvErr
	}
	if sendErr != nil && !errors.Is(sendErr, net.ErrClosed) {
		return sendErr
	}
	return nil
}
