package match

import (
	"context"
	"time"

	"github.com/hailam/pocketchess/internal/board"
	"github.com/hailam/pocketchess/internal/lan"
)

// DialTimeout bounds how long Join waits for the host.
const DialTimeout = 10 * time.Second

// Connection sets up a LAN peer in the background so a frame loop can poll it.
type Connection struct {
	addr   string
	cancel context.CancelFunc
	done   chan struct{}
	peer   *lan.Peer
	err    error
}

// Host listens on addr and waits for one guest. The host plays color and
// both sides get timer.
func Host(addr string, color board.Color, timer time.Duration) (*Connection, error) {
	ctx, cancel := context.WithCancel(context.Background())
	h, err := lan.Listen(ctx, addr)
	if err != nil {
		cancel()
		return nil, err
	}
	c := &Connection{addr: h.Addr().String(), cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(c.done)
		defer cancel()
		defer h.Close()
		c.peer, c.err = h.Accept(ctx, color, timer)
	}()
	return c, nil
}

// Join connects to a host at addr.
func Join(addr string) *Connection {
	ctx, cancel := context.WithTimeout(context.Background(), DialTimeout)
	c := &Connection{addr: addr, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(c.done)
		defer cancel()
		c.peer, c.err = lan.Dial(ctx, addr)
	}()
	return c
}

// Addr is the address being listened on or dialed.
func (c *Connection) Addr() string { return c.addr }

// Ready reports whether the attempt has finished, successfully or not.
func (c *Connection) Ready() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the attempt finishes or ctx is done.
func (c *Connection) Wait(ctx context.Context) (*lan.Peer, error) {
	select {
	case <-c.done:
		return c.peer, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the outcome of a Ready connection.
func (c *Connection) Result() (*lan.Peer, error) {
	<-c.done
	return c.peer, c.err
}

// Cancel abandons the attempt. A peer that connected anyway is closed.
func (c *Connection) Cancel() {
	c.cancel()
	<-c.done
	if c.peer != nil {
		c.peer.Close()
		c.peer = nil
	}
}
