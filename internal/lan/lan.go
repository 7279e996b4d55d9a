// Package lan plays a game against a peer over TCP.
//
// The protocol is line based. The host opens with "HELLO <host-color>
// <timer-seconds>" and the guest answers "HELLO <guest-color>". After that
// either side may send "MOVE <from><to>[promotion]", which the receiver
// acknowledges with "ACK Move received.", or "RESIGN".
package lan

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hailam/pocketchess/internal/board"
)

// DefaultPort is the port a host listens on unless told otherwise.
const DefaultPort = 5555

// AckMessage is the text of every move acknowledgement.
const AckMessage = "Move received."

const maxLineLength = 256

var (
	// ErrProtocol is returned when the peer sends something unexpected.
	ErrProtocol = errors.New("lan: protocol error")

	// ErrClosed is returned once the connection is gone.
	ErrClosed = errors.New("lan: connection closed")

	// ErrResigned is returned by ProposeMove after the peer resigned.
	ErrResigned = errors.New("lan: peer resigned")
)

// Host accepts a single guest.
type Host struct {
	ln net.Listener
}

// Listen opens a listening socket on addr (e.g. ":5555").
func Listen(ctx context.Context, addr string) (*Host, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("lan: listen %s: %w", addr, err)
	}
	log.Printf("[LAN] listening on %s", ln.Addr())
	return &Host{ln: ln}, nil
}

// Addr returns the listening address.
func (h *Host) Addr() net.Addr {
	return h.ln.Addr()
}

// Close stops listening. A pending Accept returns an error.
func (h *Host) Close() error {
	return h.ln.Close()
}

// Accept waits for a guest and performs the handshake. The host plays color
// and both players get timer on their clocks.
func (h *Host) Accept(ctx context.Context, color board.Color, timer time.Duration) (*Peer, error) {
	stop := context.AfterFunc(ctx, func() { h.ln.Close() })
	conn, err := h.ln.Accept()
	stop()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("lan: accept: %w", err)
	}
	log.Printf("[LAN] %s connected", conn.RemoteAddr())

	p := newPeer(conn, color, timer)
	if err := p.hostHandshake(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	go p.readLoop()
	return p, nil
}

// Dial joins a host at addr.
func Dial(ctx context.Context, addr string) (*Peer, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("lan: dial %s: %w", addr, err)
	}
	log.Printf("[LAN] connected to %s", addr)

	p := newPeer(conn, board.NoColor, 0)
	if err := p.guestHandshake(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	go p.readLoop()
	return p, nil
}

// Peer is the remote player. It implements game.Opponent for the remote
// side and sends the local side's moves with SendMove.
type Peer struct {
	conn    net.Conn
	scanner *bufio.Scanner
	local   board.Color
	timer   time.Duration

	writeMu sync.Mutex

	// sendMu serializes SendMove. owed counts acknowledgements still due,
	// including those of sends that gave up waiting.
	sendMu sync.Mutex
	owed   atomic.Int32

	moves    chan board.Move
	acks     chan struct{}
	resigned chan struct{}
	done     chan struct{}

	closeOnce  sync.Once
	resignOnce sync.Once
	errMu      sync.Mutex
	err        error
}

func newPeer(conn net.Conn, local board.Color, timer time.Duration) *Peer {
	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, maxLineLength), maxLineLength)
	return &Peer{
		conn:     conn,
		scanner:  sc,
		local:    local,
		timer:    timer,
		moves:    make(chan board.Move, 8),
		acks:     make(chan struct{}, 8),
		resigned: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// LocalColor returns the color played on this side of the connection.
func (p *Peer) LocalColor() board.Color {
	return p.local
}

// RemoteColor returns the color played by the peer.
func (p *Peer) RemoteColor() board.Color {
	return p.local.Other()
}

// TimerLength returns the clock length agreed during the handshake.
func (p *Peer) TimerLength() time.Duration {
	return p.timer
}

// Resigned is closed when the peer resigns.
func (p *Peer) Resigned() <-chan struct{} {
	return p.resigned
}

// Done is closed when the connection ends.
func (p *Peer) Done() <-chan struct{} {
	return p.done
}

// Err returns why the connection ended, or nil while it is open.
func (p *Peer) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

func (p *Peer) hostHandshake(ctx context.Context) error {
	secs := int(p.timer / time.Second)
	if err := p.writeLine(ctx, fmt.Sprintf("HELLO %s %d", p.local, secs)); err != nil {
		return err
	}
	fields, err := p.readHandshake(ctx)
	if err != nil {
		return err
	}
	if len(fields) != 2 {
		return fmt.Errorf("%w: bad HELLO %q", ErrProtocol, strings.Join(fields, " "))
	}
	guest, err := board.ParseColor(fields[1])
	if err != nil || guest != p.local.Other() {
		return fmt.Errorf("%w: guest wants %q, host plays %v", ErrProtocol, fields[1], p.local)
	}
	return nil
}

func (p *Peer) guestHandshake(ctx context.Context) error {
	fields, err := p.readHandshake(ctx)
	if err != nil {
		return err
	}
	if len(fields) != 3 {
		return fmt.Errorf("%w: bad HELLO %q", ErrProtocol, strings.Join(fields, " "))
	}
	host, err := board.ParseColor(fields[1])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProtocol, err)
	}
	secs, err := strconv.Atoi(fields[2])
	if err != nil || secs < 0 {
		return fmt.Errorf("%w: bad timer %q", ErrProtocol, fields[2])
	}
	p.local = host.Other()
	p.timer = time.Duration(secs) * time.Second
	return p.writeLine(ctx, "HELLO "+p.local.String())
}

// readHandshake reads one HELLO line, giving up when ctx is done.
func (p *Peer) readHandshake(ctx context.Context) ([]string, error) {
	if deadline, ok := ctx.Deadline(); ok {
		p.conn.SetReadDeadline(deadline)
		defer p.conn.SetReadDeadline(time.Time{})
	}
	stop := context.AfterFunc(ctx, func() { p.conn.SetReadDeadline(time.Now()) })
	defer stop()

	if !p.scanner.Scan() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err := p.scanner.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrClosed, err)
		}
		return nil, ErrClosed
	}
	fields := strings.Fields(p.scanner.Text())
	if len(fields) == 0 || fields[0] != "HELLO" {
		return nil, fmt.Errorf("%w: expected HELLO, got %q", ErrProtocol, p.scanner.Text())
	}
	return fields, nil
}

// readLoop dispatches incoming lines until the connection ends.
func (p *Peer) readLoop() {
	for p.scanner.Scan() {
		line := p.scanner.Text()
		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		switch cmd {
		case "MOVE":
			m, err := board.ParseMove(arg)
			if err != nil {
				p.fail(fmt.Errorf("%w: %w", ErrProtocol, err))
				return
			}
			log.Printf("[LAN] received %v", m)
			select {
			case p.moves <- m:
			default:
				p.fail(fmt.Errorf("%w: peer sent moves out of turn", ErrProtocol))
				return
			}
			if err := p.writeLine(context.Background(), "ACK "+AckMessage); err != nil {
				p.fail(err)
				return
			}
		case "ACK":
			if p.owed.Load() == 0 {
				log.Printf("[LAN] ignoring unexpected ACK")
				continue
			}
			select {
			case p.acks <- struct{}{}:
			default:
			}
		case "RESIGN":
			log.Printf("[LAN] peer resigned")
			p.resignOnce.Do(func() { close(p.resigned) })
		case "":
		default:
			p.fail(fmt.Errorf("%w: unknown command %q", ErrProtocol, cmd))
			return
		}
	}
	if err := p.scanner.Err(); err != nil {
		p.fail(fmt.Errorf("%w: %w", ErrClosed, err))
		return
	}
	p.fail(ErrClosed)
}

// ProposeMove waits for the peer's next move. color must be the peer's color.
func (p *Peer) ProposeMove(ctx context.Context, _ *board.Position, color board.Color) (board.Move, error) {
	if color != p.RemoteColor() {
		return board.NoMove, fmt.Errorf("lan: asked for a %v move, peer plays %v", color, p.RemoteColor())
	}
	select {
	case m := <-p.moves:
		return m, nil
	case <-p.resigned:
		return board.NoMove, ErrResigned
	case <-p.done:
		return board.NoMove, p.Err()
	case <-ctx.Done():
		return board.NoMove, ctx.Err()
	}
}

// SendMove sends a local move and waits for its acknowledgement. Late
// acknowledgements of earlier sends that timed out are consumed first.
func (p *Peer) SendMove(ctx context.Context, m board.Move) error {
	p.sendMu.Lock()
	defer p.sendMu.Unlock()

	p.owed.Add(1)
	if err := p.writeLine(ctx, "MOVE "+m.String()); err != nil {
		p.owed.Add(-1)
		return err
	}
	for p.owed.Load() > 0 {
		select {
		case <-p.acks:
			p.owed.Add(-1)
		case <-p.done:
			return p.Err()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Resign tells the peer the local player resigned.
func (p *Peer) Resign(ctx context.Context) error {
	return p.writeLine(ctx, "RESIGN")
}

// Close ends the connection.
func (p *Peer) Close() error {
	p.fail(ErrClosed)
	return nil
}

func (p *Peer) writeLine(ctx context.Context, line string) error {
	select {
	case <-p.done:
		return p.Err()
	default:
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		p.conn.SetWriteDeadline(deadline)
		defer p.conn.SetWriteDeadline(time.Time{})
	}
	if _, err := p.conn.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("%w: %w", ErrClosed, err)
	}
	return nil
}

// fail records the first error and tears the connection down.
func (p *Peer) fail(err error) {
	p.closeOnce.Do(func() {
		p.errMu.Lock()
		p.err = err
		p.errMu.Unlock()
		if !errors.Is(err, ErrClosed) {
			log.Printf("[LAN] %v", err)
		}
		p.conn.Close()
		close(p.done)
	})
}
