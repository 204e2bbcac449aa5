package status

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync"
	"time"
)

// Conn is a single outbound byte stream bound to one deadline.
// Reads block until the requested byte count has arrived or the deadline elapses.
type Conn interface {
	// WriteFrame writes b, optionally preceded by its VarInt length.
	WriteFrame(b []byte, prefixLength bool) error
	ReadByte() (byte, error)
	// ReadShort reads a big-endian uint16.
	ReadShort() (uint16, error)
	ReadBytes(n int) ([]byte, error)
	RemoteAddr() string
	// Destroy releases the connection. Calls after the first are no-ops.
	Destroy() error
}

// Dialer opens a Conn whose deadline is timeout from now.
type Dialer interface {
	Dial(ctx context.Context, host string, port int, timeout time.Duration) (Conn, error)
}

// TCPDialer dials plain TCP connections.
type TCPDialer struct{}

// Dial connects to host:port. The same absolute deadline covers the connect
// and every later read and write; an earlier context deadline wins.
func (TCPDialer) Dial(ctx context.Context, host string, port int, timeout time.Duration) (Conn, error) {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	addr := net.JoinHostPort(host, strconv.Itoa(port))

	var d net.Dialer
	nc, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return nil, transportError("connect to "+addr, err)
	}

	if err := nc.SetDeadline(deadline); err != nil {
		_ = nc.Close()
		return nil, transportError("set deadline on "+addr, err)
	}

	return newConn(nc), nil
}

type streamConn struct {
	nc       net.Conn
	r        *bufio.Reader
	once     sync.Once
	closeErr error
}

func newConn(nc net.Conn) *streamConn {
	return &streamConn{nc: nc, r: bufio.NewReader(nc)}
}

func (c *streamConn) WriteFrame(b []byte, prefixLength bool) error {
	frame := b
	if prefixLength {
		frame = binary.AppendUvarint(make([]byte, 0, len(b)+binary.MaxVarintLen32), uint64(len(b)))
		frame = append(frame, b...)
	}

	if _, err := c.nc.Write(frame); err != nil {
		return transportError("write", err)
	}

	return nil
}

func (c *streamConn) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err != nil {
		return 0, transportError("read byte", err)
	}

	return b, nil
}

func (c *streamConn) ReadShort() (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint16(b), nil
}

func (c *streamConn) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return nil, transportError(fmt.Sprintf("read %d bytes", n), err)
	}

	return buf, nil
}

func (c *streamConn) RemoteAddr() string {
	return c.nc.RemoteAddr().String()
}

func (c *streamConn) Destroy() error {
	c.once.Do(func() {
		c.closeErr = c.nc.Close()
	})

	return c.closeErr
}

// transportError classifies err as ErrTimeout or ErrConnection, keeping the cause in the chain.
func transportError(op string, err error) error {
	if isTimeout(err) {
		return fmt.Errorf("%w: %s: %w", ErrTimeout, op, err)
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: connection closed by remote: %w", ErrConnection, op, err)
	}

	return fmt.Errorf("%w: %s: %w", ErrConnection, op, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
