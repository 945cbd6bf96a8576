package gdbstub

import (
	"errors"
	"io"
	"net"
	"time"
)

// Connection is the byte transport a Session drives. Peek must be
// non-blocking: it reports whether a byte is currently available without
// consuming it, so Session can interleave reading incoming packets with
// checking for asynchronous stop events to deliver.
type Connection interface {
	Peek() (bool, error)
	ReadByte() (byte, error)
	Write(p []byte) (int, error)
}

// peekPollInterval is how long a Peek() call blocks waiting for data before
// reporting "nothing yet"; small enough that Session's poll loop stays
// responsive to stop events arriving from the emulator.
const peekPollInterval = 2 * time.Millisecond

// TCPConnection adapts a net.Conn (as used by the TCP listener in
// cmd/mipsvm) to Connection using read-deadline-based polling, since
// net.Conn has no native non-blocking peek.
type TCPConnection struct {
	conn    net.Conn
	pending []byte
}

// NewTCPConnection wraps conn for use by a Session.
func NewTCPConnection(conn net.Conn) *TCPConnection {
	return &TCPConnection{conn: conn}
}

// Peek reports whether a byte is available within peekPollInterval,
// buffering it internally if so for the next ReadByte call.
func (c *TCPConnection) Peek() (bool, error) {
	if len(c.pending) > 0 {
		return true, nil
	}
	if err := c.conn.SetReadDeadline(time.Now().Add(peekPollInterval)); err != nil {
		return false, err
	}
	buf := make([]byte, 1)
	n, err := c.conn.Read(buf)
	if n == 1 {
		c.pending = buf
		return true, nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false, nil
	}
	return false, err
}

// ReadByte returns the next byte, blocking until one arrives.
func (c *TCPConnection) ReadByte() (byte, error) {
	if len(c.pending) > 0 {
		b := c.pending[0]
		c.pending = nil
		return b, nil
	}
	if err := c.conn.SetReadDeadline(time.Time{}); err != nil {
		return 0, err
	}
	buf := make([]byte, 1)
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// Write sends p over the connection.
func (c *TCPConnection) Write(p []byte) (int, error) {
	return c.conn.Write(p)
}
