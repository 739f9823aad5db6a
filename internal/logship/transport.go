// Package logship forwards journal lines to a store-side log collector over a
// plain TCP connection, one newline-terminated line per message. Delivery is
// best effort: a line that cannot be written is dropped, counted and logged,
// never retried. Losing a shipped line must not affect the sale that produced
// it.
package logship

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const defaultDialTimeout = 3 * time.Second

// Transport is a lazy TCP client for the log collector. The zero value with
// Host and Port set is ready to use; the first Send dials the collector.
type Transport struct {
	Host        string
	Port        int
	DialTimeout time.Duration
	Logger      zerolog.Logger

	mu     sync.Mutex
	conn   net.Conn
	dialed bool
}

func (t *Transport) addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

func (t *Transport) timeout() time.Duration {
	if t.DialTimeout > 0 {
		return t.DialTimeout
	}
	return defaultDialTimeout
}

// Connect dials the collector if no connection is held. Safe to call more
// than once; an established connection is reused.
func (t *Transport) Connect() error {
	if t == nil {
		return errors.New("logship: transport not configured")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connectLocked()
}

func (t *Transport) connectLocked() error {
	if t.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("tcp", t.addr(), t.timeout())
	if err != nil {
		return fmt.Errorf("logship: dial %s: %w", t.addr(), err)
	}
	if t.dialed {
		ReconnectTotal.Inc()
	}
	t.dialed = true
	t.conn = conn
	t.Logger.Debug().Str("collector", t.addr()).Msg("log collector connected")
	return nil
}

// Send writes one line to the collector, connecting lazily. On any write
// failure the held connection is marked dead and the line is dropped — never
// resent; the next Send dials afresh. Callers treat the error as
// informational only.
func (t *Transport) Send(line string) error {
	if t == nil {
		return errors.New("logship: transport not configured")
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.connectLocked(); err != nil {
		return t.drop("dial", line, err)
	}
	if err := t.writeLocked(line); err != nil {
		_ = t.closeLocked()
		return t.drop("write", line, err)
	}
	return nil
}

func (t *Transport) writeLocked(line string) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.timeout())); err != nil {
		return err
	}
	_, err := io.WriteString(t.conn, line+"\n")
	return err
}

func (t *Transport) drop(reason, line string, err error) error {
	DropTotal.WithLabelValues(reason).Inc()
	t.Logger.Warn().Err(err).Str("collector", t.addr()).Str("line", line).Msg("journal line dropped")
	return err
}

// Close releases the held connection if any. Safe to call repeatedly and
// concurrently with Send; the next Send reconnects.
func (t *Transport) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closeLocked()
}

func (t *Transport) closeLocked() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}
