// Package serial wraps a real POSIX tty (via go.bug.st/serial) in the
// scoped read/write/reconnect contract the dome core needs: a blocking,
// timed byte read; a single-byte write; and a background reconnect loop
// that re-opens the port on any I/O error after a fixed backoff.
package serial

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// ErrWriteShort is returned when a one-byte write did not write exactly
// one byte.
var ErrWriteShort = errors.New("serial: short write")

// ErrReadTimeout is returned when a read waited the configured timeout
// and received nothing.
var ErrReadTimeout = errors.New("serial: read timeout")

// Config describes one tty endpoint.
type Config struct {
	Port    string
	Baud    int
	Timeout time.Duration // read timeout
	// IdleIsNormal records that a timed-out read on this link is routine
	// idle rather than a fault (the shutter link in legacy mode). Link does
	// not consult it: ReadByte returns ErrReadTimeout either way, and the
	// reading loop decides how to treat it.
	IdleIsNormal bool
}

// Sink is the minimal logging surface Link needs. domelog.Sink satisfies
// it without an import cycle.
type Sink interface {
	Info(tag, msg string, kv ...any)
	Warn(tag, msg string, kv ...any)
	Error(tag, msg string, kv ...any)
}

// Link owns one serial port and its reconnect loop. The zero value is
// not usable; construct with Open.
type Link struct {
	cfg Config
	tag string
	log Sink

	mu        sync.Mutex
	port      serial.Port
	everOpen  bool
	loggedErr bool
}

// Open returns a Link and performs the first connection attempt
// synchronously. Open itself reports no error and does not log a failed
// attempt; the link is still usable even if that attempt fails:
// ReadByte/WriteByte return a not-connected error, and a caller running
// Reconnect will retry.
func Open(tag string, cfg Config, log Sink) *Link {
	l := &Link{cfg: cfg, tag: tag, log: log}
	l.tryOpen()
	return l
}

func (l *Link) tryOpen() error {
	mode := &serial.Mode{
		BaudRate: l.cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(l.cfg.Port, mode)
	if err != nil {
		return fmt.Errorf("open %s: %w", l.cfg.Port, err)
	}
	if err := port.SetReadTimeout(l.cfg.Timeout); err != nil {
		_ = port.Close()
		return fmt.Errorf("set read timeout %s: %w", l.cfg.Port, err)
	}
	_ = port.ResetInputBuffer()
	_ = port.ResetOutputBuffer()

	l.mu.Lock()
	l.port = port
	first := !l.everOpen
	l.everOpen = true
	l.loggedErr = false
	l.mu.Unlock()

	if first {
		l.log.Info(l.tag, "serial link established", "port", l.cfg.Port)
	} else {
		l.log.Info(l.tag, "serial link restored", "port", l.cfg.Port)
	}
	return nil
}

// Reconnect runs the 5-second-backoff reconnect loop until ctx-equivalent
// stop returns true or a connection succeeds. Callers invoke this from
// their monitor goroutine whenever a read or write fails.
func (l *Link) Reconnect(stop func() bool) {
	l.mu.Lock()
	if l.port != nil {
		_ = l.port.Close()
		l.port = nil
	}
	l.mu.Unlock()

	for {
		if stop != nil && stop() {
			return
		}
		if err := l.tryOpen(); err == nil {
			return
		} else if !l.loggedErr {
			l.log.Error(l.tag, "serial link unavailable, retrying", "port", l.cfg.Port, "error", err.Error())
			l.loggedErr = true
		}
		time.Sleep(5 * time.Second)
	}
}

// ReadByte blocks up to the configured timeout for one byte.
func (l *Link) ReadByte() (byte, error) {
	l.mu.Lock()
	port := l.port
	l.mu.Unlock()
	if port == nil {
		return 0, errors.New("serial: not connected")
	}
	var buf [1]byte
	n, err := port.Read(buf[:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrReadTimeout
	}
	return buf[0], nil
}

// WriteByte writes exactly one byte, failing if the port accepted fewer.
func (l *Link) WriteByte(b byte) error {
	l.mu.Lock()
	port := l.port
	l.mu.Unlock()
	if port == nil {
		return errors.New("serial: not connected")
	}
	n, err := port.Write([]byte{b})
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrWriteShort
	}
	return nil
}

// Close releases the underlying port.
func (l *Link) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.port == nil {
		return nil
	}
	err := l.port.Close()
	l.port = nil
	return err
}
