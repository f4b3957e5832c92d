// Package dome implements the supervisory core: the serial-driven
// shutter and heartbeat state machines, the movement driver, and the
// command surface that sits in front of them.
package dome

import "time"

// ShutterStatus is the state of one dome shutter, as inferred from
// controller bytes. Numeric values match the daemon's historical wire
// convention so existing dashboards/clients keep working unmodified.
type ShutterStatus int

const (
	Closed ShutterStatus = iota
	Open
	PartiallyOpen
	Opening
	Closing
	HeartbeatMonitorForceClosing
)

var shutterLabels = map[ShutterStatus]string{
	Closed:                       "CLOSED",
	Open:                         "OPEN",
	PartiallyOpen:                "PARTIALLY OPEN",
	Opening:                      "OPENING",
	Closing:                      "CLOSING",
	HeartbeatMonitorForceClosing: "FORCE CLOSING",
}

// Label returns the display string for s, or "UNKNOWN" for an
// out-of-range value.
func (s ShutterStatus) Label() string {
	if l, ok := shutterLabels[s]; ok {
		return l
	}
	return "UNKNOWN"
}

// HeartbeatState is the state of the heartbeat monitor link.
type HeartbeatState int

const (
	Disabled HeartbeatState = iota
	Active
	TrippedClosing
	TrippedIdle
	Unavailable
)

var heartbeatLabels = map[HeartbeatState]string{
	Disabled:       "DISABLED",
	Active:         "ACTIVE",
	TrippedClosing: "CLOSING DOME",
	TrippedIdle:    "TRIPPED",
	Unavailable:    "UNAVAILABLE",
}

func (s HeartbeatState) Label() string {
	if l, ok := heartbeatLabels[s]; ok {
		return l
	}
	return "UNKNOWN"
}

// StatusSnapshot is the full observable state returned by Status().
type StatusSnapshot struct {
	Time time.Time

	ShutterA      ShutterStatus
	ShutterALabel string
	ShutterB      ShutterStatus
	ShutterBLabel string
	Closed        bool

	EngineeringMode bool

	HeartbeatTime      time.Time
	Heartbeat          HeartbeatState
	HeartbeatLabel     string
	HeartbeatRemaining float64
	SirenEnabled       bool

	// BeltTensionedA/B are nil when no sensor is bound for that side.
	BeltTensionedA *bool
	BeltTensionedB *bool
}

// ByteLink is the minimal serial contract the core depends on. *serial.Link
// satisfies it; tests use an in-memory fake.
type ByteLink interface {
	ReadByte() (byte, error)
	WriteByte(b byte) error
}

// Reconnector is implemented by links that can recover from an I/O error
// by reopening the underlying port. stop is polled between retries so the
// loop can unwind on shutdown.
type Reconnector interface {
	Reconnect(stop func() bool)
}

// BeltOracle reports whether side's belt is tensioned (true) or slack
// (false). It is consulted while opening and by Status, never while
// closing. A nil BeltOracle means no belt checking is configured.
type BeltOracle interface {
	BeltTensioned(side byte) (bool, error)
}

// Sink is the logging façade the core calls through.
type Sink interface {
	Info(tag, msg string, kv ...any)
	Warn(tag, msg string, kv ...any)
	Error(tag, msg string, kv ...any)
}
