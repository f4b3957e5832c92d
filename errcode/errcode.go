// Package errcode defines the flat outcome codes returned across the
// dome command surface, plus a small wrapped-error type used by the
// ambient stack (config loading) to keep causes attached.
package errcode

// Code is a stable, bus-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical dome command outcomes. Names mirror the numeric
// codes the daemon's original RPC boundary used, preserved below via
// Numeric for callers that still expect the old integers.
const (
	Succeeded                                Code = "succeeded"
	Failed                                   Code = "failed"
	Blocked                                   Code = "blocked"
	HeartbeatTimedOut                        Code = "heartbeat_timed_out"
	HeartbeatCloseInProgress                 Code = "heartbeat_close_in_progress"
	HeartbeatUnavailable                     Code = "heartbeat_unavailable"
	HeartbeatInvalidTimeout                  Code = "heartbeat_invalid_timeout"
	EngineeringModeActive                    Code = "engineering_mode_active"
	EngineeringModeRequiresHeartbeatDisabled Code = "engineering_mode_requires_heartbeat_disabled"
	InvalidControlIP                         Code = "invalid_control_ip"

	// Ambient/bus-layer codes, not part of the command outcome enumeration
	// but shared with the rest of the stack for decode/transport failures.
	InvalidParams Code = "invalid_params"
	Timeout       Code = "timeout"
	Error         Code = "error" // generic fallback
)

var numeric = map[Code]int{
	Succeeded:                                0,
	Failed:                                   1,
	Blocked:                                  2,
	HeartbeatTimedOut:                        3,
	HeartbeatCloseInProgress:                 4,
	HeartbeatUnavailable:                     5,
	HeartbeatInvalidTimeout:                  6,
	EngineeringModeRequiresHeartbeatDisabled: 7,
	EngineeringModeActive:                    8,
	InvalidControlIP:                         10,
}

var messages = map[Code]string{
	Failed:            "error: command failed",
	Blocked:           "error: another command is already running",
	InvalidControlIP:  "error: command not accepted from this IP",
	HeartbeatTimedOut: "error: heartbeat monitor has tripped",
	HeartbeatCloseInProgress:                 "error: heartbeat monitor is closing the dome",
	HeartbeatUnavailable:                     "error: heartbeat monitor is not available",
	HeartbeatInvalidTimeout:                  "error: heartbeat timeout must be less than 120s",
	EngineeringModeRequiresHeartbeatDisabled: "error: heartbeat monitor must be disabled before enabling engineering mode",
	EngineeringModeActive:                    "error: dome is in engineering mode",
}

// Numeric returns the legacy integer return code for c, or -1 if c has
// no numeric counterpart (Succeeded uses 0, same as the zero value of
// the original return-code convention).
func Numeric(c Code) int {
	if n, ok := numeric[c]; ok {
		return n
	}
	return -1
}

// Message returns a human readable description of c.
func Message(c Code) string {
	if m, ok := messages[c]; ok {
		return m
	}
	if c == Succeeded {
		return "ok"
	}
	return "error: unknown error code " + string(c)
}

// E wraps a Code with context and an optional cause, for the ambient
// stack (config loading) where a plain Code isn't
// descriptive enough on its own.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	if e.Msg != "" {
		return e.Op + ": " + e.Msg
	}
	return e.Op + ": " + string(e.C)
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return Succeeded
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}
