package dome

import (
	"domed/errcode"
	"domed/x/mathx"
)

// OpenShutters moves each side named in sides (a string over {a,b}, order
// significant) toward Open. steps==0 means a full open (honoring
// slow_open_steps if configured); steps>0 means a bounded step move.
func (s *Supervisor) OpenShutters(callerIP, sides string, steps int) errcode.Code {
	if !s.isAuthorized(callerIP) {
		return errcode.InvalidControlIP
	}
	if s.engineeringModeOn() {
		return errcode.EngineeringModeActive
	}
	switch s.heartbeatState() {
	case TrippedClosing:
		return errcode.HeartbeatCloseInProgress
	case TrippedIdle:
		return errcode.HeartbeatTimedOut
	}
	if !s.commandMu.TryLock() {
		return errcode.Blocked
	}
	defer s.commandMu.Unlock()

	if len(sides) > 1 {
		s.log.Info("dome.command", "opening both shutters")
	} else {
		s.log.Info("dome.command", "opening shutter", "side", s.sideLabel(sides[0]))
	}

	ok := true
	for i := 0; i < len(sides); i++ {
		if !s.openSide(sides[i], steps) {
			ok = false
		}
	}

	if ok {
		s.log.Info("dome.command", "open complete")
		return errcode.Succeeded
	}
	s.log.Error("dome.command", "failed to open dome")
	return errcode.Failed
}

// openSide drives one side ('a' or 'b') open, returning false on failure
// (timeout, stop, trip, or belt slack).
func (s *Supervisor) openSide(side byte, steps int) bool {
	if s.shutterOf(side) == Open {
		return true
	}
	cmdByte := side // lowercase command opens

	beltFailed := false
	atLimit := func(limiter func(int) bool) func(int) bool {
		return func(stepCount int) bool {
			if limiter(stepCount) {
				return true
			}
			if s.beltSlack(side) {
				beltFailed = true
				return true
			}
			return false
		}
	}

	if steps > 0 {
		reached := s.moveShutter(cmdByte, atLimit(func(stepCount int) bool {
			return s.shutterOf(side) == Open || stepCount >= steps
		}), s.cfg.StepCommandDelay, 0, false)
		return reached && !beltFailed
	}

	siren := true
	if s.cfg.SlowOpenSteps > 0 {
		rampOK := s.moveShutter(cmdByte, atLimit(func(stepCount int) bool {
			return s.shutterOf(side) == Open || stepCount >= s.cfg.SlowOpenSteps
		}), s.cfg.StepCommandDelay, 0, true)
		siren = false
		if beltFailed {
			return false
		}
		if !rampOK && s.shutterOf(side) != Open {
			// Ramp gave up without reaching Open (stop/trip); don't
			// continue into the full-open phase.
			return false
		}
	}

	reached := s.moveShutter(cmdByte, atLimit(func(int) bool {
		return s.shutterOf(side) == Open
	}), s.cfg.CommandDelay, s.cfg.ShutterTimeout, siren)
	return reached && !beltFailed
}

// CloseShutters moves each side named in sides toward Closed. sides may
// be given in either case; each side is upper-cased to its close command
// byte.
func (s *Supervisor) CloseShutters(callerIP, sides string, steps int) errcode.Code {
	if !s.isAuthorized(callerIP) {
		return errcode.InvalidControlIP
	}
	if s.engineeringModeOn() {
		return errcode.EngineeringModeActive
	}
	switch s.heartbeatState() {
	case TrippedClosing:
		return errcode.HeartbeatCloseInProgress
	case TrippedIdle:
		return errcode.HeartbeatTimedOut
	}
	if !s.commandMu.TryLock() {
		return errcode.Blocked
	}
	defer s.commandMu.Unlock()

	if len(sides) > 1 {
		s.log.Info("dome.command", "closing both shutters")
	} else {
		s.log.Info("dome.command", "closing shutter", "side", s.sideLabel(lower(sides[0])))
	}

	ok := true
	for i := 0; i < len(sides); i++ {
		if !s.closeSide(sides[i], steps) {
			ok = false
		}
	}

	if ok {
		s.log.Info("dome.command", "close complete")
		return errcode.Succeeded
	}
	s.log.Error("dome.command", "failed to close dome")
	return errcode.Failed
}

func (s *Supervisor) closeSide(side byte, steps int) bool {
	lowered := lower(side)
	if s.shutterOf(lowered) == Closed {
		return true
	}
	cmdByte := upper(side) // uppercase command closes

	var stepDelay, timeout = s.cfg.CommandDelay, s.cfg.ShutterTimeout
	if steps > 0 {
		stepDelay, timeout = s.cfg.StepCommandDelay, 0
	}

	return s.moveShutter(cmdByte, func(stepCount int) bool {
		if s.shutterOf(lowered) == Closed {
			return true
		}
		return steps > 0 && stepCount >= steps
	}, stepDelay, timeout, false)
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// beltSlack reports true only when a belt sensor is bound for side and it
// reports slack. An unbound side, or a sensor read error, never aborts a
// movement.
func (s *Supervisor) beltSlack(side byte) bool {
	if s.belt == nil {
		return false
	}
	tensioned, err := s.belt.BeltTensioned(side)
	if err != nil {
		return false
	}
	if !tensioned {
		s.log.Error("dome.command", "belt is slack", "side", s.sideLabel(side))
		return true
	}
	return false
}

// Stop forces any in-flight movement to terminate. It blocks until the
// movement (if any) has observed the flag and released the command mutex.
func (s *Supervisor) Stop(callerIP string) errcode.Code {
	if !s.isAuthorized(callerIP) {
		return errcode.InvalidControlIP
	}
	if s.heartbeatState() == TrippedClosing {
		return errcode.HeartbeatCloseInProgress
	}
	s.forceStopped.Store(true)
	s.commandMu.Lock()
	s.commandMu.Unlock()
	s.forceStopped.Store(false)
	s.log.Info("dome.command", "stop")
	return errcode.Succeeded
}

// SetEngineeringMode toggles engineering mode, which disables all
// open/close/heartbeat-arming commands.
func (s *Supervisor) SetEngineeringMode(callerIP string, enabled bool) errcode.Code {
	if !s.isAuthorized(callerIP) {
		return errcode.InvalidControlIP
	}
	if s.heartbeatState() == TrippedClosing {
		return errcode.HeartbeatCloseInProgress
	}
	if enabled && s.heartbeatState() == Active {
		return errcode.EngineeringModeRequiresHeartbeatDisabled
	}
	if !s.commandMu.TryLock() {
		return errcode.Blocked
	}
	defer s.commandMu.Unlock()

	s.statusMu.Lock()
	s.engineeringMode = enabled
	s.statusMu.Unlock()
	s.log.Info("dome.command", "engineering mode set", "enabled", enabled)
	return errcode.Succeeded
}

// SetHeartbeatTimer arms (or disarms, with timeoutSeconds==0) the
// heartbeat watchdog.
func (s *Supervisor) SetHeartbeatTimer(callerIP string, timeoutSeconds int) errcode.Code {
	if !s.isAuthorized(callerIP) {
		return errcode.InvalidControlIP
	}
	if s.engineeringModeOn() {
		return errcode.EngineeringModeActive
	}
	hb := s.heartbeatState()
	if hb == Unavailable {
		return errcode.HeartbeatUnavailable
	}
	if hb == TrippedClosing {
		return errcode.HeartbeatCloseInProgress
	}
	if timeoutSeconds != 0 && hb == TrippedIdle {
		return errcode.HeartbeatTimedOut
	}
	if !mathx.Between(timeoutSeconds, 0, 119) {
		return errcode.HeartbeatInvalidTimeout
	}
	if err := s.setHeartbeatTimer(timeoutSeconds); err != nil {
		s.log.Error("dome.command", "heartbeat arm write failed", "error", err.Error())
		return errcode.Failed
	}
	return errcode.Succeeded
}

// SetHeartbeatSiren toggles the pre-movement siren. It has no effect on
// the monitor hardware's own emergency-close siren.
func (s *Supervisor) SetHeartbeatSiren(callerIP string, enabled bool) errcode.Code {
	if !s.isAuthorized(callerIP) {
		return errcode.InvalidControlIP
	}
	s.statusMu.Lock()
	s.sirenEnabled = enabled
	s.statusMu.Unlock()
	return errcode.Succeeded
}

func (s *Supervisor) engineeringModeOn() bool {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.engineeringMode
}
