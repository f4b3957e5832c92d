package dome

import "time"

// sirenDuration is how long moveShutter waits after sounding the
// pre-movement siren. Overridden in tests.
var sirenDuration = 5 * time.Second

// moveShutter drives cmdByte ('a'/'A'/'b'/'B') repeatedly, paced by
// stepDelay, until atRequestedLimit reports the destination reached, the
// caller is stopped, the heartbeat trips, or timeout elapses (when > 0).
//
// It returns true only when termination was solely due to
// atRequestedLimit: callers use this to distinguish "reached the limit"
// from "gave up" (stop, trip, timeout).
func (s *Supervisor) moveShutter(cmdByte byte, atRequestedLimit func(stepCount int) bool, stepDelay, timeout time.Duration, siren bool) bool {
	if s.cfg.HasBumperGuard {
		if err := s.shutterLink.WriteByte('R'); err != nil {
			s.log.Warn("dome.movement", "bumper guard reset write failed", "error", err.Error())
		}
		time.Sleep(stepDelay)
	}

	if siren && s.sirenArmed() {
		if err := s.heartbeatLink.WriteByte(0xFF); err != nil {
			s.log.Warn("dome.movement", "siren write failed", "error", err.Error())
		}
		time.Sleep(sirenDuration)
	}

	start := time.Now()
	stepCount := 0

	for {
		if err := s.shutterLink.WriteByte(cmdByte); err != nil {
			s.log.Warn("dome.movement", "command byte write failed", "error", err.Error(), "byte", cmdByte)
		}
		stepCount++
		time.Sleep(stepDelay)

		if s.forceStopped.Load() {
			return false
		}
		if hb := s.heartbeatState(); hb == TrippedClosing || hb == TrippedIdle {
			return false
		}
		if atRequestedLimit(stepCount) {
			return true
		}
		if timeout > 0 && time.Since(start) > timeout {
			return false
		}
	}
}

func (s *Supervisor) sirenArmed() bool {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.sirenEnabled
}
