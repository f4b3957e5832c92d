package dome

import (
	"context"
	"time"
)

// heartbeatMonitorLoop owns the heartbeat link: it is the sole reader,
// and the sole writer of heartbeat state.
func (s *Supervisor) heartbeatMonitorLoop(ctx context.Context) {
	var lastState HeartbeatState = -1 // sentinel: no transition logged yet

	s.statusMu.Lock()
	s.heartbeat = Unavailable
	s.statusMu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		b, err := s.heartbeatLink.ReadByte()
		if err != nil {
			// The monitor emits a byte every sample, so a timed-out read
			// is handled like any other read error.
			s.log.Warn("dome.heartbeat", "heartbeat link read error", "error", err.Error())
			s.statusMu.Lock()
			s.heartbeat = Unavailable
			s.statusMu.Unlock()
			if r, ok := s.heartbeatLink.(Reconnector); ok {
				r.Reconnect(func() bool {
					select {
					case <-ctx.Done():
						return true
					default:
						return false
					}
				})
			}
			continue
		}

		lastState = s.decodeHeartbeatByte(b, lastState)
	}
}

// decodeHeartbeatByte applies one heartbeat-monitor byte and returns the
// resulting state so the caller can detect the next transition.
func (s *Supervisor) decodeHeartbeatByte(b byte, lastState HeartbeatState) HeartbeatState {
	s.statusMu.Lock()
	var next HeartbeatState
	switch {
	case b == 254:
		next = TrippedClosing
		s.shutterA = HeartbeatMonitorForceClosing
		s.shutterB = HeartbeatMonitorForceClosing
		s.statusTime = time.Now()
	case b == 255:
		next = TrippedIdle
	case b == 0:
		next = Disabled
	default:
		next = Active
		s.heartbeatRemaining = float64(b) / 2
	}
	s.heartbeat = next
	s.heartbeatTime = time.Now()
	s.statusMu.Unlock()

	if next == lastState {
		return next
	}

	switch next {
	case TrippedClosing:
		s.log.Warn("dome.heartbeat", "closing dome")
	case TrippedIdle:
		s.log.Warn("dome.heartbeat", "finished closing dome")
		if s.cfg.HasLegacyController {
			// Provoke a fresh status byte from a legacy controller whose
			// link may have been interrupted by the monitor's own close.
			// This always writes the close bytes, regardless of the
			// shutter's intended direction at the time of the trip.
			_ = s.shutterLink.WriteByte('A')
			time.Sleep(s.cfg.CommandDelay)
			_ = s.shutterLink.WriteByte('B')
			time.Sleep(s.cfg.CommandDelay)
		}
	case Disabled:
		s.log.Info("dome.heartbeat", "heartbeat disabled")
	case Active:
		s.log.Info("dome.heartbeat", "heartbeat active")
	}

	return next
}

// setHeartbeatTimer writes the single arming byte for timeoutSeconds.
// Bounds ([0,120)) must already be validated by the caller.
func (s *Supervisor) setHeartbeatTimer(timeoutSeconds int) error {
	return s.heartbeatLink.WriteByte(byte(2 * timeoutSeconds))
}
