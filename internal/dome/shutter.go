package dome

import (
	"context"
	"errors"
	"time"

	domeserial "domed/serial"
)

// shutterMonitorLoop owns the shutter controller link: it is the sole
// reader, and the sole writer of shutterA/shutterB/statusTime other than
// a heartbeat trip (handled in heartbeat.go) and the movement driver's
// command bytes (which never touch shutter state directly — only the
// controller's own status bytes do).
func (s *Supervisor) shutterMonitorLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		b, err := s.shutterLink.ReadByte()
		if err != nil {
			if errors.Is(err, domeserial.ErrReadTimeout) && s.cfg.HasLegacyController {
				// Legacy controllers go quiet between status bytes; a
				// timed-out read is routine idle, not a fault. On a modern
				// controller it is handled like any other read error.
				continue
			}
			s.log.Warn("dome.shutter", "shutter link read error", "error", err.Error())
			if r, ok := s.shutterLink.(Reconnector); ok {
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

		s.decodeShutterByte(b)
	}
}

// decodeShutterByte applies one controller byte to shared shutter state
// under the status mutex.
func (s *Supervisor) decodeShutterByte(b byte) {
	s.statusMu.Lock()
	defer func() {
		s.statusTime = time.Now()
		s.statusMu.Unlock()
	}()

	legacy := s.cfg.HasLegacyController

	switch b {
	case '0':
		s.shutterA, s.shutterB = Closed, Closed
	case '1':
		s.shutterA = Closed
		if s.shutterB != Open {
			s.shutterB = PartiallyOpen
		}
	case '2':
		if s.shutterA != Open {
			s.shutterA = PartiallyOpen
		}
		s.shutterB = Closed
	case '3':
		if s.shutterA != Open {
			s.shutterA = PartiallyOpen
		}
		if s.shutterB != Open {
			s.shutterB = PartiallyOpen
		}
	case 'A':
		s.shutterA = sideTransition(legacy, Closing)
	case 'a':
		s.shutterA = sideTransition(legacy, Opening)
	case 'X':
		s.shutterA = Closed
	case 'x':
		s.shutterA = Open
	case 'B':
		s.shutterB = sideTransition(legacy, Closing)
	case 'b':
		s.shutterB = sideTransition(legacy, Opening)
	case 'Y':
		s.shutterB = Closed
	case 'y':
		s.shutterB = Open
	case 'R':
		s.log.Info("dome.shutter", "bumper guard relay reset")
	default:
		s.log.Warn("dome.shutter", "unknown status byte", "byte", b)
	}
}

// sideTransition resolves the modern vs legacy interpretation of an 'A'/'a'
// or 'B'/'b' per-side transition byte: legacy controllers only report
// PartiallyOpen, never the transient Opening/Closing states.
func sideTransition(legacy bool, modern ShutterStatus) ShutterStatus {
	if legacy {
		return PartiallyOpen
	}
	return modern
}
