package dome

import (
	"testing"
	"time"
)

func TestMoveShutterStopsOnPredicate(t *testing.T) {
	s, _, _ := newTestSupervisor()
	calls := 0
	ok := s.moveShutter('a', func(stepCount int) bool {
		calls = stepCount
		return stepCount >= 3
	}, time.Millisecond, 0, false)
	if !ok {
		t.Fatalf("expected predicate-terminated move to return true")
	}
	if calls != 3 {
		t.Fatalf("expected exactly 3 steps, got %d", calls)
	}
}

func TestMoveShutterStopsOnForceStop(t *testing.T) {
	s, _, _ := newTestSupervisor()
	s.forceStopped.Store(true)
	ok := s.moveShutter('a', func(int) bool { return false }, time.Millisecond, 0, false)
	if ok {
		t.Fatalf("expected forced-stop move to return false")
	}
}

func TestMoveShutterStopsOnHeartbeatTrip(t *testing.T) {
	s, _, _ := newTestSupervisor()
	s.heartbeat = TrippedClosing
	ok := s.moveShutter('a', func(int) bool { return false }, time.Millisecond, 0, false)
	if ok {
		t.Fatalf("expected trip-terminated move to return false")
	}
}

func TestMoveShutterRespectsTimeout(t *testing.T) {
	s, _, _ := newTestSupervisor()
	ok := s.moveShutter('a', func(int) bool { return false }, time.Millisecond, 5*time.Millisecond, false)
	if ok {
		t.Fatalf("expected timeout-terminated move to return false")
	}
}

func TestMoveShutterWritesBumperGuardResetFirst(t *testing.T) {
	s, shutter, _ := newTestSupervisor()
	s.cfg.HasBumperGuard = true
	s.moveShutter('a', func(int) bool { return true }, time.Millisecond, 0, false)
	got := shutter.writtenBytes()
	if len(got) < 2 || got[0] != 'R' || got[1] != 'a' {
		t.Fatalf("expected bumper reset before command byte, got %v", got)
	}
}

func TestMoveShutterSirenWritesToHeartbeatLink(t *testing.T) {
	old := sirenDuration
	sirenDuration = time.Millisecond
	defer func() { sirenDuration = old }()

	s, _, heartbeat := newTestSupervisor()
	s.sirenEnabled = true
	s.moveShutter('a', func(int) bool { return true }, time.Millisecond, 0, true)
	got := heartbeat.writtenBytes()
	if len(got) != 1 || got[0] != 0xFF {
		t.Fatalf("expected single siren byte 0xFF, got %v", got)
	}
}
