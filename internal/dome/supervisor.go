package dome

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"domed/bus"
	"domed/internal/domeconfig"
)

// Supervisor owns every piece of mutable dome state for the life of the
// process. It is constructed once by main and passed by reference; there
// is no package-level mutable state.
type Supervisor struct {
	cfg *domeconfig.Config
	log Sink

	shutterLink   ByteLink
	heartbeatLink ByteLink
	belt          BeltOracle
	conn          *bus.Connection

	statusMu           sync.Mutex
	shutterA           ShutterStatus
	shutterB           ShutterStatus
	statusTime         time.Time
	heartbeat          HeartbeatState
	heartbeatRemaining float64
	heartbeatTime      time.Time
	sirenEnabled       bool
	engineeringMode    bool

	commandMu    sync.Mutex
	forceStopped atomic.Bool
}

// NewSupervisor constructs a Supervisor. shutterLink and heartbeatLink
// must already be open (or at least constructed); belt may be nil.
func NewSupervisor(cfg *domeconfig.Config, log Sink, shutterLink, heartbeatLink ByteLink, belt BeltOracle) *Supervisor {
	return &Supervisor{
		cfg:           cfg,
		log:           log,
		shutterLink:   shutterLink,
		heartbeatLink: heartbeatLink,
		belt:          belt,
		shutterA:      Closed,
		shutterB:      Closed,
		heartbeat:     Unavailable,
	}
}

// Run starts the shutter and heartbeat monitor loops and blocks until ctx
// is cancelled. It does not itself serve the bus command surface; callers
// wanting the bus-facing API call ServeBus (see bus_topics.go) alongside
// Run, or call the Supervisor methods directly.
func (s *Supervisor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.shutterMonitorLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		s.heartbeatMonitorLoop(ctx)
	}()
	wg.Wait()
}

// Status assembles and returns a StatusSnapshot under the status mutex.
func (s *Supervisor) Status() StatusSnapshot {
	s.statusMu.Lock()
	snap := StatusSnapshot{
		Time:               s.statusTime,
		ShutterA:           s.shutterA,
		ShutterALabel:      s.shutterA.Label(),
		ShutterB:           s.shutterB,
		ShutterBLabel:      s.shutterB.Label(),
		Closed:             s.shutterA == Closed && s.shutterB == Closed,
		EngineeringMode:    s.engineeringMode,
		HeartbeatTime:      s.heartbeatTime,
		Heartbeat:          s.heartbeat,
		HeartbeatLabel:     s.heartbeat.Label(),
		HeartbeatRemaining: s.heartbeatRemaining,
		SirenEnabled:       s.sirenEnabled,
	}
	s.statusMu.Unlock()

	if s.belt != nil {
		if s.cfg.BeltSensors.A != nil {
			if t, err := s.belt.BeltTensioned('a'); err == nil {
				snap.BeltTensionedA = &t
			}
		}
		if s.cfg.BeltSensors.B != nil {
			if t, err := s.belt.BeltTensioned('b'); err == nil {
				snap.BeltTensionedB = &t
			}
		}
	}
	return snap
}

func (s *Supervisor) sideLabel(side byte) string {
	if side == 'a' {
		return s.cfg.SideLabels["a"]
	}
	return s.cfg.SideLabels["b"]
}

func (s *Supervisor) shutterOf(side byte) ShutterStatus {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	if side == 'a' {
		return s.shutterA
	}
	return s.shutterB
}

func (s *Supervisor) heartbeatState() HeartbeatState {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	return s.heartbeat
}

func (s *Supervisor) isAuthorized(callerIP string) bool {
	if len(s.cfg.ControlIPs) == 0 {
		return true
	}
	for _, ip := range s.cfg.ControlIPs {
		if ip == callerIP {
			return true
		}
	}
	return false
}
