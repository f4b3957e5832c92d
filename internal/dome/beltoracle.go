package dome

import (
	"context"
	"fmt"
	"time"

	"domed/bus"
	"domed/internal/domeconfig"
)

// busBeltOracle queries a separate belt-tension daemon over the bus by
// request/reply, translating the configured sensor name for each side
// into a BeltTensioned call. A side with no bound sensor always reports
// tensioned (never aborts a movement).
type busBeltOracle struct {
	conn    *bus.Connection
	daemon  string
	sensors domeconfig.BeltSensors
	timeout time.Duration
}

// newBusBeltOracle returns nil if cfg has no belt-sensor daemon
// configured. BindBelt checks for nil before storing the result, since a
// nil *busBeltOracle held in a BeltOracle interface is not a nil
// BeltOracle.
func newBusBeltOracle(conn *bus.Connection, cfg *domeconfig.Config) *busBeltOracle {
	if cfg.BeltSensorDaemon == "" {
		return nil
	}
	return &busBeltOracle{conn: conn, daemon: cfg.BeltSensorDaemon, sensors: cfg.BeltSensors, timeout: 2 * time.Second}
}

// BindBelt wires a belt-tension oracle backed by conn if cfg configures a
// belt-sensor daemon; otherwise it leaves the supervisor without one. Call
// once, before Run.
func (s *Supervisor) BindBelt(conn *bus.Connection) {
	if oracle := newBusBeltOracle(conn, s.cfg); oracle != nil {
		s.belt = oracle
	}
}

// BeltTensioned asks the belt-sensor daemon whether side's belt is
// tensioned. A side with no sensor bound reports tensioned unconditionally.
func (o *busBeltOracle) BeltTensioned(side byte) (bool, error) {
	var name *string
	if side == 'a' {
		name = o.sensors.A
	} else {
		name = o.sensors.B
	}
	if name == nil {
		return true, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	req := o.conn.NewMessage(bus.Topic{o.daemon, "cmd", "sensor", *name}, nil, false)
	reply, err := o.conn.RequestWait(ctx, req)
	if err != nil {
		return false, fmt.Errorf("belt sensor %s: %w", *name, err)
	}
	tensioned, ok := reply.Payload.(bool)
	if !ok {
		return false, fmt.Errorf("belt sensor %s: unexpected reply payload %T", *name, reply.Payload)
	}
	return tensioned, nil
}
