// Package domeconfig loads and validates the JSON-with-comments document
// that configures one dome daemon instance, and exposes it as an
// immutable view the core reads but never mutates.
package domeconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/jsonc"

	"domed/errcode"
)

// SerialConfig is one tty endpoint's configuration.
type SerialConfig struct {
	Port    string
	Baud    int
	Timeout time.Duration
}

// BeltSensors binds each side to a named belt-tension sensor. A nil entry
// means no sensor is bound for that side.
type BeltSensors struct {
	A *string
	B *string
}

// Config is the immutable, validated view the core consumes.
type Config struct {
	DaemonName string
	LogName    string
	ControlIPs []string

	Shutter   SerialConfig
	Heartbeat SerialConfig

	CommandDelay     time.Duration
	StepCommandDelay time.Duration
	ShutterTimeout   time.Duration

	HasLegacyController bool
	HasBumperGuard       bool
	SlowOpenSteps        int

	Sides       map[string]string
	SideLabels  map[string]string
	InvertOnClose bool

	BeltSensorDaemon string // empty means no belt checking
	BeltSensors      BeltSensors
}

// document is the on-disk schema, matching the original daemon's JSON
// config field names so existing deployment files load unchanged.
type document struct {
	Daemon             string            `json:"daemon"`
	LogName            string            `json:"log_name"`
	ControlMachines    []string          `json:"control_machines"`
	SerialPort         string            `json:"serial_port"`
	SerialBaud         int               `json:"serial_baud"`
	SerialTimeout      float64           `json:"serial_timeout"`
	CommandDelay       *float64          `json:"command_delay"`
	StepCommandDelay   *float64          `json:"step_command_delay"`
	ShutterTimeout     float64           `json:"shutter_timeout"`
	HasLegacyController bool             `json:"has_legacy_controller"`
	HasBumperGuard     bool              `json:"has_bumper_guard"`
	SlowOpenSteps      int               `json:"slow_open_steps"`
	HeartbeatPort      string            `json:"heartbeat_port"`
	HeartbeatBaud      int               `json:"heartbeat_baud"`
	HeartbeatTimeout   float64           `json:"heartbeat_timeout"`
	Sides              map[string]string `json:"sides"`
	SideLabels         map[string]string `json:"side_labels"`
	InvertOnClose      bool              `json:"invert_on_close"`
	DomealertDaemon    string            `json:"domealert_daemon"`
	DomealertSensors   map[string]string `json:"domealert_belt_sensors"`
}

const (
	defaultCommandDelay     = 500 * time.Millisecond
	defaultStepCommandDelay = 2 * time.Second
)

var requiredFields = []string{
	"daemon", "log_name", "control_machines", "serial_port", "serial_baud", "serial_timeout",
	"shutter_timeout", "has_legacy_controller", "has_bumper_guard", "slow_open_steps",
	"heartbeat_port", "heartbeat_baud", "heartbeat_timeout", "sides", "side_labels", "invert_on_close",
}

// Load reads path, strips // and /* */ comments, and returns a validated
// Config. It is an error for any field in requiredFields to be absent
// from the raw document.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &errcode.E{Op: "domeconfig.Load", Msg: "read config", Err: err}
	}
	stripped := jsonc.ToJSON(raw)

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(stripped, &probe); err != nil {
		return nil, &errcode.E{Op: "domeconfig.Load", Msg: "parse config json", Err: err}
	}
	for _, field := range requiredFields {
		if _, ok := probe[field]; !ok {
			return nil, &errcode.E{Op: "domeconfig.Load", Msg: fmt.Sprintf("missing required field %q", field)}
		}
	}

	var doc document
	if err := json.Unmarshal(stripped, &doc); err != nil {
		return nil, &errcode.E{Op: "domeconfig.Load", Msg: "decode config", Err: err}
	}

	cfg := &Config{
		DaemonName: doc.Daemon,
		LogName:    doc.LogName,
		ControlIPs: doc.ControlMachines,
		Shutter: SerialConfig{
			Port:    doc.SerialPort,
			Baud:    doc.SerialBaud,
			Timeout: secondsToDuration(doc.SerialTimeout),
		},
		Heartbeat: SerialConfig{
			Port:    doc.HeartbeatPort,
			Baud:    doc.HeartbeatBaud,
			Timeout: secondsToDuration(doc.HeartbeatTimeout),
		},
		ShutterTimeout:       secondsToDuration(doc.ShutterTimeout),
		HasLegacyController:  doc.HasLegacyController,
		HasBumperGuard:       doc.HasBumperGuard,
		SlowOpenSteps:        doc.SlowOpenSteps,
		Sides:                doc.Sides,
		SideLabels:           doc.SideLabels,
		InvertOnClose:        doc.InvertOnClose,
		CommandDelay:         defaultCommandDelay,
		StepCommandDelay:     defaultStepCommandDelay,
	}
	if doc.CommandDelay != nil {
		cfg.CommandDelay = secondsToDuration(*doc.CommandDelay)
	}
	if doc.StepCommandDelay != nil {
		cfg.StepCommandDelay = secondsToDuration(*doc.StepCommandDelay)
	}

	if doc.DomealertDaemon != "" {
		cfg.BeltSensorDaemon = doc.DomealertDaemon
		if a, ok := doc.DomealertSensors["a"]; ok && a != "" {
			cfg.BeltSensors.A = &a
		}
		if b, ok := doc.DomealertSensors["b"]; ok && b != "" {
			cfg.BeltSensors.B = &b
		}
	}

	return cfg, nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
