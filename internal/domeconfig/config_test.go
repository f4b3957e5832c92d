package domeconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "dome.json")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

const minimalDoc = `{
  // shutter controller link
  "daemon": "dome_daemon",
  "log_name": "dome",
  "control_machines": ["TEL1"],
  "serial_port": "/dev/ttyDome",
  "serial_baud": 9600,
  "serial_timeout": 3,
  "shutter_timeout": 60,
  "has_legacy_controller": false,
  "has_bumper_guard": true,
  "slow_open_steps": 4,
  /* heartbeat link */
  "heartbeat_port": "/dev/ttyHeartbeat",
  "heartbeat_baud": 9600,
  "heartbeat_timeout": 3,
  "sides": {"east": "a", "west": "b", "both": "ab"},
  "side_labels": {"a": "East", "b": "West"},
  "invert_on_close": true
}`

func TestLoadMinimalDocument(t *testing.T) {
	cfg, err := Load(writeTemp(t, minimalDoc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Shutter.Port != "/dev/ttyDome" || cfg.Shutter.Baud != 9600 {
		t.Fatalf("unexpected shutter config: %+v", cfg.Shutter)
	}
	if cfg.CommandDelay != defaultCommandDelay || cfg.StepCommandDelay != defaultStepCommandDelay {
		t.Fatalf("expected default delays, got %v / %v", cfg.CommandDelay, cfg.StepCommandDelay)
	}
	if cfg.BeltSensorDaemon != "" {
		t.Fatalf("expected no belt sensor daemon, got %q", cfg.BeltSensorDaemon)
	}
	if !cfg.InvertOnClose {
		t.Fatal("expected invert_on_close true")
	}
}

func TestLoadMissingRequiredFieldFails(t *testing.T) {
	doc := `{"daemon": "dome_daemon"}`
	if _, err := Load(writeTemp(t, doc)); err == nil {
		t.Fatal("expected error for document missing required fields")
	}
}

func TestLoadBeltSensors(t *testing.T) {
	doc := `{
  "daemon": "dome_daemon", "log_name": "dome", "control_machines": ["TEL1"],
  "serial_port": "/dev/ttyDome", "serial_baud": 9600, "serial_timeout": 3,
  "command_delay": 0.1, "step_command_delay": 1.5,
  "shutter_timeout": 60, "has_legacy_controller": false, "has_bumper_guard": false,
  "slow_open_steps": 0, "heartbeat_port": "/dev/ttyHeartbeat", "heartbeat_baud": 9600,
  "heartbeat_timeout": 3, "sides": {"a": "a"}, "side_labels": {"a": "East", "b": "West"},
  "invert_on_close": false, "domealert_daemon": "dome_alert",
  "domealert_belt_sensors": {"a": "belt_a"}
}`
	cfg, err := Load(writeTemp(t, doc))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BeltSensorDaemon != "dome_alert" {
		t.Fatalf("expected belt sensor daemon, got %q", cfg.BeltSensorDaemon)
	}
	if cfg.BeltSensors.A == nil || *cfg.BeltSensors.A != "belt_a" {
		t.Fatalf("expected belt sensor a bound, got %+v", cfg.BeltSensors)
	}
	if cfg.BeltSensors.B != nil {
		t.Fatalf("expected belt sensor b unbound, got %+v", cfg.BeltSensors)
	}
	if cfg.CommandDelay.Seconds() != 0.1 {
		t.Fatalf("expected overridden command delay, got %v", cfg.CommandDelay)
	}
}
