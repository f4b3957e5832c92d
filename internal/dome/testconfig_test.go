package dome

import (
	"time"

	"domed/internal/domeconfig"
)

func testConfig() *domeconfig.Config {
	return &domeconfig.Config{
		DaemonName:       "dome_daemon",
		ControlIPs:       nil, // nil allowlist: every caller authorized, matches test defaults
		CommandDelay:     10 * time.Millisecond,
		StepCommandDelay: 20 * time.Millisecond,
		ShutterTimeout:   200 * time.Millisecond,
		SlowOpenSteps:    0,
		Sides:            map[string]string{"a": "a", "b": "b", "both": "ab"},
		SideLabels:       map[string]string{"a": "East", "b": "West"},
	}
}
