// Package doctor runs pre-flight readiness diagnostics for config,
// output directory, port availability, and the audio backend.
package doctor

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hankthetank27/edlgen/internal/audio"
	"github.com/hankthetank27/edlgen/internal/config"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", status, check.Name, check.Message)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
// newBackend is injected so tests can substitute a fake audio.Backend
// without touching a real PulseAudio/PortAudio host.
func Run(cfg config.Loaded, newBackend func(backendName string) (audio.Backend, error)) Report {
	var checks []Check

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkDirWritable(cfg.Config.Dir))
	checks = append(checks, checkPortFree(cfg.Config.Port))
	checks = append(checks, checkAudioBackend(cfg.Config, newBackend))

	return Report{Checks: checks}
}

// checkDirWritable verifies the output directory exists (creating it if
// absent) and accepts a throwaway probe file.
func checkDirWritable(dir string) Check {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Check{Name: "dir", Pass: false, Message: fmt.Sprintf("cannot create %q: %v", dir, err)}
	}
	probe := filepath.Join(dir, ".edlgen-doctor-probe")
	if err := os.WriteFile(probe, []byte{}, 0o600); err != nil {
		return Check{Name: "dir", Pass: false, Message: fmt.Sprintf("%q is not writable: %v", dir, err)}
	}
	_ = os.Remove(probe)
	return Check{Name: "dir", Pass: true, Message: fmt.Sprintf("%q is writable", dir)}
}

// checkPortFree verifies the configured control-plane port is within
// range and not already bound by another process.
func checkPortFree(port int) Check {
	if port < 3000 || port > 9999 {
		return Check{Name: "port", Pass: false, Message: fmt.Sprintf("port %d is outside the conventional 3000-9999 range", port)}
	}
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return Check{Name: "port", Pass: false, Message: fmt.Sprintf("port %d is already in use: %v", port, err)}
	}
	_ = ln.Close()
	return Check{Name: "port", Pass: true, Message: fmt.Sprintf("port %d is free", port)}
}

// checkAudioBackend verifies the configured backend can enumerate at
// least one input device exposing the configured input_channel.
func checkAudioBackend(cfg config.Config, newBackend func(string) (audio.Backend, error)) Check {
	backend, err := newBackend(cfg.DeviceBackend)
	if err != nil {
		return Check{Name: "audio.backend", Pass: false, Message: err.Error()}
	}
	defer backend.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	devices, err := backend.ListDevices(ctx)
	if err != nil {
		return Check{Name: "audio.backend", Pass: false, Message: err.Error()}
	}

	if len(devices) == 0 {
		return Check{Name: "audio.backend", Pass: false, Message: fmt.Sprintf("%s backend found no input devices", cfg.DeviceBackend)}
	}

	for _, device := range devices {
		inCfg, err := device.DefaultInputConfig()
		if err == nil && inCfg.Channels >= cfg.InputChannel {
			return Check{Name: "audio.backend", Pass: true, Message: fmt.Sprintf("%s backend found %d input device(s)", cfg.DeviceBackend, len(devices))}
		}
	}

	return Check{Name: "audio.backend", Pass: false, Message: fmt.Sprintf("%s backend found no input device exposing input_channel %d", cfg.DeviceBackend, cfg.InputChannel)}
}
