// Package app wires edlgen's subcommands: parsing argv, loading config
// and logging, and dispatching to the doctor, devices, version, or
// run command.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/hankthetank27/edlgen/internal/audio"
	"github.com/hankthetank27/edlgen/internal/audio/portaudiodevice"
	"github.com/hankthetank27/edlgen/internal/audio/pulsedevice"
	"github.com/hankthetank27/edlgen/internal/cli"
	"github.com/hankthetank27/edlgen/internal/config"
	"github.com/hankthetank27/edlgen/internal/doctor"
	"github.com/hankthetank27/edlgen/internal/logging"
	"github.com/hankthetank27/edlgen/internal/version"
)

// Runner holds process-level dependencies used by command handlers.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Execute is the package entrypoint used by cmd/edlgen/main.go.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

// Execute parses CLI arguments, loads config/logging, and dispatches a command.
func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("edlgen"))
		return 2
	}

	if parsed.ShowHelp || parsed.Command == cli.CommandHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("edlgen"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath, parsed.Overrides)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	logRuntime, err := logging.New(cfgLoaded.Config.Dir)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	for _, w := range cfgLoaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s: %s\n", w.Key, w.Message)
		logger.Warn("config warning", "key", w.Key, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded, newBackend)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx, cfgLoaded.Config)
	case cli.CommandRun:
		return r.commandRun(ctx, cfgLoaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// newBackend resolves the named audio backend. doctor.Run receives it as
// its injected backend constructor; commandDevices and commandRun call it
// directly.
func newBackend(name string) (audio.Backend, error) {
	switch name {
	case "", "pulse":
		return pulsedevice.New()
	case "portaudio":
		return portaudiodevice.New()
	default:
		return nil, fmt.Errorf("app: unknown audio backend %q", name)
	}
}

// commandDevices lists every input device the configured backend can see.
func (r Runner) commandDevices(ctx context.Context, cfg config.Config) int {
	backend, err := newBackend(cfg.DeviceBackend)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer backend.Close()

	devices, err := backend.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no input devices found")
		return 1
	}

	for _, device := range devices {
		cfgIn, err := device.DefaultInputConfig()
		if err != nil {
			fmt.Fprintf(r.Stdout, "- %s (config unavailable: %v)\n", device.Name(), err)
			continue
		}
		fmt.Fprintf(r.Stdout, "- %s | channels=%d sample_rate=%d\n", device.Name(), cfgIn.Channels, cfgIn.SampleRate)
	}

	return 0
}
