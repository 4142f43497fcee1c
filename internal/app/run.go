package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hankthetank27/edlgen/internal/audio"
	"github.com/hankthetank27/edlgen/internal/config"
	"github.com/hankthetank27/edlgen/internal/control"
	"github.com/hankthetank27/edlgen/internal/edl"
	"github.com/hankthetank27/edlgen/internal/ltcdecoder"
	"github.com/hankthetank27/edlgen/internal/recsession"
	"github.com/hankthetank27/edlgen/internal/supervisor"
	"github.com/hankthetank27/edlgen/internal/svchan"
	"github.com/hankthetank27/edlgen/internal/timecode"
)

// commandRun opens the configured input device, starts LTC capture, and
// serves the HTTP control plane until ctx is canceled. The capture
// stream and the control plane run as sibling services under one
// supervisor tree so either can be restarted without tearing down the
// whole process.
func (r Runner) commandRun(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	backend, err := newBackend(cfg.DeviceBackend)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer backend.Close()

	device, err := resolveDevice(ctx, backend, cfg.Device)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	inputCfg, err := device.DefaultInputConfig()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: resolve input config: %v\n", err)
		return 1
	}
	if cfg.SampleRate > 0 {
		inputCfg.SampleRate = cfg.SampleRate
	}
	if cfg.BufferSize > 0 {
		inputCfg.BufferSizeRange = audio.BufferSizeRange{Min: cfg.BufferSize, Max: cfg.BufferSize}
	}

	tx, rx := svchan.New[timecode.TC]()

	driver, err := ltcdecoder.NewDriver(inputCfg.SampleRate, inputCfg.Channels, cfg.InputChannel, cfg.FPS, tx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: build LTC driver: %v\n", err)
		return 1
	}
	handlers := ltcdecoder.NewHandlers(driver, rx)

	stream, err := device.BuildInputStream(inputCfg, audio.SampleFormatF32,
		func(samples []float32, timing audio.BufferTiming) {
			driver.HandleBuffer(samples)
		},
		func(streamErr error) {
			logger.Error("capture stream error", "error", streamErr)
		},
	)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: open input stream: %v\n", err)
		return 1
	}
	defer stream.Close()

	fcm := edl.NonDropFrame
	if cfg.NTSC == "DropFrame" {
		fcm = edl.DropFrame
	}
	session := recsession.New(cfg.Dir, cfg.Title, fcm, handlers, logger)

	srv := control.New(cfg.Port, logger)
	stop, stopped := control.NewShutdownChannels()

	sup := supervisor.New(logger)
	sup.Add(supervisor.NewService("capture", func(ctx context.Context) error {
		driver.DecodeOn()
		if err := stream.Play(); err != nil {
			return fmt.Errorf("app: start capture stream: %w", err)
		}
		<-ctx.Done()
		driver.DecodeOff()
		return stream.Pause()
	}))
	sup.Add(supervisor.NewService("control-plane", func(ctx context.Context) error {
		listenErr := make(chan error, 1)
		go func() { listenErr <- srv.Listen(session, stop, stopped) }()
		select {
		case <-ctx.Done():
			if err := control.Shutdown(srv.Addr(), stop, stopped); err != nil {
				return err
			}
			return <-listenErr
		case err := <-listenErr:
			return err
		}
	}))

	logger.Info("recording session ready", "addr", srv.Addr(), "device", device.Name())
	if err := sup.Serve(ctx); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// resolveDevice looks up name among the backend's devices, falling back
// to the backend's default input device when name is empty.
func resolveDevice(ctx context.Context, backend audio.Backend, name string) (audio.Device, error) {
	if name == "" {
		return backend.DefaultDevice(ctx)
	}
	devices, err := backend.ListDevices(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: list devices: %w", err)
	}
	for _, d := range devices {
		if d.Name() == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("app: no input device named %q", name)
}
