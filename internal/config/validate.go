package config

import (
	"fmt"
	"strings"

	"github.com/hankthetank27/edlgen/internal/timecode"
)

var supportedRates = []timecode.Rate{
	timecode.Rate2398,
	timecode.Rate24,
	timecode.Rate25,
	timecode.Rate2997,
	timecode.Rate30,
}

// Validate enforces the §6.1 config invariants.
func Validate(cfg Config) ([]Warning, error) {
	var warnings []Warning

	if strings.TrimSpace(cfg.Title) == "" {
		return nil, fmt.Errorf("title must not be empty")
	}
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("dir must not be empty")
	}

	if cfg.Port < 3000 || cfg.Port > 9999 {
		return nil, fmt.Errorf("port %d out of range 3000-9999", cfg.Port)
	}

	if !rateSupported(cfg.FPS) {
		return nil, fmt.Errorf("fps %v is not one of the supported rates (23.976, 24, 25, 29.97, 30)", cfg.FPS)
	}

	if cfg.NTSC != "DropFrame" && cfg.NTSC != "NonDropFrame" {
		return nil, fmt.Errorf("ntsc must be one of: DropFrame, NonDropFrame")
	}

	if cfg.InputChannel < 1 {
		return nil, fmt.Errorf("input_channel must be >= 1, got %d", cfg.InputChannel)
	}

	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample_rate must be > 0")
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.DeviceBackend))
	if backend != "pulse" && backend != "portaudio" {
		return nil, fmt.Errorf("device_backend must be one of: pulse, portaudio")
	}

	return warnings, nil
}

func rateSupported(r timecode.Rate) bool {
	for _, s := range supportedRates {
		if s == r {
			return true
		}
	}
	return false
}
