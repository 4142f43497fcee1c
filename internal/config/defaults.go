package config

import "github.com/hankthetank27/edlgen/internal/timecode"

// Default returns the canonical runtime configuration used when no file,
// env var, or flag overrides a given key.
func Default() Config {
	return Config{
		Title:         "edlgen",
		Dir:           ".",
		Port:          9000,
		SampleRate:    48000,
		FPS:           timecode.Rate25,
		NTSC:          "NonDropFrame",
		InputChannel:  1,
		BufferSize:    0,
		DeviceBackend: "pulse",
		Device:        "default",
	}
}

// defaultsMap mirrors Default() as a flat key map for seeding koanf, the
// layer every later provider (file, env, flags) overlays onto.
func defaultsMap() map[string]any {
	d := Default()
	return map[string]any{
		"title":          d.Title,
		"dir":            d.Dir,
		"port":           d.Port,
		"sample_rate":    d.SampleRate,
		"fps":            float64(d.FPS),
		"ntsc":           d.NTSC,
		"input_channel":  d.InputChannel,
		"buffer_size":    d.BufferSize,
		"device_backend": d.DeviceBackend,
		"device":         d.Device,
	}
}
