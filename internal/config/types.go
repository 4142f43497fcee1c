// Package config resolves, layers, validates, and defaults edlgen's
// runtime configuration.
package config

import "github.com/hankthetank27/edlgen/internal/timecode"

// Config is the fully materialized runtime configuration used by edlgen.
type Config struct {
	Title        string
	Dir          string
	Port         int
	SampleRate   int
	FPS          timecode.Rate
	NTSC         string // "DropFrame" or "NonDropFrame"
	InputChannel int
	BufferSize   int // 0 means device default
	DeviceBackend string
	Device       string
}

// Warning is a non-fatal load/validation message.
type Warning struct {
	Key     string
	Message string
}

// Loaded captures the resolved config path, parsed values, and any
// non-fatal warnings collected while loading.
type Loaded struct {
	Path     string
	Config   Config
	Warnings []Warning
	Exists   bool
}
