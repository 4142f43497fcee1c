// Package audio defines the device abstraction the capture pipeline is
// built against, so the LTC decode driver never depends on which
// backend (PulseAudio, PortAudio) actually owns the input stream.
package audio

import "context"

// SampleFormat is the PCM sample representation a device stream can be
// opened with. The decode driver only ever asks for F32.
type SampleFormat int

const (
	SampleFormatI8 SampleFormat = iota
	SampleFormatI16
	SampleFormatI32
	SampleFormatF32
)

// BufferSizeRange is a device's supported buffer size range, in frames.
type BufferSizeRange struct {
	Min int
	Max int
}

// InputConfig is a resolved stream configuration: channel count, sample
// rate, format, and buffer size range a device is prepared to open a
// stream with.
type InputConfig struct {
	Channels        int
	SampleRate      int
	SampleFormat    SampleFormat
	BufferSizeRange BufferSizeRange
}

// BufferTiming carries per-callback timing metadata alongside a PCM
// buffer: the number of frames (samples per channel) it holds. No
// capture timestamp is carried, since nothing downstream needs more than
// rough sequencing.
type BufferTiming struct {
	Frames int
}

// Stream is a running (or paused) input stream obtained from
// Device.BuildInputStream.
type Stream interface {
	Play() error
	Pause() error
	Close() error
}

// Device is one audio input endpoint, enumerated by a backend and opened
// against a resolved InputConfig.
type Device interface {
	Name() string
	DefaultInputConfig() (InputConfig, error)
	BuildInputStream(
		config InputConfig,
		format SampleFormat,
		onBuffer func(samples []float32, timing BufferTiming),
		onError func(error),
	) (Stream, error)
}

// Backend enumerates the devices one audio subsystem (PulseAudio,
// PortAudio) exposes.
type Backend interface {
	// ListDevices returns every input device the backend can see.
	ListDevices(ctx context.Context) ([]Device, error)
	// DefaultDevice returns the backend's default input device.
	DefaultDevice(ctx context.Context) (Device, error)
	// Close releases any backend-level handle (client connection, host
	// API state) once the backend is no longer needed.
	Close() error
}
