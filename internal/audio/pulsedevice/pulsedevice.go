// Package pulsedevice implements the audio.Backend/audio.Device contract
// on top of PulseAudio, streaming float32 samples into the decode
// driver's on_buffer callback instead of fixed-size int16 chunking.
package pulsedevice

import (
	"context"
	"fmt"
	"math"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"

	"github.com/hankthetank27/edlgen/internal/audio"
)

// Backend owns one PulseAudio client connection.
type Backend struct {
	client *pulse.Client
}

// New connects to the local PulseAudio server.
func New() (*Backend, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("edlgen"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, fmt.Errorf("pulsedevice: connect pulse server: %w", err)
	}
	return &Backend{client: client}, nil
}

func (b *Backend) Close() error {
	b.client.Close()
	return nil
}

func (b *Backend) ListDevices(_ context.Context) ([]audio.Device, error) {
	var sourceInfos pulseproto.GetSourceInfoListReply
	if err := b.client.RawRequest(&pulseproto.GetSourceInfoList{}, &sourceInfos); err != nil {
		return nil, fmt.Errorf("pulsedevice: list sources: %w", err)
	}
	devices := make([]audio.Device, 0, len(sourceInfos))
	for _, src := range sourceInfos {
		if src == nil {
			continue
		}
		devices = append(devices, &Device{backend: b, sourceID: src.SourceName, channels: int(src.Channels)})
	}
	return devices, nil
}

func (b *Backend) DefaultDevice(_ context.Context) (audio.Device, error) {
	src, err := b.client.DefaultSource()
	if err != nil {
		return nil, fmt.Errorf("pulsedevice: read default source: %w", err)
	}
	return &Device{backend: b, sourceID: src.ID(), channels: 1}, nil
}

// Device is one PulseAudio source adapted to audio.Device.
type Device struct {
	backend  *Backend
	sourceID string
	channels int
}

func (d *Device) Name() string { return d.sourceID }

func (d *Device) DefaultInputConfig() (audio.InputConfig, error) {
	channels := d.channels
	if channels <= 0 {
		channels = 1
	}
	return audio.InputConfig{
		Channels:        channels,
		SampleRate:      48000,
		SampleFormat:    audio.SampleFormatF32,
		BufferSizeRange: audio.BufferSizeRange{Min: 64, Max: 8192},
	}, nil
}

func (d *Device) BuildInputStream(
	config audio.InputConfig,
	format audio.SampleFormat,
	onBuffer func(samples []float32, timing audio.BufferTiming),
	onError func(error),
) (audio.Stream, error) {
	source, err := d.backend.client.SourceByID(d.sourceID)
	if err != nil {
		return nil, fmt.Errorf("pulsedevice: resolve source %q: %w", d.sourceID, err)
	}

	writer := pulse.NewWriter(writerFunc(func(buf []byte) (int, error) {
		samples := bytesToFloat32LE(buf)
		onBuffer(samples, audio.BufferTiming{Frames: len(samples) / config.Channels})
		return len(buf), nil
	}), pulseproto.FormatFloat32LE)

	opts := []pulse.RecordOption{
		pulse.RecordSource(source),
		pulse.RecordSampleRate(uint32(config.SampleRate)),
		pulse.RecordMediaName("edlgen ltc capture"),
	}
	if config.Channels == 1 {
		opts = append(opts, pulse.RecordMono)
	} else {
		opts = append(opts, pulse.RecordStereo)
	}

	stream, err := d.backend.client.NewRecord(writer, opts...)
	if err != nil {
		return nil, fmt.Errorf("pulsedevice: create record stream: %w", err)
	}

	return &Stream{stream: stream, onError: onError}, nil
}

// Stream wraps a pulse.RecordStream to satisfy audio.Stream.
type Stream struct {
	stream  *pulse.RecordStream
	onError func(error)
}

func (s *Stream) Play() error {
	s.stream.Start()
	return nil
}

func (s *Stream) Pause() error {
	s.stream.Stop()
	return nil
}

func (s *Stream) Close() error {
	s.stream.Stop()
	s.stream.Close()
	return nil
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) { return f(b) }

// bytesToFloat32LE reinterprets a little-endian float32 PCM byte buffer
// as a sample slice, the format the decode driver operates on.
func bytesToFloat32LE(buf []byte) []float32 {
	n := len(buf) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := uint32(buf[i*4]) | uint32(buf[i*4+1])<<8 | uint32(buf[i*4+2])<<16 | uint32(buf[i*4+3])<<24
		out[i] = math.Float32frombits(bits)
	}
	return out
}
