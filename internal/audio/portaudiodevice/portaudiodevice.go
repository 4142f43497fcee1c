// Package portaudiodevice implements the audio.Backend/audio.Device
// contract on top of PortAudio, the closest Go analogue to the original
// implementation's cross-platform host/device abstraction.
package portaudiodevice

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/hankthetank27/edlgen/internal/audio"
)

// Backend initializes the PortAudio library for the lifetime of one
// edlgen run; portaudio.Initialize/Terminate are process-global, so only
// one Backend should be live at a time.
type Backend struct{}

func New() (*Backend, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudiodevice: initialize: %w", err)
	}
	return &Backend{}, nil
}

func (b *Backend) Close() error {
	return portaudio.Terminate()
}

func (b *Backend) ListDevices(_ context.Context) ([]audio.Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("portaudiodevice: list devices: %w", err)
	}
	devices := make([]audio.Device, 0, len(infos))
	for _, info := range infos {
		if info.MaxInputChannels <= 0 {
			continue
		}
		devices = append(devices, &Device{info: info})
	}
	return devices, nil
}

func (b *Backend) DefaultDevice(_ context.Context) (audio.Device, error) {
	info, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("portaudiodevice: default input device: %w", err)
	}
	return &Device{info: info}, nil
}

// Device is one PortAudio host device adapted to audio.Device.
type Device struct {
	info *portaudio.DeviceInfo
}

func (d *Device) Name() string { return d.info.Name }

func (d *Device) DefaultInputConfig() (audio.InputConfig, error) {
	return audio.InputConfig{
		Channels:        d.info.MaxInputChannels,
		SampleRate:      int(d.info.DefaultSampleRate),
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
	params := portaudio.LowLatencyParameters(d.info, nil)
	params.Input.Channels = config.Channels
	params.SampleRate = float64(config.SampleRate)
	if config.BufferSizeRange.Max > 0 {
		params.FramesPerBuffer = config.BufferSizeRange.Max
	}

	buf := make([]float32, params.FramesPerBuffer*config.Channels)
	callback := func(in []float32) {
		n := copy(buf, in)
		onBuffer(buf[:n], audio.BufferTiming{Frames: n / config.Channels})
	}

	stream, err := portaudio.OpenStream(params, callback)
	if err != nil {
		return nil, fmt.Errorf("portaudiodevice: open stream: %w", err)
	}

	return &Stream{stream: stream, onError: onError}, nil
}

// Stream wraps a *portaudio.Stream to satisfy audio.Stream.
type Stream struct {
	stream  *portaudio.Stream
	onError func(error)
}

func (s *Stream) Play() error {
	if err := s.stream.Start(); err != nil {
		return fmt.Errorf("portaudiodevice: start stream: %w", err)
	}
	return nil
}

func (s *Stream) Pause() error {
	if err := s.stream.Stop(); err != nil {
		return fmt.Errorf("portaudiodevice: stop stream: %w", err)
	}
	return nil
}

func (s *Stream) Close() error {
	return s.stream.Close()
}
