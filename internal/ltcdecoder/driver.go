package ltcdecoder

import (
	"fmt"
	"sync"

	"github.com/hankthetank27/edlgen/internal/svchan"
	"github.com/hankthetank27/edlgen/internal/timecode"
)

// idleResetThreshold is how many consecutive audio callbacks may pass
// with decoding on but no frame decoded before the driver reallocates its
// bit decoder. A long silence or a burst of line noise can leave the
// biphase-mark shift window holding stale half-bit state that no amount
// of further good signal will resync from; throwing the decoder away and
// starting fresh is simpler and cheaper than trying to detect and repair
// that state directly.
const idleResetThreshold = 30

// State is whether the driver is currently decoding audio into frames.
type State int

const (
	Off State = iota
	On
)

// Driver is the capture-thread side of the LTC decode pipeline: it reads
// interleaved multi-channel PCM handed to it by an audio callback,
// extracts the configured mono input channel, feeds it to a BitDecoder
// while decoding is On, and publishes the latest frame decoded from each
// buffer to a svchan.Sender so the session's first-frame waiter and "log"
// handler can pick it up.
type Driver struct {
	mu             sync.Mutex
	rate           timecode.Rate
	sampleRate     int
	deviceChannels int
	inputChannel   int // 1-indexed, as in the control plane's config
	state          State
	idleCount      int
	decoder        *BitDecoder
	tx             svchan.Sender[timecode.TC]
}

// NewDriver validates inputChannel against the device's channel count and
// returns a Driver ready to decode, matching the original listener's
// fail-fast validation at construction time.
func NewDriver(sampleRate, deviceChannels, inputChannel int, rate timecode.Rate, tx svchan.Sender[timecode.TC]) (*Driver, error) {
	if inputChannel < 1 || inputChannel > deviceChannels {
		return nil, fmt.Errorf("ltcdecoder: input channel %d exceeds device channel count %d", inputChannel, deviceChannels)
	}
	return &Driver{
		rate:           rate,
		sampleRate:     sampleRate,
		deviceChannels: deviceChannels,
		inputChannel:   inputChannel,
		decoder:        NewBitDecoder(sampleRate, rate),
		tx:             tx,
	}, nil
}

// DecodeOn begins feeding incoming buffers to the decoder.
func (d *Driver) DecodeOn() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = On
	d.idleCount = 0
	d.decoder = NewBitDecoder(d.sampleRate, d.rate)
}

// DecodeOff stops feeding incoming buffers to the decoder. Buffers
// delivered while off are dropped without extracting the mono channel,
// to avoid doing that work for nothing between sessions.
func (d *Driver) DecodeOff() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = Off
}

// HandleBuffer is the audio callback entry point: it demuxes the
// configured input channel out of an interleaved multi-channel buffer,
// decodes any complete frames, publishes the most recent one, and
// reallocates the decoder if it has gone idleResetThreshold buffers
// without producing a frame while decoding is on.
func (d *Driver) HandleBuffer(interleaved []float32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != On {
		return
	}

	mono := demuxChannel(interleaved, d.deviceChannels, d.inputChannel)
	frames := d.decoder.Write(mono)

	if len(frames) == 0 {
		d.idleCount++
		if d.idleCount > idleResetThreshold {
			d.decoder = NewBitDecoder(d.sampleRate, d.rate)
			d.idleCount = 0
		}
		return
	}

	d.idleCount = 0
	d.tx.Send(frames[len(frames)-1])
}

// demuxChannel extracts one channel (1-indexed) out of interleaved
// multi-channel PCM.
func demuxChannel(interleaved []float32, deviceChannels, channel int) []float32 {
	if deviceChannels <= 0 {
		return nil
	}
	out := make([]float32, 0, len(interleaved)/deviceChannels+1)
	for i := channel - 1; i < len(interleaved); i += deviceChannels {
		out = append(out, interleaved[i])
	}
	return out
}
