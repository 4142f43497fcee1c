package ltcdecoder

import (
	"github.com/hankthetank27/edlgen/internal/timecode"
)

// BitDecoder demodulates a mono PCM stream carrying an SMPTE LTC signal
// into complete timecodes. LTC encodes each bit as Biphase Mark Code: a
// transition always falls at the start of a bit cell, and a '1' bit adds
// a second transition at the cell's midpoint while a '0' bit does not.
// The decoder therefore only needs to track the sample distance between
// successive zero-crossings, classify each gap as "short" (a half bit
// cell) or "long" (a full bit cell), and shift the resulting bit stream
// through an 80-bit window until it matches the sync word.
type BitDecoder struct {
	rate          timecode.Rate
	samplesPerBit float64

	prevSample     float64
	samplesSince   int
	haveHalf       bool
	window         []bit
}

// NewBitDecoder returns a decoder for PCM sampled at sampleRate Hz,
// carrying LTC encoded for the given timecode rate (80 bits per frame).
func NewBitDecoder(sampleRate int, rate timecode.Rate) *BitDecoder {
	fps := float64(rate.FramesPerSecond())
	if fps <= 0 {
		fps = 1
	}
	return &BitDecoder{
		rate:          rate,
		samplesPerBit: float64(sampleRate) / fps / float64(frameBits),
		window:        make([]bit, 0, frameBits*2),
	}
}

// Write feeds one audio callback's worth of mono samples through the
// demodulator and returns every complete timecode frame decoded from
// them, in arrival order. Most calls return no frames; a frame completes
// only once the sync word has shifted fully into view.
func (d *BitDecoder) Write(samples []float32) []timecode.TC {
	var out []timecode.TC
	halfPeriod := d.samplesPerBit / 2
	// a gap below this many samples is a half-bit transition; at or
	// above it, a full-bit transition. The midpoint between half and
	// full period gives the cleanest separation against jitter.
	threshold := d.samplesPerBit * 0.75

	for _, s := range samples {
		sample := float64(s)
		d.samplesSince++

		crossed := (d.prevSample <= 0 && sample > 0) || (d.prevSample >= 0 && sample < 0)
		d.prevSample = sample
		if !crossed {
			continue
		}

		gap := float64(d.samplesSince)
		d.samplesSince = 0
		if gap < halfPeriod*0.25 {
			// noise: too close together to be a real bit edge.
			continue
		}

		if gap < threshold {
			if d.haveHalf {
				if frame, ok := d.pushBit(1); ok {
					out = append(out, frame)
				}
				d.haveHalf = false
			} else {
				d.haveHalf = true
			}
			continue
		}

		// a long gap mid-half-bit means the previous half edge was
		// noise, not the first half of a '1'; drop it and treat this
		// as a clean '0'.
		d.haveHalf = false
		if frame, ok := d.pushBit(0); ok {
			out = append(out, frame)
		}
	}

	return out
}

// pushBit shifts b into the trailing window and, if the window now ends
// on a valid sync word, decodes and returns the completed frame.
func (d *BitDecoder) pushBit(b bit) (timecode.TC, bool) {
	d.window = append(d.window, b)
	if len(d.window) > frameBits {
		d.window = d.window[len(d.window)-frameBits:]
	}
	return d.tryDecode()
}

// tryDecode checks whether the trailing frameBits of the shift window
// currently align on the sync word, and if so decodes them.
func (d *BitDecoder) tryDecode() (timecode.TC, bool) {
	if len(d.window) < frameBits {
		return timecode.TC{}, false
	}
	tc, err := decodeFrame(d.window[len(d.window)-frameBits:], d.rate)
	if err != nil {
		return timecode.TC{}, false
	}
	d.window = d.window[:0]
	return tc, true
}
