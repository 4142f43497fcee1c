package ltcdecoder

import (
	"fmt"

	"github.com/hankthetank27/edlgen/internal/timecode"
)

// frameBits is the fixed SMPTE LTC frame length in bits: eight BCD fields
// (4-bit units, 2- or 3-bit tens) for frame/seconds/minutes/hours plus
// flag bits and user bits,
// terminated by a 16-bit sync word.
const frameBits = 80

// syncWord is the bit pattern (transmitted as the final 16 bits of every
// frame) a decoder locks onto to know where a frame boundary falls.
var syncWord = [16]bit{
	0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 1,
}

type bit uint8

// bcdField decodes n bits (LSB first, as transmitted) starting at offset
// in buf into an integer, the representation every LTC numeric field
// uses for its units/tens halves.
func bcdField(buf []bit, offset, n int) int {
	v := 0
	for i := 0; i < n; i++ {
		if buf[offset+i] != 0 {
			v |= 1 << i
		}
	}
	return v
}

func setBCDField(buf []bit, offset, n, value int) {
	for i := 0; i < n; i++ {
		if value&(1<<i) != 0 {
			buf[offset+i] = 1
		} else {
			buf[offset+i] = 0
		}
	}
}

// dropFrameFlagBit is bit 10 of the LTC frame, the SMPTE 12M "drop frame
// flag" packed alongside the frame-tens BCD field.
const dropFrameFlagBit = 10

// decodeFrame reads one complete 80-bit LTC frame buffer into a
// timecode, using the bit field layout of SMPTE 12M LTC: frame
// units/tens, seconds units/tens, minutes units/tens, hours units/tens,
// plus the drop frame flag bit, each packed with interleaved user-bit
// fields this decoder otherwise ignores since nothing in the generator
// consumes user bits.
func decodeFrame(buf []bit, rate timecode.Rate) (timecode.TC, error) {
	if len(buf) != frameBits {
		return timecode.TC{}, fmt.Errorf("ltcdecoder: frame buffer must be %d bits, got %d", frameBits, len(buf))
	}
	for i, want := range syncWord {
		if buf[frameBits-16+i] != want {
			return timecode.TC{}, fmt.Errorf("ltcdecoder: sync word mismatch at bit %d", frameBits-16+i)
		}
	}

	frameUnits := bcdField(buf, 0, 4)
	frameTens := bcdField(buf, 8, 2)
	secUnits := bcdField(buf, 16, 4)
	secTens := bcdField(buf, 24, 3)
	minUnits := bcdField(buf, 32, 4)
	minTens := bcdField(buf, 40, 3)
	hourUnits := bcdField(buf, 48, 4)
	hourTens := bcdField(buf, 56, 2)
	drop := buf[dropFrameFlagBit] != 0

	frames := frameTens*10 + frameUnits
	seconds := secTens*10 + secUnits
	minutes := minTens*10 + minUnits
	hours := hourTens*10 + hourUnits

	fps := rate.FramesPerSecond()
	if frames >= fps {
		return timecode.TC{}, fmt.Errorf("ltcdecoder: decoded frame %d out of range for rate %v", frames, rate)
	}

	tc, err := timecode.FromLabel(hours, minutes, seconds, frames, rate, drop)
	if err != nil {
		return timecode.TC{}, fmt.Errorf("ltcdecoder: decoded frame: %w", err)
	}
	return tc, nil
}

// encodeFrame is the inverse of decodeFrame: it lays out a timecode's
// BCD fields, drop frame flag, and sync word into an 80-bit frame
// buffer. It exists primarily so this package's own tests can synthesize
// a known bitstream to decode, mirroring how the generator's only
// consumer of LTC frames (the capture pipeline) never encodes them
// itself.
func encodeFrame(tc timecode.TC) []bit {
	buf := make([]bit, frameBits)
	h, m, s, f := tc.Parts()

	setBCDField(buf, 0, 4, f%10)
	setBCDField(buf, 8, 2, f/10)
	setBCDField(buf, 16, 4, s%10)
	setBCDField(buf, 24, 3, s/10)
	setBCDField(buf, 32, 4, m%10)
	setBCDField(buf, 40, 3, m/10)
	setBCDField(buf, 48, 4, h%10)
	setBCDField(buf, 56, 2, h/10)
	if tc.DropFrame() {
		buf[dropFrameFlagBit] = 1
	}

	copy(buf[frameBits-16:], syncWord[:])
	return buf
}
