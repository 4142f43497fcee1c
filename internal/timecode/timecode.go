// Package timecode implements SMPTE-style timecode arithmetic for a
// fixed frame rate, the subset this generator needs to add edit
// durations to captured LTC frames and compare the result against the
// next captured frame. Both non-drop-frame and drop-frame labeling are
// supported for the NTSC rates (29.97, 59.94) that define drop-frame.
package timecode

import (
	"fmt"
	"math"
)

// Rate is a frames-per-second value timecodes are computed against.
type Rate float64

const (
	Rate24   Rate = 24
	Rate25   Rate = 25
	Rate2398 Rate = 23.976
	Rate2997 Rate = 29.97
	Rate30   Rate = 30
	Rate50   Rate = 50
	Rate5994 Rate = 59.94
	Rate60   Rate = 60
)

// FramesPerSecond returns the rounded integer frame count used for
// hour/minute/second rollover, mirroring how NTSC rates are addressed by
// their rounded nominal rate (23.976 -> 24, 29.97 -> 30, etc).
func (r Rate) FramesPerSecond() int {
	return int(math.Round(float64(r)))
}

// dropFramesPerMinute is the count of frame labels skipped at the start
// of each minute not divisible by 10, the standard SMPTE drop-frame
// correction. Only 29.97 and 59.94 define drop-frame timecode; every
// other rate returns 0, meaning "drop-frame is not defined for this
// rate."
func dropFramesPerMinute(rate Rate) int {
	switch rate {
	case Rate2997:
		return 2
	case Rate5994:
		return 4
	default:
		return 0
	}
}

// SupportsDropFrame reports whether rate has a defined drop-frame mode.
func SupportsDropFrame(rate Rate) bool {
	return dropFramesPerMinute(rate) > 0
}

// TC is a single instant in time expressed as a real (elapsed) frame
// count since zero, at a fixed rate. Drop-frame only ever changes how a
// frame count is labeled as HH:MM:SS:FF text; it never skips an actual
// captured frame, so arithmetic (Add, Compare) always operates on the
// real count. Two TCs at different rates, or with different drop-frame
// modes, are never compared.
type TC struct {
	frames int64
	rate   Rate
	drop   bool
}

// Zero returns the zero timecode 00:00:00:00 at the given rate.
func Zero(rate Rate) TC {
	return TC{rate: rate}
}

// FromFrames builds a non-drop-frame TC directly from an absolute real
// frame count.
func FromFrames(frames int64, rate Rate) TC {
	return TC{frames: frames, rate: rate}
}

// FromLabel builds a TC from labeled HH:MM:SS:FF fields, undoing the
// drop-frame skip the same way Parse does. It is an error to request
// drop-frame mode for a rate that does not define one, or to label a
// frame number that drop-frame never emits (00 or 01 at the start of a
// minute not divisible by 10).
func FromLabel(h, m, s, f int, rate Rate, drop bool) (TC, error) {
	if drop && !SupportsDropFrame(rate) {
		return TC{}, fmt.Errorf("timecode: rate %v does not support drop-frame", rate)
	}

	fps := rate.FramesPerSecond()
	if f >= fps {
		return TC{}, fmt.Errorf("timecode: frame %d out of range for rate %v (%d fps)", f, rate, fps)
	}

	dropFrames := 0
	if drop {
		dropFrames = dropFramesPerMinute(rate)
		if f < dropFrames && m%10 != 0 {
			return TC{}, fmt.Errorf("timecode: frame %d is a dropped label at %02d:%02d", f, m, s)
		}
	}

	return TC{frames: labelToReal(h, m, s, f, fps, dropFrames), rate: rate, drop: drop}, nil
}

// Parse reads "HH:MM:SS:FF" (non-drop-frame) or "HH:MM:SS;FF"
// (drop-frame) into a TC at the given rate.
func Parse(s string, rate Rate) (TC, error) {
	if len(s) != 11 {
		return TC{}, fmt.Errorf("timecode: invalid timecode %q", s)
	}

	var drop bool
	switch s[8] {
	case ':':
		drop = false
	case ';':
		drop = true
	default:
		return TC{}, fmt.Errorf("timecode: invalid timecode %q", s)
	}

	var h, m, sec, f int
	normalized := s[:8] + ":" + s[9:]
	if _, err := fmt.Sscanf(normalized, "%02d:%02d:%02d:%02d", &h, &m, &sec, &f); err != nil {
		return TC{}, fmt.Errorf("timecode: invalid timecode %q: %w", s, err)
	}

	tc, err := FromLabel(h, m, sec, f, rate, drop)
	if err != nil {
		return TC{}, fmt.Errorf("timecode: invalid timecode %q: %w", s, err)
	}
	return tc, nil
}

// Frames returns the absolute real frame count since zero.
func (t TC) Frames() int64 { return t.frames }

// Rate returns the rate this timecode was computed at.
func (t TC) Rate() Rate { return t.rate }

// DropFrame reports whether t is labeled in drop-frame mode.
func (t TC) DropFrame() bool { return t.drop }

// Add returns a TC "frames" further along the timeline at the same rate
// and drop-frame mode.
func (t TC) Add(frames int64) TC {
	return TC{frames: t.frames + frames, rate: t.rate, drop: t.drop}
}

// Compare returns -1, 0, or 1 as t is before, equal to, or after other.
// Callers must not compare TCs of differing rates.
func (t TC) Compare(other TC) int {
	switch {
	case t.frames < other.frames:
		return -1
	case t.frames > other.frames:
		return 1
	default:
		return 0
	}
}

// Before reports whether t precedes other.
func (t TC) Before(other TC) bool { return t.Compare(other) < 0 }

// Max returns whichever of t and other is later on the timeline.
func Max(a, b TC) TC {
	if a.Compare(b) >= 0 {
		return a
	}
	return b
}

// Parts returns the labeled hours/minutes/seconds/frame fields, applying
// the drop-frame frame-skip rule when t is in drop-frame mode.
func (t TC) Parts() (h, m, s, f int) {
	fps := t.rate.FramesPerSecond()
	if fps <= 0 {
		fps = 1
	}
	total := t.frames
	if total < 0 {
		total = 0
	}
	dropFrames := 0
	if t.drop {
		dropFrames = dropFramesPerMinute(t.rate)
	}
	return realToLabel(total, fps, dropFrames)
}

// MarshalJSON renders the timecode as its HH:MM:SS:FF (or HH:MM:SS;FF)
// string, the only representation the control plane's JSON responses
// ever need.
func (t TC) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// String renders HH:MM:SS:FF, or HH:MM:SS;FF when t is in drop-frame
// mode, the format every CMX3600 field uses.
func (t TC) String() string {
	h, m, s, f := t.Parts()
	sep := ":"
	if t.drop {
		sep = ";"
	}
	return fmt.Sprintf("%02d:%02d:%02d%s%02d", h, m, s, sep, f)
}

// labelToReal converts labeled HH:MM:SS:FF fields into a real elapsed
// frame count, undoing the drop-frame skip (dropFrames labels omitted at
// the start of every minute not divisible by 10).
func labelToReal(h, m, s, f, fps, dropFrames int) int64 {
	nominal := int64(fps)*3600*int64(h) + int64(fps)*60*int64(m) + int64(fps)*int64(s) + int64(f)
	if dropFrames == 0 {
		return nominal
	}
	totalMinutes := int64(60*h + m)
	return nominal - int64(dropFrames)*(totalMinutes-totalMinutes/10)
}

// realToLabel is the inverse of labelToReal: it reinserts the skipped
// frame labels so the real frame count renders as a standard drop-frame
// timecode string.
func realToLabel(real int64, fps, dropFrames int) (h, m, s, f int) {
	nominal := real
	if dropFrames > 0 {
		framesPer10Min := int64(fps)*600 - int64(dropFrames)*9
		d := real / framesPer10Min
		rem := real % framesPer10Min
		if rem < int64(dropFrames) {
			rem += int64(dropFrames)
		}
		denom := int64(fps)*60 - int64(dropFrames)
		nominal = real + int64(dropFrames)*9*d + int64(dropFrames)*((rem-int64(dropFrames))/denom)
	}

	fpsI := int64(fps)
	f = int(nominal % fpsI)
	totalSec := nominal / fpsI
	s = int(totalSec % 60)
	totalMin := totalSec / 60
	m = int(totalMin % 60)
	h = int(totalMin/60) % 24
	return
}
