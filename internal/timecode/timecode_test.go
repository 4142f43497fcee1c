package timecode

import (
	"testing"

	"pgregory.net/rapid"
)

func TestParseRoundTrip(t *testing.T) {
	tc, err := Parse("01:05:10:00", Rate24)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := tc.String(); got != "01:05:10:00" {
		t.Fatalf("String() = %q, want 01:05:10:00", got)
	}
}

func TestAddAndMax(t *testing.T) {
	in, _ := Parse("01:00:00:00", Rate24)
	out, _ := Parse("01:05:10:00", Rate24)

	withDuration := in.Add(10)
	if !withDuration.Before(out) {
		t.Fatalf("expected withDuration before out")
	}
	if got := Max(withDuration, out); got.Compare(out) != 0 {
		t.Fatalf("Max should pick the later timecode")
	}

	longer := in.Add(10000)
	if got := Max(longer, out); got.Compare(longer) != 0 {
		t.Fatalf("Max should pick longer when it exceeds out")
	}
}

func TestFrameOutOfRange(t *testing.T) {
	if _, err := Parse("00:00:00:24", Rate24); err == nil {
		t.Fatalf("expected error for frame >= fps")
	}
}

func TestParseRoundTripDropFrame(t *testing.T) {
	tc, err := Parse("00:01:00;02", Rate2997)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !tc.DropFrame() {
		t.Fatalf("expected DropFrame() true")
	}
	if got := tc.String(); got != "00:01:00;02" {
		t.Fatalf("String() = %q, want 00:01:00;02", got)
	}
}

func TestParseRejectsDroppedLabel(t *testing.T) {
	if _, err := Parse("00:01:00;00", Rate2997); err == nil {
		t.Fatalf("expected error for dropped frame label 00 at minute 1")
	}
	if _, err := Parse("00:01:00;01", Rate2997); err == nil {
		t.Fatalf("expected error for dropped frame label 01 at minute 1")
	}
}

func TestParseAllowsLabelAtTenMinuteBoundary(t *testing.T) {
	tc, err := Parse("00:10:00;00", Rate2997)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := tc.String(); got != "00:10:00;00" {
		t.Fatalf("String() = %q, want 00:10:00;00", got)
	}
}

func TestDropFrameRequiresSupportedRate(t *testing.T) {
	if _, err := FromLabel(0, 1, 0, 0, Rate24, true); err == nil {
		t.Fatalf("expected error requesting drop-frame at a rate that does not define one")
	}
}

func TestDropFrameOneMinuteSkipsTwoLabels(t *testing.T) {
	oneMinIn, err := FromLabel(0, 1, 0, 2, Rate2997, true)
	if err != nil {
		t.Fatalf("FromLabel: %v", err)
	}
	if got, want := oneMinIn.Frames(), int64(1800); got != want {
		t.Fatalf("frames at 00:01:00;02 = %d, want %d (1802 nominal minus 2 dropped)", got, want)
	}
}

func TestDropFrameTenMinutesSkipsNoLabels(t *testing.T) {
	tenMinIn, err := FromLabel(0, 10, 0, 0, Rate2997, true)
	if err != nil {
		t.Fatalf("FromLabel: %v", err)
	}
	if got, want := tenMinIn.Frames(), int64(17982); got != want {
		t.Fatalf("frames at 00:10:00;00 = %d, want %d (18000 nominal minus 18 dropped)", got, want)
	}
}

func TestNonDropFrameStillRendersColon(t *testing.T) {
	tc := FromFrames(1798, Rate2997)
	if got := tc.String(); got != "00:00:59:28" {
		t.Fatalf("String() = %q, want 00:00:59:28 (non-drop labels every real frame)", got)
	}
}

func TestDropFrameAddPreservesMode(t *testing.T) {
	in, err := FromLabel(0, 0, 59, 28, Rate2997, true)
	if err != nil {
		t.Fatalf("FromLabel: %v", err)
	}
	out := in.Add(2)
	if !out.DropFrame() {
		t.Fatalf("expected Add to preserve drop-frame mode")
	}
	if got := out.String(); got != "00:01:00;02" {
		t.Fatalf("String() = %q, want 00:01:00;02", got)
	}
}

func TestDropFrameLabelRoundTripAcrossMinutes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		// one 24-hour day of 29.97 drop-frame: labels wrap at 24:00:00;00.
		frames := rapid.Int64Range(0, 2_589_407).Draw(rt, "frames")
		tc := TC{frames: frames, rate: Rate2997, drop: true}

		h, m, s, f := tc.Parts()
		back, err := FromLabel(h, m, s, f, Rate2997, true)
		if err != nil {
			rt.Fatalf("FromLabel rejected a label Parts() itself produced: %v", err)
		}
		if back.Frames() != frames {
			rt.Fatalf("round trip mismatch: %d -> %02d:%02d:%02d;%02d -> %d", frames, h, m, s, f, back.Frames())
		}
	})
}

func TestAddAssociativeWithinOneRate(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := FromFrames(rapid.Int64Range(0, 1_000_000).Draw(rt, "base"), Rate24)
		a := rapid.Int64Range(0, 100_000).Draw(rt, "a")
		b := rapid.Int64Range(0, 100_000).Draw(rt, "b")

		left := base.Add(a).Add(b)
		right := base.Add(a + b)
		if left.Compare(right) != 0 {
			rt.Fatalf("Add not associative: %v != %v", left, right)
		}
	})
}
