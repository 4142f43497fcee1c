package edl

import (
	"testing"

	"github.com/hankthetank27/edlgen/internal/editqueue"
	"github.com/hankthetank27/edlgen/internal/timecode"
	"pgregory.net/rapid"
)

func mustTC(t *testing.T, s string) timecode.TC {
	t.Helper()
	tc, err := timecode.Parse(s, timecode.Rate24)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return tc
}

func TestAVGlyph(t *testing.T) {
	cases := []struct {
		av   editqueue.AVChannels
		want string
	}{
		{editqueue.AVChannels{Video: true, Audio: 2}, "AA/V"},
		{editqueue.AVChannels{Video: false, Audio: 1}, "A"},
		{editqueue.AVChannels{Video: false, Audio: 2}, "AA"},
		{editqueue.AVChannels{Video: true, Audio: 4}, "AAAA/V"},
		{editqueue.AVChannels{Video: true, Audio: 10}, "AAAA/V"},
		{editqueue.AVChannels{Video: true, Audio: 0}, "V"},
		{editqueue.AVChannels{Video: false, Audio: 0}, ""},
	}
	for _, c := range cases {
		if got := avGlyph(c.av); got != c.want {
			t.Errorf("avGlyph(%+v) = %q, want %q", c.av, got, c.want)
		}
	}
}

func TestAVGlyphClampsAtFour(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		audio := rapid.Uint8Range(0, 10).Draw(rt, "audio")
		video := rapid.Bool().Draw(rt, "video")
		av := editqueue.AVChannels{Video: video, Audio: audio}
		clamped := av
		if clamped.Audio > 4 {
			clamped.Audio = 4
		}
		if avGlyph(av) != avGlyph(clamped) {
			rt.Fatalf("glyph should clamp above 4 audio channels")
		}
	})
}

func strp(s string) *string { return &s }
func u32p(n uint32) *uint32 { return &n }

func TestPairFramesDissolve(t *testing.T) {
	tc1 := mustTC(t, "01:00:00:00")
	tc2 := mustTC(t, "01:05:10:00")

	in := &editqueue.Entry{
		Command: editqueue.Command{
			Kind:           editqueue.EditKindDissolve,
			SourceTape:     strp("tape_1 with long name"),
			AVChannels:     editqueue.AVChannels{Video: true, Audio: 2},
			DurationFrames: u32p(10),
			TC:             tc1,
		},
		EditNumber: 1,
		PrevTape:   nil,
		PrevAV:     editqueue.AVChannels{Video: true, Audio: 2},
	}
	out := &editqueue.Entry{
		Command: editqueue.Command{
			Kind:       editqueue.EditKindCut,
			SourceTape: strp("tape_2"),
			TC:         tc2,
		},
		EditNumber: 2,
	}

	edit, err := PairFrames(in, out)
	if err != nil {
		t.Fatalf("PairFrames: %v", err)
	}
	if edit.From.SourceTape != nil {
		t.Fatalf("expected flat outgoing clip to be blank (BL), got %v", *edit.From.SourceTape)
	}
	if edit.To.SourceTape == nil || *edit.To.SourceTape != "tape_1 with long name" {
		t.Fatalf("expected destination tape from in_, got %v", edit.To.SourceTape)
	}
	if edit.From.SourceIn.Compare(edit.From.SourceOut) != 0 {
		t.Fatalf("expected flat clip in==out")
	}
	if !edit.To.SourceIn.Before(edit.To.SourceOut) {
		t.Fatalf("expected destination clip in < out")
	}
	if edit.To.SourceIn.Compare(tc1) != 0 || edit.To.SourceOut.Compare(tc2) != 0 {
		t.Fatalf("unexpected destination clip bounds: %+v", edit.To)
	}
}

func TestPairFramesWipeDurationLongerThanGap(t *testing.T) {
	tc2 := mustTC(t, "01:05:10:00")
	tc3 := mustTC(t, "01:05:10:05")

	in := &editqueue.Entry{
		Command: editqueue.Command{
			Kind:           editqueue.EditKindWipe,
			SourceTape:     strp("tape1"),
			DurationFrames: u32p(10),
			WipeNumber:     u32p(1),
			TC:             tc2,
		},
		EditNumber: 1,
		PrevTape:   strp("tape0"),
	}
	out := &editqueue.Entry{
		Command:    editqueue.Command{Kind: editqueue.EditKindDissolve, SourceTape: strp("tape2"), TC: tc3},
		EditNumber: 2,
	}

	edit, err := PairFrames(in, out)
	if err != nil {
		t.Fatalf("PairFrames: %v", err)
	}
	expected := tc2.Add(10)
	if edit.To.SourceOut.Compare(expected) != 0 {
		t.Fatalf("expected tc_out = in+duration when it exceeds out_.tc, got %v want %v", edit.To.SourceOut, expected)
	}
}

func TestPairFramesCut(t *testing.T) {
	tc2 := mustTC(t, "01:05:10:00")
	tc3 := mustTC(t, "01:05:10:05")
	in := &editqueue.Entry{
		Command:    editqueue.Command{Kind: editqueue.EditKindCut, SourceTape: strp("tape_1"), TC: tc2},
		EditNumber: 1,
	}
	out := &editqueue.Entry{
		Command:    editqueue.Command{Kind: editqueue.EditKindCut, SourceTape: strp("tape_2"), TC: tc3},
		EditNumber: 2,
	}
	edit, err := PairFrames(in, out)
	if err != nil {
		t.Fatalf("PairFrames: %v", err)
	}
	if edit.Clip.SourceTape == nil || *edit.Clip.SourceTape != "tape_1" {
		t.Fatalf("expected cut source tape tape_1, got %v", edit.Clip.SourceTape)
	}
	if !edit.Clip.SourceIn.Before(edit.Clip.SourceOut) {
		t.Fatalf("expected cut in < out")
	}
}

func TestRenderCut(t *testing.T) {
	tc1 := mustTC(t, "01:00:00:00")
	tc2 := mustTC(t, "01:05:10:00")
	edit := Edit{
		Kind: editqueue.EditKindCut,
		Clip: Clip{
			EditNumber: 1,
			SourceTape: strp("test_clip.mov"),
			AVChannels: editqueue.AVChannels{Video: true, Audio: 2},
			SourceIn:   tc1,
			SourceOut:  tc2,
			RecordIn:   tc1,
			RecordOut:  tc2,
		},
	}
	got, err := Render(edit)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "\n001  AX    AA/V  C        01:00:00:00 01:05:10:00 01:00:00:00 01:05:10:00" +
		"\n* FROM CLIP NAME: test_clip.mov"
	if got != want {
		t.Fatalf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderWipe(t *testing.T) {
	tc1 := mustTC(t, "01:00:00:00")
	tc2 := mustTC(t, "01:05:10:00")
	tc3 := mustTC(t, "01:10:00:00")
	tc4 := mustTC(t, "01:15:00:00")

	from := Clip{
		EditNumber: 1, SourceTape: strp("test_clip.mov"),
		AVChannels: editqueue.AVChannels{Video: true, Audio: 2},
		SourceIn:   tc1, SourceOut: tc2, RecordIn: tc1, RecordOut: tc2,
	}
	to := Clip{
		EditNumber: 2, SourceTape: strp("test_clip_2.mov"),
		AVChannels: editqueue.AVChannels{Video: true, Audio: 3},
		SourceIn:   tc3, SourceOut: tc4, RecordIn: tc3, RecordOut: tc4,
	}
	edit := Edit{Kind: editqueue.EditKindWipe, From: from, To: to, DurationFrames: 15, WipeNumber: 1}
	got, err := Render(edit)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "\n001  AX    AA/V  C        01:00:00:00 01:05:10:00 01:00:00:00 01:05:10:00" +
		"\n002  AX   AAA/V  W001 015 01:10:00:00 01:15:00:00 01:10:00:00 01:15:00:00" +
		"\n* FROM CLIP NAME: test_clip.mov" +
		"\n* TO CLIP NAME: test_clip_2.mov"
	if got != want {
		t.Fatalf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestRenderDissolve(t *testing.T) {
	tc1 := mustTC(t, "01:00:00:00")
	tc2 := mustTC(t, "01:05:10:00")
	tc3 := mustTC(t, "01:10:00:00")
	tc4 := mustTC(t, "01:15:00:00")

	from := Clip{
		EditNumber: 1, SourceTape: strp("test_clip.mov"),
		AVChannels: editqueue.AVChannels{Video: true, Audio: 2},
		SourceIn:   tc1, SourceOut: tc2, RecordIn: tc1, RecordOut: tc2,
	}
	to := Clip{
		EditNumber: 2, SourceTape: strp("test_clip_2.mov"),
		AVChannels: editqueue.AVChannels{Video: true, Audio: 3},
		SourceIn:   tc3, SourceOut: tc4, RecordIn: tc3, RecordOut: tc4,
	}
	edit := Edit{Kind: editqueue.EditKindDissolve, From: from, To: to, DurationFrames: 0}
	got, err := Render(edit)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "\n001  AX    AA/V  C        01:00:00:00 01:05:10:00 01:00:00:00 01:05:10:00" +
		"\n002  AX   AAA/V  D    000 01:10:00:00 01:15:00:00 01:10:00:00 01:15:00:00" +
		"\n* FROM CLIP NAME: test_clip.mov" +
		"\n* TO CLIP NAME: test_clip_2.mov"
	if got != want {
		t.Fatalf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestEditNumberCannotExceed999(t *testing.T) {
	_, err := validateEditNumber(1000)
	if err == nil {
		t.Fatalf("expected error for edit number >= 1000")
	}
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 1200).Draw(rt, "n")
		got, err := validateEditNumber(n)
		if n >= 1000 {
			if err == nil {
				rt.Fatalf("expected error for n=%d", n)
			}
			return
		}
		if err != nil {
			rt.Fatalf("unexpected error for n=%d: %v", n, err)
		}
		if len(got) != 3 {
			rt.Fatalf("expected zero-padded width 3, got %q", got)
		}
	})
}
