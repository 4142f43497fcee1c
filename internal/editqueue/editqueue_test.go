package editqueue

import (
	"testing"

	"github.com/hankthetank27/edlgen/internal/timecode"
)

func tc(s string) timecode.TC {
	t, err := timecode.Parse(s, timecode.Rate24)
	if err != nil {
		panic(err)
	}
	return t
}

func strp(s string) *string { return &s }
func u32p(n uint32) *uint32 { return &n }

func TestPushValidEdits(t *testing.T) {
	q := New()

	if err := q.Push(Command{
		Kind:       EditKindCut,
		SourceTape: strp("test_1"),
		AVChannels: AVChannels{Video: true, Audio: 2},
		TC:         tc("01:00:00:00"),
	}); err != nil {
		t.Fatalf("push cut: %v", err)
	}

	if err := q.Push(Command{
		Kind:           EditKindWipe,
		SourceTape:     strp("test_2"),
		AVChannels:     AVChannels{Video: true, Audio: 2},
		DurationFrames: u32p(1),
		WipeNumber:     u32p(1),
		TC:             tc("01:00:10:00"),
	}); err != nil {
		t.Fatalf("push wipe: %v", err)
	}

	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
}

func TestPushRejectsMissingDuration(t *testing.T) {
	q := New()

	if err := q.Push(Command{Kind: EditKindCut, SourceTape: strp("test_1"), TC: tc("01:00:00:00")}); err != nil {
		t.Fatalf("push cut: %v", err)
	}

	err := q.Push(Command{
		Kind:       EditKindWipe,
		SourceTape: strp("test_2"),
		WipeNumber: u32p(1),
		TC:         tc("01:00:10:00"),
	})
	if err == nil {
		t.Fatalf("expected error for wipe missing duration")
	}

	err = q.Push(Command{
		Kind:           EditKindDissolve,
		SourceTape:     strp("test_3"),
		DurationFrames: nil,
		TC:             tc("01:00:11:00"),
	})
	if err == nil {
		t.Fatalf("expected error for dissolve missing duration")
	}
}

func TestWipeNumberDefaultsToOne(t *testing.T) {
	q := New()
	if err := q.Push(Command{
		Kind:           EditKindWipe,
		SourceTape:     strp("test_3"),
		DurationFrames: u32p(1),
		WipeNumber:     nil,
		TC:             tc("01:00:11:01"),
	}); err != nil {
		t.Fatalf("push wipe without wipe number: %v", err)
	}
	entry := q.Front()
	if entry == nil || entry.WipeNumber == nil || *entry.WipeNumber != 1 {
		t.Fatalf("expected wipe number to default to 1, got %+v", entry)
	}
}

func TestCutIgnoresDurationAndWipeNumber(t *testing.T) {
	q := New()
	if err := q.Push(Command{
		Kind:           EditKindCut,
		SourceTape:     strp("test_4"),
		DurationFrames: u32p(1),
		WipeNumber:     u32p(1),
		TC:             tc("01:00:11:01"),
	}); err != nil {
		t.Fatalf("push cut: %v", err)
	}
	entry := q.Front()
	if entry.DurationFrames != nil || entry.WipeNumber != nil {
		t.Fatalf("expected cut to ignore duration/wipe number, got %+v", entry)
	}
}

func TestPushSnapshotsPrevFromFront(t *testing.T) {
	q := New()
	if err := q.Push(Command{Kind: EditKindCut, SourceTape: strp("tape_a"), AVChannels: AVChannels{Video: true, Audio: 2}, TC: tc("01:00:00:00")}); err != nil {
		t.Fatalf("push 1: %v", err)
	}
	if err := q.Push(Command{Kind: EditKindCut, SourceTape: strp("tape_b"), TC: tc("01:00:10:00")}); err != nil {
		t.Fatalf("push 2: %v", err)
	}
	q.PopFront()
	second := q.Front()
	if second.PrevTape == nil || *second.PrevTape != "tape_a" {
		t.Fatalf("expected prev tape snapshot from front, got %+v", second.PrevTape)
	}
}

func TestClearResetsCounter(t *testing.T) {
	q := New()
	_ = q.Push(Command{Kind: EditKindCut, SourceTape: strp("tape_a"), TC: tc("01:00:00:00")})
	q.Clear()
	if q.Len() != 0 {
		t.Fatalf("expected empty queue after Clear")
	}
	_ = q.Push(Command{Kind: EditKindCut, SourceTape: strp("tape_b"), TC: tc("01:00:00:00")})
	if q.Front().EditNumber != 1 {
		t.Fatalf("expected edit numbering to restart after Clear")
	}
}
