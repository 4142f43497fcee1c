package edl

import (
	"fmt"

	"github.com/hankthetank27/edlgen/internal/editqueue"
	"github.com/hankthetank27/edlgen/internal/timecode"
)

// Clip is one in/out pair in the final EDL, already resolved to concrete
// record and source timecodes.
type Clip struct {
	EditNumber int                   `json:"edit_number"`
	SourceTape *string               `json:"source_tape,omitempty"`
	AVChannels editqueue.AVChannels  `json:"av_channels"`
	SourceIn   timecode.TC           `json:"source_in"`
	SourceOut  timecode.TC           `json:"source_out"`
	RecordIn   timecode.TC           `json:"record_in"`
	RecordOut  timecode.TC           `json:"record_out"`
}

// Edit is a single materialized CMX3600 event: a straight Cut, or a
// Dissolve/Wipe transition between an outgoing and incoming clip.
type Edit struct {
	Kind           editqueue.EditKind `json:"edit_type"`
	Clip           Clip               `json:"clip,omitempty"`            // populated for Kind == EditKindCut
	From           Clip               `json:"from,omitempty"`            // populated for Dissolve/Wipe
	To             Clip               `json:"to,omitempty"`              // populated for Dissolve/Wipe
	DurationFrames uint32             `json:"duration_frames,omitempty"` // populated for Dissolve/Wipe
	WipeNumber     uint32             `json:"wipe_num,omitempty"`        // populated for Kind == EditKindWipe
}

// DestTape returns the source tape the edit transitions into, the value
// the session uses to seed the next command's source-tape fallback.
func (e Edit) DestTape() *string {
	switch e.Kind {
	case editqueue.EditKindCut:
		return e.Clip.SourceTape
	default:
		return e.To.SourceTape
	}
}

// DestAVChannels returns the AV channels of the edit's destination clip.
func (e Edit) DestAVChannels() editqueue.AVChannels {
	switch e.Kind {
	case editqueue.EditKindCut:
		return e.Clip.AVChannels
	default:
		return e.To.AVChannels
	}
}

// PairFrames combines the oldest queued entry (in_, supplies edit type and
// identity) with the next entry's timecode (out_, supplies the out point)
// into a complete Edit, per the generator's one-entry-lookahead pairing
// rule (spec §4.4.1):
//
//	tc_out = max(in_.tc + duration, out_.tc)   if duration present
//	       = out_.tc                           otherwise
//
// A Cut becomes a single clip spanning in_ to tc_out. A Dissolve/Wipe
// becomes a "flat" outgoing clip (in=out=in_.tc, using in_'s snapshotted
// prev tape/AV) immediately followed by an as-if-cut incoming clip.
func PairFrames(in, out *editqueue.Entry) (Edit, error) {
	tcOut := out.TC
	if in.DurationFrames != nil {
		withDuration := in.TC.Add(int64(*in.DurationFrames))
		tcOut = timecode.Max(withDuration, out.TC)
	}

	dest := Clip{
		EditNumber: in.EditNumber,
		SourceTape: in.SourceTape,
		AVChannels: in.AVChannels,
		SourceIn:   in.TC,
		SourceOut:  tcOut,
		RecordIn:   in.TC,
		RecordOut:  tcOut,
	}

	switch in.Kind {
	case editqueue.EditKindCut:
		return Edit{Kind: editqueue.EditKindCut, Clip: dest}, nil

	case editqueue.EditKindDissolve:
		if in.DurationFrames == nil {
			return Edit{}, fmt.Errorf("edl: edit type %q requires edit duration in frames", in.Kind)
		}
		flat := Clip{
			EditNumber: in.EditNumber,
			SourceTape: in.PrevTape,
			AVChannels: in.PrevAV,
			SourceIn:   in.TC,
			SourceOut:  in.TC,
			RecordIn:   in.TC,
			RecordOut:  in.TC,
		}
		return Edit{Kind: editqueue.EditKindDissolve, From: flat, To: dest, DurationFrames: *in.DurationFrames}, nil

	case editqueue.EditKindWipe:
		if in.DurationFrames == nil {
			return Edit{}, fmt.Errorf("edl: edit type %q requires edit duration in frames", in.Kind)
		}
		wipeNum := uint32(1)
		if in.WipeNumber != nil {
			wipeNum = *in.WipeNumber
		}
		flat := Clip{
			EditNumber: in.EditNumber,
			SourceTape: in.PrevTape,
			AVChannels: in.PrevAV,
			SourceIn:   in.TC,
			SourceOut:  in.TC,
			RecordIn:   in.TC,
			RecordOut:  in.TC,
		}
		return Edit{Kind: editqueue.EditKindWipe, From: flat, To: dest, DurationFrames: *in.DurationFrames, WipeNumber: wipeNum}, nil

	default:
		return Edit{}, fmt.Errorf("edl: unknown edit type %q", in.Kind)
	}
}

// transitionCodes returns the (outgoing, incoming) transition-code column
// strings for an edit: a Cut writes one line with "C   "; a Dissolve/Wipe
// writes two lines, the outgoing always "C   ", the incoming "D   " or
// "Wnnn".
func transitionCodes(e Edit) (string, string, error) {
	const cut = "C   "
	switch e.Kind {
	case editqueue.EditKindCut:
		return cut, "", nil
	case editqueue.EditKindDissolve:
		return cut, "D   ", nil
	case editqueue.EditKindWipe:
		num, err := validateEditNumber(int(e.WipeNumber))
		if err != nil {
			return "", "", err
		}
		return cut, fmt.Sprintf("W%s", num), nil
	default:
		return "", "", fmt.Errorf("edl: unknown edit type %q", e.Kind)
	}
}

// Render formats a materialized Edit as the text CMX3600 lines (plus any
// trailing FROM/TO clip-name comments) that get appended to the EDL file.
func Render(e Edit) (string, error) {
	outCode, inCode, err := transitionCodes(e)
	if err != nil {
		return "", err
	}

	switch e.Kind {
	case editqueue.EditKindCut:
		line, err := newEditLine(e.Clip, outCode, nil)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("\n%s%s", line.String(), fromClipComment(e.Clip.SourceTape)), nil

	case editqueue.EditKindDissolve, editqueue.EditKindWipe:
		fromLine, err := newEditLine(e.From, outCode, nil)
		if err != nil {
			return "", err
		}
		dur := e.DurationFrames
		toLine, err := newEditLine(e.To, inCode, &dur)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("\n%s\n%s%s%s",
			fromLine.String(), toLine.String(),
			fromClipComment(e.From.SourceTape), toClipComment(e.To.SourceTape)), nil

	default:
		return "", fmt.Errorf("edl: unknown edit type %q", e.Kind)
	}
}
