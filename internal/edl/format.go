// Package edl renders paired edit commands into a CMX3600 Edit Decision
// List: the fixed-column text format most non-linear editors can import.
package edl

import (
	"fmt"
	"strings"

	"github.com/hankthetank27/edlgen/internal/editqueue"
)

// Fcm is the frame count mode declared in the EDL header.
type Fcm int

const (
	NonDropFrame Fcm = iota
	DropFrame
)

func (f Fcm) String() string {
	if f == DropFrame {
		return "DROP FRAME"
	}
	return "NON-DROP FRAME"
}

// avGlyph folds video/audio channel counts into the column CMX3600 expects:
// "" for silent/no video, "V" for video-only, "A"*n for n silent audio
// channels, and "A"*(n-1)+"A/V" when video accompanies n>=1 audio channels.
// Audio is clamped to 4 channels; anything higher renders identically to 4.
func avGlyph(av editqueue.AVChannels) string {
	audio := av.Audio
	if audio > 4 {
		audio = 4
	}
	acc := ""
	if av.Video {
		acc = "V"
	}
	for curr := uint8(1); curr <= audio; curr++ {
		if curr == 1 && acc == "V" {
			acc = "A/" + acc
		} else {
			acc = "A" + acc
		}
	}
	return acc
}

// sourceTapeCode is the literal field CMX3600 writes in the source-tape
// column: "AX" for a named clip, "BL" for a blank/unnamed one. The actual
// clip name, when present, is only ever written as a trailing comment.
func sourceTapeCode(name *string) string {
	if name != nil {
		return "AX"
	}
	return "BL"
}

func fromClipComment(name *string) string {
	if name == nil {
		return ""
	}
	return fmt.Sprintf("\n* FROM CLIP NAME: %s", *name)
}

func toClipComment(name *string) string {
	if name == nil {
		return ""
	}
	return fmt.Sprintf("\n* TO CLIP NAME: %s", *name)
}

// prefixToLen left-pads s with byteChar until it is at least length len.
func prefixToLen(s string, length int, byteChar byte) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat(string(byteChar), length-len(s)) + s
}

// validateEditNumber renders n zero-padded to width 3. CMX3600 edit
// numbers cannot exceed three digits.
func validateEditNumber(n int) (string, error) {
	if n >= 1000 {
		return "", fmt.Errorf("edl: cannot exceed 999 edits")
	}
	return prefixToLen(fmt.Sprintf("%d", n), 3, '0'), nil
}

func durationField(frames *uint32) (string, error) {
	if frames == nil {
		return "   ", nil
	}
	if *frames >= 1000 {
		return "", fmt.Errorf("edl: edit duration cannot exceed 999 frames")
	}
	return prefixToLen(fmt.Sprintf("%d", *frames), 3, '0'), nil
}

// editLine holds the already-formatted fixed-width fields of a single
// CMX3600 edit line, in column order.
type editLine struct {
	editNumber     string
	sourceTape     string
	avChannels     string
	editType       string
	durationFrames string
	recordIn       string
	recordOut      string
	sourceIn       string
	sourceOut      string
}

func newEditLine(clip Clip, editType string, durationFrames *uint32) (editLine, error) {
	num, err := validateEditNumber(clip.EditNumber)
	if err != nil {
		return editLine{}, err
	}
	dur, err := durationField(durationFrames)
	if err != nil {
		return editLine{}, err
	}
	return editLine{
		editNumber:     num,
		sourceTape:     sourceTapeCode(clip.SourceTape),
		avChannels:     prefixToLen(avGlyph(clip.AVChannels), 6, ' '),
		editType:       editType,
		durationFrames: dur,
		recordIn:       clip.RecordIn.String(),
		recordOut:      clip.RecordOut.String(),
		sourceIn:       clip.SourceIn.String(),
		sourceOut:      clip.SourceOut.String(),
	}, nil
}

func (l editLine) String() string {
	return fmt.Sprintf("%s  %s  %s  %s %s %s %s %s %s",
		l.editNumber, l.sourceTape, l.avChannels, l.editType, l.durationFrames,
		l.recordIn, l.recordOut, l.sourceIn, l.sourceOut)
}
