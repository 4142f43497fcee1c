// Package recsession implements the control-plane-facing session
// controller: the mutex-protected state machine, source-tape/AV
// fallback, and EDL writer lifecycle driving one recording run from
// /start through /end.
package recsession

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hankthetank27/edlgen/internal/edl"
	"github.com/hankthetank27/edlgen/internal/editqueue"
	"github.com/hankthetank27/edlgen/internal/timecode"
)

// DecodeHandlers is the subset of ltcdecoder.Handlers the session needs:
// toggling decode state and receiving frames under the two waiting
// disciplines: the one-second bounded wait /start, /log, and /end use,
// and the unbounded wait the background waiter uses.
type DecodeHandlers interface {
	DecodeOn()
	DecodeOff()
	Recv() (timecode.TC, error)
	RecvTimeout(d time.Duration) (timecode.TC, error)
}

// ErrSignalTimeout reports that a bounded wait for a decoded LTC frame
// elapsed without one arriving.
var ErrSignalTimeout = errors.New("recsession: timed out waiting for LTC signal")

// EditRequest is the JSON body accepted by /start, /log, and /end.
type EditRequest struct {
	EditType           string                `json:"edit_type"`
	EditDurationFrames *uint32               `json:"edit_duration_frames,omitempty"`
	WipeNum            *uint32               `json:"wipe_num,omitempty"`
	SourceTape         *string               `json:"source_tape,omitempty"`
	AVChannels         *editqueue.AVChannels `json:"av_channels,omitempty"`
}

// SourceTapeRequest is the JSON body accepted by /select-src.
type SourceTapeRequest struct {
	SourceTape *string               `json:"source_tape,omitempty"`
	AVChannels *editqueue.AVChannels `json:"av_channels,omitempty"`
}

// Response is the JSON body returned by every control-plane route that
// reports session state.
type Response struct {
	RecordingState State      `json:"recording_state"`
	Edit           *edl.Edit  `json:"edit,omitempty"`
	FinalEdits     []edl.Edit `json:"final_edits,omitempty"`
}

// Session is the mutex-protected controller for one EDL recording run.
type Session struct {
	mu       sync.Mutex
	state    State
	selected SourceTapeRequest
	writer   *edl.Writer
	decode   DecodeHandlers
	logger   *slog.Logger

	dir   string
	title string
	fcm   edl.Fcm

	waitCh chan waitJob
}

type waitJob struct {
	req EditRequest
}

// New constructs a stopped session and starts its background first-frame
// waiter goroutine, ready to accept /start.
func New(dir, title string, fcm edl.Fcm, decode DecodeHandlers, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		state:  StateStopped,
		decode: decode,
		logger: logger,
		dir:    dir,
		title:  title,
		fcm:    fcm,
		waitCh: make(chan waitJob, 1),
	}
	go s.runWaiter()
	return s
}

// State reports the current recording state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// transition applies one FSM event to the session state. Callers hold s.mu.
func (s *Session) transition(event Event) error {
	next, err := Transition(s.state, event)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// Start begins a new recording. If an LTC signal is acquired within one
// second, it logs the opening command and returns Started (200).
// Otherwise it hands the wait off to a background goroutine and returns
// Waiting immediately (202); the caller does not hold the connection
// open for an unbounded signal wait.
func (s *Session) Start(req EditRequest) (Response, int, error) {
	s.mu.Lock()
	if s.state != StateStopped {
		state := s.state
		s.mu.Unlock()
		s.logger.Warn("start requested while already recording", "state", state)
		return Response{RecordingState: state}, 202, nil
	}

	if err := s.transition(EventStartRequested); err != nil {
		s.mu.Unlock()
		return Response{}, 500, fmt.Errorf("recsession: start: %w", err)
	}
	s.decode.DecodeOn()
	writer, err := edl.Init(s.dir, s.title, s.fcm, s.logger)
	if err != nil {
		_ = s.transition(EventAbort)
		s.mu.Unlock()
		return Response{}, 500, fmt.Errorf("recsession: start: %w", err)
	}
	s.writer = writer
	req = s.fillFromSelected(req)
	s.mu.Unlock()

	tc, err := s.decode.RecvTimeout(time.Second)
	if err == nil {
		return s.commitStart(req, tc)
	}

	s.mu.Lock()
	select {
	case s.waitCh <- waitJob{req: req}:
	default:
	}
	state := s.state
	s.mu.Unlock()
	s.logger.Info("no LTC signal within 1s; continuing to wait in background")
	return Response{RecordingState: state}, 202, nil
}

// commitStart pushes the opening command using an already-acquired
// timecode and transitions the session to Started.
func (s *Session) commitStart(req EditRequest, tc timecode.TC) (Response, int, error) {
	cmd, err := toCommand(req, tc)
	if err != nil {
		s.mu.Lock()
		_ = s.transition(EventAbort)
		s.mu.Unlock()
		return Response{}, 500, fmt.Errorf("recsession: start: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writer.PushCommand(cmd); err != nil {
		_ = s.transition(EventAbort)
		return Response{}, 500, fmt.Errorf("recsession: start: %w", err)
	}
	if err := s.transition(EventSignalAcquired); err != nil {
		return Response{}, 500, fmt.Errorf("recsession: start: %w", err)
	}
	s.logger.Info("ltc signal acquired; recording started")
	return Response{RecordingState: s.state}, 200, nil
}

// runWaiter blocks on the decoder for a session whose initial /start
// timed out, one job at a time, and commits the session to Started once
// a frame finally arrives.
func (s *Session) runWaiter() {
	for job := range s.waitCh {
		tc, err := s.decode.Recv()
		if err != nil {
			s.logger.Error("unable to acquire LTC signal", "error", err)
			s.mu.Lock()
			_ = s.transition(EventAbort)
			s.mu.Unlock()
			continue
		}
		if _, _, err := s.commitStart(job.req, tc); err != nil {
			s.logger.Error("unable to log start from background waiter", "error", err)
		}
	}
}

// Log pushes one edit command mid-recording and writes the event that
// just became fully paired (the previous command against this one).
func (s *Session) Log(req EditRequest) (Response, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateStarted {
		s.logger.Warn("log requested before recording started", "state", s.state)
		return Response{RecordingState: s.state}, 202, nil
	}

	req = s.fillFromSelected(req)
	edit, ok, err := s.pushAndWrite(req)
	if err != nil {
		return Response{}, 500, fmt.Errorf("recsession: log: %w", err)
	}
	if !ok {
		return Response{RecordingState: StateStarted}, 202, nil
	}

	s.updateSelectedFrom(edit)
	return Response{RecordingState: StateStarted, Edit: &edit}, 200, nil
}

// End writes the final edit (if recording was Started), tears down the
// writer, and stops the decoder.
func (s *Session) End(req EditRequest) (Response, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateStarted:
		edits, err := s.logFinal(req)
		if err != nil {
			return Response{}, 500, fmt.Errorf("recsession: end: %w", err)
		}
		s.decode.DecodeOff()
		s.closeWriter()
		if err := s.transition(EventEndRequested); err != nil {
			return Response{}, 500, fmt.Errorf("recsession: end: %w", err)
		}
		s.logger.Info("edl recording ended")
		return Response{RecordingState: s.state, FinalEdits: edits}, 200, nil

	case StateWaiting:
		s.decode.DecodeOff()
		s.closeWriter()
		if err := s.transition(EventEndRequested); err != nil {
			return Response{}, 500, fmt.Errorf("recsession: end: %w", err)
		}
		s.logger.Info("edl recording ended before signal was acquired")
		return Response{RecordingState: s.state}, 200, nil

	default:
		s.logger.Warn("end requested before recording started")
		return Response{RecordingState: s.state}, 202, nil
	}
}

// SelectSrc overrides the source tape/AV channels the next request that
// omits them falls back to.
func (s *Session) SelectSrc(req SourceTapeRequest) Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = req
	if req.SourceTape != nil {
		s.logger.Info("source tape selected", "tape", *req.SourceTape)
	}
	if req.AVChannels != nil {
		s.logger.Info("av channels selected", "video", req.AVChannels.Video, "audio", req.AVChannels.Audio)
	}
	return Response{RecordingState: s.state}
}

// fillFromSelected fills an omitted source tape/AV from the session's
// fallback. The source tape is consumed (cleared) once used, matching
// the original's take-once semantics; AV channels persist across calls
// since they are a plain value, not an option that gets taken.
func (s *Session) fillFromSelected(req EditRequest) EditRequest {
	if req.SourceTape == nil {
		req.SourceTape = s.selected.SourceTape
		s.selected.SourceTape = nil
	}
	if req.AVChannels == nil {
		req.AVChannels = s.selected.AVChannels
	}
	return req
}

// updateSelectedFrom seeds the fallback from the destination of an edit
// that was just written, so the next omitted request continues from
// wherever this edit left off.
func (s *Session) updateSelectedFrom(edit edl.Edit) {
	tape := edit.DestTape()
	av := edit.DestAVChannels()
	s.selected = SourceTapeRequest{SourceTape: tape, AVChannels: &av}
}

// pushAndWrite receives a fresh timecode (1s bound), pushes it as a
// command, and if the queue now holds two entries, pairs and writes the
// resulting event. ok is false when fewer than two commands are queued
// after the push — there is nothing yet to pair against, which is not
// an error.
func (s *Session) pushAndWrite(req EditRequest) (edit edl.Edit, ok bool, err error) {
	tc, err := s.decode.RecvTimeout(time.Second)
	if err != nil {
		return edl.Edit{}, false, fmt.Errorf("%w: %v", ErrSignalTimeout, err)
	}
	cmd, err := toCommand(req, tc)
	if err != nil {
		return edl.Edit{}, false, err
	}
	if err := s.writer.PushCommand(cmd); err != nil {
		return edl.Edit{}, false, err
	}
	built, ok, err := s.writer.TryBuildEvent()
	if err != nil {
		return edl.Edit{}, false, err
	}
	if !ok {
		return edl.Edit{}, false, nil
	}
	written, err := s.writer.WriteEvent(built)
	if err != nil {
		return edl.Edit{}, false, err
	}
	return written, true, nil
}

// logFinal writes the final edit, defaulting its source tape/AV since
// the session is ending regardless of what is currently selected, plus
// a trailing plain cut frame if the final edit was a transition (a
// Dissolve/Wipe needs a clean landing point, a Cut does not).
func (s *Session) logFinal(req EditRequest) ([]edl.Edit, error) {
	req.SourceTape = nil
	req.AVChannels = nil

	first, ok, err := s.pushAndWrite(req)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("recsession: end: no prior command queued to pair final edit against")
	}
	edits := []edl.Edit{first}

	if first.Kind != editqueue.EditKindCut {
		blank := EditRequest{EditType: editqueue.EditKindCut.String()}
		second, ok, err := s.pushAndWrite(blank)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("recsession: end: no command queued to pair trailing cut against")
		}
		edits = append(edits, second)
	}

	return edits, nil
}

func (s *Session) closeWriter() {
	if s.writer == nil {
		return
	}
	if err := s.writer.Close(); err != nil {
		s.logger.Error("failed to close edl file", "error", err)
	}
	s.writer = nil
}

// toCommand resolves an EditRequest plus an acquired timecode into an
// editqueue.Command, defaulting AV channels to video-only when omitted.
func toCommand(req EditRequest, tc timecode.TC) (editqueue.Command, error) {
	kind, err := editqueue.ParseEditKind(req.EditType)
	if err != nil {
		return editqueue.Command{}, err
	}
	av := editqueue.VideoOnly()
	if req.AVChannels != nil {
		av = *req.AVChannels
	}
	return editqueue.Command{
		Kind:           kind,
		SourceTape:     req.SourceTape,
		AVChannels:     av,
		DurationFrames: req.EditDurationFrames,
		WipeNumber:     req.WipeNum,
		TC:             tc,
	}, nil
}
