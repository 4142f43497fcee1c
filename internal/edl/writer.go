package edl

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hankthetank27/edlgen/internal/editqueue"
)

// Writer owns one EDL file on disk plus the edit queue that feeds it. It
// implements the generator's three writer operations: Init (create the
// file and header), TryBuildEvent (pair the oldest queued command with
// the next one to form a complete Edit), and WriteEvent (append the
// rendered lines and flush).
type Writer struct {
	file   *os.File
	buf    *bufio.Writer
	queue  *editqueue.Queue
	logger *slog.Logger
}

// Init creates a new EDL file under dir named title.edl, or title(N).edl
// for the smallest N that does not already exist, writes the TITLE/FCM
// header, and returns a Writer ready to accept pushed commands.
func Init(dir, title string, fcm Fcm, logger *slog.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("edl: could not create output directory: %w", err)
	}

	path, err := nextAvailablePath(dir, title)
	if err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("edl: could not create EDL file: %w", err)
	}

	buf := bufio.NewWriter(f)
	if _, err := buf.WriteString(fmt.Sprintf("TITLE: %s\nFCM: %s", title, fcm)); err != nil {
		f.Close()
		return nil, fmt.Errorf("edl: could not write header: %w", err)
	}
	if err := buf.Flush(); err != nil {
		f.Close()
		return nil, fmt.Errorf("edl: could not flush header: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{file: f, buf: buf, queue: editqueue.New(), logger: logger}, nil
}

func nextAvailablePath(dir, title string) (string, error) {
	makePath := func(n int) string {
		if n == 0 {
			return filepath.Join(dir, fmt.Sprintf("%s.edl", title))
		}
		return filepath.Join(dir, fmt.Sprintf("%s(%d).edl", title, n))
	}
	path := makePath(0)
	for i := 1; ; i++ {
		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("edl: could not determine if file is safe to write: %w", err)
		}
		path = makePath(i)
	}
}

// PushCommand validates and enqueues a command, exactly as editqueue.Push
// does; it is exposed here so callers never reach around the Writer into
// its queue directly.
func (w *Writer) PushCommand(cmd editqueue.Command) error {
	return w.queue.Push(cmd)
}

// TryBuildEvent pops the oldest queued command and pairs it with the
// command now at the front (the one that sat behind it) to materialize a
// complete Edit. The oldest command is popped before pairing; if pairing
// fails, it is not returned to the queue. With fewer than two commands
// queued there is nothing yet to pair the oldest command's out point
// against, so it returns ok == false without touching the queue or
// reporting an error.
func (w *Writer) TryBuildEvent() (edit Edit, ok bool, err error) {
	if w.queue.Len() < 2 {
		return Edit{}, false, nil
	}
	in := w.queue.PopFront()
	out := w.queue.Front()
	edit, err = PairFrames(in, out)
	if err != nil {
		return Edit{}, false, err
	}
	return edit, true, nil
}

// WriteEvent renders edit and appends it to the file, flushing
// immediately so the EDL on disk is never more than one event behind a
// crash.
func (w *Writer) WriteEvent(edit Edit) (Edit, error) {
	rendered, err := Render(edit)
	if err != nil {
		return Edit{}, err
	}
	if _, err := w.buf.WriteString(rendered); err != nil {
		return Edit{}, fmt.Errorf("edl: could not write event: %w", err)
	}
	if err := w.buf.Flush(); err != nil {
		return Edit{}, fmt.Errorf("edl: could not flush event: %w", err)
	}
	w.logger.Info("edit logged", "edit", rendered)
	return edit, nil
}

// QueueLen reports how many commands are currently queued awaiting
// pairing, primarily for tests.
func (w *Writer) QueueLen() int { return w.queue.Len() }

// Close flushes and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
