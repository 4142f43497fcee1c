package ltcdecoder

import (
	"time"

	"github.com/hankthetank27/edlgen/internal/svchan"
	"github.com/hankthetank27/edlgen/internal/timecode"
)

// Handlers bundles a Driver with its frame receiver into the single
// object the session controller holds: decode on/off plus the three
// frame-receive variants (non-blocking, blocking, timed). The session's
// /start, /log, and /end paths use the timed receive and its background
// first-frame waiter uses the blocking one.
type Handlers struct {
	driver *Driver
	rx     svchan.Receiver[timecode.TC]
}

// NewHandlers pairs a Driver with the receiving end of the svchan it
// publishes decoded frames to.
func NewHandlers(driver *Driver, rx svchan.Receiver[timecode.TC]) *Handlers {
	return &Handlers{driver: driver, rx: rx}
}

func (h *Handlers) DecodeOn()  { h.driver.DecodeOn() }
func (h *Handlers) DecodeOff() { h.driver.DecodeOff() }

func (h *Handlers) TryRecv() (timecode.TC, error) { return h.rx.TryRecv() }
func (h *Handlers) Recv() (timecode.TC, error)     { return h.rx.Recv() }
func (h *Handlers) RecvTimeout(d time.Duration) (timecode.TC, error) {
	return h.rx.RecvTimeout(d)
}
