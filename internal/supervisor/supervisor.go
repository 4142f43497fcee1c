// Package supervisor wires the running session's long-lived services
// (capture stream, HTTP accept loop) under one suture tree so a panic or
// returned error in either of them restarts that service alone instead
// of taking the whole process down. The first-frame waiter is not
// supervised here; it is a goroutine owned by the recording session.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
)

// New returns a supervisor tree logging restart/failure events through
// logger instead of suture's default stderr writer.
func New(logger *slog.Logger) *suture.Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return suture.New("edlgen", suture.Spec{
		EventHook: func(e suture.Event) {
			logger.Warn("supervisor event", "event", e.String())
		},
		FailureThreshold: 5,
		FailureBackoff:   time.Second,
	})
}

// Service adapts a plain run function into the suture.Service interface
// (Serve(ctx) error), named for the supervisor's event log.
type Service struct {
	name string
	run  func(ctx context.Context) error
}

// NewService wraps run as a named supervised service.
func NewService(name string, run func(ctx context.Context) error) Service {
	return Service{name: name, run: run}
}

func (s Service) Serve(ctx context.Context) error { return s.run(ctx) }
func (s Service) String() string                  { return s.name }
