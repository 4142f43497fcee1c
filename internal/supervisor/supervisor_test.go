package supervisor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestServiceServeDelegatesToRunFunc(t *testing.T) {
	called := make(chan struct{}, 1)
	svc := NewService("probe", func(ctx context.Context) error {
		called <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	})

	require.Equal(t, "probe", svc.String())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("run func was never invoked")
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestNewSupervisorRunsAndStopsRegisteredService(t *testing.T) {
	sup := New(nil)

	ran := make(chan struct{}, 1)
	failing := errors.New("boom")
	attempts := 0
	sup.Add(NewService("flaky", func(ctx context.Context) error {
		attempts++
		ran <- struct{}{}
		if attempts == 1 {
			return failing
		}
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	supDone := make(chan error, 1)
	go func() { supDone <- sup.Serve(ctx) }()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("service never ran")
	}

	cancel()
	select {
	case <-supDone:
	case <-time.After(3 * time.Second):
		t.Fatal("supervisor did not stop in time")
	}
}
