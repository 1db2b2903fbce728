package app

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/handmade-market/internal/config"
)

type stubService struct {
	name     string
	startErr error
	block    bool
	stopped  atomic.Bool
}

func (s *stubService) Name() string { return s.name }

func (s *stubService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *stubService) Stop(_ context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllServicesOnFailure(t *testing.T) {
	failing := &stubService{name: "failing", startErr: errors.New("boom")}
	blocking := &stubService{name: "blocking", block: true}

	err := NewRunner(failing, blocking).Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("expected start error, got %v", err)
	}
	if !failing.stopped.Load() || !blocking.stopped.Load() {
		t.Fatalf("all services should be stopped")
	}
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	blocking := &stubService{name: "blocking", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	if err := NewRunner(blocking).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("expected nil on cancel, got %v", err)
	}
	if !blocking.stopped.Load() {
		t.Fatalf("service should be stopped")
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected error without services")
	}
	if err := RunWithOptions(nil, Options{}); err == nil {
		t.Fatalf("expected error for nil runner")
	}
}

func TestBuildRunnerRejectsBadInput(t *testing.T) {
	if _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := BuildRunner(&config.Config{}, "cron"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestNormalizeOptionsDefaults(t *testing.T) {
	opts := normalizeOptions(Options{})
	if opts.Mode != ModeAll {
		t.Fatalf("expected default mode all, got %s", opts.Mode)
	}
	if opts.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected shutdown timeout: %s", opts.ShutdownTimeout)
	}
	if opts.Logger == nil {
		t.Fatalf("logger should default")
	}
}

type panicService struct{ stubService }

func (s *panicService) Start(context.Context) error { panic("kiln overheated") }

func TestRunnerRecoversServicePanic(t *testing.T) {
	blocking := &stubService{name: "blocking", block: true}
	crashing := &panicService{stubService{name: "crashing"}}

	err := NewRunner(blocking, crashing).Run(context.Background(), time.Second, nil)
	if err == nil || !strings.Contains(err.Error(), "crashing") {
		t.Fatalf("expected panic converted to error, got %v", err)
	}
	if !blocking.stopped.Load() || !crashing.stopped.Load() {
		t.Fatalf("all services should be stopped after panic")
	}
}
