package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/pim-console/pkg/logger"
	"github.com/angelmondragon/pim-console/pkg/metrics"
)

func TestNewServiceRequiresLogger(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatalf("expected error without logger")
	}
}

func TestRunJobRecordsFailuresAndKeepsGoing(t *testing.T) {
	service, err := NewService(ServiceParams{
		Logger:  logger.Nop(),
		Metrics: metrics.NewJobMetrics(prometheus.NewRegistry()),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	var runs int32
	job := FuncJob("fail", func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return errors.New("boom")
	})
	service.runJob(context.Background(), job)
	service.runJob(context.Background(), job)
	if got := atomic.LoadInt32(&runs); got != 2 {
		t.Fatalf("expected 2 runs, got %d", got)
	}
}

func TestRunTicksUntilCanceled(t *testing.T) {
	registry := NewRegistry()
	var runs int32
	registry.Register(FuncJob("tick", func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}), 5*time.Millisecond)

	service, err := NewService(ServiceParams{Logger: logger.Nop(), Registry: registry})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- service.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&runs) < 2 {
		select {
		case <-deadline:
			t.Fatalf("job did not run twice")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("service did not stop")
	}
}
