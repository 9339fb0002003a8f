package job

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"coinpulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func TestCollectorJobRunsAtLeastOnce(t *testing.T) {
	var calls int32
	runner := &collectRunnerTestStub{calls: &calls}
	job := NewCollectorJob(trace.NewNoopTracerProvider().Tracer("test"), runner, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	if atomic.LoadInt32(&calls) == 0 {
		t.Fatal("expected at least one collection run")
	}
}

func TestCollectorJobDisabledWithoutRunner(t *testing.T) {
	job := NewCollectorJob(trace.NewNoopTracerProvider().Tracer("test"), nil, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop after cancellation")
	}
}

type collectRunnerTestStub struct {
	calls *int32
}

func (s *collectRunnerTestStub) RunCycle(ctx context.Context, now time.Time) (domain.CollectRunResult, error) {
	atomic.AddInt32(s.calls, 1)
	return domain.CollectRunResult{}, nil
}
