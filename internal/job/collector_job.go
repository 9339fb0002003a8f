package job

import (
	"context"
	"log"
	"time"

	"coinpulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type CollectRunner interface {
	RunCycle(ctx context.Context, now time.Time) (domain.CollectRunResult, error)
}

// CollectorJob drives the metric collection cycle on a fixed interval.
// One cycle runs immediately on start so a fresh deployment has data
// before the first tick.
type CollectorJob struct {
	tracer       trace.Tracer
	runner       CollectRunner
	pollInterval time.Duration
}

func NewCollectorJob(tracer trace.Tracer, runner CollectRunner, pollInterval time.Duration) *CollectorJob {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Minute
	}
	return &CollectorJob{tracer: tracer, runner: runner, pollInterval: pollInterval}
}

func (j *CollectorJob) Start(ctx context.Context) {
	if j.runner == nil {
		log.Println("Collector job disabled: no runner")
		<-ctx.Done()
		return
	}

	j.runOnce(ctx)
	ticker := time.NewTicker(j.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *CollectorJob) runOnce(ctx context.Context) {
	_, span := j.tracer.Start(ctx, "collector-job.run-once")
	defer span.End()

	result, err := j.runner.RunCycle(ctx, time.Now())
	if err != nil {
		log.Printf("Collection cycle error: %v", err)
		return
	}
	log.Printf(
		"Collection cycle complete assets=%d records=%d scores=%d source_failures=%d warnings=%d",
		result.AssetsProcessed,
		result.RecordsWritten,
		result.ScoresWritten,
		result.SourceFailures,
		len(result.Errors),
	)
}
