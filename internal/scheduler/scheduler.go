package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/robfig/cron/v3"
)

// Trigger describes when a job fires.
type Trigger interface {
	// Spec renders the trigger as a cron spec.
	Spec() string
}

// Interval fires every N minutes.
type Interval struct {
	Minutes int
}

func (t Interval) Spec() string { return fmt.Sprintf("@every %dm", t.Minutes) }

// Daily fires once a day at the given hour (UTC).
type Daily struct {
	Hour int
}

func (t Daily) Spec() string { return fmt.Sprintf("0 %d * * *", t.Hour) }

// Job couples a name, a trigger and the function to run. The job list is
// fixed at startup; there is no dynamic registration.
type Job struct {
	Name    string
	Trigger Trigger
	Run     func(ctx context.Context) error
}

// Reporter delivers best-effort failure reports. Implementations must never
// fail loudly; the notifier's safe traceback variant satisfies this.
type Reporter interface {
	SendTracebackMessageSafe(message, code, level string)
}

// Scheduler runs the fixed job list on cron triggers. Job errors and panics
// are contained and reported; they never reach the timers, so one bad tick
// cannot disable future ones. Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron     *cron.Cron
	reporter Reporter
	jobs     []Job
}

// New creates a scheduler for the given jobs
func New(reporter Reporter, jobs ...Job) *Scheduler {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	return &Scheduler{
		cron:     c,
		reporter: reporter,
		jobs:     jobs,
	}
}

// Start registers every job with its trigger and begins the timers.
func (s *Scheduler) Start(ctx context.Context) error {
	for _, job := range s.jobs {
		job := job
		if _, err := s.cron.AddFunc(job.Trigger.Spec(), func() { s.runJob(ctx, job) }); err != nil {
			return fmt.Errorf("failed to register job %q: %w", job.Name, err)
		}
		slog.Info("Registered scheduled job", "job", job.Name, "spec", job.Trigger.Spec())
	}

	s.cron.Start()
	slog.Info("Scheduler started", "jobs", len(s.jobs))
	return nil
}

// Stop stops the timers and waits for in-flight jobs, honoring the context
// deadline.
func (s *Scheduler) Stop(ctx context.Context) {
	slog.Info("Stopping scheduler")

	done := s.cron.Stop()
	select {
	case <-done.Done():
		slog.Info("All scheduled jobs completed")
	case <-ctx.Done():
		slog.Warn("Timeout waiting for scheduled jobs to complete")
	}
}

// runJob executes one job with full failure containment.
func (s *Scheduler) runJob(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Scheduled job panicked", "job", job.Name, "panic", r)
			s.reporter.SendTracebackMessageSafe(
				fmt.Sprintf("Job %q panicked: %v", job.Name, r),
				string(debug.Stack()),
				"error",
			)
		}
	}()

	start := time.Now()
	slog.Info("Running scheduled job", "job", job.Name)

	if err := job.Run(ctx); err != nil {
		slog.Error("Scheduled job failed",
			"job", job.Name,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		s.reporter.SendTracebackMessageSafe(
			fmt.Sprintf("Job %q failed", job.Name),
			err.Error(),
			"error",
		)
		return
	}

	slog.Info("Scheduled job completed",
		"job", job.Name,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
