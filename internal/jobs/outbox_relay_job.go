package jobs

import (
	"context"
	"log/slog"

	"trackit/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// OutboxRelayer is satisfied by *commands.RelayOutboxCommandHandler.
type OutboxRelayer interface {
	Handle(ctx context.Context, cmd commands.RelayOutboxCommand) (commands.RelayOutboxResult, error)
}

// OutboxRelayJob drains the outbox on a schedule, every second by default.
// Runs never overlap: a tick that fires while the previous run is still
// publishing is skipped.
type OutboxRelayJob struct {
	relayer   OutboxRelayer
	batchSize int
	schedule  string
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewOutboxRelayJob creates a relay job. schedule is a six-field cron
// expression; an empty schedule means every second.
func NewOutboxRelayJob(relayer OutboxRelayer, batchSize int, schedule string, logger *slog.Logger) *OutboxRelayJob {
	if schedule == "" {
		schedule = EverySecond
	}
	logger = logger.With("component", "outbox_relay_job")

	return &OutboxRelayJob{
		relayer:   relayer,
		batchSize: batchSize,
		schedule:  schedule,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		logger: logger,
	}
}

// Start schedules the job.
func (j *OutboxRelayJob) Start() error {
	cmd, err := commands.NewRelayOutboxCommand(j.batchSize)
	if err != nil {
		return err
	}

	_, err = j.cron.AddFunc(j.schedule, func() {
		j.RunOnce(context.Background(), cmd)
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Outbox relay job started", "schedule", j.schedule, "batch_size", j.batchSize)
	return nil
}

// RunOnce performs one relay pass.
func (j *OutboxRelayJob) RunOnce(ctx context.Context, cmd commands.RelayOutboxCommand) {
	res, err := j.relayer.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Outbox relay job failed", "error", err)
		return
	}
	if res.Failed > 0 {
		j.logger.WarnContext(ctx, "Outbox relay left events pending", "published", res.Published, "failed", res.Failed)
	}
}

// Stop stops scheduling and waits for a running pass to finish.
func (j *OutboxRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Outbox relay job stopped")
}
