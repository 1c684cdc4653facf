// Package jobs provides scheduled background tasks for the tracking service.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. OutboxRelayJob - Runs every second to publish committed lifecycle events,
// record delivery history and refresh the advisor cache
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	relay := jobs.NewOutboxRelayJob(relayHandler, commands.DefaultRelayBatchSize, jobs.EverySecond, logger)
//	jobManager := jobs.NewJobManager(relay)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - A relay pass that cannot read the outbox is logged and retried on the next tick
// - Events that fail to publish stay pending; the pass logs how many
// - Failed job starts will stop any already running jobs
package jobs
