// Package job provides background job processing using Asynq.
//
// Asynq is a Redis-backed job queue. The only job is the periodic purge of
// expired rows from the postgres KV backend: a Scheduler enqueues the task
// on an interval and a Server runs it.
package job

import (
	"fmt"
	"time"

	"github.com/jbeeko/contacts-worker/internal/config"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// JobService holds the Asynq client (enqueue), scheduler (periodic enqueue)
// and server (worker execution).
type JobService struct {
	// Client is used to enqueue tasks into Redis.
	Client *asynq.Client

	scheduler *asynq.Scheduler
	server    *asynq.Server
	interval  time.Duration
	logger    *zerolog.Logger
}

// NewJobService creates a JobService configured to use Redis from cfg.
func NewJobService(logger *zerolog.Logger, cfg *config.Config) *JobService {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	client := asynq.NewClient(redisOpt)

	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Logger:   NewAsynqLogger(logger),
		Location: time.UTC,
	})

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: cfg.Job.Concurrency,
			Queues: map[string]int{
				QueueMaintenance: 1,
			},
			Logger: NewAsynqLogger(logger),
		},
	)

	return &JobService{
		Client:    client,
		scheduler: scheduler,
		server:    server,
		interval:  cfg.Job.PurgeInterval,
		logger:    logger,
	}
}

// Start registers the purge schedule and starts the worker server. Both
// run in the background; Start does not block.
func (j *JobService) Start(purger Purger) error {
	task, err := NewPurgeExpiredTask()
	if err != nil {
		return err
	}

	entryID, err := j.scheduler.Register(cronEvery(j.interval), task)
	if err != nil {
		return fmt.Errorf("failed to register purge schedule: %w", err)
	}

	mux := asynq.NewServeMux()
	mux.Handle(TaskPurgeExpired, NewPurgeHandler(purger, j.logger))

	j.logger.Info().
		Str("entry_id", entryID).
		Dur("interval", j.interval).
		Msg("Starting background job server")

	if err := j.server.Start(mux); err != nil {
		return err
	}

	if err := j.scheduler.Start(); err != nil {
		j.server.Shutdown()
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	return nil
}

// Stop shuts the scheduler and workers down and closes the client.
func (j *JobService) Stop() {
	j.logger.Info().Msg("Stopping background job server")
	j.scheduler.Shutdown()
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Warn().Err(err).Msg("failed to close job client")
	}
}

func cronEvery(d time.Duration) string {
	return "@every " + d.String()
}
