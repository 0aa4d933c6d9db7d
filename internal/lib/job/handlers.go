package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Purger deletes expired entries and reports how many went away.
// *kv.PostgresStore implements it.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// PurgeHandler processes TaskPurgeExpired.
type PurgeHandler struct {
	purger Purger
	logger *zerolog.Logger
}

func NewPurgeHandler(purger Purger, logger *zerolog.Logger) *PurgeHandler {
	return &PurgeHandler{purger: purger, logger: logger}
}

// ProcessTask implements asynq.Handler. Returning an error lets Asynq
// retry the task.
func (h *PurgeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	removed, err := h.purger.PurgeExpired(ctx)
	if err != nil {
		h.logger.Error().
			Str("type", t.Type()).
			Err(err).
			Msg("Failed to purge expired entries")
		return fmt.Errorf("purge expired entries: %w", err)
	}

	h.logger.Info().
		Str("type", t.Type()).
		Int64("removed", removed).
		Dur("duration", time.Since(start)).
		Msg("Purged expired entries")

	return nil
}

// asynqLogger routes Asynq's internal logs through zerolog.
type asynqLogger struct {
	logger zerolog.Logger
}

// NewAsynqLogger adapts a zerolog logger to asynq.Logger.
func NewAsynqLogger(logger *zerolog.Logger) asynq.Logger {
	return &asynqLogger{logger: logger.With().Str("component", "asynq").Logger()}
}

func (l *asynqLogger) Debug(args ...any) { l.logger.Debug().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Info(args ...any)  { l.logger.Info().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Warn(args ...any)  { l.logger.Warn().Msg(fmt.Sprint(args...)) }
func (l *asynqLogger) Error(args ...any) { l.logger.Error().Msg(fmt.Sprint(args...)) }

// Fatal logs at fatal level, which exits the process like Asynq expects.
func (l *asynqLogger) Fatal(args ...any) { l.logger.Fatal().Msg(fmt.Sprint(args...)) }
