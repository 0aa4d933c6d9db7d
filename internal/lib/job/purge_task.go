package job

import (
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TaskPurgeExpired removes expired kv_entries rows.
	TaskPurgeExpired = "kv:purge_expired"

	// QueueMaintenance holds housekeeping tasks.
	QueueMaintenance = "maintenance"
)

// NewPurgeExpiredTask builds the purge task. It carries no payload; a
// missed run is harmless since expired rows are already invisible to reads.
func NewPurgeExpiredTask() (*asynq.Task, error) {
	return asynq.NewTask(TaskPurgeExpired, nil,
		asynq.MaxRetry(1),
		asynq.Queue(QueueMaintenance),
		asynq.Timeout(time.Minute),
		asynq.Unique(time.Minute),
	), nil
}
