package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/fleetsight/fleetsight/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAccessRefresh re-warms the permission and role-override
	// caches so interactive requests stay inside the freshness window.
	TaskTypeAccessRefresh = "access:refresh"
)

// AccessRefreshPayload is currently empty; the task refreshes everything.
type AccessRefreshPayload struct{}

// AccessWarmer is the slice of the permission service the refresh task
// needs.
type AccessWarmer interface {
	WarmCaches(ctx context.Context) error
}

// NewAccessRefreshTask constructs an Asynq task.
func NewAccessRefreshTask() (*asynq.Task, error) {
	data, err := json.Marshal(AccessRefreshPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAccessRefresh, data), nil
}

// NewAccessRefreshHandler returns the handler for TaskTypeAccessRefresh.
func NewAccessRefreshHandler(warmer AccessWarmer, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskTypeAccessRefresh)
		var payload AccessRefreshPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return tracker.End(asynq.SkipRetry)
		}
		if err := warmer.WarmCaches(ctx); err != nil {
			logger.Warn("access cache refresh failed", slog.Any("error", err))
			return tracker.End(err)
		}
		logger.Info("access caches refreshed")
		return tracker.End(nil)
	}
}
