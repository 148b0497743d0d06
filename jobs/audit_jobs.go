package jobs

import (
	"context"
	"encoding/json"
	"time"

	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/orokiipay/orokiipay/internal/audit"
)

// AuditJob handles queued audit work.
type AuditJob struct {
	service *audit.Service
	logger  *slog.Logger
}

// NewAuditJob builds the audit task handlers.
func NewAuditJob(service *audit.Service, logger *slog.Logger) *AuditJob {
	return &AuditJob{service: service, logger: logger}
}

// HandleRecord writes one queued permission decision. Returns the error
// so asynq retries transient store failures.
func (j *AuditJob) HandleRecord(ctx context.Context, t *asynq.Task) error {
	var entry audit.Entry
	if err := json.Unmarshal(t.Payload(), &entry); err != nil {
		return asynq.SkipRetry
	}
	return j.service.Write(ctx, entry)
}

// HandlePurge removes audit rows older than the configured retention.
func (j *AuditJob) HandlePurge(ctx context.Context, t *asynq.Task) error {
	var payload AuditPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RetentionDays <= 0 {
		return asynq.SkipRetry
	}
	removed, err := j.service.Purge(ctx, time.Duration(payload.RetentionDays)*24*time.Hour)
	if err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("audit purge complete",
			slog.Int("retention_days", payload.RetentionDays),
			slog.Int64("removed", removed))
	}
	return nil
}
