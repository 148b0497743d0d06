package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/orokiipay/orokiipay/internal/audit"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditRecord persists one permission decision off the request path.
	TaskAuditRecord = "audit:record"
	// TaskAuditPurge trims audit rows past the retention window.
	TaskAuditPurge = "audit:purge"
)

// AuditPurgePayload configures one retention sweep.
type AuditPurgePayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewAuditRecordTask constructs the task carrying one audit entry.
func NewAuditRecordTask(entry audit.Entry) (*asynq.Task, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditRecord, data), nil
}

// NewAuditPurgeTask constructs the retention sweep task.
func NewAuditPurgeTask(retentionDays int) (*asynq.Task, error) {
	data, err := json.Marshal(AuditPurgePayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPurge, data), nil
}
