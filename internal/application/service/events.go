package service

import (
	"context"
	"time"

	"github.com/khoahotran/candidate-dashboard/internal/domain/syncjob"
)

type SyncEventType string

const (
	SyncEventStarted   SyncEventType = "started"
	SyncEventProgress  SyncEventType = "progress"
	SyncEventCompleted SyncEventType = "completed"
	SyncEventFailed    SyncEventType = "failed"
	SyncEventReaped    SyncEventType = "reaped"
)

// Terminal reports whether the event ends a job.
func (t SyncEventType) Terminal() bool {
	return t == SyncEventCompleted || t == SyncEventFailed || t == SyncEventReaped
}

type SyncJobEvent struct {
	EventID       string           `json:"event_id"`
	Type          SyncEventType    `json:"type"`
	JobID         int64            `json:"job_id"`
	IntegrationID int64            `json:"integration_id"`
	Kind          syncjob.Kind     `json:"job_type"`
	Status        syncjob.Status   `json:"status"`
	Progress      syncjob.Progress `json:"progress"`
	ErrorMessage  string           `json:"error_message,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

type SyncEventPublisher interface {
	Publish(ctx context.Context, event SyncJobEvent) error
}
