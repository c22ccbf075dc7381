package synctracker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/candidate-dashboard/internal/application/service"
	"github.com/khoahotran/candidate-dashboard/internal/domain/syncjob"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

var tracer = otel.Tracer("synctracker_usecase")

const defaultHistoryLimit = 20

// Tracker records the lifecycle of sync jobs run by the external importer.
// Every mutation of a finished job is rejected with a conflict.
type Tracker struct {
	jobRepo   syncjob.Repository
	publisher service.SyncEventPublisher
	logger    logger.Logger
	now       func() time.Time
}

// NewTracker accepts a nil publisher; events are then dropped.
func NewTracker(repo syncjob.Repository, publisher service.SyncEventPublisher, log logger.Logger) *Tracker {
	return &Tracker{
		jobRepo:   repo,
		publisher: publisher,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (t *Tracker) Start(ctx context.Context, integrationID int64, kind syncjob.Kind) (*syncjob.SyncJob, error) {
	ctx, span := tracer.Start(ctx, "Tracker.Start")
	defer span.End()
	span.SetAttributes(attribute.Int64(logger.FieldIntegrationID, integrationID), attribute.String("job_type", string(kind)))

	job, err := syncjob.New(integrationID, kind, t.now())
	if err != nil {
		err = toValidation(err)
		span.RecordError(err)
		return nil, err
	}

	if err := t.jobRepo.Create(ctx, job); err != nil {
		span.RecordError(err)
		return nil, err
	}

	t.logger.Info("Sync job started",
		zap.Int64(logger.FieldJobID, job.ID),
		zap.Int64(logger.FieldIntegrationID, integrationID),
		zap.String("job_type", string(kind)),
	)
	t.publish(ctx, service.SyncEventStarted, job)
	return job, nil
}

func (t *Tracker) RecordProgress(ctx context.Context, jobID int64, delta syncjob.Progress) (*syncjob.SyncJob, error) {
	ctx, span := tracer.Start(ctx, "Tracker.RecordProgress")
	defer span.End()
	span.SetAttributes(attribute.Int64(logger.FieldJobID, jobID))

	if err := delta.ValidateDelta(); err != nil {
		err = toValidation(err)
		span.RecordError(err)
		return nil, err
	}

	job, err := t.jobRepo.AddProgress(ctx, jobID, delta)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	t.logger.Debug("Sync job progress",
		zap.Int64(logger.FieldJobID, jobID),
		zap.Int("processed", job.Progress.Processed),
	)
	t.publish(ctx, service.SyncEventProgress, job)
	return job, nil
}

// Finish moves the job to completed or failed. A failed outcome needs a
// message; a completed one must not carry one.
func (t *Tracker) Finish(ctx context.Context, jobID int64, outcome syncjob.Status, message string) (*syncjob.SyncJob, error) {
	ctx, span := tracer.Start(ctx, "Tracker.Finish")
	defer span.End()
	span.SetAttributes(attribute.Int64(logger.FieldJobID, jobID), attribute.String(logger.FieldStatus, string(outcome)))

	msg, err := syncjob.ValidateOutcome(outcome, message)
	if err != nil {
		err = toValidation(err)
		span.RecordError(err)
		return nil, err
	}

	job, err := t.jobRepo.Finish(ctx, jobID, outcome, msg)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	fields := []zap.Field{
		zap.Int64(logger.FieldJobID, jobID),
		zap.String(logger.FieldStatus, string(job.Status)),
		zap.Int("processed", job.Progress.Processed),
	}
	if job.Status == syncjob.StatusFailed {
		t.logger.Warn("Sync job failed", append(fields, zap.String("error_message", *job.ErrorMessage))...)
		t.publish(ctx, service.SyncEventFailed, job)
	} else {
		t.logger.Info("Sync job completed", fields...)
		t.publish(ctx, service.SyncEventCompleted, job)
	}
	return job, nil
}

func (t *Tracker) Get(ctx context.Context, jobID int64) (*syncjob.SyncJob, error) {
	return t.jobRepo.FindByID(ctx, jobID)
}

func (t *Tracker) ListRunning(ctx context.Context) ([]*syncjob.SyncJob, error) {
	return t.jobRepo.ListRunning(ctx)
}

// ListByIntegration returns the newest jobs first; limit <= 0 means 20.
func (t *Tracker) ListByIntegration(ctx context.Context, integrationID int64, limit int) ([]*syncjob.SyncJob, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return t.jobRepo.ListByIntegration(ctx, integrationID, limit)
}

// MarkStaleAsFailed fails every running job started more than maxAge ago.
func (t *Tracker) MarkStaleAsFailed(ctx context.Context, maxAge time.Duration) ([]*syncjob.SyncJob, error) {
	ctx, span := tracer.Start(ctx, "Tracker.MarkStaleAsFailed")
	defer span.End()

	if maxAge <= 0 {
		err := apperror.NewValidation("max age must be positive", nil)
		span.RecordError(err)
		return nil, err
	}

	reaped, err := t.jobRepo.MarkStaleAsFailed(ctx, t.now().Add(-maxAge), syncjob.StaleJobMessage)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	for _, job := range reaped {
		t.logger.Warn("Sync job marked as failed after timeout",
			zap.Int64(logger.FieldJobID, job.ID),
			zap.Time("started_at", job.StartedAt),
		)
		t.publish(ctx, service.SyncEventReaped, job)
	}
	span.SetAttributes(attribute.Int(logger.FieldCount, len(reaped)))
	return reaped, nil
}

func (t *Tracker) publish(ctx context.Context, typ service.SyncEventType, job *syncjob.SyncJob) {
	if t.publisher == nil {
		return
	}
	ev := service.SyncJobEvent{
		EventID:       uuid.NewString(),
		Type:          typ,
		JobID:         job.ID,
		IntegrationID: job.IntegrationID,
		Kind:          job.Kind,
		Status:        job.Status,
		Progress:      job.Progress,
		OccurredAt:    t.now(),
	}
	if job.ErrorMessage != nil {
		ev.ErrorMessage = *job.ErrorMessage
	}
	if err := t.publisher.Publish(ctx, ev); err != nil {
		t.logger.Error("Failed to publish sync job event", err,
			zap.Int64(logger.FieldJobID, job.ID),
			zap.String(logger.FieldEvent, string(typ)),
		)
	}
}

func toValidation(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.NewValidation(err.Error(), err)
}
