package memory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/khoahotran/candidate-dashboard/internal/domain/integration"
	"github.com/khoahotran/candidate-dashboard/internal/domain/syncjob"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
)

type syncJobRepository struct {
	mu           sync.Mutex
	jobs         map[int64]*syncjob.SyncJob
	nextID       int64
	integrations *integrationRepository
}

func newSyncJobRepository(integrations *integrationRepository) *syncJobRepository {
	return &syncJobRepository{
		jobs:         make(map[int64]*syncjob.SyncJob),
		nextID:       1,
		integrations: integrations,
	}
}

func copyJob(j *syncjob.SyncJob) *syncjob.SyncJob {
	cp := *j
	if j.ErrorMessage != nil {
		msg := *j.ErrorMessage
		cp.ErrorMessage = &msg
	}
	if j.CompletedAt != nil {
		at := *j.CompletedAt
		cp.CompletedAt = &at
	}
	return &cp
}

func (r *syncJobRepository) Create(ctx context.Context, job *syncjob.SyncJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	exists, active := r.integrations.activeState(job.IntegrationID)
	if !exists {
		return apperror.NewNotFound("integration", strconv.FormatInt(job.IntegrationID, 10))
	}
	if !active {
		return apperror.NewConflict("integration", integration.ErrIntegrationInactive.Error())
	}
	for _, j := range r.jobs {
		if j.IntegrationID == job.IntegrationID && j.Status == syncjob.StatusRunning {
			return apperror.NewConflict("sync job", syncjob.ErrJobAlreadyRunning.Error())
		}
	}

	job.ID = r.nextID
	r.nextID++
	r.jobs[job.ID] = copyJob(job)
	return nil
}

func (r *syncJobRepository) get(id int64) (*syncjob.SyncJob, error) {
	j, ok := r.jobs[id]
	if !ok {
		return nil, apperror.NewNotFound("sync job", strconv.FormatInt(id, 10))
	}
	return j, nil
}

func (r *syncJobRepository) AddProgress(ctx context.Context, id int64, delta syncjob.Progress) (*syncjob.SyncJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, err := r.get(id)
	if err != nil {
		return nil, err
	}
	if err := j.ApplyProgress(delta); err != nil {
		return nil, transitionError(err)
	}
	return copyJob(j), nil
}

func (r *syncJobRepository) Finish(ctx context.Context, id int64, outcome syncjob.Status, message *string) (*syncjob.SyncJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, err := r.get(id)
	if err != nil {
		return nil, err
	}
	var msg string
	if message != nil {
		msg = *message
	}
	if err := j.Finish(outcome, msg, time.Now().UTC()); err != nil {
		return nil, transitionError(err)
	}
	return copyJob(j), nil
}

func transitionError(err error) error {
	if errors.Is(err, syncjob.ErrJobTerminal) {
		return apperror.NewConflict("sync job", err.Error())
	}
	return apperror.NewValidation(err.Error(), err)
}

func (r *syncJobRepository) FindByID(ctx context.Context, id int64) (*syncjob.SyncJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return copyJob(j), nil
}

func (r *syncJobRepository) collect(keep func(*syncjob.SyncJob) bool) []*syncjob.SyncJob {
	out := make([]*syncjob.SyncJob, 0)
	for _, j := range r.jobs {
		if keep(j) {
			out = append(out, copyJob(j))
		}
	}
	slices.SortFunc(out, func(a, b *syncjob.SyncJob) int {
		return cmp.Or(b.StartedAt.Compare(a.StartedAt), cmp.Compare(b.ID, a.ID))
	})
	return out
}

func (r *syncJobRepository) ListRunning(ctx context.Context) ([]*syncjob.SyncJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect(func(j *syncjob.SyncJob) bool { return j.Status == syncjob.StatusRunning }), nil
}

func (r *syncJobRepository) ListByIntegration(ctx context.Context, integrationID int64, limit int) ([]*syncjob.SyncJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.collect(func(j *syncjob.SyncJob) bool { return j.IntegrationID == integrationID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *syncJobRepository) MarkStaleAsFailed(ctx context.Context, cutoff time.Time, message string) ([]*syncjob.SyncJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	reaped := make([]*syncjob.SyncJob, 0)
	for _, j := range r.jobs {
		if j.Status != syncjob.StatusRunning || !j.StartedAt.Before(cutoff) {
			continue
		}
		msg := message
		j.Status = syncjob.StatusFailed
		j.ErrorMessage = &msg
		j.CompletedAt = &now
		reaped = append(reaped, copyJob(j))
	}
	slices.SortFunc(reaped, func(a, b *syncjob.SyncJob) int { return cmp.Compare(a.ID, b.ID) })
	return reaped, nil
}
