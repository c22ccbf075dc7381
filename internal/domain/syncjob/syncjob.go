package syncjob

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
)

type Kind string

const (
	KindInitial     Kind = "initial"
	KindIncremental Kind = "incremental"
)

func (k Kind) Valid() bool {
	return k == KindInitial || k == KindIncremental
}

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// StaleJobMessage is stored on jobs the reaper fails.
const StaleJobMessage = "job marked as failed due to timeout"

var (
	ErrJobNotFound       = errors.New("sync job not found")
	ErrJobTerminal       = errors.New("sync job already finished")
	ErrJobAlreadyRunning = errors.New("integration already has a running sync job")
	ErrInvalidKind       = errors.New("job kind must be initial or incremental")
	ErrInvalidOutcome    = errors.New("outcome must be completed or failed")
	ErrMessageRequired   = errors.New("error message is required for a failed job")
	ErrMessageNotAllowed = errors.New("error message is not allowed for a completed job")
	ErrNegativeDelta     = errors.New("progress deltas must not be negative")
	ErrInconsistentDelta = errors.New("processed must cover created, updated and skipped")
	ErrCounterOverflow   = errors.New("progress counters must fit in a 32-bit integer")
)

// MaxCounter is the largest value a counter column can hold.
const MaxCounter = math.MaxInt32

// Progress holds counter values, either a job's totals or an increment.
type Progress struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
}

// ValidateDelta checks an increment before it is applied.
func (p Progress) ValidateDelta() error {
	if p.Processed < 0 || p.Created < 0 || p.Updated < 0 || p.Skipped < 0 {
		return ErrNegativeDelta
	}
	if p.Processed > MaxCounter || p.Created > MaxCounter || p.Updated > MaxCounter || p.Skipped > MaxCounter {
		return ErrCounterOverflow
	}
	if int64(p.Processed) < int64(p.Created)+int64(p.Updated)+int64(p.Skipped) {
		return ErrInconsistentDelta
	}
	return nil
}

// fits reports whether every counter is within MaxCounter.
func (p Progress) fits() bool {
	return p.Processed <= MaxCounter && p.Created <= MaxCounter &&
		p.Updated <= MaxCounter && p.Skipped <= MaxCounter
}

func (p Progress) Add(d Progress) Progress {
	return Progress{
		Processed: p.Processed + d.Processed,
		Created:   p.Created + d.Created,
		Updated:   p.Updated + d.Updated,
		Skipped:   p.Skipped + d.Skipped,
	}
}

type SyncJob struct {
	ID            int64      `json:"id"`
	IntegrationID int64      `json:"integration_id"`
	Kind          Kind       `json:"job_type"`
	Status        Status     `json:"status"`
	Progress      Progress   `json:"progress"`
	ErrorMessage  *string    `json:"error_message"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at"`
}

// New returns a running job with zeroed counters.
func New(integrationID int64, kind Kind, now time.Time) (*SyncJob, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	return &SyncJob{
		IntegrationID: integrationID,
		Kind:          kind,
		Status:        StatusRunning,
		StartedAt:     now,
	}, nil
}

func (j *SyncJob) ApplyProgress(d Progress) error {
	if err := d.ValidateDelta(); err != nil {
		return err
	}
	if j.Status.Terminal() {
		return ErrJobTerminal
	}
	next := j.Progress.Add(d)
	if !next.fits() {
		return ErrCounterOverflow
	}
	j.Progress = next
	return nil
}

// Finish moves a running job to its terminal outcome and stamps CompletedAt.
func (j *SyncJob) Finish(outcome Status, message string, now time.Time) error {
	msg, err := ValidateOutcome(outcome, message)
	if err != nil {
		return err
	}
	if j.Status.Terminal() {
		return ErrJobTerminal
	}
	j.Status = outcome
	j.ErrorMessage = msg
	j.CompletedAt = &now
	return nil
}

// ValidateOutcome returns the message to store for the given outcome.
func ValidateOutcome(outcome Status, message string) (*string, error) {
	message = strings.TrimSpace(message)
	switch outcome {
	case StatusCompleted:
		if message != "" {
			return nil, ErrMessageNotAllowed
		}
		return nil, nil
	case StatusFailed:
		if message == "" {
			return nil, ErrMessageRequired
		}
		return &message, nil
	}
	return nil, ErrInvalidOutcome
}

type Repository interface {
	// Create inserts a running job. It fails with a conflict when the
	// integration already has one running, and with not found / conflict
	// when the integration is missing / inactive.
	Create(ctx context.Context, job *SyncJob) error
	// AddProgress atomically increments the counters of a running job.
	AddProgress(ctx context.Context, id int64, delta Progress) (*SyncJob, error)
	Finish(ctx context.Context, id int64, outcome Status, message *string) (*SyncJob, error)
	FindByID(ctx context.Context, id int64) (*SyncJob, error)
	ListRunning(ctx context.Context) ([]*SyncJob, error)
	ListByIntegration(ctx context.Context, integrationID int64, limit int) ([]*SyncJob, error)
	// MarkStaleAsFailed fails running jobs started before cutoff and returns them.
	MarkStaleAsFailed(ctx context.Context, cutoff time.Time, message string) ([]*SyncJob, error)
}
