package persistence

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/candidate-dashboard/internal/domain/integration"
	"github.com/khoahotran/candidate-dashboard/internal/domain/syncjob"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

type postgresSyncJobRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresSyncJobRepo(db *pgxpool.Pool, logger logger.Logger) syncjob.Repository {
	return &postgresSyncJobRepo{db: db, logger: logger}
}

const syncJobColumns = `
	id, COALESCE(integration_id, 0), COALESCE(job_type, ''), COALESCE(status, 'running'),
	COALESCE(candidates_processed, 0), COALESCE(candidates_created, 0),
	COALESCE(candidates_updated, 0), COALESCE(candidates_skipped, 0),
	error_message, COALESCE(started_at, to_timestamp(0)::timestamp), completed_at`

func scanSyncJob(row pgx.Row) (*syncjob.SyncJob, error) {
	j := &syncjob.SyncJob{}
	var kind, status string
	err := row.Scan(
		&j.ID, &j.IntegrationID, &kind, &status,
		&j.Progress.Processed, &j.Progress.Created, &j.Progress.Updated, &j.Progress.Skipped,
		&j.ErrorMessage, &j.StartedAt, &j.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	j.Kind = syncjob.Kind(kind)
	j.Status = syncjob.Status(status)
	return j, nil
}

func scanSyncJobs(rows pgx.Rows) ([]*syncjob.SyncJob, error) {
	defer rows.Close()
	jobs := make([]*syncjob.SyncJob, 0)
	for rows.Next() {
		j, err := scanSyncJob(rows)
		if err != nil {
			return nil, apperror.NewStorage("failed to scan sync job row", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewStorage("error iterating sync job rows", err)
	}
	return jobs, nil
}

// Create locks the integration row so concurrent starts for the same
// integration run one after another. The partial unique index on running
// jobs backs this up.
func (r *postgresSyncJobRepo) Create(ctx context.Context, job *syncjob.SyncJob) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var active bool
		err := tx.QueryRow(ctx,
			`SELECT COALESCE(is_active, false) FROM ashby_integrations WHERE id = $1 FOR UPDATE`,
			job.IntegrationID,
		).Scan(&active)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperror.NewNotFound("integration", strconv.FormatInt(job.IntegrationID, 10))
			}
			return apperror.NewStorage("failed to lock integration", err)
		}
		if !active {
			return apperror.NewConflict("integration", integration.ErrIntegrationInactive.Error())
		}

		var running bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM ashby_sync_jobs WHERE integration_id = $1 AND status = 'running')`,
			job.IntegrationID,
		).Scan(&running); err != nil {
			return apperror.NewStorage("failed to check running jobs", err)
		}
		if running {
			return apperror.NewConflict("sync job", syncjob.ErrJobAlreadyRunning.Error())
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO ashby_sync_jobs (integration_id, job_type, status, started_at)
			VALUES ($1, $2, 'running', $3)
			RETURNING id`,
			job.IntegrationID, string(job.Kind), job.StartedAt,
		).Scan(&job.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return apperror.NewConflict("sync job", syncjob.ErrJobAlreadyRunning.Error())
			}
			return apperror.NewStorage("failed to insert sync job", err)
		}
		return nil
	})
	return asStorage("failed to start sync job", err)
}

// terminalOrMissing explains why a guarded update touched no row.
func (r *postgresSyncJobRepo) terminalOrMissing(ctx context.Context, id int64) error {
	var status string
	err := r.db.QueryRow(ctx, `SELECT COALESCE(status, '') FROM ashby_sync_jobs WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperror.NewNotFound("sync job", strconv.FormatInt(id, 10))
		}
		return apperror.NewStorage("failed to query sync job", err)
	}
	return apperror.NewConflict("sync job", syncjob.ErrJobTerminal.Error())
}

func (r *postgresSyncJobRepo) AddProgress(ctx context.Context, id int64, delta syncjob.Progress) (*syncjob.SyncJob, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE ashby_sync_jobs SET
			candidates_processed = COALESCE(candidates_processed, 0) + $2,
			candidates_created   = COALESCE(candidates_created, 0) + $3,
			candidates_updated   = COALESCE(candidates_updated, 0) + $4,
			candidates_skipped   = COALESCE(candidates_skipped, 0) + $5
		WHERE id = $1 AND status = 'running'
		RETURNING `+syncJobColumns,
		id, delta.Processed, delta.Created, delta.Updated, delta.Skipped)

	j, err := scanSyncJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.terminalOrMissing(ctx, id)
		}
		if isOutOfRange(err) {
			return nil, apperror.NewValidation(syncjob.ErrCounterOverflow.Error(), err)
		}
		return nil, apperror.NewStorage("failed to record sync job progress", err)
	}
	return j, nil
}

func (r *postgresSyncJobRepo) Finish(ctx context.Context, id int64, outcome syncjob.Status, message *string) (*syncjob.SyncJob, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE ashby_sync_jobs
		SET status = $2, error_message = $3, completed_at = (now() AT TIME ZONE 'UTC')
		WHERE id = $1 AND status = 'running'
		RETURNING `+syncJobColumns,
		id, string(outcome), message)

	j, err := scanSyncJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.terminalOrMissing(ctx, id)
		}
		return nil, apperror.NewStorage("failed to finish sync job", err)
	}
	return j, nil
}

func (r *postgresSyncJobRepo) FindByID(ctx context.Context, id int64) (*syncjob.SyncJob, error) {
	j, err := scanSyncJob(r.db.QueryRow(ctx, `SELECT `+syncJobColumns+` FROM ashby_sync_jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("sync job", strconv.FormatInt(id, 10))
		}
		return nil, apperror.NewStorage("failed to query sync job", err)
	}
	return j, nil
}

func (r *postgresSyncJobRepo) ListRunning(ctx context.Context) ([]*syncjob.SyncJob, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+syncJobColumns+`
		FROM ashby_sync_jobs
		WHERE status = 'running'
		ORDER BY started_at DESC, id DESC`)
	if err != nil {
		return nil, apperror.NewStorage("failed to query running sync jobs", err)
	}
	return scanSyncJobs(rows)
}

func (r *postgresSyncJobRepo) ListByIntegration(ctx context.Context, integrationID int64, limit int) ([]*syncjob.SyncJob, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+syncJobColumns+`
		FROM ashby_sync_jobs
		WHERE integration_id = $1
		ORDER BY started_at DESC, id DESC
		LIMIT $2`, integrationID, limit)
	if err != nil {
		return nil, apperror.NewStorage("failed to query sync jobs", err)
	}
	return scanSyncJobs(rows)
}

func (r *postgresSyncJobRepo) MarkStaleAsFailed(ctx context.Context, cutoff time.Time, message string) ([]*syncjob.SyncJob, error) {
	rows, err := r.db.Query(ctx, `
		UPDATE ashby_sync_jobs
		SET status = 'failed', error_message = $2, completed_at = (now() AT TIME ZONE 'UTC')
		WHERE status = 'running' AND started_at < $1
		RETURNING `+syncJobColumns, cutoff, message)
	if err != nil {
		return nil, apperror.NewStorage("failed to mark stale sync jobs", err)
	}
	return scanSyncJobs(rows)
}
