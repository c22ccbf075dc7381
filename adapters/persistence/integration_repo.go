package persistence

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/candidate-dashboard/internal/domain/integration"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

type postgresIntegrationRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresIntegrationRepo(db *pgxpool.Pool, logger logger.Logger) integration.Repository {
	return &postgresIntegrationRepo{db: db, logger: logger}
}

const integrationColumns = `id, api_key_encrypted, sync_token, last_sync_at, COALESCE(is_active, false), created_at, updated_at`

func scanIntegration(row pgx.Row, identifier string) (*integration.Integration, error) {
	in := &integration.Integration{}
	err := row.Scan(&in.ID, &in.APIKeyEncrypted, &in.SyncToken, &in.LastSyncAt, &in.IsActive, &in.CreatedAt, &in.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("integration", identifier)
		}
		return nil, apperror.NewStorage("failed to scan integration row", err)
	}
	return in, nil
}

func (r *postgresIntegrationRepo) ReplaceActive(ctx context.Context, in *integration.Integration) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`UPDATE ashby_integrations SET is_active = false, updated_at = now() WHERE is_active`,
		); err != nil {
			return apperror.NewStorage("failed to deactivate integrations", err)
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO ashby_integrations (api_key_encrypted, is_active)
			VALUES ($1, true)
			RETURNING `+integrationColumns, in.APIKeyEncrypted)
		saved, err := scanIntegration(row, "new")
		if err != nil {
			return err
		}
		*in = *saved
		return nil
	})
	return asStorage("failed to replace active integration", err)
}

func (r *postgresIntegrationRepo) FindByID(ctx context.Context, id int64) (*integration.Integration, error) {
	row := r.db.QueryRow(ctx, `SELECT `+integrationColumns+` FROM ashby_integrations WHERE id = $1`, id)
	return scanIntegration(row, strconv.FormatInt(id, 10))
}

func (r *postgresIntegrationRepo) FindActive(ctx context.Context) (*integration.Integration, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+integrationColumns+`
		FROM ashby_integrations
		WHERE is_active
		ORDER BY created_at DESC, id DESC
		LIMIT 1`)
	return scanIntegration(row, "active")
}

func (r *postgresIntegrationRepo) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE ashby_integrations SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return apperror.NewStorage("failed to deactivate integration", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("integration", strconv.FormatInt(id, 10))
	}
	return nil
}

func (r *postgresIntegrationRepo) UpdateSyncToken(ctx context.Context, id int64, token string, syncedAt time.Time) (*integration.Integration, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE ashby_integrations
		SET sync_token = $2, last_sync_at = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+integrationColumns, id, token, syncedAt)
	return scanIntegration(row, strconv.FormatInt(id, 10))
}
