package persistence

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/candidate-dashboard/internal/domain/operator"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
)

type postgresOperatorRepo struct {
	db *pgxpool.Pool
}

func NewPostgresOperatorRepo(db *pgxpool.Pool) operator.Repository {
	return &postgresOperatorRepo{db: db}
}

func (r *postgresOperatorRepo) FindByEmail(ctx context.Context, email string) (*operator.Operator, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM operators
		WHERE email = $1
	`
	op := &operator.Operator{}
	err := r.db.QueryRow(ctx, query, email).Scan(&op.ID, &op.Email, &op.PasswordHash, &op.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("operator", email)
		}
		return nil, apperror.NewStorage("failed to query operator", err)
	}
	return op, nil
}

func (r *postgresOperatorRepo) Upsert(ctx context.Context, op *operator.Operator) error {
	query := `
		INSERT INTO operators (id, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING id, created_at
	`
	if err := r.db.QueryRow(ctx, query, op.ID, op.Email, op.PasswordHash).Scan(&op.ID, &op.CreatedAt); err != nil {
		return apperror.NewStorage("failed to upsert operator", err)
	}
	return nil
}
