package operator

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Operator is an admin account allowed to manage integrations and sync jobs.
type Operator struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Operator, error)
	Upsert(ctx context.Context, op *Operator) error
}
