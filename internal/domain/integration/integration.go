package integration

import (
	"context"
	"errors"
	"time"
)

// Integration is a stored Ashby credential plus its incremental sync cursor.
type Integration struct {
	ID              int64      `json:"id"`
	APIKeyEncrypted string     `json:"-"`
	SyncToken       *string    `json:"sync_token"`
	LastSyncAt      *time.Time `json:"last_sync_at"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

var (
	ErrIntegrationNotFound = errors.New("integration not found")
	ErrIntegrationInactive = errors.New("integration is not active")
)

type Repository interface {
	// ReplaceActive deactivates every integration and stores the new one as
	// the only active integration.
	ReplaceActive(ctx context.Context, in *Integration) error
	FindByID(ctx context.Context, id int64) (*Integration, error)
	// FindActive returns the newest active integration.
	FindActive(ctx context.Context) (*Integration, error)
	Deactivate(ctx context.Context, id int64) error
	UpdateSyncToken(ctx context.Context, id int64, token string, syncedAt time.Time) (*Integration, error)
}
