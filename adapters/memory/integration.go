package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/khoahotran/candidate-dashboard/internal/domain/integration"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
)

type integrationRepository struct {
	mu           sync.RWMutex
	integrations map[int64]*integration.Integration
	nextID       int64
}

func newIntegrationRepository() *integrationRepository {
	return &integrationRepository{
		integrations: make(map[int64]*integration.Integration),
		nextID:       1,
	}
}

func copyIntegration(in *integration.Integration) *integration.Integration {
	cp := *in
	return &cp
}

func (r *integrationRepository) ReplaceActive(ctx context.Context, in *integration.Integration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, existing := range r.integrations {
		if existing.IsActive {
			existing.IsActive = false
			existing.UpdatedAt = now
		}
	}

	in.ID = r.nextID
	r.nextID++
	in.IsActive = true
	in.CreatedAt = now
	in.UpdatedAt = now
	r.integrations[in.ID] = copyIntegration(in)
	return nil
}

func (r *integrationRepository) FindByID(ctx context.Context, id int64) (*integration.Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	in, ok := r.integrations[id]
	if !ok {
		return nil, apperror.NewNotFound("integration", strconv.FormatInt(id, 10))
	}
	return copyIntegration(in), nil
}

func (r *integrationRepository) FindActive(ctx context.Context) (*integration.Integration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var newest *integration.Integration
	for _, in := range r.integrations {
		if !in.IsActive {
			continue
		}
		if newest == nil || in.CreatedAt.After(newest.CreatedAt) ||
			(in.CreatedAt.Equal(newest.CreatedAt) && in.ID > newest.ID) {
			newest = in
		}
	}
	if newest == nil {
		return nil, apperror.NewNotFound("integration", "active")
	}
	return copyIntegration(newest), nil
}

func (r *integrationRepository) Deactivate(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	in, ok := r.integrations[id]
	if !ok {
		return apperror.NewNotFound("integration", strconv.FormatInt(id, 10))
	}
	in.IsActive = false
	in.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *integrationRepository) UpdateSyncToken(ctx context.Context, id int64, token string, syncedAt time.Time) (*integration.Integration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	in, ok := r.integrations[id]
	if !ok {
		return nil, apperror.NewNotFound("integration", strconv.FormatInt(id, 10))
	}
	in.SyncToken = &token
	in.LastSyncAt = &syncedAt
	in.UpdatedAt = time.Now().UTC()
	return copyIntegration(in), nil
}

// activeState reports existence and activity without copying.
func (r *integrationRepository) activeState(id int64) (exists, active bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.integrations[id]
	if !ok {
		return false, false
	}
	return true, in.IsActive
}
