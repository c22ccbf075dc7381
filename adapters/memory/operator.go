package memory

import (
	"context"
	"sync"

	"github.com/khoahotran/candidate-dashboard/internal/domain/operator"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
)

type operatorRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*operator.Operator
}

func newOperatorRepository() *operatorRepository {
	return &operatorRepository{byEmail: make(map[string]*operator.Operator)}
}

func (r *operatorRepository) FindByEmail(ctx context.Context, email string) (*operator.Operator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	op, ok := r.byEmail[email]
	if !ok {
		return nil, apperror.NewNotFound("operator", email)
	}
	cp := *op
	return &cp, nil
}

func (r *operatorRepository) Upsert(ctx context.Context, op *operator.Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byEmail[op.Email]; ok {
		op.ID = existing.ID
		op.CreatedAt = existing.CreatedAt
	}
	cp := *op
	r.byEmail[op.Email] = &cp
	return nil
}
