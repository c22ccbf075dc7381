package synctracker

import (
	"context"

	"go.uber.org/zap"

	"github.com/khoahotran/candidate-dashboard/internal/application/service"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

// ProcessSyncEventUseCase runs on the worker. A finished sync may have added
// schools, workplaces and profiles, so cached vocabularies and stats are dropped.
type ProcessSyncEventUseCase struct {
	cache  service.FilterCache
	logger logger.Logger
}

func NewProcessSyncEventUseCase(cache service.FilterCache, log logger.Logger) *ProcessSyncEventUseCase {
	return &ProcessSyncEventUseCase{cache: cache, logger: log}
}

// Execute reports whether the cache was invalidated.
func (uc *ProcessSyncEventUseCase) Execute(ctx context.Context, ev service.SyncJobEvent) (bool, error) {
	if !ev.Type.Terminal() {
		return false, nil
	}
	if err := uc.cache.Invalidate(ctx); err != nil {
		return false, err
	}
	uc.logger.Info("Filter cache invalidated",
		zap.Int64(logger.FieldJobID, ev.JobID),
		zap.String(logger.FieldEvent, string(ev.Type)),
	)
	return true, nil
}
