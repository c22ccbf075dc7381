package candidate

import (
	"context"

	"go.uber.org/zap"

	"github.com/khoahotran/candidate-dashboard/internal/application/service"
	"github.com/khoahotran/candidate-dashboard/internal/domain/candidate"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

type StatsUseCase struct {
	candidateRepo candidate.Repository
	cache         service.FilterCache
	logger        logger.Logger
}

func NewStatsUseCase(repo candidate.Repository, cache service.FilterCache, log logger.Logger) *StatsUseCase {
	return &StatsUseCase{candidateRepo: repo, cache: cache, logger: log}
}

func (uc *StatsUseCase) Execute(ctx context.Context) (candidate.Stats, error) {
	ctx, span := tracer.Start(ctx, "Stats.Execute")
	defer span.End()

	if uc.cache != nil {
		st, ok, err := uc.cache.GetStats(ctx)
		if err != nil {
			uc.logger.Warn("Stats cache read failed", zap.Error(err))
		} else if ok {
			return st, nil
		}
	}

	st, err := uc.candidateRepo.Stats(ctx)
	if err != nil {
		span.RecordError(err)
		return candidate.Stats{}, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetStats(ctx, st); err != nil {
			uc.logger.Warn("Stats cache write failed", zap.Error(err))
		}
	}
	return st, nil
}
