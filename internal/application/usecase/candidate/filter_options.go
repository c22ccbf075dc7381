package candidate

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/khoahotran/candidate-dashboard/internal/application/service"
	"github.com/khoahotran/candidate-dashboard/internal/domain/candidate"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

var tracer = otel.Tracer("candidate_usecase")

// FilterOptionsUseCase serves the school and workplace vocabularies. They
// never depend on the caller's current filter selection.
type FilterOptionsUseCase struct {
	candidateRepo candidate.Repository
	cache         service.FilterCache
	logger        logger.Logger
}

// NewFilterOptionsUseCase accepts a nil cache; every call then hits the repository.
func NewFilterOptionsUseCase(repo candidate.Repository, cache service.FilterCache, log logger.Logger) *FilterOptionsUseCase {
	return &FilterOptionsUseCase{candidateRepo: repo, cache: cache, logger: log}
}

func (uc *FilterOptionsUseCase) Schools(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "FilterOptions.Schools")
	defer span.End()
	return uc.readThrough(ctx, service.VocabularySchools, uc.candidateRepo.DistinctSchools)
}

func (uc *FilterOptionsUseCase) Workplaces(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "FilterOptions.Workplaces")
	defer span.End()
	return uc.readThrough(ctx, service.VocabularyWorkplaces, uc.candidateRepo.DistinctWorkplaces)
}

func (uc *FilterOptionsUseCase) readThrough(ctx context.Context, name string, load func(context.Context) ([]string, error)) ([]string, error) {
	if uc.cache != nil {
		values, ok, err := uc.cache.GetVocabulary(ctx, name)
		if err != nil {
			uc.logger.Warn("Filter cache read failed", zap.String("vocabulary", name), zap.Error(err))
		} else if ok {
			return values, nil
		}
	}

	values, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetVocabulary(ctx, name, values); err != nil {
			uc.logger.Warn("Filter cache write failed", zap.String("vocabulary", name), zap.Error(err))
		}
	}
	return values, nil
}
