package candidate

import (
	"context"

	"github.com/khoahotran/candidate-dashboard/internal/domain/candidate"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

type ListProfilesUseCase struct {
	candidateRepo candidate.Repository
	logger        logger.Logger
}

func NewListProfilesUseCase(repo candidate.Repository, log logger.Logger) *ListProfilesUseCase {
	return &ListProfilesUseCase{candidateRepo: repo, logger: log}
}

type ListProfilesOutput struct {
	Profiles []candidate.Candidate
}

func (uc *ListProfilesUseCase) Execute(ctx context.Context) (*ListProfilesOutput, error) {
	ctx, span := tracer.Start(ctx, "ListProfiles.Execute")
	defer span.End()

	profiles, err := uc.candidateRepo.ListProfiles(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return &ListProfilesOutput{Profiles: profiles}, nil
}
