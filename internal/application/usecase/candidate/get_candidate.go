package candidate

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/khoahotran/candidate-dashboard/internal/domain/candidate"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

type GetCandidateUseCase struct {
	candidateRepo candidate.Repository
	logger        logger.Logger
}

func NewGetCandidateUseCase(repo candidate.Repository, log logger.Logger) *GetCandidateUseCase {
	return &GetCandidateUseCase{candidateRepo: repo, logger: log}
}

// ByID returns the full profile. Positions and educations come latest first.
func (uc *GetCandidateUseCase) ByID(ctx context.Context, id int64) (*candidate.Detail, error) {
	ctx, span := tracer.Start(ctx, "GetCandidate.ByID")
	defer span.End()
	span.SetAttributes(attribute.Int64("candidate_id", id))

	d, err := uc.candidateRepo.FindDetail(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return d, nil
}

func (uc *GetCandidateUseCase) ByLinkedInID(ctx context.Context, linkedInID int64) (*candidate.Detail, error) {
	ctx, span := tracer.Start(ctx, "GetCandidate.ByLinkedInID")
	defer span.End()
	span.SetAttributes(attribute.Int64("linkedin_id", linkedInID))

	id, err := uc.candidateRepo.FindIDByLinkedInID(ctx, linkedInID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return uc.ByID(ctx, id)
}
