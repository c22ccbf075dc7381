package candidate

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/candidate-dashboard/internal/domain/candidate"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

type ListCandidatesUseCase struct {
	candidateRepo candidate.Repository
	options       *FilterOptionsUseCase
	validate      *validator.Validate
	logger        logger.Logger
}

func NewListCandidatesUseCase(repo candidate.Repository, options *FilterOptionsUseCase, log logger.Logger) *ListCandidatesUseCase {
	return &ListCandidatesUseCase{
		candidateRepo: repo,
		options:       options,
		validate:      validator.New(),
		logger:        log,
	}
}

type ListCandidatesInput struct {
	Search       string `validate:"max=200"`
	School       string `validate:"max=200"`
	Workplace    string `validate:"max=200"`
	Page         int    `validate:"gte=1"`
	ItemsPerPage int
}

type ListCandidatesOutput struct {
	Items        []candidate.Summary
	TotalCount   int64
	TotalPages   int
	Page         int
	ItemsPerPage int
	Schools      []string
	Workplaces   []string
}

// Execute returns one page of candidates. The count and the page run as
// separate queries, so a concurrent import can make them disagree slightly.
func (uc *ListCandidatesUseCase) Execute(ctx context.Context, input ListCandidatesInput) (*ListCandidatesOutput, error) {
	ctx, span := tracer.Start(ctx, "ListCandidates.Execute")
	defer span.End()

	if err := uc.validate.Struct(input); err != nil {
		err = apperror.NewValidation(describeValidation(err), err)
		span.RecordError(err)
		return nil, err
	}

	filter := candidate.Filter{
		Search:    input.Search,
		School:    input.School,
		Workplace: input.Workplace,
	}.Normalize()
	pageSize := candidate.NormalizePageSize(input.ItemsPerPage)
	offset, inRange := candidate.PageOffset(input.Page, pageSize)

	span.SetAttributes(
		attribute.Int("page", input.Page),
		attribute.Int("items_per_page", pageSize),
		attribute.Bool("filtered", filter != candidate.Filter{}),
	)

	out := &ListCandidatesOutput{Page: input.Page, ItemsPerPage: pageSize, Items: []candidate.Summary{}}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, err := uc.candidateRepo.Count(gCtx, filter)
		if err != nil {
			return err
		}
		out.TotalCount = total
		return nil
	})
	if inRange {
		g.Go(func() error {
			items, err := uc.candidateRepo.List(gCtx, filter, pageSize, offset)
			if err != nil {
				return err
			}
			out.Items = items
			return nil
		})
	}
	g.Go(func() error {
		schools, err := uc.options.Schools(gCtx)
		if err != nil {
			return err
		}
		out.Schools = schools
		return nil
	})
	g.Go(func() error {
		workplaces, err := uc.options.Workplaces(gCtx)
		if err != nil {
			return err
		}
		out.Workplaces = workplaces
		return nil
	})

	if err := g.Wait(); err != nil {
		uc.logger.Error("List candidates failed", err, zap.Int("page", input.Page))
		span.RecordError(err)
		return nil, err
	}

	out.TotalPages = candidate.TotalPages(out.TotalCount, pageSize)
	span.SetAttributes(attribute.Int64("total_count", out.TotalCount))
	return out, nil
}

func describeValidation(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		return fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag())
	}
	return "invalid request"
}
