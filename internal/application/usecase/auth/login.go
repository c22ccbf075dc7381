package auth

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/candidate-dashboard/internal/domain/operator"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
	"github.com/khoahotran/candidate-dashboard/pkg/auth"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

type LoginUseCase struct {
	operatorRepo operator.Repository
	jwtSvc       *auth.JWTService
	logger       logger.Logger
}

func NewLoginUseCase(repo operator.Repository, jwtSvc *auth.JWTService, log logger.Logger) *LoginUseCase {
	return &LoginUseCase{
		operatorRepo: repo,
		jwtSvc:       jwtSvc,
		logger:       log,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	AccessToken string
}

var tracer = otel.Tracer("auth_usecase")

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	ctx, span := tracer.Start(ctx, "Login.Execute")
	defer span.End()

	email := strings.ToLower(strings.TrimSpace(input.Email))
	op, err := uc.operatorRepo.FindByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			err = apperror.NewUnauthorized("unknown operator", nil)
		}
		span.RecordError(err)
		return nil, err
	}

	if !auth.CheckPasswordHash(input.Password, op.PasswordHash) {
		err := apperror.NewUnauthorized("incorrect password", nil)
		span.RecordError(err)
		return nil, err
	}

	token, err := uc.jwtSvc.GenerateToken(op.ID, op.Email)
	if err != nil {
		uc.logger.Error("Failed to generate token", err, zap.String("operator_id", op.ID.String()))
		err = apperror.NewInternal("failed to generate token", err)
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("operator_id", op.ID.String()))
	return &LoginOutput{AccessToken: token}, nil
}
