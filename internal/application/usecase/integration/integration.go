package integration

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/candidate-dashboard/internal/application/service"
	"github.com/khoahotran/candidate-dashboard/internal/domain/integration"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

var tracer = otel.Tracer("integration_usecase")

// IntegrationUseCase manages the stored Ashby credential. The plaintext key
// only exists in memory; the repository sees the sealed form.
type IntegrationUseCase struct {
	repo    integration.Repository
	secrets service.SecretStore
	logger  logger.Logger
}

func NewIntegrationUseCase(repo integration.Repository, secrets service.SecretStore, log logger.Logger) *IntegrationUseCase {
	return &IntegrationUseCase{repo: repo, secrets: secrets, logger: log}
}

// Connect stores a new active integration and deactivates all others.
func (uc *IntegrationUseCase) Connect(ctx context.Context, apiKey string) (*integration.Integration, error) {
	ctx, span := tracer.Start(ctx, "Integration.Connect")
	defer span.End()

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		err := apperror.NewValidation("api key is required", nil)
		span.RecordError(err)
		return nil, err
	}

	sealed, err := uc.secrets.Seal(apiKey)
	if err != nil {
		err = apperror.NewInternal("failed to seal api key", err)
		span.RecordError(err)
		return nil, err
	}

	in := &integration.Integration{APIKeyEncrypted: sealed}
	if err := uc.repo.ReplaceActive(ctx, in); err != nil {
		span.RecordError(err)
		return nil, err
	}

	uc.logger.Info("Integration connected", zap.Int64(logger.FieldIntegrationID, in.ID))
	span.SetAttributes(attribute.Int64(logger.FieldIntegrationID, in.ID))
	return in, nil
}

func (uc *IntegrationUseCase) Active(ctx context.Context) (*integration.Integration, error) {
	return uc.repo.FindActive(ctx)
}

func (uc *IntegrationUseCase) Get(ctx context.Context, id int64) (*integration.Integration, error) {
	return uc.repo.FindByID(ctx, id)
}

func (uc *IntegrationUseCase) Deactivate(ctx context.Context, id int64) error {
	if err := uc.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	uc.logger.Info("Integration deactivated", zap.Int64(logger.FieldIntegrationID, id))
	return nil
}

// RecordSyncToken saves the cursor returned by a finished sync and stamps last_sync_at.
func (uc *IntegrationUseCase) RecordSyncToken(ctx context.Context, id int64, token string) (*integration.Integration, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperror.NewValidation("sync token is required", nil)
	}
	return uc.repo.UpdateSyncToken(ctx, id, token, time.Now().UTC())
}

// APIKey opens the sealed key of an active integration. It is the in-process
// entry point for the external sync runner; the worker calls it at startup to
// check that the configured encryption key still opens the stored secret.
func (uc *IntegrationUseCase) APIKey(ctx context.Context, id int64) (string, error) {
	ctx, span := tracer.Start(ctx, "Integration.APIKey")
	defer span.End()

	in, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	if !in.IsActive {
		err := apperror.NewConflict("integration", integration.ErrIntegrationInactive.Error())
		span.RecordError(err)
		return "", err
	}

	key, err := uc.secrets.Open(in.APIKeyEncrypted)
	if err != nil {
		uc.logger.Error("Failed to open api key", err, zap.Int64(logger.FieldIntegrationID, id))
		err = apperror.NewInternal("failed to open api key", err)
		span.RecordError(err)
		return "", err
	}
	return key, nil
}
