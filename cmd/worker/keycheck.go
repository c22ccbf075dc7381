package main

import (
	"context"

	"go.uber.org/zap"

	integrationUC "github.com/khoahotran/candidate-dashboard/internal/application/usecase/integration"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

// checkActiveIntegrationKey opens the active integration's API key so a
// rotated ASHBY_ENCRYPTION_KEY shows up at startup instead of mid-sync.
// Having no active integration is not an error.
func checkActiveIntegrationKey(ctx context.Context, uc *integrationUC.IntegrationUseCase, log logger.Logger) error {
	in, err := uc.Active(ctx)
	if apperror.IsNotFound(err) {
		log.Info("No active Ashby integration")
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := uc.APIKey(ctx, in.ID); err != nil {
		return err
	}
	log.Info("Active Ashby integration key is readable", zap.Int64(logger.FieldIntegrationID, in.ID))
	return nil
}
