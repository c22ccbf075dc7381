package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ucIntegration "github.com/khoahotran/candidate-dashboard/internal/application/usecase/integration"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

type IntegrationHandler struct {
	integrationUC *ucIntegration.IntegrationUseCase
	logger        logger.Logger
}

func NewIntegrationHandler(uc *ucIntegration.IntegrationUseCase, log logger.Logger) *IntegrationHandler {
	return &IntegrationHandler{integrationUC: uc, logger: log}
}

func parseIDParam(c *gin.Context, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.Error(apperror.NewValidation("invalid "+what+" id", err))
		return 0, false
	}
	return id, true
}

func (h *IntegrationHandler) Connect(c *gin.Context) {
	var req ConnectIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewValidation("invalid integration payload", err))
		return
	}

	in, err := h.integrationUC.Connect(c.Request.Context(), req.APIKey)
	if err != nil {
		c.Error(err)
		return
	}

	if opID, ok := GetOperatorIDFromGinContext(c); ok {
		h.logger.Info("Operator replaced active integration",
			zap.Int64(logger.FieldIntegrationID, in.ID),
			zap.String("operator_id", opID.String()),
		)
	}
	c.JSON(http.StatusCreated, ToIntegrationDTO(in))
}

func (h *IntegrationHandler) Active(c *gin.Context) {
	in, err := h.integrationUC.Active(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToIntegrationDTO(in))
}

func (h *IntegrationHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "integration")
	if !ok {
		return
	}
	in, err := h.integrationUC.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToIntegrationDTO(in))
}

func (h *IntegrationHandler) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c, "integration")
	if !ok {
		return
	}
	if err := h.integrationUC.Deactivate(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *IntegrationHandler) RecordSyncToken(c *gin.Context) {
	id, ok := parseIDParam(c, "integration")
	if !ok {
		return
	}
	var req SyncTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewValidation("invalid sync token payload", err))
		return
	}

	in, err := h.integrationUC.RecordSyncToken(c.Request.Context(), id, req.SyncToken)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToIntegrationDTO(in))
}
