package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/candidate-dashboard/internal/application/usecase/synctracker"
	"github.com/khoahotran/candidate-dashboard/internal/domain/syncjob"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

type SyncHandler struct {
	tracker    *synctracker.Tracker
	staleAfter time.Duration
	logger     logger.Logger
}

// NewSyncHandler takes the age used by the reap endpoint when the request
// does not name one.
func NewSyncHandler(tracker *synctracker.Tracker, staleAfter time.Duration, log logger.Logger) *SyncHandler {
	return &SyncHandler{tracker: tracker, staleAfter: staleAfter, logger: log}
}

func (h *SyncHandler) Start(c *gin.Context) {
	var req StartSyncJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewValidation("invalid sync job payload", err))
		return
	}

	job, err := h.tracker.Start(c.Request.Context(), req.IntegrationID, syncjob.Kind(req.JobType))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToSyncJobDTO(job))
}

func (h *SyncHandler) Progress(c *gin.Context) {
	id, ok := parseIDParam(c, "sync job")
	if !ok {
		return
	}
	var req RecordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewValidation("invalid progress payload", err))
		return
	}

	job, err := h.tracker.RecordProgress(c.Request.Context(), id, syncjob.Progress{
		Processed: req.Processed,
		Created:   req.Created,
		Updated:   req.Updated,
		Skipped:   req.Skipped,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSyncJobDTO(job))
}

func (h *SyncHandler) Finish(c *gin.Context) {
	id, ok := parseIDParam(c, "sync job")
	if !ok {
		return
	}
	var req FinishSyncJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewValidation("invalid finish payload", err))
		return
	}

	job, err := h.tracker.Finish(c.Request.Context(), id, syncjob.Status(req.Outcome), req.ErrorMessage)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSyncJobDTO(job))
}

func (h *SyncHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "sync job")
	if !ok {
		return
	}
	job, err := h.tracker.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToSyncJobDTO(job))
}

// List returns the history of one integration when integration_id is given,
// otherwise every running job.
func (h *SyncHandler) List(c *gin.Context) {
	var (
		jobs []*syncjob.SyncJob
		err  error
	)
	if raw := c.Query("integration_id"); raw != "" {
		integrationID, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			c.Error(apperror.NewValidation("invalid integration_id", perr))
			return
		}
		jobs, err = h.tracker.ListByIntegration(c.Request.Context(), integrationID, queryInt(c, "limit", 0))
	} else {
		jobs, err = h.tracker.ListRunning(c.Request.Context())
	}
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": ToSyncJobDTOs(jobs)})
}

func (h *SyncHandler) Reap(c *gin.Context) {
	maxAge := h.staleAfter
	var req ReapRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apperror.NewValidation("invalid reap payload", err))
			return
		}
	}
	if req.MaxAge != "" {
		d, err := time.ParseDuration(req.MaxAge)
		if err != nil {
			c.Error(apperror.NewValidation("max_age must be a duration such as 30m", err))
			return
		}
		maxAge = d
	}

	jobs, err := h.tracker.MarkStaleAsFailed(c.Request.Context(), maxAge)
	if err != nil {
		c.Error(err)
		return
	}
	h.logger.Info("Reaped stale sync jobs", zap.Int(logger.FieldCount, len(jobs)))
	c.JSON(http.StatusOK, gin.H{"failed": ToSyncJobDTOs(jobs)})
}
