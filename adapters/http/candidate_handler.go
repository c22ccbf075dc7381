package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	ucCandidate "github.com/khoahotran/candidate-dashboard/internal/application/usecase/candidate"
	"github.com/khoahotran/candidate-dashboard/internal/domain/candidate"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

type CandidateHandler struct {
	listUC    *ucCandidate.ListCandidatesUseCase
	getUC     *ucCandidate.GetCandidateUseCase
	optionsUC *ucCandidate.FilterOptionsUseCase
	profileUC *ucCandidate.ListProfilesUseCase
	statsUC   *ucCandidate.StatsUseCase
	logger    logger.Logger
}

func NewCandidateHandler(
	listUC *ucCandidate.ListCandidatesUseCase,
	getUC *ucCandidate.GetCandidateUseCase,
	optionsUC *ucCandidate.FilterOptionsUseCase,
	profileUC *ucCandidate.ListProfilesUseCase,
	statsUC *ucCandidate.StatsUseCase,
	log logger.Logger,
) *CandidateHandler {
	return &CandidateHandler{
		listUC:    listUC,
		getUC:     getUC,
		optionsUC: optionsUC,
		profileUC: profileUC,
		statsUC:   statsUC,
		logger:    log,
	}
}

// queryInt returns def when the parameter is missing or not a number.
func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func (h *CandidateHandler) List(c *gin.Context) {
	input := ucCandidate.ListCandidatesInput{
		Search:       c.Query("search"),
		School:       c.Query("school"),
		Workplace:    c.Query("workplace"),
		Page:         queryInt(c, "page", 1),
		ItemsPerPage: queryInt(c, "items_per_page", candidate.DefaultPageSize),
	}

	out, err := h.listUC.Execute(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}

	f := candidate.Filter{Search: input.Search, School: input.School, Workplace: input.Workplace}.Normalize()
	c.JSON(http.StatusOK, CandidateListResponse{
		Items:            out.Items,
		TotalCount:       out.TotalCount,
		TotalPages:       out.TotalPages,
		Page:             out.Page,
		ItemsPerPage:     out.ItemsPerPage,
		AllowedPageSizes: candidate.AllowedPageSizes(),
		Filters:          CandidateFiltersDTO{Search: f.Search, School: f.School, Workplace: f.Workplace},
		Schools:          out.Schools,
		Workplaces:       out.Workplaces,
	})
}

func (h *CandidateHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(apperror.NewValidation("invalid candidate id", err))
		return
	}

	d, err := h.getUC.ByID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *CandidateHandler) GetByLinkedInID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("linkedin_id"), 10, 64)
	if err != nil {
		c.Error(apperror.NewValidation("invalid linkedin id", err))
		return
	}

	d, err := h.getUC.ByLinkedInID(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *CandidateHandler) Profiles(c *gin.Context) {
	out, err := h.profileUC.Execute(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": out.Profiles})
}

func (h *CandidateHandler) Schools(c *gin.Context) {
	schools, err := h.optionsUC.Schools(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schools": schools})
}

func (h *CandidateHandler) Workplaces(c *gin.Context) {
	workplaces, err := h.optionsUC.Workplaces(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workplaces": workplaces})
}

func (h *CandidateHandler) Stats(c *gin.Context) {
	stats, err := h.statsUC.Execute(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
