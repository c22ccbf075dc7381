package http

import (
	"time"

	"github.com/khoahotran/candidate-dashboard/internal/domain/candidate"
	"github.com/khoahotran/candidate-dashboard/internal/domain/integration"
	"github.com/khoahotran/candidate-dashboard/internal/domain/syncjob"
)

type CandidateFiltersDTO struct {
	Search    string `json:"search"`
	School    string `json:"school"`
	Workplace string `json:"workplace"`
}

type CandidateListResponse struct {
	Items            []candidate.Summary `json:"items"`
	TotalCount       int64               `json:"total_count"`
	TotalPages       int                 `json:"total_pages"`
	Page             int                 `json:"page"`
	ItemsPerPage     int                 `json:"items_per_page"`
	AllowedPageSizes []int               `json:"allowed_page_sizes"`
	Filters          CandidateFiltersDTO `json:"filters"`
	Schools          []string            `json:"schools"`
	Workplaces       []string            `json:"workplaces"`
}

type ConnectIntegrationRequest struct {
	APIKey string `json:"api_key" binding:"required"`
}

type SyncTokenRequest struct {
	SyncToken string `json:"sync_token" binding:"required"`
}

type IntegrationDTO struct {
	ID         int64      `json:"id"`
	SyncToken  *string    `json:"sync_token"`
	LastSyncAt *time.Time `json:"last_sync_at"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func ToIntegrationDTO(in *integration.Integration) IntegrationDTO {
	return IntegrationDTO{
		ID:         in.ID,
		SyncToken:  in.SyncToken,
		LastSyncAt: in.LastSyncAt,
		IsActive:   in.IsActive,
		CreatedAt:  in.CreatedAt,
		UpdatedAt:  in.UpdatedAt,
	}
}

type StartSyncJobRequest struct {
	IntegrationID int64  `json:"integration_id" binding:"required,gt=0"`
	JobType       string `json:"job_type" binding:"required,oneof=initial incremental"`
}

type RecordProgressRequest struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
}

type FinishSyncJobRequest struct {
	Outcome      string `json:"outcome" binding:"required"`
	ErrorMessage string `json:"error_message"`
}

type ReapRequest struct {
	MaxAge string `json:"max_age"`
}

// SyncJobDTO mirrors the ashby_sync_jobs columns.
type SyncJobDTO struct {
	ID                  int64      `json:"id"`
	IntegrationID       int64      `json:"integration_id"`
	JobType             string     `json:"job_type"`
	Status              string     `json:"status"`
	CandidatesProcessed int        `json:"candidates_processed"`
	CandidatesCreated   int        `json:"candidates_created"`
	CandidatesUpdated   int        `json:"candidates_updated"`
	CandidatesSkipped   int        `json:"candidates_skipped"`
	ErrorMessage        *string    `json:"error_message"`
	StartedAt           time.Time  `json:"started_at"`
	CompletedAt         *time.Time `json:"completed_at"`
}

func ToSyncJobDTO(j *syncjob.SyncJob) SyncJobDTO {
	return SyncJobDTO{
		ID:                  j.ID,
		IntegrationID:       j.IntegrationID,
		JobType:             string(j.Kind),
		Status:              string(j.Status),
		CandidatesProcessed: j.Progress.Processed,
		CandidatesCreated:   j.Progress.Created,
		CandidatesUpdated:   j.Progress.Updated,
		CandidatesSkipped:   j.Progress.Skipped,
		ErrorMessage:        j.ErrorMessage,
		StartedAt:           j.StartedAt,
		CompletedAt:         j.CompletedAt,
	}
}

func ToSyncJobDTOs(jobs []*syncjob.SyncJob) []SyncJobDTO {
	out := make([]SyncJobDTO, len(jobs))
	for i, j := range jobs {
		out[i] = ToSyncJobDTO(j)
	}
	return out
}
