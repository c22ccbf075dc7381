package memory

import (
	"github.com/khoahotran/candidate-dashboard/internal/domain/candidate"
	"github.com/khoahotran/candidate-dashboard/internal/domain/integration"
	"github.com/khoahotran/candidate-dashboard/internal/domain/operator"
	"github.com/khoahotran/candidate-dashboard/internal/domain/syncjob"
)

// Store bundles in-process repositories. Sync jobs consult the integration
// repository the same way the Postgres adapter joins the two tables.
type Store struct {
	candidates   *CandidateRepository
	integrations *integrationRepository
	jobs         *syncJobRepository
	operators    *operatorRepository
}

func New() *Store {
	integrations := newIntegrationRepository()
	return &Store{
		candidates:   newCandidateRepository(),
		integrations: integrations,
		jobs:         newSyncJobRepository(integrations),
		operators:    newOperatorRepository(),
	}
}

func (s *Store) Candidates() *CandidateRepository {
	return s.candidates
}

func (s *Store) Integrations() integration.Repository {
	return s.integrations
}

func (s *Store) SyncJobs() syncjob.Repository {
	return s.jobs
}

func (s *Store) Operators() operator.Repository {
	return s.operators
}

var (
	_ candidate.Repository       = &CandidateRepository{}
	_ candidate.ImportRepository = &CandidateRepository{}
	_ integration.Repository     = &integrationRepository{}
	_ syncjob.Repository         = &syncJobRepository{}
	_ operator.Repository        = &operatorRepository{}
)
