package http

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/candidate-dashboard/adapters/persistence"
	"github.com/khoahotran/candidate-dashboard/adapters/secret"
	authUC "github.com/khoahotran/candidate-dashboard/internal/application/usecase/auth"
	candidateUC "github.com/khoahotran/candidate-dashboard/internal/application/usecase/candidate"
	integrationUC "github.com/khoahotran/candidate-dashboard/internal/application/usecase/integration"
	"github.com/khoahotran/candidate-dashboard/internal/application/usecase/synctracker"
	"github.com/khoahotran/candidate-dashboard/internal/config"
	"github.com/khoahotran/candidate-dashboard/internal/domain/operator"
	"github.com/khoahotran/candidate-dashboard/pkg/auth"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

// SyncE2ETestSuite runs against the database named by DB_DSN, already migrated.
type SyncE2ETestSuite struct {
	suite.Suite
	Router   *gin.Engine
	dbPool   *pgxpool.Pool
	email    string
	testPass string
}

func (s *SyncE2ETestSuite) SetupSuite() {
	cfg, err := config.LoadConfig("../..")
	if err != nil {
		s.T().Fatalf("Failed to load config for E2E test: %v", err)
	}

	ctx := context.Background()
	appLogger := logger.NewZapLogger("development")
	dbPool, err := persistence.NewPostgresPool(ctx, cfg, appLogger)
	if err != nil {
		s.T().Fatalf("E2E test failed to connect postgres: %v", err)
	}
	s.dbPool = dbPool

	s.email = "e2e_operator@example.com"
	s.testPass = "e2e_test_password_123"
	hash, _ := auth.HashPassword(s.testPass)
	operatorRepo := persistence.NewPostgresOperatorRepo(dbPool)
	if err := operatorRepo.Upsert(ctx, &operator.Operator{ID: uuid.New(), Email: s.email, PasswordHash: hash}); err != nil {
		s.T().Fatalf("E2E test failed to seed operator: %v", err)
	}

	key := make([]byte, 32)
	_, _ = rand.Read(key)
	secrets, err := secret.NewSecretboxStore(base64.StdEncoding.EncodeToString(key))
	if err != nil {
		s.T().Fatalf("E2E test failed to build secret store: %v", err)
	}

	candidateRepo := persistence.NewPostgresCandidateRepo(dbPool, appLogger)
	jwtSvc := auth.NewJWTService("e2e-secret", time.Hour)
	options := candidateUC.NewFilterOptionsUseCase(candidateRepo, nil, appLogger)

	gin.SetMode(gin.TestMode)
	s.Router = NewRouter(Handlers{
		Auth: NewAuthHandler(authUC.NewLoginUseCase(operatorRepo, jwtSvc, appLogger), appLogger),
		Candidate: NewCandidateHandler(
			candidateUC.NewListCandidatesUseCase(candidateRepo, options, appLogger),
			candidateUC.NewGetCandidateUseCase(candidateRepo, appLogger),
			options,
			candidateUC.NewListProfilesUseCase(candidateRepo, appLogger),
			candidateUC.NewStatsUseCase(candidateRepo, nil, appLogger),
			appLogger,
		),
		Integration: NewIntegrationHandler(
			integrationUC.NewIntegrationUseCase(persistence.NewPostgresIntegrationRepo(dbPool, appLogger), secrets, appLogger),
			appLogger,
		),
		Sync: NewSyncHandler(
			synctracker.NewTracker(persistence.NewPostgresSyncJobRepo(dbPool, appLogger), nil, appLogger),
			30*time.Minute,
			appLogger,
		),
	}, jwtSvc, LoginLimit{}, appLogger)
}

func (s *SyncE2ETestSuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
}

func TestSyncE2E(t *testing.T) {
	if os.Getenv("E2E_TESTS") == "" {
		t.Skip("Skipping E2E tests. Set E2E_TESTS=1 to run.")
	}
	suite.Run(t, new(SyncE2ETestSuite))
}

func (s *SyncE2ETestSuite) send(method, path, token string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func (s *SyncE2ETestSuite) Test_Login_And_Sync_Flow() {
	rrBad := s.send(http.MethodPost, "/api/admin/auth/login", "", gin.H{"email": s.email, "password": "wrongpassword"})
	assert.Equal(s.T(), http.StatusUnauthorized, rrBad.Code)

	rrGood := s.send(http.MethodPost, "/api/admin/auth/login", "", gin.H{"email": s.email, "password": s.testPass})
	s.Require().Equal(http.StatusOK, rrGood.Code)
	var loginResponse map[string]string
	_ = json.Unmarshal(rrGood.Body.Bytes(), &loginResponse)
	token := loginResponse["access_token"]
	s.Require().NotEmpty(token)

	rrNoAuth := s.send(http.MethodGet, "/api/admin/sync-jobs", "", nil)
	assert.Equal(s.T(), http.StatusUnauthorized, rrNoAuth.Code)

	rrConnect := s.send(http.MethodPost, "/api/admin/integrations", token, gin.H{"api_key": "e2e-ashby-key"})
	s.Require().Equal(http.StatusCreated, rrConnect.Code, rrConnect.Body.String())
	var in IntegrationDTO
	_ = json.Unmarshal(rrConnect.Body.Bytes(), &in)

	rrStart := s.send(http.MethodPost, "/api/admin/sync-jobs", token, gin.H{"integration_id": in.ID, "job_type": "incremental"})
	s.Require().Equal(http.StatusCreated, rrStart.Code, rrStart.Body.String())
	var job SyncJobDTO
	_ = json.Unmarshal(rrStart.Body.Bytes(), &job)

	jobPath := "/api/admin/sync-jobs/" + strconv.FormatInt(job.ID, 10)
	rrProgress := s.send(http.MethodPost, jobPath+"/progress", token, gin.H{"processed": 4, "created": 1, "updated": 2, "skipped": 1})
	assert.Equal(s.T(), http.StatusOK, rrProgress.Code)

	rrFinish := s.send(http.MethodPost, jobPath+"/finish", token, gin.H{"outcome": "failed", "error_message": "rate limited"})
	s.Require().Equal(http.StatusOK, rrFinish.Code)
	_ = json.Unmarshal(rrFinish.Body.Bytes(), &job)
	assert.Equal(s.T(), "failed", job.Status)
	assert.Equal(s.T(), 4, job.CandidatesProcessed)
	assert.NotNil(s.T(), job.CompletedAt)

	rrAgain := s.send(http.MethodPost, jobPath+"/finish", token, gin.H{"outcome": "completed"})
	assert.Equal(s.T(), http.StatusConflict, rrAgain.Code)

	rrList := s.send(http.MethodGet, "/api/candidates?items_per_page=48", "", nil)
	assert.Equal(s.T(), http.StatusOK, rrList.Code)
}
