package synctracker

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/khoahotran/candidate-dashboard/adapters/memory"
	"github.com/khoahotran/candidate-dashboard/internal/application/service"
	"github.com/khoahotran/candidate-dashboard/internal/domain/candidate"
	"github.com/khoahotran/candidate-dashboard/internal/domain/integration"
	"github.com/khoahotran/candidate-dashboard/internal/domain/syncjob"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []service.SyncJobEvent
	fail   bool
}

func (p *recordingPublisher) Publish(ctx context.Context, ev service.SyncJobEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []service.SyncEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]service.SyncEventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type TrackerSuite struct {
	suite.Suite
	ctx           context.Context
	store         *memory.Store
	publisher     *recordingPublisher
	tracker       *Tracker
	integrationID int64
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}

func (s *TrackerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.publisher = &recordingPublisher{}
	s.tracker = NewTracker(s.store.SyncJobs(), s.publisher, logger.NewNop())

	in := &integration.Integration{APIKeyEncrypted: "sealed"}
	s.Require().NoError(s.store.Integrations().ReplaceActive(s.ctx, in))
	s.integrationID = in.ID
}

func (s *TrackerSuite) TestFullLifecycle() {
	job, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindInitial)
	s.Require().NoError(err)
	s.Equal(syncjob.StatusRunning, job.Status)
	s.Equal(syncjob.Progress{}, job.Progress)
	s.Nil(job.CompletedAt)

	_, err = s.tracker.RecordProgress(s.ctx, job.ID, syncjob.Progress{Processed: 10, Created: 7, Updated: 2, Skipped: 1})
	s.Require().NoError(err)
	job, err = s.tracker.RecordProgress(s.ctx, job.ID, syncjob.Progress{Processed: 5, Created: 0, Updated: 5, Skipped: 0})
	s.Require().NoError(err)
	s.Equal(syncjob.Progress{Processed: 15, Created: 7, Updated: 7, Skipped: 1}, job.Progress)

	job, err = s.tracker.Finish(s.ctx, job.ID, syncjob.StatusCompleted, "")
	s.Require().NoError(err)
	s.Equal(syncjob.StatusCompleted, job.Status)
	s.NotNil(job.CompletedAt)
	s.Nil(job.ErrorMessage)

	s.Equal([]service.SyncEventType{
		service.SyncEventStarted, service.SyncEventProgress, service.SyncEventProgress, service.SyncEventCompleted,
	}, s.publisher.types())
}

func (s *TrackerSuite) TestProgressOnCompletedJobConflicts() {
	job, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindIncremental)
	s.Require().NoError(err)
	_, err = s.tracker.RecordProgress(s.ctx, job.ID, syncjob.Progress{Processed: 3, Created: 3})
	s.Require().NoError(err)
	_, err = s.tracker.Finish(s.ctx, job.ID, syncjob.StatusCompleted, "")
	s.Require().NoError(err)

	_, err = s.tracker.RecordProgress(s.ctx, job.ID, syncjob.Progress{Processed: 1, Created: 1})
	s.True(apperror.IsConflict(err))

	stored, err := s.tracker.Get(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(syncjob.Progress{Processed: 3, Created: 3}, stored.Progress)
}

func (s *TrackerSuite) TestFailRequiresMessage() {
	job, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindInitial)
	s.Require().NoError(err)

	_, err = s.tracker.Finish(s.ctx, job.ID, syncjob.StatusFailed, "")
	s.True(apperror.IsValidation(err))

	job, err = s.tracker.Finish(s.ctx, job.ID, syncjob.StatusFailed, "rate limited")
	s.Require().NoError(err)
	s.Equal(syncjob.StatusFailed, job.Status)
	s.Require().NotNil(job.ErrorMessage)
	s.Equal("rate limited", *job.ErrorMessage)
	s.NotNil(job.CompletedAt)
}

func (s *TrackerSuite) TestCompletedRejectsMessage() {
	job, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindInitial)
	s.Require().NoError(err)

	_, err = s.tracker.Finish(s.ctx, job.ID, syncjob.StatusCompleted, "all good")
	s.True(apperror.IsValidation(err))
}

func (s *TrackerSuite) TestFinishTwiceConflicts() {
	job, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindInitial)
	s.Require().NoError(err)
	_, err = s.tracker.Finish(s.ctx, job.ID, syncjob.StatusCompleted, "")
	s.Require().NoError(err)

	_, err = s.tracker.Finish(s.ctx, job.ID, syncjob.StatusCompleted, "")
	s.True(apperror.IsConflict(err))
	_, err = s.tracker.Finish(s.ctx, job.ID, syncjob.StatusFailed, "late")
	s.True(apperror.IsConflict(err))
}

func (s *TrackerSuite) TestInvalidOutcomeAndKind() {
	_, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.Kind("full"))
	s.True(apperror.IsValidation(err))

	job, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindInitial)
	s.Require().NoError(err)
	_, err = s.tracker.Finish(s.ctx, job.ID, syncjob.StatusRunning, "")
	s.True(apperror.IsValidation(err))
}

func (s *TrackerSuite) TestInvalidDelta() {
	job, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindInitial)
	s.Require().NoError(err)

	_, err = s.tracker.RecordProgress(s.ctx, job.ID, syncjob.Progress{Processed: -1})
	s.True(apperror.IsValidation(err))
	_, err = s.tracker.RecordProgress(s.ctx, job.ID, syncjob.Progress{Processed: 1, Created: 1, Updated: 1})
	s.True(apperror.IsValidation(err))
}

func (s *TrackerSuite) TestOversizedDeltaRejected() {
	job, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindInitial)
	s.Require().NoError(err)

	for _, d := range []syncjob.Progress{
		{Processed: 0, Created: math.MaxInt, Updated: 1},
		{Processed: math.MaxInt, Created: math.MaxInt, Updated: math.MaxInt, Skipped: math.MaxInt},
		{Processed: math.MaxInt32 + 1},
	} {
		_, err = s.tracker.RecordProgress(s.ctx, job.ID, d)
		s.True(apperror.IsValidation(err), "delta %+v", d)
	}

	stored, err := s.tracker.Get(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(syncjob.Progress{}, stored.Progress)
}

func (s *TrackerSuite) TestCountersNeverWrap() {
	job, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindInitial)
	s.Require().NoError(err)

	_, err = s.tracker.RecordProgress(s.ctx, job.ID, syncjob.Progress{Processed: math.MaxInt32, Created: math.MaxInt32})
	s.Require().NoError(err)
	_, err = s.tracker.RecordProgress(s.ctx, job.ID, syncjob.Progress{Processed: 1, Created: 1})
	s.True(apperror.IsValidation(err))

	stored, err := s.tracker.Get(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(syncjob.Progress{Processed: math.MaxInt32, Created: math.MaxInt32}, stored.Progress)
}

func (s *TrackerSuite) TestUnknownJob() {
	_, err := s.tracker.RecordProgress(s.ctx, 999, syncjob.Progress{Processed: 1})
	s.True(apperror.IsNotFound(err))
	_, err = s.tracker.Finish(s.ctx, 999, syncjob.StatusCompleted, "")
	s.True(apperror.IsNotFound(err))
	_, err = s.tracker.Get(s.ctx, 999)
	s.True(apperror.IsNotFound(err))
}

func (s *TrackerSuite) TestStartRequiresActiveIntegration() {
	_, err := s.tracker.Start(s.ctx, 4242, syncjob.KindInitial)
	s.True(apperror.IsNotFound(err))

	s.Require().NoError(s.store.Integrations().Deactivate(s.ctx, s.integrationID))
	_, err = s.tracker.Start(s.ctx, s.integrationID, syncjob.KindInitial)
	s.True(apperror.IsConflict(err))
}

func (s *TrackerSuite) TestOneRunningJobPerIntegration() {
	first, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindInitial)
	s.Require().NoError(err)

	_, err = s.tracker.Start(s.ctx, s.integrationID, syncjob.KindIncremental)
	s.True(apperror.IsConflict(err))

	_, err = s.tracker.Finish(s.ctx, first.ID, syncjob.StatusCompleted, "")
	s.Require().NoError(err)

	second, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindIncremental)
	s.Require().NoError(err)
	s.NotEqual(first.ID, second.ID)
}

func (s *TrackerSuite) TestConcurrentStartsYieldOneJob() {
	const attempts = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	started, conflicts := 0, 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindInitial)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				started++
			} else if apperror.IsConflict(err) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, started)
	s.Equal(attempts-1, conflicts)
}

func (s *TrackerSuite) TestConcurrentProgressIsAtomic() {
	job, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindInitial)
	s.Require().NoError(err)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.tracker.RecordProgress(s.ctx, job.ID, syncjob.Progress{Processed: 3, Created: 1, Updated: 1, Skipped: 1})
			s.NoError(err)
		}()
	}
	wg.Wait()

	stored, err := s.tracker.Get(s.ctx, job.ID)
	s.Require().NoError(err)
	s.Equal(syncjob.Progress{Processed: 60, Created: 20, Updated: 20, Skipped: 20}, stored.Progress)
}

func (s *TrackerSuite) TestMarkStaleAsFailed() {
	old, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindInitial)
	s.Require().NoError(err)

	s.tracker.now = func() time.Time { return time.Now().UTC().Add(time.Hour) }
	reaped, err := s.tracker.MarkStaleAsFailed(s.ctx, 30*time.Minute)
	s.Require().NoError(err)
	s.Require().Len(reaped, 1)
	s.Equal(old.ID, reaped[0].ID)
	s.Equal(syncjob.StatusFailed, reaped[0].Status)
	s.Equal(syncjob.StaleJobMessage, *reaped[0].ErrorMessage)
	s.Contains(s.publisher.types(), service.SyncEventReaped)

	running, err := s.tracker.ListRunning(s.ctx)
	s.Require().NoError(err)
	s.Empty(running)

	_, err = s.tracker.MarkStaleAsFailed(s.ctx, 0)
	s.True(apperror.IsValidation(err))
}

func (s *TrackerSuite) TestFreshJobsSurviveReaper() {
	_, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindInitial)
	s.Require().NoError(err)

	reaped, err := s.tracker.MarkStaleAsFailed(s.ctx, 30*time.Minute)
	s.Require().NoError(err)
	s.Empty(reaped)

	running, err := s.tracker.ListRunning(s.ctx)
	s.Require().NoError(err)
	s.Len(running, 1)
}

func (s *TrackerSuite) TestListByIntegrationNewestFirst() {
	for i := 0; i < 3; i++ {
		job, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindIncremental)
		s.Require().NoError(err)
		_, err = s.tracker.Finish(s.ctx, job.ID, syncjob.StatusCompleted, "")
		s.Require().NoError(err)
	}

	jobs, err := s.tracker.ListByIntegration(s.ctx, s.integrationID, 2)
	s.Require().NoError(err)
	s.Require().Len(jobs, 2)
	s.Greater(jobs[0].ID, jobs[1].ID)
}

func (s *TrackerSuite) TestPublishFailureDoesNotFailTransition() {
	s.publisher.fail = true
	job, err := s.tracker.Start(s.ctx, s.integrationID, syncjob.KindInitial)
	s.Require().NoError(err)
	s.Equal(syncjob.StatusRunning, job.Status)
}

type countingCache struct {
	invalidated int
}

func (c *countingCache) GetVocabulary(ctx context.Context, name string) ([]string, bool, error) {
	return nil, false, nil
}
func (c *countingCache) SetVocabulary(ctx context.Context, name string, values []string) error {
	return nil
}
func (c *countingCache) GetStats(ctx context.Context) (candidate.Stats, bool, error) {
	return candidate.Stats{}, false, nil
}
func (c *countingCache) SetStats(ctx context.Context, st candidate.Stats) error { return nil }
func (c *countingCache) Invalidate(ctx context.Context) error {
	c.invalidated++
	return nil
}

func TestProcessSyncEvent(t *testing.T) {
	cache := &countingCache{}
	uc := NewProcessSyncEventUseCase(cache, logger.NewNop())
	ctx := context.Background()

	for _, typ := range []service.SyncEventType{service.SyncEventStarted, service.SyncEventProgress} {
		done, err := uc.Execute(ctx, service.SyncJobEvent{Type: typ})
		require.NoError(t, err)
		assert.False(t, done, typ)
	}
	for _, typ := range []service.SyncEventType{service.SyncEventCompleted, service.SyncEventFailed, service.SyncEventReaped} {
		done, err := uc.Execute(ctx, service.SyncJobEvent{Type: typ})
		require.NoError(t, err)
		assert.True(t, done, typ)
	}
	assert.Equal(t, 3, cache.invalidated)
}
