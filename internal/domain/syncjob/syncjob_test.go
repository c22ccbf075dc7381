package syncjob

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	now := time.Now()
	j, err := New(7, KindInitial, now)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, j.Status)
	assert.Equal(t, Progress{}, j.Progress)
	assert.Nil(t, j.CompletedAt)

	_, err = New(7, Kind("full"), now)
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestApplyProgress_Accumulates(t *testing.T) {
	j, _ := New(1, KindIncremental, time.Now())
	require.NoError(t, j.ApplyProgress(Progress{Processed: 10, Created: 7, Updated: 2, Skipped: 1}))
	require.NoError(t, j.ApplyProgress(Progress{Processed: 5, Updated: 5}))
	assert.Equal(t, Progress{Processed: 15, Created: 7, Updated: 7, Skipped: 1}, j.Progress)
}

func TestValidateDelta(t *testing.T) {
	assert.ErrorIs(t, Progress{Processed: -1}.ValidateDelta(), ErrNegativeDelta)
	assert.ErrorIs(t, Progress{Processed: 1, Created: 2}.ValidateDelta(), ErrInconsistentDelta)
	assert.NoError(t, Progress{}.ValidateDelta())
	assert.NoError(t, Progress{Processed: 4, Created: 1, Skipped: 1}.ValidateDelta())
	assert.ErrorIs(t, Progress{Created: math.MaxInt, Updated: 1}.ValidateDelta(), ErrCounterOverflow)
	assert.ErrorIs(t, Progress{Processed: math.MaxInt32 + 1}.ValidateDelta(), ErrCounterOverflow)
	assert.ErrorIs(t, Progress{Processed: math.MaxInt32, Created: math.MaxInt32, Updated: math.MaxInt32}.ValidateDelta(), ErrInconsistentDelta)
}

func TestApplyProgress_RejectsOverflowingTotals(t *testing.T) {
	j, _ := New(1, KindInitial, time.Now())
	require.NoError(t, j.ApplyProgress(Progress{Processed: MaxCounter, Skipped: MaxCounter}))
	assert.ErrorIs(t, j.ApplyProgress(Progress{Processed: 1, Skipped: 1}), ErrCounterOverflow)
	assert.Equal(t, Progress{Processed: MaxCounter, Skipped: MaxCounter}, j.Progress)
}

func TestFinish_StateMachine(t *testing.T) {
	now := time.Now()
	j, _ := New(1, KindInitial, now)

	require.NoError(t, j.Finish(StatusCompleted, "", now))
	assert.Equal(t, StatusCompleted, j.Status)
	require.NotNil(t, j.CompletedAt)
	assert.Nil(t, j.ErrorMessage)

	assert.ErrorIs(t, j.Finish(StatusFailed, "late", now), ErrJobTerminal)
	assert.ErrorIs(t, j.ApplyProgress(Progress{Processed: 1}), ErrJobTerminal)
	assert.Equal(t, Progress{}, j.Progress)
}

func TestValidateOutcome(t *testing.T) {
	_, err := ValidateOutcome(StatusFailed, "  ")
	assert.ErrorIs(t, err, ErrMessageRequired)

	_, err = ValidateOutcome(StatusCompleted, "oops")
	assert.ErrorIs(t, err, ErrMessageNotAllowed)

	_, err = ValidateOutcome(StatusRunning, "")
	assert.ErrorIs(t, err, ErrInvalidOutcome)

	msg, err := ValidateOutcome(StatusFailed, " rate limited ")
	require.NoError(t, err)
	assert.Equal(t, "rate limited", *msg)
}
