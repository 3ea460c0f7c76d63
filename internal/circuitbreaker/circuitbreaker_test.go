package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartsClosedAndAllowsExecution(t *testing.T) {
	require := require.New(t)

	b := New(DefaultConfig())
	require.Equal(Closed, b.GetState())
	require.True(b.CanExecute())
}

func TestOpensAfterFailureThreshold(t *testing.T) {
	require := require.New(t)

	b := New(Config{FailureThreshold: 3, HalfOpenSuccessThreshold: 2, RecoveryTimeout: time.Hour})
	b.RecordFailure()
	b.RecordFailure()
	require.Equal(Closed, b.GetState())
	b.RecordFailure()
	require.Equal(Open, b.GetState())
	require.False(b.CanExecute())
}

func TestTransitionsToHalfOpenAfterRecoveryTimeout(t *testing.T) {
	require := require.New(t)

	b := New(Config{FailureThreshold: 1, HalfOpenSuccessThreshold: 1, RecoveryTimeout: time.Millisecond})
	b.RecordFailure()
	require.Equal(Open, b.GetState())

	time.Sleep(5 * time.Millisecond)
	require.True(b.CanExecute())
	require.Equal(HalfOpen, b.GetState())
}

func TestHalfOpenClosesAfterEnoughSuccesses(t *testing.T) {
	require := require.New(t)

	b := New(Config{FailureThreshold: 1, HalfOpenSuccessThreshold: 2, RecoveryTimeout: time.Millisecond})
	b.RecordFailure()
	time.Sleep(5 * time.Millisecond)
	require.True(b.CanExecute())

	b.RecordSuccess()
	require.Equal(HalfOpen, b.GetState())
	b.RecordSuccess()
	require.Equal(Closed, b.GetState())
}

func TestHalfOpenFailureReopens(t *testing.T) {
	require := require.New(t)

	b := New(Config{FailureThreshold: 1, HalfOpenSuccessThreshold: 2, RecoveryTimeout: time.Millisecond})
	b.RecordFailure()
	time.Sleep(5 * time.Millisecond)
	require.True(b.CanExecute())

	b.RecordFailure()
	require.Equal(Open, b.GetState())
}

func TestResetClearsState(t *testing.T) {
	require := require.New(t)

	b := New(Config{FailureThreshold: 1, HalfOpenSuccessThreshold: 1, RecoveryTimeout: time.Hour})
	b.RecordFailure()
	require.Equal(Open, b.GetState())

	b.Reset()
	require.Equal(Closed, b.GetState())
	require.True(b.CanExecute())
}
