package ledger

import (
	"testing"

	"github.com/dmrl789/ippan-core/chaintypes"
	"github.com/stretchr/testify/require"
)

func TestCreditIncreasesBalance(t *testing.T) {
	require := require.New(t)

	l := NewMemoryLedger()
	require.NoError(l.Credit(chaintypes.ID{1}, 100))
	require.Equal(uint64(100), l.Balance(chaintypes.ID{1}))
}

func TestApplyTransferMovesBalance(t *testing.T) {
	require := require.New(t)

	l := NewMemoryLedger()
	require.NoError(l.Credit(chaintypes.ID{1}, 100))

	tx := chaintypes.Transaction{From: chaintypes.ID{1}, To: chaintypes.ID{2}, Amount: 30, Nonce: 0}
	require.NoError(l.ApplyTransfer(tx))
	require.Equal(uint64(70), l.Balance(chaintypes.ID{1}))
	require.Equal(uint64(30), l.Balance(chaintypes.ID{2}))
	require.Equal(uint64(1), l.Nonce(chaintypes.ID{1}))
}

func TestApplyTransferRejectsNonceGap(t *testing.T) {
	require := require.New(t)

	l := NewMemoryLedger()
	require.NoError(l.Credit(chaintypes.ID{1}, 100))

	tx := chaintypes.Transaction{From: chaintypes.ID{1}, To: chaintypes.ID{2}, Amount: 30, Nonce: 1}
	err := l.ApplyTransfer(tx)
	require.ErrorIs(err, chaintypes.ErrNonceGap)
}

func TestApplyTransferRejectsInsufficientBalance(t *testing.T) {
	require := require.New(t)

	l := NewMemoryLedger()
	tx := chaintypes.Transaction{From: chaintypes.ID{1}, To: chaintypes.ID{2}, Amount: 30, Nonce: 0}
	err := l.ApplyTransfer(tx)
	require.ErrorIs(err, chaintypes.ErrInsufficientBalance)
}

func TestApplyTransferDoesNotMutateOnFailure(t *testing.T) {
	require := require.New(t)

	l := NewMemoryLedger()
	require.NoError(l.Credit(chaintypes.ID{1}, 10))

	tx := chaintypes.Transaction{From: chaintypes.ID{1}, To: chaintypes.ID{2}, Amount: 30, Nonce: 0}
	require.Error(l.ApplyTransfer(tx))
	require.Equal(uint64(10), l.Balance(chaintypes.ID{1}))
	require.Equal(uint64(0), l.Nonce(chaintypes.ID{1}))
}

func TestTotalSupplySumsAllBalances(t *testing.T) {
	require := require.New(t)

	l := NewMemoryLedger()
	require.NoError(l.Credit(chaintypes.ID{1}, 40))
	require.NoError(l.Credit(chaintypes.ID{2}, 60))
	require.Equal(uint64(100), l.TotalSupply())
}

var _ AccountLedger = (*MemoryLedger)(nil)
