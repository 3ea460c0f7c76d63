package orderer

import (
	"fmt"
	"testing"

	"github.com/dmrl789/ippan-core/chaintypes"
	"github.com/dmrl789/ippan-core/hashtimer"
	"github.com/stretchr/testify/require"
)

func txWithTime(id byte, timeUs int64) chaintypes.Transaction {
	return chaintypes.Transaction{
		ID:        chaintypes.ID{id},
		HashTimer: hashtimer.Derive(hashtimer.ContextTx, timeUs, []byte("d"), []byte{id}, nil, nil),
	}
}

func blockWithTxs(headerID byte, timeUs int64, txs ...chaintypes.Transaction) chaintypes.Block {
	return blockFrom(headerID, chaintypes.ID{}, timeUs, txs...)
}

func blockFrom(headerID byte, creator chaintypes.ID, timeUs int64, txs ...chaintypes.Transaction) chaintypes.Block {
	return chaintypes.Block{
		Header: chaintypes.BlockHeader{
			ID:        chaintypes.ID{headerID},
			Creator:   creator,
			HashTimer: hashtimer.Derive(hashtimer.ContextBlock, timeUs, []byte("d"), []byte{headerID}, nil, nil),
		},
		Transactions: txs,
	}
}

func TestOrderRoundSortsBlocksByHashTimer(t *testing.T) {
	require := require.New(t)

	late := blockWithTxs(1, 2_000_000)
	early := blockWithTxs(2, 1_000_000)

	result, err := OrderRound([]chaintypes.Block{late, early}, [2]int64{}, nil)
	require.NoError(err)
	require.Equal([]chaintypes.BlockID{early.Header.ID, late.Header.ID}, result.BlockOrder)
}

// TestOrderRoundBreaksTimeTiesByCreatorThenID reproduces the reference
// ordering crate's tiebreak key: two blocks landing in the same
// HashTimer time prefix are ordered by creator before block id, not by
// the HashTimer digest.
func TestOrderRoundBreaksTimeTiesByCreatorThenID(t *testing.T) {
	require := require.New(t)

	const sameTime = int64(1_000_000)
	byZ := blockFrom(9, chaintypes.ID{0xff}, sameTime)
	byA := blockFrom(1, chaintypes.ID{0x01}, sameTime)

	result, err := OrderRound([]chaintypes.Block{byZ, byA}, [2]int64{}, nil)
	require.NoError(err)
	require.Equal([]chaintypes.BlockID{byA.Header.ID, byZ.Header.ID}, result.BlockOrder)
}

func TestOrderRoundSortsTxsWithinBlockByID(t *testing.T) {
	require := require.New(t)

	b := blockWithTxs(1, 1_000_000, txWithTime(5, 10), txWithTime(1, 10))

	result, err := OrderRound([]chaintypes.Block{b}, [2]int64{}, nil)
	require.NoError(err)
	require.Equal([]chaintypes.BlockID{{1}, {5}}, result.OrderedTxIDs)
	require.Empty(result.ForkDrops)
}

func TestOrderRoundDropsDuplicateTxAcrossBlocks(t *testing.T) {
	require := require.New(t)

	shared := txWithTime(9, 10)
	b1 := blockWithTxs(1, 1_000_000, shared)
	b2 := blockWithTxs(2, 2_000_000, shared)

	result, err := OrderRound([]chaintypes.Block{b1, b2}, [2]int64{}, nil)
	require.NoError(err)
	require.Equal([]chaintypes.BlockID{{9}}, result.OrderedTxIDs)
	require.Equal([]chaintypes.BlockID{{9}}, result.ForkDrops)
}

func TestOrderRoundDropsTxOutsideWindow(t *testing.T) {
	require := require.New(t)

	inside := txWithTime(1, 1_500_000)
	outside := txWithTime(2, 9_000_000)
	b := blockWithTxs(1, 1_000_000, inside, outside)

	result, err := OrderRound([]chaintypes.Block{b}, [2]int64{1_000_000, 2_000_000}, nil)
	require.NoError(err)
	require.Equal([]chaintypes.BlockID{{1}}, result.OrderedTxIDs)
	require.Equal([]chaintypes.BlockID{{2}}, result.ForkDrops)
}

// TestOrderRoundDropsInvalidTxAndContinues reproduces the scenario where
// one transaction among several fails validator acceptance: it becomes a
// fork drop and the rest of the round orders normally rather than the
// whole round failing.
func TestOrderRoundDropsInvalidTxAndContinues(t *testing.T) {
	require := require.New(t)

	txA := txWithTime(1, 10)
	txB := txWithTime(2, 20)
	txC := txWithTime(3, 30)
	txD := txWithTime(4, 40)
	b := blockWithTxs(1, 1_000_000, txA, txB, txC, txD)

	reject := chaintypes.ID{2}
	validate := func(tx chaintypes.Transaction) error {
		if tx.ID == reject {
			return fmt.Errorf("rejected")
		}
		return nil
	}

	result, err := OrderRound([]chaintypes.Block{b}, [2]int64{}, validate)
	require.NoError(err)
	require.Equal([]chaintypes.BlockID{{1}, {3}, {4}}, result.OrderedTxIDs)
	require.Equal([]chaintypes.BlockID{{2}}, result.ForkDrops)
}

func TestValidateAndAppendRejectsTamperedBlock(t *testing.T) {
	require := require.New(t)

	b := blockWithTxs(1, 1_000_000)
	b.Header.ID = chaintypes.ID{0xff}
	err := ValidateAndAppend([]chaintypes.Block{b})
	require.ErrorIs(err, chaintypes.ErrInvalidBlock)
}
