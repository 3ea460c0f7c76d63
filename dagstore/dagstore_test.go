package dagstore

import (
	"testing"

	"github.com/dmrl789/ippan-core/chaintypes"
	"github.com/stretchr/testify/require"
)

func block(t *testing.T, round chaintypes.RoundID, parents []chaintypes.BlockID) chaintypes.Block {
	t.Helper()
	header := chaintypes.BlockHeader{
		ParentIDs: parents,
		Round:     round,
		Creator:   chaintypes.ID{byte(round)},
	}
	id, err := chaintypes.ComputeBlockID(header)
	require.NoError(t, err)
	header.ID = id
	return chaintypes.Block{Header: header}
}

func TestInsertGenesisBlock(t *testing.T) {
	require := require.New(t)

	s := New()
	genesis := block(t, 1, nil)
	require.NoError(s.Insert(genesis))
	require.True(s.Has(genesis.Header.ID))
	require.Equal([]chaintypes.BlockID{genesis.Header.ID}, s.Tips())
}

func TestInsertRejectsDuplicate(t *testing.T) {
	require := require.New(t)

	s := New()
	genesis := block(t, 1, nil)
	require.NoError(s.Insert(genesis))
	require.ErrorIs(s.Insert(genesis), chaintypes.ErrDuplicateInsertion)
}

func TestInsertRejectsMissingParent(t *testing.T) {
	require := require.New(t)

	s := New()
	child := block(t, 2, []chaintypes.BlockID{{0xff}})
	require.ErrorIs(s.Insert(child), chaintypes.ErrMissingParent)
}

func TestInsertRejectsSameRoundParent(t *testing.T) {
	require := require.New(t)

	s := New()
	genesis := block(t, 1, nil)
	require.NoError(s.Insert(genesis))

	sibling := block(t, 1, []chaintypes.BlockID{genesis.Header.ID})
	require.ErrorIs(s.Insert(sibling), chaintypes.ErrSameRoundParent)
}

func TestInsertUpdatesTipsAndParents(t *testing.T) {
	require := require.New(t)

	s := New()
	genesis := block(t, 1, nil)
	require.NoError(s.Insert(genesis))

	child := block(t, 2, []chaintypes.BlockID{genesis.Header.ID})
	require.NoError(s.Insert(child))

	require.Equal([]chaintypes.BlockID{child.Header.ID}, s.Tips())

	parents, err := s.ParentsOf(child.Header.ID)
	require.NoError(err)
	require.Len(parents, 1)
	require.Equal(genesis.Header.ID, parents[0].Header.ID)
}

func TestAllHeadersAtRound(t *testing.T) {
	require := require.New(t)

	s := New()
	genesis := block(t, 1, nil)
	require.NoError(s.Insert(genesis))
	other := chaintypes.BlockHeader{Round: 1, Creator: chaintypes.ID{2}}
	id, err := chaintypes.ComputeBlockID(other)
	require.NoError(err)
	other.ID = id
	require.NoError(s.Insert(chaintypes.Block{Header: other}))

	headers := s.AllHeadersAtRound(1)
	require.Len(headers, 2)
}

func TestMaxRoundSeen(t *testing.T) {
	require := require.New(t)

	s := New()
	require.Equal(chaintypes.RoundID(0), s.MaxRoundSeen())

	genesis := block(t, 1, nil)
	require.NoError(s.Insert(genesis))
	child := block(t, 5, []chaintypes.BlockID{genesis.Header.ID})
	require.NoError(s.Insert(child))
	require.Equal(chaintypes.RoundID(5), s.MaxRoundSeen())
}

func TestGetUnknownBlock(t *testing.T) {
	require := require.New(t)

	s := New()
	_, err := s.Get(chaintypes.ID{1})
	require.ErrorIs(err, chaintypes.ErrBlockNotFound)
}

func TestInsertRejectsTamperedHeaderID(t *testing.T) {
	require := require.New(t)

	s := New()
	b := block(t, 1, nil)
	b.Header.ID = chaintypes.ID{0xee}
	require.ErrorIs(s.Insert(b), chaintypes.ErrInvalidBlock)
}
