// Package dagstore is a content-addressed store for blocks, grounded on
// the teacher's dag package: a mutex-guarded map plus a tip set, extended
// with round-awareness and structural verification on insert.
package dagstore

import (
	"fmt"
	"sync"

	"github.com/dmrl789/ippan-core/chaintypes"
)

// Store holds every accepted block, indexed by id and by round, and tracks
// the current tip set (blocks with no accepted child).
type Store struct {
	mu sync.RWMutex

	blocks      map[chaintypes.BlockID]chaintypes.Block
	byRound     map[chaintypes.RoundID][]chaintypes.BlockID
	tips        map[chaintypes.BlockID]struct{}
	maxRoundSeen chaintypes.RoundID
}

// New returns an empty store.
func New() *Store {
	return &Store{
		blocks:  make(map[chaintypes.BlockID]chaintypes.Block),
		byRound: make(map[chaintypes.RoundID][]chaintypes.BlockID),
		tips:    make(map[chaintypes.BlockID]struct{}),
	}
}

// Insert verifies and stores a block. It returns chaintypes.ErrDuplicateInsertion
// if the block id is already known (idempotent, non-fatal), and
// chaintypes.ErrMissingParent if any declared parent has not yet been
// inserted. A parent declared in the same round as the block is rejected
// with chaintypes.ErrSameRoundParent — blocks may only extend strictly
// earlier rounds.
func (s *Store) Insert(block chaintypes.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.blocks[block.Header.ID]; exists {
		return chaintypes.ErrDuplicateInsertion
	}

	ok, err := chaintypes.VerifyHeaderID(block.Header)
	if err != nil {
		return fmt.Errorf("dagstore: verify header: %w", err)
	}
	if !ok {
		return fmt.Errorf("dagstore: %w: header id mismatch", chaintypes.ErrInvalidBlock)
	}

	for _, parentID := range block.Header.ParentIDs {
		parent, exists := s.blocks[parentID]
		if !exists {
			return fmt.Errorf("dagstore: %w: %s", chaintypes.ErrMissingParent, parentID)
		}
		if parent.Header.Round >= block.Header.Round {
			return fmt.Errorf("dagstore: %w: parent %s at round %d", chaintypes.ErrSameRoundParent, parentID, parent.Header.Round)
		}
	}

	s.blocks[block.Header.ID] = block
	s.byRound[block.Header.Round] = append(s.byRound[block.Header.Round], block.Header.ID)
	s.tips[block.Header.ID] = struct{}{}
	for _, parentID := range block.Header.ParentIDs {
		delete(s.tips, parentID)
	}
	if block.Header.Round > s.maxRoundSeen {
		s.maxRoundSeen = block.Header.Round
	}

	return nil
}

// Get returns the block for id, or chaintypes.ErrBlockNotFound.
func (s *Store) Get(id chaintypes.BlockID) (chaintypes.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	block, exists := s.blocks[id]
	if !exists {
		return chaintypes.Block{}, chaintypes.ErrBlockNotFound
	}
	return block, nil
}

// Tips returns the current tip set: blocks with no accepted child, in no
// particular order. Callers that need determinism must sort the result.
func (s *Store) Tips() []chaintypes.BlockID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tips := make([]chaintypes.BlockID, 0, len(s.tips))
	for tip := range s.tips {
		tips = append(tips, tip)
	}
	return tips
}

// AllHeadersAtRound returns every block header accepted at the given round,
// in insertion order.
func (s *Store) AllHeadersAtRound(round chaintypes.RoundID) []chaintypes.BlockHeader {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byRound[round]
	headers := make([]chaintypes.BlockHeader, 0, len(ids))
	for _, id := range ids {
		headers = append(headers, s.blocks[id].Header)
	}
	return headers
}

// ParentsOf returns the resolved parent blocks of id.
func (s *Store) ParentsOf(id chaintypes.BlockID) ([]chaintypes.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	block, exists := s.blocks[id]
	if !exists {
		return nil, chaintypes.ErrBlockNotFound
	}
	parents := make([]chaintypes.Block, 0, len(block.Header.ParentIDs))
	for _, parentID := range block.Header.ParentIDs {
		parent, exists := s.blocks[parentID]
		if !exists {
			return nil, fmt.Errorf("dagstore: %w: %s", chaintypes.ErrMissingParent, parentID)
		}
		parents = append(parents, parent)
	}
	return parents, nil
}

// MaxRoundSeen returns the highest round for which any block has been
// accepted, or 0 if the store is empty.
func (s *Store) MaxRoundSeen() chaintypes.RoundID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxRoundSeen
}

// Has reports whether a block id is already stored.
func (s *Store) Has(id chaintypes.BlockID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.blocks[id]
	return exists
}
