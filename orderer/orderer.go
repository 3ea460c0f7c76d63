// Package orderer derives the canonical total transaction order for a
// round: blocks are sorted by (HashTimer time prefix, creator, block id),
// the transactions of each block are sorted by transaction id, and any
// transaction id seen more than once — a same-round fork — is dropped
// rather than double-applied. Each candidate transaction is additionally
// run past a caller-supplied validator; one that fails (bad nonce,
// insufficient balance, bad signature, fee over the cap) is recorded as a
// fork drop and ordering continues rather than aborting the round.
package orderer

import (
	"fmt"
	"sort"

	"github.com/dmrl789/ippan-core/chaintypes"
	"github.com/dmrl789/ippan-core/hashtimer"
)

// Result is the canonical ordering derived for one round.
type Result struct {
	OrderedTxIDs []chaintypes.BlockID
	ForkDrops    []chaintypes.BlockID
	BlockOrder   []chaintypes.BlockID
}

// Validator checks one candidate transaction — signature, nonce
// progression, balance sufficiency, fee-limit acceptance — against
// whatever state the caller is tracking. A non-nil error fails the
// transaction without failing the round. Implementations that mutate
// state on success (e.g. an AccountLedger.ApplyTransfer) are expected to
// leave state untouched on error, so nonce progression across multiple
// transactions from the same sender in one round is enforced simply by
// calling Validator in canonical order.
type Validator func(tx chaintypes.Transaction) error

// OrderRound sorts blocks deterministically and flattens their
// transactions into one canonical sequence, dropping duplicates and
// validator-rejected transactions.
//
// Window, if non-zero, restricts the round to transactions whose
// HashTimer falls within [window[0], window[1]); transactions outside it
// are treated as fork drops rather than silently ignored, so every input
// transaction is accounted for in exactly one output list.
//
// validate is called once per surviving candidate, in canonical order;
// nil means every transaction is accepted.
func OrderRound(blocks []chaintypes.Block, window [2]int64, validate Validator) (Result, error) {
	sorted := make([]chaintypes.Block, len(blocks))
	copy(sorted, blocks)
	sort.Slice(sorted, func(i, j int) bool {
		return lessBlock(sorted[i].Header, sorted[j].Header)
	})

	result := Result{
		OrderedTxIDs: make([]chaintypes.BlockID, 0),
		ForkDrops:    make([]chaintypes.BlockID, 0),
		BlockOrder:   make([]chaintypes.BlockID, 0, len(sorted)),
	}
	seen := make(map[chaintypes.BlockID]struct{})

	for _, block := range sorted {
		result.BlockOrder = append(result.BlockOrder, block.Header.ID)

		txs := make([]chaintypes.Transaction, len(block.Transactions))
		copy(txs, block.Transactions)
		sort.Slice(txs, func(i, j int) bool {
			return txs[i].ID.Less(txs[j].ID)
		})

		for _, tx := range txs {
			if _, dup := seen[tx.ID]; dup {
				result.ForkDrops = append(result.ForkDrops, tx.ID)
				continue
			}
			if !withinWindow(tx.HashTimer, window) {
				result.ForkDrops = append(result.ForkDrops, tx.ID)
				continue
			}
			seen[tx.ID] = struct{}{}
			if validate != nil {
				if err := validate(tx); err != nil {
					result.ForkDrops = append(result.ForkDrops, tx.ID)
					continue
				}
			}
			result.OrderedTxIDs = append(result.OrderedTxIDs, tx.ID)
		}
	}

	return result, nil
}

// lessBlock orders blocks by (hashtimer time prefix, creator, block id),
// matching the reference ordering crate: the digest half of the
// HashTimer never participates in block ordering, only its time prefix.
func lessBlock(a, b chaintypes.BlockHeader) bool {
	if ta, tb := a.HashTimer.Time(), b.HashTimer.Time(); ta != tb {
		return ta < tb
	}
	if a.Creator != b.Creator {
		return a.Creator.Less(b.Creator)
	}
	return a.ID.Less(b.ID)
}

func withinWindow(h hashtimer.HashTimer, window [2]int64) bool {
	if window[0] == 0 && window[1] == 0 {
		return true
	}
	t := h.Time()
	return t >= window[0] && t < window[1]
}

// ValidateAndAppend verifies every block's header id (parent constraints
// are not checked here; dagstore enforces them on insert); it returns
// chaintypes.ErrInvalidBlock for a block that fails verification rather
// than silently excluding it.
func ValidateAndAppend(blocks []chaintypes.Block) error {
	for _, block := range blocks {
		ok, err := chaintypes.VerifyHeaderID(block.Header)
		if err != nil {
			return fmt.Errorf("orderer: %w", err)
		}
		if !ok {
			return fmt.Errorf("orderer: %w: block %s", chaintypes.ErrInvalidBlock, block.Header.ID)
		}
	}
	return nil
}
