// Package treasury tracks per-round, per-validator payout credits and
// settles them against an account ledger exactly once per round.
package treasury

import (
	"fmt"
	"sync"

	"github.com/dmrl789/ippan-core/chaintypes"
	"github.com/dmrl789/ippan-core/distribution"
	"github.com/dmrl789/ippan-core/ledger"
)

// Ledger tracks credited payouts by round and settles them into an
// AccountLedger idempotently — settling the same round twice is a no-op,
// not a double payment.
type Ledger struct {
	mu sync.Mutex

	payoutsByRound  map[chaintypes.RoundID][]distribution.Payout
	treasuryByRound map[chaintypes.RoundID]uint64
	treasuryTotal   uint64
	settledRounds   map[chaintypes.RoundID]struct{}
}

// New returns an empty treasury ledger.
func New() *Ledger {
	return &Ledger{
		payoutsByRound:  make(map[chaintypes.RoundID][]distribution.Payout),
		treasuryByRound: make(map[chaintypes.RoundID]uint64),
		settledRounds:   make(map[chaintypes.RoundID]struct{}),
	}
}

// CreditRoundPayouts records a round's distribution result. Calling this
// twice for the same round overwrites the prior record rather than
// accumulating it, since a round's payouts are computed once.
func (t *Ledger) CreditRoundPayouts(round chaintypes.RoundID, result distribution.Result) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.payoutsByRound[round] = result.Payouts
	t.treasuryTotal -= t.treasuryByRound[round]
	t.treasuryByRound[round] = result.TreasuryMicro
	t.treasuryTotal += result.TreasuryMicro
}

// PayoutsForRound returns the payouts credited for round, or nil if none.
func (t *Ledger) PayoutsForRound(round chaintypes.RoundID) []distribution.Payout {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]distribution.Payout{}, t.payoutsByRound[round]...)
}

// ValidatorTotal sums every payout credited to validator across all
// recorded rounds.
func (t *Ledger) ValidatorTotal(validator chaintypes.ID) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total uint64
	for _, payouts := range t.payoutsByRound {
		for _, p := range payouts {
			if p.ValidatorID == validator {
				total += p.AmountMicro
			}
		}
	}
	return total
}

// TreasuryBalance returns the accumulated remainder recycled from every
// round's distribution.
func (t *Ledger) TreasuryBalance() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.treasuryTotal
}

// SettleToAccounts credits round's payouts into acc exactly once. A
// second call for an already-settled round returns nil without touching
// acc again.
func (t *Ledger) SettleToAccounts(round chaintypes.RoundID, acc ledger.AccountLedger) error {
	t.mu.Lock()
	if _, done := t.settledRounds[round]; done {
		t.mu.Unlock()
		return nil
	}
	payouts := append([]distribution.Payout{}, t.payoutsByRound[round]...)
	t.settledRounds[round] = struct{}{}
	t.mu.Unlock()

	for _, p := range payouts {
		if err := acc.Credit(p.ValidatorID, p.AmountMicro); err != nil {
			return fmt.Errorf("treasury: settle round %d: %w", round, err)
		}
	}
	return nil
}
