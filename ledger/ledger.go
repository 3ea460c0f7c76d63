// Package ledger defines the narrow account-balance contract the round
// pipeline settles against, plus a deterministic in-memory reference
// implementation suitable for tests and single-node operation.
package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dmrl789/ippan-core/chaintypes"
)

// AccountLedger is the minimal balance-and-nonce contract the round
// executor needs. Implementations must apply transfers atomically per
// call and reject nonce gaps and insufficient balances rather than
// silently clamping them.
type AccountLedger interface {
	Balance(account chaintypes.ID) uint64
	Nonce(account chaintypes.ID) uint64
	ApplyTransfer(tx chaintypes.Transaction) error
	Credit(account chaintypes.ID, amountMicro uint64) error
	TotalSupply() uint64
}

// MemoryLedger is a mutex-guarded, deterministic in-memory AccountLedger.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[chaintypes.ID]uint64
	nonces   map[chaintypes.ID]uint64
}

// NewMemoryLedger returns an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[chaintypes.ID]uint64),
		nonces:   make(map[chaintypes.ID]uint64),
	}
}

// Balance returns account's current balance, 0 if unknown.
func (l *MemoryLedger) Balance(account chaintypes.ID) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

// Nonce returns the next expected nonce for account.
func (l *MemoryLedger) Nonce(account chaintypes.ID) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nonces[account]
}

// ApplyTransfer debits tx.From and credits tx.To, enforcing strict nonce
// sequencing and sufficient balance. Neither side is mutated on error.
func (l *MemoryLedger) ApplyTransfer(tx chaintypes.Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	expected := l.nonces[tx.From]
	if tx.Nonce != expected {
		return fmt.Errorf("ledger: %w: account %s expected %d got %d", chaintypes.ErrNonceGap, tx.From, expected, tx.Nonce)
	}
	if l.balances[tx.From] < tx.Amount {
		return fmt.Errorf("ledger: %w: account %s", chaintypes.ErrInsufficientBalance, tx.From)
	}

	l.balances[tx.From] -= tx.Amount
	l.balances[tx.To] += tx.Amount
	l.nonces[tx.From] = expected + 1
	return nil
}

// Credit adds amountMicro to account's balance out-of-band (emission and
// distribution payouts, not nonce-sequenced transfers).
func (l *MemoryLedger) Credit(account chaintypes.ID, amountMicro uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account] += amountMicro
	return nil
}

// TotalSupply sums every account balance, used to cross-check issuance
// against the emission engine's running total.
func (l *MemoryLedger) TotalSupply() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]chaintypes.ID, 0, len(l.balances))
	for id := range l.balances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	var total uint64
	for _, id := range ids {
		total += l.balances[id]
	}
	return total
}
