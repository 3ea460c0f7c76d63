// Package distribution splits a round's emission and fees across the
// validators that participated, weighted by role in basis points, using
// big.Int intermediates so the arithmetic never loses precision the way
// naive uint64 multiplication would overflow it. Whatever the integer
// division leaves on the table is recycled to the treasury rather than
// dropped.
package distribution

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/dmrl789/ippan-core/chaintypes"
)

// RoleWeights gives each participation role a basis-points weight
// (out of 10_000) used to scale a validator's share of the round payout.
// RoleBoth has no independent weight: it uses the larger of the two.
type RoleWeights struct {
	ProposerBps uint32 `yaml:"proposer_bps" json:"proposer_bps"`
	VerifierBps uint32 `yaml:"verifier_bps" json:"verifier_bps"`
}

// DefaultRoleWeights matches the named mainnet weights: verifying is
// weighted four times a plain proposal.
func DefaultRoleWeights() RoleWeights {
	return RoleWeights{ProposerBps: 2_000, VerifierBps: 8_000}
}

func (w RoleWeights) forRole(role chaintypes.Role) uint32 {
	switch role {
	case chaintypes.RoleProposer:
		return w.ProposerBps
	case chaintypes.RoleVerifier:
		return w.VerifierBps
	case chaintypes.RoleBoth:
		if w.ProposerBps > w.VerifierBps {
			return w.ProposerBps
		}
		return w.VerifierBps
	default:
		return 0
	}
}

// Payout is one validator's settled share of a round's distribution.
type Payout struct {
	ValidatorID chaintypes.ID
	AmountMicro uint64
}

// Result is the full outcome of splitting a round's pool.
type Result struct {
	Payouts        []Payout
	TreasuryMicro  uint64
}

// CheckFeeCap rejects a round whose total collected fees exceed capMicro.
func CheckFeeCap(totalFeesMicro, capMicro uint64) error {
	if totalFeesMicro > capMicro {
		return fmt.Errorf("distribution: %w: %d > %d", chaintypes.ErrFeeCapExceeded, totalFeesMicro, capMicro)
	}
	return nil
}

// Distribute splits poolMicro (emission + fees, already fee-cap-checked)
// across participants proportional to their role weight. Validator ids
// are processed in sorted order so the deterministic remainder always
// lands identically across nodes. Any weight-zero participant receives
// nothing and contributes nothing to the denominator.
func Distribute(poolMicro uint64, participants []chaintypes.Participation, weights RoleWeights) Result {
	sorted := make([]chaintypes.Participation, len(participants))
	copy(sorted, participants)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ValidatorID.Less(sorted[j].ValidatorID)
	})

	// A participant's weight is role weight times blocks handled — a
	// participant with zero blocks (proposed or verified) gets zero weight
	// regardless of role.
	totalWeight := new(big.Int)
	perParticipantWeight := make([]*big.Int, len(sorted))
	for i, p := range sorted {
		blocks := uint64(p.BlocksProposed) + uint64(p.BlocksVerified)
		w := new(big.Int).Mul(big.NewInt(int64(weights.forRole(p.Role))), new(big.Int).SetUint64(blocks))
		perParticipantWeight[i] = w
		totalWeight.Add(totalWeight, w)
	}

	result := Result{Payouts: make([]Payout, 0, len(sorted))}
	if totalWeight.Sign() == 0 {
		result.TreasuryMicro = poolMicro
		return result
	}

	pool := new(big.Int).SetUint64(poolMicro)
	distributed := new(big.Int)

	for i, p := range sorted {
		if perParticipantWeight[i].Sign() == 0 {
			continue
		}
		share := new(big.Int).Mul(pool, perParticipantWeight[i])
		share.Quo(share, totalWeight)
		distributed.Add(distributed, share)
		result.Payouts = append(result.Payouts, Payout{
			ValidatorID: p.ValidatorID,
			AmountMicro: share.Uint64(),
		})
	}

	remainder := new(big.Int).Sub(pool, distributed)
	result.TreasuryMicro = remainder.Uint64()
	return result
}
