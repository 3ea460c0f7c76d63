// Package selector filters validators eligible for a round by bond status
// and D-GBDT reputation score, then seeds a deterministic Fisher-Yates
// shuffle from the round's HashTimer to assign primary and shadow
// verifier slots.
package selector

import (
	"sort"

	"github.com/dmrl789/ippan-core/chaintypes"
	"github.com/dmrl789/ippan-core/hashtimer"
	"github.com/zeebo/blake3"
)

// Candidate is one validator considered for selection.
type Candidate struct {
	ValidatorID    chaintypes.ID
	Bonded         bool
	ReputationRaw  int64 // D-GBDT score, fixedpoint.Scale units
}

// Params bounds eligibility: a candidate must be bonded and score at or
// above MinReputationRaw to be considered.
type Params struct {
	MinReputationRaw int64 `yaml:"min_reputation_raw" json:"min_reputation_raw"`
	VerifierCount    int   `yaml:"verifier_count" json:"verifier_count"`
}

// Result is the outcome of one round's verifier selection.
type Result struct {
	Primary []chaintypes.ID
	Shadow  []chaintypes.ID
}

// Eligible returns candidates passing the bond and reputation gates,
// sorted by validator id — the stable base ordering the shuffle seeds
// from, and the tie-break whenever two candidates would otherwise compare
// equal.
func Eligible(candidates []Candidate, params Params) []chaintypes.ID {
	ids := make([]chaintypes.ID, 0, len(candidates))
	for _, c := range candidates {
		if !c.Bonded {
			continue
		}
		if c.ReputationRaw < params.MinReputationRaw {
			continue
		}
		ids = append(ids, c.ValidatorID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	return ids
}

// verifierSelectionSeedTag domain-separates the Fisher-Yates seed from
// every other BLAKE3 use of a round's HashTimer (block ids, state roots,
// ...) so a collision in one context can never leak into another.
const verifierSelectionSeedTag = "DLC_VERIFIER_SELECTION_SEED"

// deriveSeed computes BLAKE3(verifierSelectionSeedTag || hashtimer bytes),
// truncated to 32 bytes.
func deriveSeed(seed hashtimer.HashTimer) []byte {
	h := blake3.New()
	h.Write([]byte(verifierSelectionSeedTag))
	seedBytes := seed.Bytes()
	h.Write(seedBytes[:])
	return h.Sum(nil)[:32]
}

// Shuffle performs a Fisher-Yates shuffle of ids seeded deterministically
// from seed: round t produces the same permutation on every honest node
// that computes it, since the only input is the round HashTimer and the
// sorted candidate list. The raw HashTimer bytes are never used directly
// as entropy; they first pass through deriveSeed's domain separation.
func Shuffle(ids []chaintypes.ID, seed hashtimer.HashTimer) []chaintypes.ID {
	out := make([]chaintypes.ID, len(ids))
	copy(out, ids)

	seedBytes := deriveSeed(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := int(drawUint64(seedBytes[:], uint64(i)) % uint64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Select runs Eligible then Shuffle and splits the permutation into the
// first VerifierCount primaries and the remainder as shadows.
func Select(candidates []Candidate, params Params, seed hashtimer.HashTimer) Result {
	eligible := Eligible(candidates, params)
	shuffled := Shuffle(eligible, seed)

	n := params.VerifierCount
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return Result{
		Primary: append([]chaintypes.ID{}, shuffled[:n]...),
		Shadow:  append([]chaintypes.ID{}, shuffled[n:]...),
	}
}

// drawUint64 derives the i-th pseudo-random draw from seed by hashing the
// seed bytes concatenated with a big-endian counter, taking the first 8
// digest bytes as a uint64. This keeps every draw a pure function of
// (seed, i) rather than depending on mutable RNG state.
func drawUint64(seed []byte, counter uint64) uint64 {
	var counterBytes [8]byte
	for i := 0; i < 8; i++ {
		counterBytes[7-i] = byte(counter >> (8 * i))
	}
	h := blake3.New()
	h.Write(seed)
	h.Write(counterBytes[:])
	sum := h.Sum(nil)

	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(sum[i])
	}
	return v
}
