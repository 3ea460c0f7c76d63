// Package determinism produces the cross-node comparison artifact used to
// prove that every node computed identical features, scores, and model
// hash for a round: a canonical JSON document, sorted by validator id, fit
// for byte-for-byte diffing between nodes.
package determinism

import (
	"runtime"

	"github.com/dmrl789/ippan-core/canon"
	"github.com/dmrl789/ippan-core/features"
	"github.com/dmrl789/ippan-core/gbdt"
	"github.com/dmrl789/ippan-core/hashtimer"
)

// NodeRecord is one validator's contribution to the artifact.
type NodeRecord struct {
	ValidatorID string  `json:"validator_id"`
	Telemetry   features.Telemetry `json:"telemetry"`
	Features    []int64 `json:"features"`
	Score       int64   `json:"score"`
}

// Artifact is the complete determinism snapshot for one round.
type Artifact struct {
	Arch           string       `json:"arch"`
	RoundHashTimer string       `json:"round_hash_timer"`
	ModelHash      string       `json:"model_hash"`
	Nodes          []NodeRecord `json:"nodes"`
}

// Build extracts features and scores for every validator in telemetry
// against model, and assembles the artifact sorted by validator id —
// Extract already sorts, so the only remaining step is to score each
// vector and attach the model/round identity.
func Build(telemetry map[string]features.Telemetry, ippanTimeMedianUs int64, model gbdt.GBDTModel, roundHashTimer hashtimer.HashTimer) (Artifact, error) {
	modelHash, err := gbdt.ModelHashHex(model)
	if err != nil {
		return Artifact{}, err
	}

	vectors := features.Extract(telemetry, ippanTimeMedianUs)
	nodes := make([]NodeRecord, 0, len(vectors))
	for _, v := range vectors {
		nodes = append(nodes, NodeRecord{
			ValidatorID: v.ValidatorID,
			Telemetry:   telemetry[v.ValidatorID],
			Features:    v.Values,
			Score:       gbdt.Score(model, v.Values),
		})
	}

	return Artifact{
		Arch:           runtime.GOARCH,
		RoundHashTimer: roundHashTimer.ToHex(),
		ModelHash:      modelHash,
		Nodes:          nodes,
	}, nil
}

// Hash computes the canonical hash of the artifact, the value two nodes
// compare to confirm they reached byte-identical determinism.
func Hash(a Artifact) ([32]byte, error) {
	return canon.HashCanonical(a)
}

// JSON renders the artifact as canonical JSON bytes.
func JSON(a Artifact) ([]byte, error) {
	return canon.CanonicalJSON(a)
}
