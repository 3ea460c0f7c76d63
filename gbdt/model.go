// Package gbdt implements integer-only Deterministic Gradient-Boosted
// Decision Tree inference: the reputation model that biases validator
// selection and reward weights. Scores are byte-identical across
// architectures because every step is integer arithmetic.
package gbdt

import (
	"encoding/json"
	"fmt"

	"github.com/dmrl789/ippan-core/canon"
)

// DecisionNode is a single node of a GBDTTree. A node is a leaf when
// FeatureIdx == -1 or Leaf is non-nil.
type DecisionNode struct {
	ID         int32  `json:"id"`
	FeatureIdx int32  `json:"feature_idx"`
	Threshold  int64  `json:"threshold"`
	Left       int32  `json:"left"`
	Right      int32  `json:"right"`
	Leaf       *int64 `json:"leaf"`
}

// IsLeaf reports whether the node is a leaf per spec.md §3's rule.
func (n DecisionNode) IsLeaf() bool {
	return n.FeatureIdx == -1 || n.Leaf != nil
}

// UnmarshalJSON accepts both "feature_idx" and "feature" as the spec's
// wire format (§6) allows either key for the same field.
func (n *DecisionNode) UnmarshalJSON(data []byte) error {
	type alias struct {
		ID         int32  `json:"id"`
		FeatureIdx *int32 `json:"feature_idx"`
		Feature    *int32 `json:"feature"`
		Threshold  int64  `json:"threshold"`
		Left       int32  `json:"left"`
		Right      int32  `json:"right"`
		Leaf       *int64 `json:"leaf"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	n.ID = a.ID
	n.Threshold = a.Threshold
	n.Left = a.Left
	n.Right = a.Right
	n.Leaf = a.Leaf
	switch {
	case a.FeatureIdx != nil:
		n.FeatureIdx = *a.FeatureIdx
	case a.Feature != nil:
		n.FeatureIdx = *a.Feature
	default:
		n.FeatureIdx = 0
	}
	return nil
}

// GBDTTree is an ordered list of nodes (node 0 is root) plus an ensemble
// weight expressed as a Fixed-scale integer.
type GBDTTree struct {
	Nodes  []DecisionNode `json:"nodes"`
	Weight int64          `json:"weight"`
}

// GBDTModel is the full tree ensemble plus bias and rescaling terms.
type GBDTModel struct {
	Version   uint32     `json:"version"`
	Scale     int64      `json:"scale"`
	Trees     []GBDTTree `json:"trees"`
	Bias      int64      `json:"bias"`
	PostScale int64      `json:"post_scale"`
}

// Validate enforces the structural invariants spec.md §4.4 requires before
// a model can be loaded: positive scale, non-empty trees, in-range
// children with a non-negative feature index on every internal node, and a
// value present on every leaf.
func (m GBDTModel) Validate() error {
	if m.Scale <= 0 {
		return fmt.Errorf("gbdt: scale must be positive, got %d", m.Scale)
	}
	if len(m.Trees) == 0 {
		return fmt.Errorf("gbdt: model has no trees")
	}
	for ti, tree := range m.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("gbdt: tree %d has no nodes", ti)
		}
		for ni, node := range tree.Nodes {
			if node.IsLeaf() {
				if node.Leaf == nil {
					return fmt.Errorf("gbdt: tree %d node %d is a leaf with no value", ti, ni)
				}
				continue
			}
			if node.FeatureIdx < 0 {
				return fmt.Errorf("gbdt: tree %d node %d has negative feature_idx", ti, ni)
			}
			if node.Left < 0 || int(node.Left) >= len(tree.Nodes) {
				return fmt.Errorf("gbdt: tree %d node %d has out-of-range left child %d", ti, ni, node.Left)
			}
			if node.Right < 0 || int(node.Right) >= len(tree.Nodes) {
				return fmt.Errorf("gbdt: tree %d node %d has out-of-range right child %d", ti, ni, node.Right)
			}
		}
	}
	return nil
}

// ModelHashHex returns the hex-encoded BLAKE3 hash of the model's
// canonical JSON encoding, proving two nodes loaded byte-identical models.
func ModelHashHex(m GBDTModel) (string, error) {
	sum, err := canon.HashCanonical(m)
	if err != nil {
		return "", fmt.Errorf("gbdt: hash model: %w", err)
	}
	return fmt.Sprintf("%x", sum), nil
}

// ModelHash binds a model hash to a round tag, so a hash can be compared
// only within the round it was produced for.
func ModelHash(m GBDTModel, roundTag string) (string, error) {
	sum, err := canon.HashCanonical(struct {
		Model GBDTModel `json:"model"`
		Round string    `json:"round_tag"`
	}{m, roundTag})
	if err != nil {
		return "", fmt.Errorf("gbdt: hash model with round tag: %w", err)
	}
	return fmt.Sprintf("%x", sum), nil
}
