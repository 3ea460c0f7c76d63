package gbdt

import "math/big"

// Score evaluates the model on a feature vector per spec.md §4.4:
//
//  1. acc starts at model.Bias.
//  2. For each tree, traverse from node 0; at an internal node the "<="
//     rule is authoritative (equality goes left); at a leaf, the
//     contribution is (leaf*tree.Weight)/model.Scale via a 128-bit
//     intermediate truncated toward zero, saturating-added into acc.
//  3. The final accumulator is rescaled by PostScale/Scale unless they are
//     equal.
//
// An out-of-range feature index or child index truncates only that tree's
// contribution to zero; it never fails the whole model (models with such
// defects are expected to have already been rejected by Validate at load
// time).
func Score(model GBDTModel, features []int64) int64 {
	acc := model.Bias
	for _, tree := range model.Trees {
		contrib := evaluateTree(tree, features, model.Scale)
		acc = saturatingAdd(acc, contrib)
	}
	if model.PostScale != model.Scale {
		acc = mulDivTruncate(acc, model.PostScale, model.Scale)
	}
	return acc
}

// evaluateTree bounds its traversal to len(tree.Nodes) steps: a tree can
// have at most that many edges without revisiting a node, so a model
// with a cycle (one that slipped past Validate) truncates to 0 instead
// of looping forever.
func evaluateTree(tree GBDTTree, features []int64, scale int64) int64 {
	if len(tree.Nodes) == 0 {
		return 0
	}

	idx := int32(0)
	for steps := 0; steps <= len(tree.Nodes); steps++ {
		if idx < 0 || int(idx) >= len(tree.Nodes) {
			return 0
		}
		node := tree.Nodes[idx]
		if node.IsLeaf() {
			if node.Leaf == nil {
				return 0
			}
			return mulDivTruncate(*node.Leaf, tree.Weight, scale)
		}
		fi := int(node.FeatureIdx)
		if fi < 0 || fi >= len(features) {
			return 0
		}
		if features[fi] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
	return 0
}

// mulDivTruncate computes (a*b)/scale via a 128-bit intermediate,
// truncated toward zero.
func mulDivTruncate(a, b, scale int64) int64 {
	if scale == 0 {
		return 0
	}
	prod := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	prod.Quo(prod, big.NewInt(scale))
	return saturateBig(prod)
}

func saturatingAdd(a, b int64) int64 {
	sum := new(big.Int).Add(big.NewInt(a), big.NewInt(b))
	return saturateBig(sum)
}

func saturateBig(v *big.Int) int64 {
	const maxI64 = int64(1<<63 - 1)
	const minI64 = -maxI64 - 1
	max := big.NewInt(maxI64)
	min := big.NewInt(minI64)
	if v.Cmp(max) > 0 {
		return maxI64
	}
	if v.Cmp(min) < 0 {
		return minI64
	}
	return v.Int64()
}
