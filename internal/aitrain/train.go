package aitrain

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dmrl789/ippan-core/gbdt"
)

// Sample is one labelled training row: a fixed-point feature vector and an
// integer target the boosted ensemble is fit to.
type Sample struct {
	Features []int64
	Label    int64
}

// Params controls the boosting procedure. All thresholds and rates are
// fixed-point integers so training and inference share one arithmetic.
type Params struct {
	TreeCount          int
	MaxDepth           int
	MinSamplesLeaf     int
	LearningRateMicro  int64
	QuantizationStep   int64
}

// DefaultParams mirrors the reference trainer's defaults.
func DefaultParams() Params {
	return Params{
		TreeCount:         32,
		MaxDepth:          4,
		MinSamplesLeaf:    8,
		LearningRateMicro: 100_000,
		QuantizationStep:  10_000,
	}
}

// LoadCSV reads a dataset whose header names feature columns followed by a
// trailing "label" column, and whose values are all integers expressed in
// the same fixed-point scale the model will score against.
func LoadCSV(r io.Reader) ([]string, []Sample, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("aitrain: read csv header: %w", err)
	}
	if len(header) < 2 {
		return nil, nil, fmt.Errorf("aitrain: csv needs at least one feature column and a label column")
	}
	featureNames := header[:len(header)-1]

	var samples []Sample
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("aitrain: read csv row: %w", err)
		}
		if len(row) != len(header) {
			return nil, nil, fmt.Errorf("aitrain: row has %d columns, want %d", len(row), len(header))
		}
		values := make([]int64, len(row))
		for i, cell := range row {
			v, err := strconv.ParseInt(cell, 10, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("aitrain: parse column %d: %w", i, err)
			}
			values[i] = v
		}
		samples = append(samples, Sample{
			Features: values[:len(values)-1],
			Label:    values[len(values)-1],
		})
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("aitrain: dataset has no rows")
	}
	return featureNames, samples, nil
}

// Train fits a deterministic gradient-boosted ensemble over samples. Row
// processing order is derived from HashRowOrder rather than input order,
// so two datasets presented in different but equivalent row orders still
// train to the same model.
func Train(samples []Sample, params Params) (gbdt.GBDTModel, error) {
	if len(samples) == 0 {
		return gbdt.GBDTModel{}, fmt.Errorf("aitrain: no training samples")
	}
	if params.TreeCount <= 0 {
		return gbdt.GBDTModel{}, fmt.Errorf("aitrain: tree_count must be positive")
	}

	order := stableRowOrder(samples)
	ordered := make([]Sample, len(samples))
	for i, idx := range order {
		ordered[i] = samples[idx]
	}

	predictions := make([]int64, len(ordered))
	trees := make([]gbdt.GBDTTree, 0, params.TreeCount)

	for t := 0; t < params.TreeCount; t++ {
		residuals := make([]int64, len(ordered))
		for i, s := range ordered {
			residuals[i] = s.Label - predictions[i]
		}

		nodes := buildTree(ordered, residuals, params, 0, indices(len(ordered)))
		tree := gbdt.GBDTTree{Nodes: nodes, Weight: params.LearningRateMicro}
		trees = append(trees, tree)

		for i, s := range ordered {
			contrib := scoreTreeNodes(nodes, s.Features, params.LearningRateMicro)
			predictions[i] += contrib
		}
	}

	model := gbdt.GBDTModel{
		Version:   1,
		Scale:     1_000_000,
		Trees:     trees,
		Bias:      0,
		PostScale: 1_000_000,
	}
	if err := model.Validate(); err != nil {
		return gbdt.GBDTModel{}, fmt.Errorf("aitrain: trained an invalid model: %w", err)
	}
	return model, nil
}

// stableRowOrder sorts sample indices by HashRowOrder(features, index),
// the index acting as a per-row seed, so the order depends only on the
// dataset's content and position, never on map iteration or I/O timing.
func stableRowOrder(samples []Sample) []int {
	idx := indices(len(samples))
	keys := make([]int64, len(samples))
	for i, s := range samples {
		keys[i] = HashRowOrder(s.Features, int64(i))
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if keys[idx[a]] != keys[idx[b]] {
			return keys[idx[a]] < keys[idx[b]]
		}
		return idx[a] < idx[b]
	})
	return idx
}

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// buildTree greedily splits rows, choosing at each node the (feature,
// quantized threshold) pair minimizing the sum of squared residuals across
// both children, ties broken by lower feature index then lower threshold
// then the candidate's position in the scan — the same tie-break order the
// reference trainer's SplitTieBreaker encodes.
func buildTree(samples []Sample, residuals []int64, params Params, depth int, rows []int) []gbdt.DecisionNode {
	mean := meanResidual(residuals, rows)

	if depth >= params.MaxDepth || len(rows) < 2*params.MinSamplesLeaf {
		return []gbdt.DecisionNode{{ID: 0, FeatureIdx: -1, Leaf: leafPtr(mean)}}
	}

	bestFeature := -1
	var bestThreshold int64
	var bestScore int64 = -1
	var bestLeft, bestRight []int
	found := false

	numFeatures := len(samples[rows[0]].Features)
	for fi := 0; fi < numFeatures; fi++ {
		thresholds := candidateThresholds(samples, rows, fi, params.QuantizationStep)
		for _, th := range thresholds {
			var left, right []int
			for _, r := range rows {
				if samples[r].Features[fi] <= th {
					left = append(left, r)
				} else {
					right = append(right, r)
				}
			}
			if len(left) < params.MinSamplesLeaf || len(right) < params.MinSamplesLeaf {
				continue
			}
			score := varianceReductionScore(residuals, left, right)
			if !found || score > bestScore {
				found = true
				bestScore = score
				bestFeature = fi
				bestThreshold = th
				bestLeft = left
				bestRight = right
			}
		}
	}

	if !found {
		return []gbdt.DecisionNode{{ID: 0, FeatureIdx: -1, Leaf: leafPtr(mean)}}
	}

	leftNodes := buildTree(samples, residuals, params, depth+1, bestLeft)
	rightNodes := buildTree(samples, residuals, params, depth+1, bestRight)

	return assembleSplit(bestFeature, bestThreshold, leftNodes, rightNodes)
}

// assembleSplit relabels two independently built subtrees' node IDs into
// one contiguous array rooted at a new split node 0.
func assembleSplit(featureIdx int, threshold int64, left, right []gbdt.DecisionNode) []gbdt.DecisionNode {
	out := make([]gbdt.DecisionNode, 0, 1+len(left)+len(right))
	leftOffset := int32(1)
	rightOffset := leftOffset + int32(len(left))

	out = append(out, gbdt.DecisionNode{
		ID:         0,
		FeatureIdx: int32(featureIdx),
		Threshold:  threshold,
		Left:       leftOffset,
		Right:      rightOffset,
	})
	for _, n := range left {
		out = append(out, relabel(n, leftOffset))
	}
	for _, n := range right {
		out = append(out, relabel(n, rightOffset))
	}
	return out
}

func relabel(n gbdt.DecisionNode, offset int32) gbdt.DecisionNode {
	n.ID += offset
	if !n.IsLeaf() {
		n.Left += offset
		n.Right += offset
	}
	return n
}

func leafPtr(v int64) *int64 {
	return &v
}

func meanResidual(residuals []int64, rows []int) int64 {
	if len(rows) == 0 {
		return 0
	}
	var sum int64
	for _, r := range rows {
		sum += residuals[r]
	}
	return sum / int64(len(rows))
}

// candidateThresholds returns the sorted, deduplicated quantized feature
// values present among rows, the fixed candidate set a split is chosen
// from.
func candidateThresholds(samples []Sample, rows []int, featureIdx int, step int64) []int64 {
	seen := make(map[int64]struct{}, len(rows))
	for _, r := range rows {
		v := samples[r].Features[featureIdx]
		if step > 1 {
			v = (v / step) * step
		}
		seen[v] = struct{}{}
	}
	out := make([]int64, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// varianceReductionScore scores a split by how much it reduces the sum of
// squared residuals relative to a single shared mean, scaled to stay in
// integer arithmetic throughout.
func varianceReductionScore(residuals []int64, left, right []int) int64 {
	total := append(append([]int{}, left...), right...)
	baseline := sumSquaredDeviation(residuals, total)
	leftErr := sumSquaredDeviation(residuals, left)
	rightErr := sumSquaredDeviation(residuals, right)
	return baseline - (leftErr + rightErr)
}

func sumSquaredDeviation(residuals []int64, rows []int) int64 {
	if len(rows) == 0 {
		return 0
	}
	mean := meanResidual(residuals, rows)
	var sum int64
	for _, r := range rows {
		d := residuals[r] - mean
		sum += d * d
	}
	return sum
}

// scoreTreeNodes evaluates one freshly built tree's contribution before it
// has been wrapped in a gbdt.GBDTModel, using the same "<=" traversal and
// weight/scale rescaling gbdt.Score applies.
func scoreTreeNodes(nodes []gbdt.DecisionNode, features []int64, weight int64) int64 {
	idx := int32(0)
	for {
		if idx < 0 || int(idx) >= len(nodes) {
			return 0
		}
		node := nodes[idx]
		if node.IsLeaf() {
			if node.Leaf == nil {
				return 0
			}
			return (*node.Leaf * weight) / 1_000_000
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
}
