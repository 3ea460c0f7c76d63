package gbdt

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func leafVal(v int64) *int64 { return &v }

// s1Model builds the exact two-tree ensemble from spec.md §8 scenario S1.
func s1Model() GBDTModel {
	t1 := GBDTTree{
		Weight: 1_000_000,
		Nodes: []DecisionNode{
			{ID: 0, FeatureIdx: 0, Threshold: 0, Left: 1, Right: 2},
			{ID: 1, FeatureIdx: -1, Leaf: leafVal(300_000)},
			{ID: 2, FeatureIdx: -1, Leaf: leafVal(-50_000)},
		},
	}
	t2 := GBDTTree{
		Weight: 1_000_000,
		Nodes: []DecisionNode{
			{ID: 0, FeatureIdx: 3, Threshold: 500_000, Left: 1, Right: 2},
			{ID: 1, FeatureIdx: -1, Leaf: leafVal(200_000)},
			{ID: 2, FeatureIdx: -1, Leaf: leafVal(-100_000)},
		},
	}
	return GBDTModel{
		Version:   1,
		Scale:     1_000_000,
		Trees:     []GBDTTree{t1, t2},
		Bias:      0,
		PostScale: 1_000_000,
	}
}

func TestValidateAcceptsWellFormedModel(t *testing.T) {
	require.NoError(t, s1Model().Validate())
}

func TestValidateRejectsBadScale(t *testing.T) {
	m := s1Model()
	m.Scale = 0
	require.Error(t, m.Validate())
}

func TestValidateRejectsEmptyTree(t *testing.T) {
	m := s1Model()
	m.Trees[0].Nodes = nil
	require.Error(t, m.Validate())
}

func TestValidateRejectsOutOfRangeChild(t *testing.T) {
	m := s1Model()
	m.Trees[0].Nodes[0].Left = 99
	require.Error(t, m.Validate())
}

func TestValidateRejectsLeafWithoutValue(t *testing.T) {
	m := s1Model()
	m.Trees[0].Nodes[1].Leaf = nil
	m.Trees[0].Nodes[1].FeatureIdx = -1
	require.Error(t, m.Validate())
}

func TestScoreS1LeftLeft(t *testing.T) {
	require := require.New(t)
	m := s1Model()
	// feature[0] <= 0 -> left leaf 300_000; feature[3] <= 500_000 -> left leaf 200_000.
	features := []int64{-1, 0, 0, 400_000}
	require.Equal(int64(500_000), Score(m, features))
}

func TestScoreS1RightRight(t *testing.T) {
	require := require.New(t)
	m := s1Model()
	features := []int64{1, 0, 0, 600_000}
	require.Equal(int64(-150_000), Score(m, features))
}

func TestScoreThresholdEqualityGoesLeft(t *testing.T) {
	require := require.New(t)
	m := s1Model()
	// feature[0] == threshold(0) must take the left branch (<=, inclusive).
	features := []int64{0, 0, 0, 500_000}
	require.Equal(int64(500_000), Score(m, features))
}

func TestScoreOutOfRangeFeatureIndexTruncatesTreeToZero(t *testing.T) {
	require := require.New(t)
	m := s1Model()
	// Only 2 features supplied; tree 2 references feature index 3 -> 0 contribution for that tree.
	features := []int64{-1, 0}
	require.Equal(int64(300_000), Score(m, features))
}

func TestScorePostScaleRescales(t *testing.T) {
	require := require.New(t)
	m := s1Model()
	m.PostScale = 2_000_000 // double the final result
	features := []int64{-1, 0, 0, 400_000}
	require.Equal(int64(1_000_000), Score(m, features))
}

func TestScoreDeterministicAcrossRepetitions(t *testing.T) {
	require := require.New(t)
	m := s1Model()
	features := []int64{1, 2, 3, 400_000}
	first := Score(m, features)
	for i := 0; i < 10_000; i++ {
		require.Equal(first, Score(m, features))
	}
}

func TestModelHashStability(t *testing.T) {
	require := require.New(t)
	m := s1Model()
	h1, err := ModelHashHex(m)
	require.NoError(err)
	h2, err := ModelHashHex(m)
	require.NoError(err)
	require.Equal(h1, h2)
	require.Len(h1, 64)

	changed := s1Model()
	*changed.Trees[0].Nodes[1].Leaf = 300_001
	h3, err := ModelHashHex(changed)
	require.NoError(err)
	require.NotEqual(h1, h3)
}

func TestSaveAndLoadModelFile(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")

	m := s1Model()
	hashHex, err := SaveModelFile(path, m)
	require.NoError(err)

	loaded, err := LoadModelFile(path, hashHex)
	require.NoError(err)
	require.Equal(m.Scale, loaded.Scale)
	require.Equal(m.Bias, loaded.Bias)
	require.Len(loaded.Trees, 2)
}

func TestLoadModelFileRejectsHashMismatch(t *testing.T) {
	require := require.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")

	_, err := SaveModelFile(path, s1Model())
	require.NoError(err)

	_, err = LoadModelFile(path, "0000000000000000000000000000000000000000000000000000000000000000")
	require.Error(err)
}

// TestScoreTerminatesOnCyclicTree reproduces a model that passes
// Validate (every child index is in range) but loops back on itself:
// node 0 routes to node 1, which routes back to node 0. Score must
// terminate and fall back to 0 for that tree's contribution rather than
// hang.
func TestScoreTerminatesOnCyclicTree(t *testing.T) {
	require := require.New(t)

	cyclic := GBDTTree{
		Weight: 1_000_000,
		Nodes: []DecisionNode{
			{ID: 0, FeatureIdx: 0, Threshold: 0, Left: 1, Right: 1},
			{ID: 1, FeatureIdx: 0, Threshold: 0, Left: 0, Right: 0},
		},
	}
	m := GBDTModel{
		Version:   1,
		Scale:     1_000_000,
		Trees:     []GBDTTree{cyclic},
		Bias:      42,
		PostScale: 1_000_000,
	}
	require.NoError(m.Validate())

	done := make(chan int64, 1)
	go func() { done <- Score(m, []int64{-1}) }()
	select {
	case got := <-done:
		require.Equal(int64(42), got)
	case <-time.After(2 * time.Second):
		t.Fatal("Score did not terminate on a cyclic tree")
	}
}

func TestDecisionNodeAcceptsFeatureAlias(t *testing.T) {
	require := require.New(t)
	raw := []byte(`{"id":0,"left":1,"right":2,"feature":5,"threshold":10,"leaf":null}`)
	var n DecisionNode
	err := jsonUnmarshal(raw, &n)
	require.NoError(err)
	require.Equal(int32(5), n.FeatureIdx)
}

func jsonUnmarshal(data []byte, n *DecisionNode) error {
	return n.UnmarshalJSON(data)
}
