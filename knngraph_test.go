package knngraph

import (
	"context"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/knngraph/distance"
)

func matrixFrom(t *testing.T, dim int, cols ...[]float32) *Matrix {
	t.Helper()
	m := NewMatrix(dim, len(cols))
	for i, c := range cols {
		m.SetCol(i, c)
	}
	return m
}

func uniformMatrix(t *testing.T, dim, n int, seed int64) *Matrix {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	m := NewMatrix(dim, n)
	col := make([]float32, dim)
	for i := 0; i < n; i++ {
		for d := range col {
			col[d] = rng.Float32()
		}
		m.SetCol(i, col)
	}
	return m
}

func TestBuild_TrivialPair(t *testing.T) {
	data := matrixFrom(t, 2, []float32{0, 0}, []float32{1, 0})

	g, err := Build(context.Background(), data,
		WithK(1), WithThreshold(2), WithTrees(1), WithMaxIter(1),
	)
	require.NoError(t, err)

	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []int32{1}, g.Neighbors(0))
	assert.Equal(t, []int32{0}, g.Neighbors(1))
}

func TestBuild_ColinearTriple(t *testing.T) {
	data := matrixFrom(t, 1, []float32{0}, []float32{1}, []float32{3})

	g, err := Build(context.Background(), data,
		WithK(2), WithThreshold(3), WithTrees(1), WithMaxIter(1),
	)
	require.NoError(t, err)

	assert.ElementsMatch(t, []int32{1, 2}, g.Neighbors(0))
	assert.ElementsMatch(t, []int32{0, 2}, g.Neighbors(1))
	assert.ElementsMatch(t, []int32{0, 1}, g.Neighbors(2))
}

func TestBuild_Square(t *testing.T) {
	data := matrixFrom(t, 2,
		[]float32{0, 0}, []float32{1, 0}, []float32{1, 1}, []float32{0, 1},
	)

	g, err := Build(context.Background(), data,
		WithK(2), WithThreshold(3), WithTrees(3), WithMaxDepth(0), WithMaxIter(1),
	)
	require.NoError(t, err)

	// Each corner's two nearest are its edge-adjacent corners, never the
	// diagonal.
	adjacent := [][]int32{{1, 3}, {0, 2}, {1, 3}, {0, 2}}
	for i, want := range adjacent {
		assert.ElementsMatch(t, want, g.Neighbors(i), "corner %d", i)
	}
}

func TestBuild_Duplicates(t *testing.T) {
	// Two coincident points at the origin plus three distinct points.
	data := matrixFrom(t, 2,
		[]float32{0, 0}, []float32{0, 0}, []float32{1, 0}, []float32{0, 2}, []float32{3, 3},
	)

	g, err := Build(context.Background(), data,
		WithK(2), WithThreshold(4), WithTrees(1), WithMaxDepth(0), WithMaxIter(1),
	)
	require.NoError(t, err)

	// The coincident pair has distance zero to each other; the duplicate
	// rule skips it and selects the next-nearest distinct points.
	assert.ElementsMatch(t, []int32{2, 3}, g.Neighbors(0))
	assert.ElementsMatch(t, []int32{2, 3}, g.Neighbors(1))
	assert.ElementsMatch(t, []int32{0, 1}, g.Neighbors(2))
}

func TestBuild_Recall(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping recall test in short mode")
	}

	const (
		dim = 10
		n   = 1500
		k   = 15
	)
	data := uniformMatrix(t, dim, n, 99)

	g, err := Build(context.Background(), data,
		WithK(k), WithThreshold(2*k), WithTrees(12), WithMaxIter(3), WithSeed(7),
	)
	require.NoError(t, err)

	exact := BruteForce(data, k, distance.MetricEuclidean)

	var hits, total int
	for i := 0; i < n; i++ {
		truth := make(map[int32]bool, k)
		for _, j := range exact.Neighbors(i) {
			truth[j] = true
		}
		total += len(truth)
		for _, j := range g.Neighbors(i) {
			if truth[j] {
				hits++
			}
		}
	}

	recall := float64(hits) / float64(total)
	assert.GreaterOrEqual(t, recall, 0.9, "recall %f", recall)
}

// abortingProgress flips its abort flag once enough work has been
// reported, stopping the build mid-forest.
type abortingProgress struct {
	limit   int64
	count   atomic.Int64
	aborted atomic.Bool
}

func (p *abortingProgress) Increment(n int) {
	if p.count.Add(int64(n)) >= p.limit {
		p.aborted.Store(true)
	}
}

func (p *abortingProgress) Aborted() bool { return p.aborted.Load() }

func TestBuild_Abort(t *testing.T) {
	data := uniformMatrix(t, 4, 600, 3)

	g, err := Build(context.Background(), data,
		WithK(5), WithThreshold(10), WithTrees(8), WithMaxIter(2),
		WithProgress(&abortingProgress{limit: 600}),
	)
	require.NoError(t, err)

	// An aborted build yields an empty graph, never partial neighborhoods.
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 0, g.K())
}

func TestBuild_InvalidParameters(t *testing.T) {
	data := matrixFrom(t, 1, []float32{0}, []float32{1})

	_, err := Build(context.Background(), nil, WithK(1))
	assert.ErrorIs(t, err, ErrNilData)

	var ik *ErrInvalidK
	_, err = Build(context.Background(), data, WithK(5), WithThreshold(3))
	require.ErrorAs(t, err, &ik)
	assert.Equal(t, 5, ik.K)

	var ip *ErrInvalidParameter
	_, err = Build(context.Background(), data, WithK(1), WithThreshold(0))
	assert.ErrorAs(t, err, &ip)

	_, err = Build(context.Background(), data, WithK(1), WithTrees(0))
	assert.ErrorAs(t, err, &ip)

	_, err = Build(context.Background(), data, WithK(1), WithMaxIter(-1))
	assert.ErrorAs(t, err, &ip)
}

func TestBuild_MalformedInput(t *testing.T) {
	data := matrixFrom(t, 1, []float32{0})

	_, err := Build(context.Background(), data, WithK(1), WithThreshold(2), WithTrees(1))
	assert.ErrorIs(t, err, ErrTreeSplitFailure)
}

func TestBuild_SelfExclusionAndDistinctness(t *testing.T) {
	data := uniformMatrix(t, 5, 300, 11)

	g, err := Build(context.Background(), data,
		WithK(10), WithThreshold(20), WithTrees(8), WithMaxIter(2), WithSeed(5),
	)
	require.NoError(t, err)

	for i := 0; i < g.Len(); i++ {
		nbrs := g.Neighbors(i)
		require.NotEmpty(t, nbrs, "point %d has no neighbors", i)

		seen := make(map[int32]bool, len(nbrs))
		for _, j := range nbrs {
			assert.NotEqual(t, int32(i), j, "point %d lists itself", i)
			assert.False(t, seen[j], "point %d lists %d twice", i, j)
			seen[j] = true
		}
	}
}

func TestBuild_Deterministic(t *testing.T) {
	data := uniformMatrix(t, 4, 200, 17)

	opts := []Option{
		WithK(8), WithThreshold(16), WithTrees(6), WithMaxIter(2), WithSeed(23),
	}

	g1, err := Build(context.Background(), data, opts...)
	require.NoError(t, err)
	g2, err := Build(context.Background(), data, opts...)
	require.NoError(t, err)

	assert.Equal(t, g1.NeighborMatrix().Data(), g2.NeighborMatrix().Data())
}

// More refinement iterations can only tighten the neighborhoods: every
// iteration reconsiders the previous neighbors alongside the expansion
// candidates.
func TestBuild_MonotoneImprovement(t *testing.T) {
	data := uniformMatrix(t, 6, 400, 29)

	mean := func(maxIter int) float64 {
		g, err := Build(context.Background(), data,
			WithK(8), WithThreshold(16), WithTrees(6), WithMaxIter(maxIter), WithSeed(31),
		)
		require.NoError(t, err)
		return g.Stats(data).MeanDistance
	}

	m1 := mean(1)
	m2 := mean(2)
	m3 := mean(3)

	assert.LessOrEqual(t, m2, m1+1e-5)
	assert.LessOrEqual(t, m3, m2+1e-5)
}

func TestBuild_Cosine(t *testing.T) {
	// Under cosine, the near-colinear point wins; under Euclidean, the
	// spatially closest one does.
	data := matrixFrom(t, 2,
		[]float32{1, 0}, []float32{10, 1}, []float32{0, 1},
	)

	g, err := Build(context.Background(), data,
		WithK(1), WithThreshold(3), WithTrees(1), WithMaxIter(1),
		WithMetricName("Cosine"),
	)
	require.NoError(t, err)
	assert.Equal(t, []int32{1}, g.Neighbors(0))
	assert.Equal(t, distance.MetricCosine, g.Metric())

	g, err = Build(context.Background(), data,
		WithK(1), WithThreshold(3), WithTrees(1), WithMaxIter(1),
		WithMetricName("Euclidean"),
	)
	require.NoError(t, err)
	assert.Equal(t, []int32{2}, g.Neighbors(0))

	// Unrecognized metric names fall back to Euclidean.
	g, err = Build(context.Background(), data,
		WithK(1), WithThreshold(3), WithTrees(1), WithMaxIter(1),
		WithMetricName("manhattan"),
	)
	require.NoError(t, err)
	assert.Equal(t, []int32{2}, g.Neighbors(0))
	assert.Equal(t, distance.MetricEuclidean, g.Metric())
}

func TestBuild_ContextCancelled(t *testing.T) {
	data := uniformMatrix(t, 4, 200, 41)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, data, WithK(5), WithThreshold(10), WithTrees(4))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_CountingProgress(t *testing.T) {
	data := uniformMatrix(t, 3, 128, 43)

	var prog CountingProgress
	_, err := Build(context.Background(), data,
		WithK(4), WithThreshold(8), WithTrees(2), WithMaxIter(2),
		WithProgress(&prog),
	)
	require.NoError(t, err)

	// Trim and refinement account one unit per point per pass; the forest
	// phase adds leaf-sized chunks on top.
	assert.GreaterOrEqual(t, prog.Count(), int64(128*3))
}
