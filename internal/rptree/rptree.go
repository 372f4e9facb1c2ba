// Package rptree builds the random-projection-tree forest that seeds the
// k-NN graph with candidate neighbors.
//
// Each tree recursively splits the point set by a random hyperplane through
// two randomly chosen points, partitioning at the median projection. Points
// that end up in the same leaf are recorded as mutual candidates. The
// candidate sets accumulated across all trees are the input to the trim and
// neighborhood-expansion phases.
package rptree

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/viterin/vek/vek32"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/internal/pool"
	"github.com/hupe1980/knngraph/internal/queue"
	"github.com/hupe1980/knngraph/model"
)

var (
	// ErrSplitFailure is returned when tree recursion reaches fewer than
	// two points, which indicates malformed input.
	ErrSplitFailure = errors.New("rptree: tree split failure")

	// ErrDegenerate is returned when a candidate buffer is too small after
	// a reduction pass.
	ErrDegenerate = errors.New("rptree: degenerate candidate buffer")

	// ErrEmptyColumn is returned when trimming leaves a point without any
	// candidate neighbors.
	ErrEmptyColumn = errors.New("rptree: empty neighbor column after trim")
)

// Progress receives completion counts and exposes the cooperative abort
// flag polled by tree and trim workers.
type Progress interface {
	Increment(n int)
	Aborted() bool
}

// Options configures a forest build.
type Options struct {
	// Threshold is the maximum leaf size; recursion stops below it.
	Threshold int

	// Trees is the number of independent trees built in parallel.
	Trees int

	// MaxDepth caps the recursion depth of each tree.
	MaxDepth int

	// Seed seeds the per-tree random streams.
	Seed uint64
}

// Build runs the forest phase and returns the per-point candidate buffers.
//
// Buffer i is seeded with i itself, grown by leaf co-occurrences across all
// trees, and finally sorted and deduplicated. The self entry is kept: it
// seeds the visited set of the expansion phase.
func Build(ctx context.Context, data *model.Matrix, opts Options, prog Progress) ([][]int32, error) {
	n := data.Cols()

	buffers := make([][]int32, n)
	for i := range buffers {
		buffers[i] = append(make([]int32, 0, 8), int32(i))
	}

	b := &builder{
		data:      data,
		threshold: opts.Threshold,
		buffers:   buffers,
		prog:      prog,
	}

	all := make([]int32, n)
	for i := range all {
		all[i] = int32(i)
	}

	g, gctx := errgroup.WithContext(ctx)
	for t := 0; t < opts.Trees; t++ {
		g.Go(func() error {
			if prog.Aborted() || gctx.Err() != nil {
				return nil
			}
			rng := rand.New(rand.NewPCG(opts.Seed, uint64(t)))
			if err := b.searchTree(all, opts.MaxDepth, rng); err != nil {
				return err
			}
			// The union across trees is commutative, so the first tree
			// skips the reduction; every later completion compacts the
			// buffers while the remaining trees keep appending.
			if t > 0 && !prog.Aborted() {
				return b.reduce(3)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if prog.Aborted() {
		return buffers, nil
	}

	// Appends from the last tree to finish land after its reduction pass,
	// so compact once more before anyone consumes the buffers.
	if err := b.reduce(2); err != nil {
		return nil, err
	}

	return buffers, nil
}

type builder struct {
	data      *model.Matrix
	threshold int

	mu      sync.Mutex
	buffers [][]int32

	prog Progress
}

// reduce sorts and deduplicates every candidate buffer. A buffer smaller
// than minSize after deduplication means the data is too degenerate for the
// forest to produce usable neighborhoods.
func (b *builder) reduce(minSize int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, buf := range b.buffers {
		slices.Sort(buf)
		b.buffers[i] = slices.Compact(buf)
		if len(b.buffers[i]) < minSize {
			return ErrDegenerate
		}
	}

	return nil
}

func (b *builder) searchTree(indices []int32, depth int, rng *rand.Rand) error {
	if b.prog.Aborted() {
		return nil
	}

	n := len(indices)
	if n < 2 {
		return ErrSplitFailure
	}
	if n == 2 {
		b.mu.Lock()
		b.buffers[indices[0]] = append(b.buffers[indices[0]], indices[1])
		b.buffers[indices[1]] = append(b.buffers[indices[1]], indices[0])
		b.mu.Unlock()
		b.prog.Increment(2)
		return nil
	}
	if n < b.threshold || depth == 0 {
		b.recordLeaf(indices)
		return nil
	}

	proj, ok := b.project(indices, rng)
	if !ok {
		// The two pivots coincide in space; no usable hyperplane exists.
		return b.splitPositional(indices, depth, rng)
	}

	mid := median(proj)
	left := make([]int32, 0, n/2+1)
	right := make([]int32, 0, n/2+1)
	for i, idx := range indices {
		if proj[i] > mid {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	// Heavy ties on the median collapse one side; retrying the projection
	// would recurse forever on duplicated data, so fall back to a split by
	// position.
	if len(left) < 2 || len(right) < 2 {
		return b.splitPositional(indices, depth, rng)
	}

	if err := b.searchTree(left, depth-1, rng); err != nil {
		return err
	}
	return b.searchTree(right, depth-1, rng)
}

// project draws two distinct pivot points, forms the hyperplane through
// their midpoint with unit normal along their difference, and returns the
// signed projection of every point onto that normal. It reports false when
// the pivots coincide in space.
func (b *builder) project(indices []int32, rng *rand.Rand) ([]float32, bool) {
	n := len(indices)

	pi := rng.IntN(n)
	qi := rng.IntN(n)
	if pi == qi {
		qi = (qi + 1) % n
	}
	xp := b.data.Col(int(indices[pi]))
	xq := b.data.Col(int(indices[qi]))

	v := make([]float32, len(xp))
	for d := range v {
		v[d] = xp[d] - xq[d]
	}
	norm2 := vek32.Dot(v, v)
	if norm2 == 0 {
		return nil, false
	}
	vek32.MulNumber_Inplace(v, 1/float32(math.Sqrt(float64(norm2))))

	// π(s) = ⟨x_s − m, v⟩ with m the pivot midpoint; expanding the inner
	// product avoids materializing x_s − m per point.
	mv := (vek32.Dot(xp, v) + vek32.Dot(xq, v)) / 2

	proj := make([]float32, n)
	for i, idx := range indices {
		proj[i] = vek32.Dot(b.data.Col(int(idx)), v) - mv
	}

	return proj, true
}

// splitPositional is the degenerate-split fallback: the point set is cut
// into two halves by position. Sets too small to yield two viable halves
// become a leaf instead.
func (b *builder) splitPositional(indices []int32, depth int, rng *rand.Rand) error {
	n := len(indices)
	if n < 4 {
		b.recordLeaf(indices)
		return nil
	}
	if err := b.searchTree(indices[:n/2], depth-1, rng); err != nil {
		return err
	}
	return b.searchTree(indices[n/2:], depth-1, rng)
}

// recordLeaf records every ordered pair of co-located points as candidates.
func (b *builder) recordLeaf(indices []int32) {
	n := len(indices)

	b.mu.Lock()
	for _, a := range indices {
		buf := slices.Grow(b.buffers[a], n-1)
		for _, c := range indices {
			if c != a {
				buf = append(buf, c)
			}
		}
		b.buffers[a] = buf
	}
	b.mu.Unlock()

	b.prog.Increment(n)
}

// median returns the median of proj, averaging the two middle values for
// even counts. proj is not mutated.
func median(proj []float32) float32 {
	s := make([]float32, len(proj))
	copy(s, proj)
	slices.Sort(s)

	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// Trim reduces each candidate buffer to the threshold nearest candidates,
// writing them into a threshold×N neighbor matrix. Retaining only the
// nearest candidates keeps the first expansion pass at O(N·threshold²)
// instead of O(N·(trees·threshold)²).
func Trim(ctx context.Context, data *model.Matrix, buffers [][]int32, threshold int, dist distance.Func, workers int, prog Progress) (*model.NeighborMatrix, error) {
	n := data.Cols()
	out := model.NewNeighborMatrix(threshold, n)

	workers = pool.Workers(workers)
	heaps := make([]*queue.PriorityQueue, workers)

	err := pool.RunN(ctx, workers, n, func(w, i int) error {
		if prog.Aborted() {
			return nil
		}
		prog.Increment(1)

		h := heaps[w]
		if h == nil {
			h = queue.NewMax(threshold + 1)
			heaps[w] = h
		}
		h.Reset()

		xi := data.Col(i)
		for _, c := range buffers[i] {
			if int(c) == i {
				continue
			}
			h.PushBounded(queue.Item{Node: c, Distance: dist(xi, data.Col(int(c)))}, threshold)
		}

		col := out.Col(i)
		filled := 0
		for filled < threshold {
			it, ok := h.Pop()
			if !ok {
				break
			}
			col[filled] = it.Node
			filled++
		}
		if filled == 0 {
			return ErrEmptyColumn
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
