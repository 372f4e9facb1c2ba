// Package refine implements the neighborhood-expansion passes that turn the
// forest's candidate sets into a high-recall k-NN graph.
//
// Each iteration rebuilds every point's neighbor column from the previous
// iteration's matrix: the point considers its current neighbors and their
// neighbors, keeps the K closest in a bounded max-heap, and suppresses
// duplicates with a per-point visited set. Iterations are sequential; the
// work inside an iteration is fully parallel because each worker writes one
// column and only reads the previous matrix.
package refine

import (
	"context"
	"errors"

	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/internal/pool"
	"github.com/hupe1980/knngraph/internal/queue"
	"github.com/hupe1980/knngraph/internal/visited"
	"github.com/hupe1980/knngraph/model"
)

// ErrEmptyNeighborhood is returned when a point ends an iteration with no
// selected neighbors.
var ErrEmptyNeighborhood = errors.New("refine: empty neighborhood")

// Progress receives completion counts and exposes the cooperative abort
// flag polled by expansion workers.
type Progress interface {
	Increment(n int)
	Aborted() bool
}

// Options configures the expansion passes.
type Options struct {
	// K is the neighbor count per point in the output matrix.
	K int

	// MaxIter is the number of expansion iterations.
	MaxIter int
}

// scratch is the per-worker state reused across points: reallocating the
// heap and the visited set per point would dominate the pass.
type scratch struct {
	heap *queue.PriorityQueue
	vis  *visited.Set
}

// Run executes MaxIter expansion iterations starting from the trimmed
// candidate matrix and returns the final neighbor matrix. With MaxIter of
// zero the input matrix is returned unchanged.
//
// buffers are the forest's candidate buffers; they seed each point's
// visited set so that candidates already ranked during the trim are not
// reconsidered.
func Run(ctx context.Context, data *model.Matrix, buffers [][]int32, knns *model.NeighborMatrix, opts Options, dist distance.Func, workers int, prog Progress) (*model.NeighborMatrix, error) {
	n := data.Cols()
	prev := knns

	workers = pool.Workers(workers)
	scratches := make([]*scratch, workers)

	for iter := 0; iter < opts.MaxIter; iter++ {
		next := model.NewNeighborMatrix(opts.K, n)

		err := pool.RunN(ctx, workers, n, func(w, i int) error {
			if prog.Aborted() {
				return nil
			}
			prog.Increment(1)

			sc := scratches[w]
			if sc == nil {
				sc = &scratch{
					heap: queue.NewMax(opts.K + 1),
					vis:  visited.New((opts.K + 1) * opts.K),
				}
				scratches[w] = sc
			}
			sc.heap.Reset()
			sc.vis.Seed(buffers[i])

			return expandColumn(data, prev, next, i, opts.K, dist, sc)
		})
		if err != nil {
			return nil, err
		}
		if prog.Aborted() {
			return prev, nil
		}

		prev = next
	}

	return prev, nil
}

// expandColumn rebuilds column i of next from the neighborhoods in prev.
func expandColumn(data *model.Matrix, prev, next *model.NeighborMatrix, i, k int, dist distance.Func, sc *scratch) error {
	xi := data.Col(i)
	self := int32(i)

	h, vis := sc.heap, sc.vis
	col := prev.Col(i)

	// Mark the direct neighbors up front. A point reachable both directly
	// and through another neighborhood must enter the heap exactly once,
	// and the direct push below is the one that counts.
	for _, j := range col {
		if j == model.Sentinel {
			break
		}
		if j != self {
			vis.Insert(j)
		}
	}

	for _, j := range col {
		if j == model.Sentinel {
			break
		}
		if j == self {
			continue
		}
		d := dist(xi, data.Col(int(j)))
		if d == 0 {
			// Coincident point; treat as a duplicate of i.
			continue
		}
		h.PushBounded(queue.Item{Node: j, Distance: d}, k)

		for _, kn := range prev.Col(int(j)) {
			if kn == model.Sentinel {
				break
			}
			if kn == self {
				continue
			}
			if !vis.Insert(kn) {
				continue
			}
			d := dist(xi, data.Col(int(kn)))
			if d == 0 {
				continue
			}
			if h.Len() < k {
				h.Push(queue.Item{Node: kn, Distance: d})
			} else if top, _ := h.Top(); d < top.Distance {
				h.PushBounded(queue.Item{Node: kn, Distance: d}, k)
			}
		}
	}

	out := next.Col(i)
	filled := 0
	for filled < k {
		it, ok := h.Pop()
		if !ok {
			break
		}
		out[filled] = it.Node
		filled++
	}
	if filled == 0 {
		return ErrEmptyNeighborhood
	}

	return nil
}
