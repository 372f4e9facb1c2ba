package knngraph

import (
	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/internal/queue"
	"github.com/hupe1980/knngraph/model"
)

// BruteForce computes the exact k-NN graph by exhaustive pairwise search.
// It is O(N²·D) and exists as ground truth for recall measurements and for
// point sets small enough that approximation is not worth it. Coincident
// points (distance zero) are skipped, matching Build's duplicate rule.
func BruteForce(data *Matrix, k int, metric distance.Metric) *Graph {
	n := data.Cols()
	dist := distance.Provider(metric)
	nbrs := model.NewNeighborMatrix(k, n)

	for i := 0; i < n; i++ {
		xi := data.Col(i)
		h := queue.NewMax(k + 1)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			d := dist(xi, data.Col(j))
			if d == 0 {
				continue
			}
			h.PushBounded(queue.Item{Node: int32(j), Distance: d}, k)
		}

		col := nbrs.Col(i)
		filled := 0
		for filled < k {
			it, ok := h.Pop()
			if !ok {
				break
			}
			col[filled] = it.Node
			filled++
		}
	}

	return &Graph{metric: metric, nbrs: nbrs}
}
