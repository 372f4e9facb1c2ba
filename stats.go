package knngraph

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/knngraph/distance"
)

// Stats summarizes the shape of a built graph.
type Stats struct {
	// Points is the number of nodes.
	Points int

	// Edges is the number of directed neighbor edges.
	Edges int

	// MeanDegree is Edges divided by Points.
	MeanDegree float64

	// SymmetryFraction is the fraction of edges i→j whose reverse edge
	// j→i is also present. Random data with sufficiently large K yields
	// values well above one half.
	SymmetryFraction float64

	// MeanDistance is the mean distance from each point to its selected
	// neighbors under the build metric. Zero when Stats was called
	// without data. Comparing it across builds with increasing maxIter
	// shows the refinement converging.
	MeanDistance float64
}

// Stats computes summary statistics for the graph. data may be nil, in
// which case MeanDistance is not computed; otherwise it must be the matrix
// the graph was built from.
func (g *Graph) Stats(data *Matrix) Stats {
	n := g.Len()
	if n == 0 {
		return Stats{}
	}

	dist := distance.Provider(g.metric)

	// One bitmap of out-edges per node makes the reverse-edge lookups
	// cheap even for high-degree graphs.
	edges := make([]*roaring.Bitmap, n)
	for i := 0; i < n; i++ {
		edges[i] = roaring.New()
		for _, j := range g.Neighbors(i) {
			edges[i].Add(uint32(j))
		}
	}

	var (
		total     int
		symmetric int
		distSum   float64
	)
	for i := 0; i < n; i++ {
		for _, j := range g.Neighbors(i) {
			total++
			if edges[j].Contains(uint32(i)) {
				symmetric++
			}
			if data != nil {
				distSum += float64(dist(data.Col(i), data.Col(int(j))))
			}
		}
	}

	s := Stats{
		Points:     n,
		Edges:      total,
		MeanDegree: float64(total) / float64(n),
	}
	if total > 0 {
		s.SymmetryFraction = float64(symmetric) / float64(total)
		if data != nil {
			s.MeanDistance = distSum / float64(total)
		}
	}

	return s
}
