package knngraph

import (
	"context"

	"github.com/hupe1980/knngraph/distance"
	"github.com/hupe1980/knngraph/internal/refine"
	"github.com/hupe1980/knngraph/internal/rptree"
	"github.com/hupe1980/knngraph/model"
)

// Graph is an approximate k-NN graph: for every point i, up to K neighbor
// indices approximately closest to i under the build metric.
type Graph struct {
	metric distance.Metric
	nbrs   *model.NeighborMatrix
}

// Len returns the number of points in the graph. An aborted build yields a
// graph with zero points.
func (g *Graph) Len() int {
	if g.nbrs == nil {
		return 0
	}
	return g.nbrs.Cols()
}

// K returns the neighbor capacity per point.
func (g *Graph) K() int {
	if g.nbrs == nil {
		return 0
	}
	return g.nbrs.Rows()
}

// Metric returns the distance metric the graph was built under.
func (g *Graph) Metric() distance.Metric { return g.metric }

// Neighbors returns the neighbor indices of point i. The slice aliases the
// graph's backing storage and carries no intra-column order guarantee.
func (g *Graph) Neighbors(i int) []int32 {
	return g.nbrs.Valid(i)
}

// NeighborMatrix returns the underlying K×N neighbor matrix. Unused slots
// hold model.Sentinel.
func (g *Graph) NeighborMatrix() *model.NeighborMatrix { return g.nbrs }

// Build constructs the approximate k-NN graph for data.
//
// The build runs three phases: a parallel forest of random projection
// trees accumulating candidate neighbors per point, a trim retaining the
// threshold nearest candidates, and maxIter neighborhood-expansion passes
// that converge on the K nearest.
//
// An abort signaled through the Progress collaborator stops the build
// promptly and returns an empty graph with a nil error; no partial
// neighborhoods are ever exposed. Cancelling ctx returns ctx.Err().
func Build(ctx context.Context, data *Matrix, optFns ...Option) (*Graph, error) {
	opts := defaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if data == nil {
		return nil, ErrNilData
	}
	if opts.threshold <= 0 {
		return nil, &ErrInvalidParameter{Name: "threshold", Value: opts.threshold}
	}
	if opts.trees <= 0 {
		return nil, &ErrInvalidParameter{Name: "trees", Value: opts.trees}
	}
	if opts.maxDepth < 0 {
		return nil, &ErrInvalidParameter{Name: "max depth", Value: opts.maxDepth}
	}
	if opts.maxIter < 0 {
		return nil, &ErrInvalidParameter{Name: "max iterations", Value: opts.maxIter}
	}
	if opts.k <= 0 || opts.k > opts.threshold {
		return nil, &ErrInvalidK{K: opts.k, Threshold: opts.threshold}
	}

	logger := opts.logger
	if logger == nil {
		if opts.verbose {
			logger = NewLogger(nil)
		} else {
			logger = NoopLogger()
		}
	}
	logger = logger.WithPoints(data.Cols()).WithDimension(data.Dim()).WithK(opts.k)

	prog := opts.progress
	if prog == nil {
		prog = NopProgress{}
	}
	if opts.verbose {
		n := int64(data.Cols())
		total := n*int64(opts.trees) + n + n*int64(opts.maxIter)
		prog = newLoggingProgress(prog, logger, total)
	}

	dist := distance.Provider(opts.metric)

	logger.LogPhase("forest", "trees", opts.trees, "threshold", opts.threshold)
	buffers, err := rptree.Build(ctx, data, rptree.Options{
		Threshold: opts.threshold,
		Trees:     opts.trees,
		MaxDepth:  opts.maxDepth,
		Seed:      opts.seed,
	}, prog)
	if err != nil {
		return nil, translateError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if prog.Aborted() {
		return emptyGraph(opts.metric), nil
	}

	logger.LogPhase("trim")
	knns, err := rptree.Trim(ctx, data, buffers, opts.threshold, dist, opts.workers, prog)
	if err != nil {
		return nil, translateError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if prog.Aborted() {
		return emptyGraph(opts.metric), nil
	}

	logger.LogPhase("refine", "maxIter", opts.maxIter)
	knns, err = refine.Run(ctx, data, buffers, knns, refine.Options{
		K:       opts.k,
		MaxIter: opts.maxIter,
	}, dist, opts.workers, prog)
	if err != nil {
		return nil, translateError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if prog.Aborted() {
		return emptyGraph(opts.metric), nil
	}

	logger.Info("build completed")

	return &Graph{metric: opts.metric, nbrs: knns}, nil
}

func emptyGraph(m distance.Metric) *Graph {
	return &Graph{metric: m, nbrs: model.NewNeighborMatrix(0, 0)}
}
