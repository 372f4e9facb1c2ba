package knngraph

import (
	"github.com/hupe1980/knngraph/distance"
)

type options struct {
	k         int
	threshold int
	trees     int
	maxDepth  int
	maxIter   int
	metric    distance.Metric
	seed      uint64
	workers   int
	verbose   bool
	logger    *Logger
	progress  Progress
}

var defaultOptions = options{
	k:         10,
	threshold: 20,
	trees:     10,
	maxDepth:  32,
	maxIter:   2,
	metric:    distance.MetricEuclidean,
	seed:      1,
	workers:   0, // GOMAXPROCS
}

// Option configures a Build call.
type Option func(*options)

// WithK sets the target neighbor count per point. K must not exceed the
// candidate threshold.
func WithK(k int) Option {
	return func(o *options) {
		o.k = k
	}
}

// WithThreshold sets the leaf-size threshold L of the projection trees.
// It doubles as the number of candidates retained per point between the
// forest and refinement phases, so it bounds how much of each candidate
// set survives the trim.
func WithThreshold(threshold int) Option {
	return func(o *options) {
		o.threshold = threshold
	}
}

// WithTrees sets the number of independent projection trees. More trees
// cost proportionally more build time and raise recall by diversifying the
// candidate sets.
func WithTrees(trees int) Option {
	return func(o *options) {
		o.trees = trees
	}
}

// WithMaxDepth caps the recursion depth of each tree.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithMaxIter sets the number of neighborhood-expansion iterations. Zero
// skips refinement and returns the trimmed candidate matrix.
func WithMaxIter(maxIter int) Option {
	return func(o *options) {
		o.maxIter = maxIter
	}
}

// WithMetric sets the distance metric.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
	}
}

// WithMetricName sets the distance metric by name ("Euclidean" or
// "Cosine"). Unrecognized names fall back to Euclidean.
func WithMetricName(name string) Option {
	return func(o *options) {
		o.metric = distance.ParseMetric(name)
	}
}

// WithSeed seeds the per-tree random streams. Builds with the same seed,
// data and parameters produce the same graph.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithWorkers sets the worker count for the per-point phases. Values <= 0
// default to GOMAXPROCS.
func WithWorkers(workers int) Option {
	return func(o *options) {
		o.workers = workers
	}
}

// WithVerbose enables build-phase and progress logging.
func WithVerbose(verbose bool) Option {
	return func(o *options) {
		o.verbose = verbose
	}
}

// WithLogger sets the logger used for build-phase logging. Implies nothing
// about verbosity; combine with WithVerbose to see progress reports.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProgress sets the progress collaborator polled during the build. Use
// a CountingProgress to observe completion or to abort a running build.
func WithProgress(p Progress) Option {
	return func(o *options) {
		if p != nil {
			o.progress = p
		}
	}
}
