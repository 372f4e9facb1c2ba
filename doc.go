// Package knngraph builds approximate k-nearest-neighbor graphs over dense
// float32 vector data.
//
// Given N points in D-dimensional space and a target neighbor count K, the
// builder produces for every point an ordered set of up to K indices whose
// vectors are approximately closest under the chosen metric. An exact
// search is O(N²) and infeasible beyond tens of thousands of points; the
// builder instead runs two approximate phases that scale to millions of
// points and exploit all cores:
//
//  1. A forest of randomized projection trees partitions the point set and
//     records leaf co-occurrences as candidate neighbors.
//  2. Neighborhood-expansion passes repeatedly consider the neighbors of
//     each point's current neighbors, keeping the K closest.
//
// # Quick Start
//
//	data := knngraph.NewMatrix(dim, n)
//	for i, vec := range vectors {
//	    data.SetCol(i, vec)
//	}
//
//	g, err := knngraph.Build(ctx, data,
//	    knngraph.WithK(15),
//	    knngraph.WithThreshold(30),
//	    knngraph.WithTrees(20),
//	    knngraph.WithMaxIter(2),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, j := range g.Neighbors(0) {
//	    fmt.Println(j)
//	}
//
// # Metrics
//
// Euclidean (squared L2, rank-equivalent to true Euclidean) and Cosine are
// supported. Metric names coming from configuration can be mapped with
// WithMetricName; unrecognized names fall back to Euclidean.
//
// # Persistence
//
// Built graphs can be written to any io.Writer with Save and restored with
// Load. SaveToBlob and LoadFromBlob target the blobstore abstraction
// (local directory, in-memory, MinIO, S3).
package knngraph
