// Package distance provides the float32 distance kernels used by the graph
// builder. Dot products go through github.com/viterin/vek for SIMD
// acceleration; the squared L2 kernel is a fused scalar loop (one pass, no
// intermediate allocations).
//
// All kernels are pure and safe for concurrent use. Squared L2 stands in for
// Euclidean distance throughout: every use is comparative and squaring is
// monotone, so the square root never has to be taken in the hot path.
package distance
