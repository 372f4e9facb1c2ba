// Package model defines the core data types shared by the builder phases.
//
// # Matrix Types
//
//   - Matrix: column-major D×N float32 point matrix (one point per column)
//   - NeighborMatrix: column-major K×N int32 neighbor index matrix
//
// Both matrices hand out column slices that alias the backing array, so a
// column written by one worker must not be read by another until the phase
// barrier. The Sentinel value marks unused neighbor slots.
package model
