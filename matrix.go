package knngraph

import "github.com/hupe1980/knngraph/model"

// Matrix is the column-major D×N point matrix consumed by Build. Column i
// holds the coordinates of point i.
type Matrix = model.Matrix

// NewMatrix creates a zero-filled matrix with dim rows and cols columns.
func NewMatrix(dim, cols int) *Matrix {
	return model.NewMatrix(dim, cols)
}

// MatrixFromSlice wraps data as a dim×cols column-major matrix. The slice
// is used directly, not copied; it must not be mutated during a build.
func MatrixFromSlice(dim, cols int, data []float32) (*Matrix, error) {
	return model.MatrixFromSlice(dim, cols, data)
}
