package model

import "fmt"

// Sentinel marks an unused slot in a NeighborMatrix column.
const Sentinel int32 = -1

// Matrix is a column-major D×N matrix of float32 values. Column i holds the
// coordinates of point i, stored contiguously for cache-friendly access.
type Matrix struct {
	dim  int
	cols int
	data []float32
}

// NewMatrix creates a zero-filled matrix with dim rows and cols columns.
func NewMatrix(dim, cols int) *Matrix {
	return &Matrix{
		dim:  dim,
		cols: cols,
		data: make([]float32, dim*cols),
	}
}

// MatrixFromSlice wraps data as a dim×cols column-major matrix.
// The slice is used directly, not copied.
func MatrixFromSlice(dim, cols int, data []float32) (*Matrix, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("model: dimension must be positive, got %d", dim)
	}
	if len(data) != dim*cols {
		return nil, fmt.Errorf("model: data length %d does not match %d×%d", len(data), dim, cols)
	}
	return &Matrix{dim: dim, cols: cols, data: data}, nil
}

// Dim returns the number of rows (coordinates per point).
func (m *Matrix) Dim() int { return m.dim }

// Cols returns the number of columns (points).
func (m *Matrix) Cols() int { return m.cols }

// Col returns column i as a slice aliasing the backing array.
func (m *Matrix) Col(i int) []float32 {
	return m.data[i*m.dim : (i+1)*m.dim : (i+1)*m.dim]
}

// SetCol copies v into column i. v must have length Dim.
func (m *Matrix) SetCol(i int, v []float32) {
	copy(m.data[i*m.dim:(i+1)*m.dim], v)
}

// NeighborMatrix is a column-major rows×cols matrix of point indices.
// Column i holds the neighbor indices of point i; unused slots are Sentinel.
type NeighborMatrix struct {
	rows int
	cols int
	data []int32
}

// NewNeighborMatrix creates a rows×cols neighbor matrix filled with Sentinel.
func NewNeighborMatrix(rows, cols int) *NeighborMatrix {
	nm := &NeighborMatrix{
		rows: rows,
		cols: cols,
		data: make([]int32, rows*cols),
	}
	for i := range nm.data {
		nm.data[i] = Sentinel
	}
	return nm
}

// NeighborMatrixFromSlice wraps data as a rows×cols column-major matrix.
// The slice is used directly, not copied.
func NeighborMatrixFromSlice(rows, cols int, data []int32) (*NeighborMatrix, error) {
	if rows < 0 {
		return nil, fmt.Errorf("model: negative rows: %d", rows)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("model: data length %d does not match %d×%d", len(data), rows, cols)
	}
	return &NeighborMatrix{rows: rows, cols: cols, data: data}, nil
}

// Rows returns the neighbor capacity per column.
func (nm *NeighborMatrix) Rows() int { return nm.rows }

// Cols returns the number of columns (points).
func (nm *NeighborMatrix) Cols() int { return nm.cols }

// Col returns column i as a slice aliasing the backing array.
func (nm *NeighborMatrix) Col(i int) []int32 {
	return nm.data[i*nm.rows : (i+1)*nm.rows : (i+1)*nm.rows]
}

// Valid returns the leading non-sentinel entries of column i.
// Drains terminate columns with Sentinel, so valid entries form a prefix.
func (nm *NeighborMatrix) Valid(i int) []int32 {
	col := nm.Col(i)
	for n, v := range col {
		if v == Sentinel {
			return col[:n]
		}
	}
	return col
}

// Data returns the backing slice in column-major order.
func (nm *NeighborMatrix) Data() []int32 { return nm.data }
