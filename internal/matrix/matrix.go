// Package matrix defines the immutable numeric grid passed between the
// samplers, the literal codec and the heatmap renderer.
//
// A Matrix is rectangular with at least one row and one column, and every
// entry is finite. It never changes after construction: accessors return
// copies, and transforms such as Rescale build a new Matrix.
package matrix

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/matrix-tools-mcp/internal/errors"
)

// Matrix is a dense, row-major grid of float64 values.
type Matrix struct {
	dense *mat.Dense
}

// New builds a Matrix from row slices. The rows are copied.
//
// It returns INVALID_INPUT when there are no rows, a row is empty, the rows
// differ in length, or an entry is NaN or infinite.
func New(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, errors.New(errors.CodeInvalidInput, "matrix has no rows")
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, errors.New(errors.CodeInvalidInput, "matrix has no columns")
	}

	data := make([]float64, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, errors.New(errors.CodeInvalidInput,
				"row %d has %d entries, expected %d", i+1, len(row), cols)
		}
		data = append(data, row...)
	}
	return FromSlice(len(rows), cols, data)
}

// FromSlice builds a rows×cols Matrix from row-major data. The slice is
// owned by the Matrix afterwards and must not be modified by the caller.
func FromSlice(rows, cols int, data []float64) (*Matrix, error) {
	if rows < 1 || cols < 1 {
		return nil, errors.New(errors.CodeInvalidInput, "matrix must be at least 1x1, got %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, errors.New(errors.CodeInvalidInput,
			"matrix data has %d values, expected %d", len(data), rows*cols)
	}
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New(errors.CodeInvalidInput,
				"entry (%d,%d) is not a finite number", i/cols+1, i%cols+1)
		}
	}
	return &Matrix{dense: mat.NewDense(rows, cols, data)}, nil
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (rows, cols int) {
	return m.dense.Dims()
}

// At returns the entry at row i, column j (both 0-based).
func (m *Matrix) At(i, j int) float64 {
	return m.dense.At(i, j)
}

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []float64 {
	_, cols := m.dense.Dims()
	return mat.Row(make([]float64, cols), i, m.dense)
}

// Rows returns a copy of the grid as row slices.
func (m *Matrix) Rows() [][]float64 {
	r, _ := m.dense.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = m.Row(i)
	}
	return out
}

// Values returns a copy of all entries in row-major order.
func (m *Matrix) Values() []float64 {
	raw := m.dense.RawMatrix()
	out := make([]float64, 0, raw.Rows*raw.Cols)
	for i := 0; i < raw.Rows; i++ {
		out = append(out, raw.Data[i*raw.Stride:i*raw.Stride+raw.Cols]...)
	}
	return out
}

// Dense returns a copy of the matrix as a gonum Dense for callers that
// want to do their own arithmetic.
func (m *Matrix) Dense() *mat.Dense {
	return mat.DenseCopyOf(m.dense)
}

// Bounds returns the smallest and largest entries.
func (m *Matrix) Bounds() (lo, hi float64) {
	values := m.Values()
	return floats.Min(values), floats.Max(values)
}

// IsIntegral reports whether every entry is a whole number.
func (m *Matrix) IsIntegral() bool {
	for _, v := range m.Values() {
		if v != math.Trunc(v) {
			return false
		}
	}
	return true
}

// Equal reports whether m and other have the same shape and entries.
func (m *Matrix) Equal(other *Matrix) bool {
	if other == nil {
		return false
	}
	return mat.Equal(m.dense, other.dense)
}

// Rescale linearly maps the matrix's own [min, max] onto [0, 255] and
// rounds to the nearest integer. A matrix whose entries are all equal has
// no range to stretch and rescales to all zeros.
func (m *Matrix) Rescale() *Matrix {
	rows, cols := m.Dims()
	values := m.Values()
	lo, hi := floats.Min(values), floats.Max(values)

	out := make([]float64, len(values))
	if hi > lo {
		span := hi - lo
		for i, v := range values {
			out[i] = math.Round((v - lo) / span * 255)
		}
	}
	return &Matrix{dense: mat.NewDense(rows, cols, out)}
}
