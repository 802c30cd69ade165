package matrix

import (
	"math"
	"testing"

	"github.com/ironsheep/matrix-tools-mcp/internal/errors"
)

func mustNew(t *testing.T, rows [][]float64) *Matrix {
	t.Helper()
	m, err := New(rows)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m
}

func TestNew(t *testing.T) {
	m := mustNew(t, [][]float64{{1, 2, 3}, {4, 5, 6}})

	rows, cols := m.Dims()
	if rows != 2 || cols != 3 {
		t.Fatalf("Dims: got %dx%d, want 2x3", rows, cols)
	}
	if m.At(1, 2) != 6 {
		t.Errorf("At(1,2): got %v, want 6", m.At(1, 2))
	}
	if m.At(0, 0) != 1 {
		t.Errorf("At(0,0): got %v, want 1", m.At(0, 0))
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		rows [][]float64
	}{
		{"no rows", nil},
		{"empty row", [][]float64{{}}},
		{"ragged", [][]float64{{1, 2}, {3}}},
		{"nan", [][]float64{{1, math.NaN()}}},
		{"inf", [][]float64{{math.Inf(1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rows)
			if err == nil {
				t.Fatal("New should fail")
			}
			if !errors.Is(err, errors.CodeInvalidInput) {
				t.Errorf("expected INVALID_INPUT, got %v", err)
			}
		})
	}
}

func TestNew_CopiesInput(t *testing.T) {
	rows := [][]float64{{1, 2}, {3, 4}}
	m := mustNew(t, rows)

	rows[0][0] = 99
	if m.At(0, 0) != 1 {
		t.Error("matrix shares memory with its input rows")
	}

	out := m.Rows()
	out[1][1] = 99
	if m.At(1, 1) != 4 {
		t.Error("Rows() result shares memory with the matrix")
	}

	d := m.Dense()
	d.Set(0, 1, 99)
	if m.At(0, 1) != 2 {
		t.Error("Dense() result shares memory with the matrix")
	}
}

func TestFromSlice_LengthMismatch(t *testing.T) {
	if _, err := FromSlice(2, 2, []float64{1, 2, 3}); err == nil {
		t.Error("FromSlice should reject a short slice")
	}
	if _, err := FromSlice(0, 2, nil); err == nil {
		t.Error("FromSlice should reject zero rows")
	}
}

func TestBoundsAndIntegral(t *testing.T) {
	m := mustNew(t, [][]float64{{3, -1}, {7, 2}})
	lo, hi := m.Bounds()
	if lo != -1 || hi != 7 {
		t.Errorf("Bounds: got (%v,%v), want (-1,7)", lo, hi)
	}
	if !m.IsIntegral() {
		t.Error("IsIntegral: want true")
	}

	frac := mustNew(t, [][]float64{{0.5}})
	if frac.IsIntegral() {
		t.Error("IsIntegral: want false for 0.5")
	}
}

func TestEqual(t *testing.T) {
	a := mustNew(t, [][]float64{{1, 2}, {3, 4}})
	b := mustNew(t, [][]float64{{1, 2}, {3, 4}})
	c := mustNew(t, [][]float64{{1, 2, 3, 4}})

	if !a.Equal(b) {
		t.Error("identical matrices should be equal")
	}
	if a.Equal(c) {
		t.Error("matrices of different shape should not be equal")
	}
	if a.Equal(nil) {
		t.Error("matrix should not equal nil")
	}
}

func TestRescale(t *testing.T) {
	m := mustNew(t, [][]float64{{10, 20}, {30, 40}})
	r := m.Rescale()

	want := [][]float64{{0, 85}, {170, 255}}
	for i, row := range want {
		for j, v := range row {
			if r.At(i, j) != v {
				t.Errorf("At(%d,%d): got %v, want %v", i, j, r.At(i, j), v)
			}
		}
	}
	// Source untouched
	if m.At(0, 0) != 10 {
		t.Error("Rescale modified its receiver")
	}
}

func TestRescale_Constant(t *testing.T) {
	m := mustNew(t, [][]float64{{128, 128}, {128, 128}})
	r := m.Rescale()

	for _, v := range r.Values() {
		if v != 0 {
			t.Fatalf("constant matrix should rescale to zeros, got %v", r.Values())
		}
	}
}
