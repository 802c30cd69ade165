package heatmap

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"golang.org/x/image/font"

	"github.com/ironsheep/matrix-tools-mcp/internal/config"
	"github.com/ironsheep/matrix-tools-mcp/internal/errors"
	"github.com/ironsheep/matrix-tools-mcp/internal/matrix"
)

func mustMatrix(t *testing.T, rows [][]float64) *matrix.Matrix {
	t.Helper()
	m, err := matrix.New(rows)
	if err != nil {
		t.Fatalf("matrix.New failed: %v", err)
	}
	return m
}

func ptr(v float64) *float64 {
	return &v
}

func newTestRenderer() *Renderer {
	return NewRenderer(config.Default(), nil)
}

// cellColor returns the color at the center of cell (i, j) for a plot
// without a title.
func cellColor(img *image.NRGBA, i, j, cell int) color.NRGBA {
	return img.NRGBAAt(margin+j*cell+cell/2, margin+i*cell+cell/2)
}

func TestResolveBounds(t *testing.T) {
	m := mustMatrix(t, [][]float64{{3, 9}, {-2, 4}})

	tests := []struct {
		name       string
		vmin, vmax *float64
		lo, hi     float64
	}{
		{"from data", nil, nil, -2, 9},
		{"explicit", ptr(0), ptr(255), 0, 255},
		{"only vmin", ptr(1), nil, 1, 9},
		{"only vmax", nil, ptr(100), -2, 100},
		{"equal", ptr(5), ptr(5), 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, err := ResolveBounds(m, tt.vmin, tt.vmax)
			if err != nil {
				t.Fatalf("ResolveBounds failed: %v", err)
			}
			if lo != tt.lo || hi != tt.hi {
				t.Errorf("got [%v, %v], want [%v, %v]", lo, hi, tt.lo, tt.hi)
			}
		})
	}
}

func TestRender_RangeError(t *testing.T) {
	m := mustMatrix(t, [][]float64{{1, 2}, {3, 4}})
	_, err := newTestRenderer().Render(m, RenderSpec{VMin: ptr(10), VMax: ptr(5)})
	if !errors.Is(err, errors.CodeRange) {
		t.Fatalf("expected RANGE_ERROR, got %v", err)
	}

	// vmax alone below the data minimum is also a range error.
	_, err = newTestRenderer().Render(m, RenderSpec{VMax: ptr(0)})
	if !errors.Is(err, errors.CodeRange) {
		t.Errorf("expected RANGE_ERROR for vmax below data, got %v", err)
	}
}

func TestRender_Degenerate(t *testing.T) {
	_, err := newTestRenderer().Render(nil, RenderSpec{})
	if !errors.Is(err, errors.CodeRender) {
		t.Errorf("expected RENDER_ERROR, got %v", err)
	}

	_, err = newTestRenderer().Render(mustMatrix(t, [][]float64{{1}}), RenderSpec{CellSize: 9000})
	if !errors.Is(err, errors.CodeRender) {
		t.Errorf("expected RENDER_ERROR for oversized plot, got %v", err)
	}
}

func TestRender_PNG(t *testing.T) {
	m := mustMatrix(t, [][]float64{{0, 1, 2}, {3, 4, 5}})
	data, err := newTestRenderer().Render(m, RenderSpec{Scale: "viridis", CellSize: 10})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Fatal("output is not a PNG")
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output does not decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 3*10+2*margin || b.Dy() != 2*10+2*margin {
		t.Errorf("size: got %dx%d, want %dx%d", b.Dx(), b.Dy(), 3*10+2*margin, 2*10+2*margin)
	}
}

func TestRender_Deterministic(t *testing.T) {
	m := mustMatrix(t, [][]float64{{0, 50}, {200, 255}})
	spec := RenderSpec{Scale: "magma", Title: "Same", Colorbar: true, VMin: ptr(0), VMax: ptr(255)}

	a, err := newTestRenderer().Render(m, spec)
	if err != nil {
		t.Fatalf("first Render failed: %v", err)
	}
	b, err := newTestRenderer().Render(m, spec)
	if err != nil {
		t.Fatalf("second Render failed: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical inputs produced different bytes")
	}
}

func TestRender_UnknownScaleIsGray(t *testing.T) {
	m := mustMatrix(t, [][]float64{{1, 2}, {3, 4}})
	r := newTestRenderer()

	gray, err := r.Render(m, RenderSpec{Scale: "gray"})
	if err != nil {
		t.Fatalf("Render gray failed: %v", err)
	}
	unknown, err := r.Render(m, RenderSpec{Scale: "jet"})
	if err != nil {
		t.Fatalf("Render unknown failed: %v", err)
	}
	if !bytes.Equal(gray, unknown) {
		t.Error("unknown scale should render exactly like gray")
	}
}

func TestRender_Title(t *testing.T) {
	m := mustMatrix(t, [][]float64{{1, 2}, {3, 4}})
	r := newTestRenderer()

	plain, err := r.RenderImage(m, RenderSpec{CellSize: 20})
	if err != nil {
		t.Fatalf("RenderImage failed: %v", err)
	}
	titled, err := r.RenderImage(m, RenderSpec{CellSize: 20, Title: "Before Levitt"})
	if err != nil {
		t.Fatalf("RenderImage failed: %v", err)
	}

	if titled.Bounds().Dy() != plain.Bounds().Dy()+titleHeight {
		t.Errorf("title band: got height %d, want %d", titled.Bounds().Dy(), plain.Bounds().Dy()+titleHeight)
	}

	inked := false
	for y := margin; y < margin+titleHeight && !inked; y++ {
		for x := 0; x < titled.Bounds().Dx(); x++ {
			if titled.NRGBAAt(x, y) == ink {
				inked = true
				break
			}
		}
	}
	if !inked {
		t.Error("title band has no text pixels")
	}
}

func TestRender_Clamping(t *testing.T) {
	m := mustMatrix(t, [][]float64{{-50, 0, 128}, {255, 300, 1000}})
	img, err := newTestRenderer().RenderImage(m, RenderSpec{Scale: "gray", CellSize: 8, VMin: ptr(0), VMax: ptr(255)})
	if err != nil {
		t.Fatalf("RenderImage failed: %v", err)
	}

	black := color.NRGBA{A: 0xff}
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	tests := []struct {
		i, j int
		want color.NRGBA
	}{
		{0, 0, black},
		{0, 1, black},
		{1, 0, white},
		{1, 1, white},
		{1, 2, white},
	}
	for _, tt := range tests {
		if got := cellColor(img, tt.i, tt.j, 8); got != tt.want {
			t.Errorf("cell (%d,%d): got %v, want %v", tt.i, tt.j, got, tt.want)
		}
	}

	if got := cellColor(img, 0, 2, 8); got.R != 128 {
		t.Errorf("mid cell: got %v, want gray 128", got)
	}
}

func TestRender_EqualBoundsUseFloor(t *testing.T) {
	m := mustMatrix(t, [][]float64{{7, 7}, {7, 7}})
	img, err := newTestRenderer().RenderImage(m, RenderSpec{Scale: "viridis", CellSize: 4})
	if err != nil {
		t.Fatalf("RenderImage failed: %v", err)
	}
	floor, _ := LookupScale("viridis")
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if got := cellColor(img, i, j, 4); got != floor.At(0) {
				t.Errorf("cell (%d,%d): got %v, want floor %v", i, j, got, floor.At(0))
			}
		}
	}
}

func TestRender_Colorbar(t *testing.T) {
	m := mustMatrix(t, [][]float64{{0, 255}})
	r := newTestRenderer()

	plain, err := r.RenderImage(m, RenderSpec{CellSize: 40})
	if err != nil {
		t.Fatalf("RenderImage failed: %v", err)
	}
	withBar, err := r.RenderImage(m, RenderSpec{CellSize: 40, Colorbar: true})
	if err != nil {
		t.Fatalf("RenderImage failed: %v", err)
	}
	if withBar.Bounds().Dx() <= plain.Bounds().Dx()+colorbarW {
		t.Errorf("colorbar should widen the plot: %d vs %d", withBar.Bounds().Dx(), plain.Bounds().Dx())
	}

	barX := margin + 2*40 + colorbarGap + colorbarW/2
	top := withBar.NRGBAAt(barX, margin)
	bottom := withBar.NRGBAAt(barX, margin+40-1)
	if top.R != 0xff || bottom.R != 0 {
		t.Errorf("colorbar ends: top %v, bottom %v", top, bottom)
	}
}

func TestRender_AutoCellSize(t *testing.T) {
	m := mustMatrix(t, [][]float64{{1, 2, 3, 4, 5}})
	img, err := newTestRenderer().RenderImage(m, RenderSpec{})
	if err != nil {
		t.Fatalf("RenderImage failed: %v", err)
	}
	// 500 px canvas over 5 columns
	if got := img.Bounds().Dx(); got != 5*100+2*margin {
		t.Errorf("width: got %d, want %d", got, 5*100+2*margin)
	}
}

func TestRender_CellSizeOverflow(t *testing.T) {
	m := mustMatrix(t, [][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}, {13, 14, 15, 16}})
	for _, cell := range []int{1 << 62, 1 << 31, maxSide/4 + 1} {
		_, err := newTestRenderer().RenderImage(m, RenderSpec{CellSize: cell})
		if !errors.Is(err, errors.CodeRender) {
			t.Errorf("cell size %d: expected RENDER_ERROR, got %v", cell, err)
		}
	}

	wide, err := matrix.FromSlice(1, maxSide+1, make([]float64, maxSide+1))
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if _, err := newTestRenderer().RenderImage(wide, RenderSpec{}); !errors.Is(err, errors.CodeRender) {
		t.Errorf("expected RENDER_ERROR for %d columns, got %v", maxSide+1, err)
	}

	if _, err := newTestRenderer().RenderImage(m, RenderSpec{CellSize: maxSide / 16}); err != nil {
		t.Errorf("a canvas within %d pixels should render: %v", maxSide, err)
	}
}

func TestRender_LongTitle(t *testing.T) {
	m := mustMatrix(t, [][]float64{{1, 2}, {3, 4}})
	title := strings.Repeat("W", 20000)

	img, err := newTestRenderer().RenderImage(m, RenderSpec{CellSize: 10, Title: title, Colorbar: true})
	if err != nil {
		t.Fatalf("RenderImage failed: %v", err)
	}
	if w, h := img.Bounds().Dx(), img.Bounds().Dy(); w > maxSide || h > maxSide {
		t.Errorf("canvas %dx%d exceeds %d", w, h, maxSide)
	}
}

func TestFitTitle(t *testing.T) {
	if got := fitTitle("Matrix Plot", 500); got != "Matrix Plot" {
		t.Errorf("short title changed: %q", got)
	}

	got := fitTitle(strings.Repeat("abc ", 100), 140)
	if !strings.HasSuffix(got, ellipsis) {
		t.Errorf("cut title should end with %q: %q", ellipsis, got)
	}
	if w := font.MeasureString(face, got).Ceil(); w > 140 {
		t.Errorf("cut title is %d px wide, limit 140", w)
	}
	if !strings.HasPrefix(got, "abc abc") {
		t.Errorf("cut title should keep its start: %q", got)
	}
}
