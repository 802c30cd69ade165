// Package heatmap renders matrices as color-mapped PNG images.
//
// Each matrix entry becomes a square cell. Values are normalized against
// [vmin, vmax] and looked up in a color scale; values outside the range take
// the scale's end colors. An optional title sits above the grid and an
// optional colorbar to its right.
package heatmap

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/matrix-tools-mcp/internal/config"
	"github.com/ironsheep/matrix-tools-mcp/internal/errors"
	"github.com/ironsheep/matrix-tools-mcp/internal/matrix"
)

// Layout in pixels.
const (
	margin       = 10
	titleHeight  = 25
	colorbarGap  = 12
	colorbarW    = 16
	labelPadding = 4

	// maxSide bounds either dimension of the canvas.
	maxSide = 8192

	ellipsis = "..."
)

var (
	background = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	ink        = color.NRGBA{A: 0xff}
	face       = basicfont.Face7x13
)

// RenderSpec controls one rendering.
type RenderSpec struct {
	// Scale is a name from Scales. Unknown names render in gray.
	Scale string

	// VMin and VMax pin the value range. Either may be nil, in which case
	// the matrix minimum or maximum is used.
	VMin *float64
	VMax *float64

	// Title is drawn above the grid when non-empty.
	Title string

	// CellSize is the pixel edge of one cell. 0 fits the longer matrix
	// side into the configured canvas size.
	CellSize int

	Colorbar bool
}

// Renderer draws heatmaps with configured defaults.
type Renderer struct {
	cfg    config.Plot
	logger *log.Logger
}

// NewRenderer creates a Renderer. A nil logger discards output.
func NewRenderer(cfg config.Config, logger *log.Logger) *Renderer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Renderer{cfg: cfg.Plot, logger: logger}
}

// DefaultSpec returns a RenderSpec filled from configuration.
func (r *Renderer) DefaultSpec() RenderSpec {
	return RenderSpec{
		Scale:    r.cfg.DefaultScale,
		CellSize: r.cfg.CellSize,
		Colorbar: r.cfg.Colorbar,
	}
}

// ResolveBounds returns the value range a rendering uses. Each bound falls
// back independently to the matrix's own minimum or maximum.
//
// Returns RANGE_ERROR when the resolved vmin exceeds vmax.
func ResolveBounds(m *matrix.Matrix, vmin, vmax *float64) (lo, hi float64, err error) {
	lo, hi = m.Bounds()
	if vmin != nil {
		lo = *vmin
	}
	if vmax != nil {
		hi = *vmax
	}
	if lo > hi {
		return 0, 0, errors.New(errors.CodeRange, "vmin (%s) must not be greater than vmax (%s)", formatLabel(lo), formatLabel(hi))
	}
	return lo, hi, nil
}

// Render draws m and returns it PNG encoded. Equal inputs give equal bytes.
func (r *Renderer) Render(m *matrix.Matrix, spec RenderSpec) ([]byte, error) {
	img, err := r.RenderImage(m, spec)
	if err != nil {
		return nil, err
	}
	return EncodePNG(img)
}

// EncodePNG encodes a rendered plot.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(errors.CodeRender, err, "failed to encode plot")
	}
	return buf.Bytes(), nil
}

// RenderImage draws m without encoding it.
func (r *Renderer) RenderImage(m *matrix.Matrix, spec RenderSpec) (*image.NRGBA, error) {
	if m == nil {
		return nil, errors.New(errors.CodeRender, "nothing to plot")
	}
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.New(errors.CodeRender, "cannot plot a %dx%d matrix", rows, cols)
	}

	lo, hi, err := ResolveBounds(m, spec.VMin, spec.VMax)
	if err != nil {
		return nil, err
	}

	scale, ok := LookupScale(spec.Scale)
	if !ok && spec.Scale != "" {
		r.logger.Debug("unknown color scale, using gray", "scale", spec.Scale)
	}

	cell := r.cellSize(spec, rows, cols)
	if cell > maxSide/max(rows, cols) {
		return nil, errors.New(errors.CodeRender,
			"a %dx%d matrix with %d pixel cells would exceed %d pixels; use a smaller cell size", rows, cols, cell, maxSide)
	}
	gridW, gridH := cols*cell, rows*cell

	title := fitTitle(spec.Title, maxSide-2*margin)
	l := newLayout(gridW, gridH, title, spec.Colorbar, formatLabel(lo), formatLabel(hi))
	if l.width > maxSide || l.height > maxSide {
		return nil, errors.New(errors.CodeRender, "plot would be %dx%d pixels; use a smaller cell size", l.width, l.height)
	}
	img := imaging.New(l.width, l.height, background)

	span := hi - lo
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			t := 0.0
			if span > 0 {
				t = (m.At(i, j) - lo) / span
			}
			rect := image.Rect(j*cell, i*cell, (j+1)*cell, (i+1)*cell).Add(l.grid)
			fill(img, rect, scale.At(t))
		}
	}

	if title != "" {
		tw := font.MeasureString(face, title).Ceil()
		drawText(img, (l.width-tw)/2, margin+(titleHeight+face.Ascent)/2, title)
	}

	if spec.Colorbar {
		bar := l.colorbar
		for y := bar.Min.Y; y < bar.Max.Y; y++ {
			t := 1.0
			if bar.Dy() > 1 {
				t = 1 - float64(y-bar.Min.Y)/float64(bar.Dy()-1)
			}
			fill(img, image.Rect(bar.Min.X, y, bar.Max.X, y+1), scale.At(t))
		}
		x := bar.Max.X + labelPadding
		drawText(img, x, bar.Min.Y+face.Ascent, formatLabel(hi))
		drawText(img, x, bar.Max.Y, formatLabel(lo))
	}

	r.logger.Debug("rendered heatmap", "rows", rows, "cols", cols, "vmin", lo, "vmax", hi,
		"scale", scale.Name, "width", l.width, "height", l.height)
	return img, nil
}

// cellSize returns the pixel edge of one cell: the spec's size, then the
// configured size, then whatever fits the longer side into the canvas.
func (r *Renderer) cellSize(spec RenderSpec, rows, cols int) int {
	if spec.CellSize > 0 {
		return spec.CellSize
	}
	if r.cfg.CellSize > 0 {
		return r.cfg.CellSize
	}
	canvas := r.cfg.CanvasSize
	if canvas < 1 {
		canvas = 500
	}
	return max(1, canvas/max(rows, cols))
}

// layout places the grid, title band and colorbar on the canvas.
type layout struct {
	width, height int
	grid          image.Point
	colorbar      image.Rectangle
}

// newLayout sizes the canvas around a gridW×gridH grid. The title band and
// the colorbar with its labels are only reserved when they are drawn.
func newLayout(gridW, gridH int, title string, colorbar bool, loLabel, hiLabel string) layout {
	top := margin
	if title != "" {
		top += titleHeight
	}

	l := layout{grid: image.Pt(margin, top)}
	right := margin + gridW
	if colorbar {
		barX := right + colorbarGap
		l.colorbar = image.Rect(barX, top, barX+colorbarW, top+gridH)
		labelW := max(font.MeasureString(face, loLabel).Ceil(), font.MeasureString(face, hiLabel).Ceil())
		right = l.colorbar.Max.X + labelPadding + labelW
	}

	l.width = right + margin
	if title != "" {
		l.width = max(l.width, font.MeasureString(face, title).Ceil()+2*margin)
	}
	l.height = top + gridH + margin
	if colorbar {
		l.height = max(l.height, top+face.Height+margin)
	}
	return l
}

// fill paints rect with a single color.
func fill(img *image.NRGBA, rect image.Rectangle, c color.NRGBA) {
	xdraw.Draw(img, rect, image.NewUniform(c), image.Point{}, xdraw.Src)
}

// drawText writes text in ink with its baseline at y.
func drawText(img *image.NRGBA, x, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(ink),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// fitTitle returns title, cut and ended with "..." when it is wider than
// maxW pixels.
func fitTitle(title string, maxW int) string {
	if font.MeasureString(face, title).Ceil() <= maxW {
		return title
	}
	limit := fixed.I(maxW) - font.MeasureString(face, ellipsis)
	var w fixed.Int26_6
	for i, r := range title {
		adv, _ := face.GlyphAdvance(r)
		if w+adv > limit {
			return title[:i] + ellipsis
		}
		w += adv
	}
	return title
}

// formatLabel renders a colorbar bound with six significant digits.
func formatLabel(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
