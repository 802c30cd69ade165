package video

import (
	"bytes"
	"image"
	"image/gif"
	"io"

	xdraw "golang.org/x/image/draw"

	"github.com/ironsheep/matrix-tools-mcp/internal/errors"
)

// gifSource replays an animated GIF onto a full-size canvas so every frame
// it returns is the complete picture, not just the changed rectangle.
type gifSource struct {
	g      *gif.GIF
	canvas *image.RGBA
	next   int
}

// newGIFSource decodes every frame of an animated GIF up front.
func newGIFSource(data []byte) (*gifSource, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.CodeDecode, err, "failed to decode gif")
	}

	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		for _, frame := range g.Image {
			bounds = bounds.Union(frame.Bounds())
		}
	}

	return &gifSource{
		g:      g,
		canvas: image.NewRGBA(bounds),
	}, nil
}

// Next composites the next frame onto the canvas and returns a copy.
func (s *gifSource) Next() (image.Image, error) {
	if s.g == nil || s.next >= len(s.g.Image) {
		return nil, io.EOF
	}
	i := s.next
	s.next++

	frame := s.g.Image[i]
	var disposal byte
	if i < len(s.g.Disposal) {
		disposal = s.g.Disposal[i]
	}

	var previous *image.RGBA
	if disposal == gif.DisposalPrevious {
		previous = cloneRGBA(s.canvas)
	}

	xdraw.Draw(s.canvas, frame.Bounds(), frame, frame.Bounds().Min, xdraw.Over)
	out := cloneRGBA(s.canvas)

	switch disposal {
	case gif.DisposalBackground:
		xdraw.Draw(s.canvas, frame.Bounds(), image.Transparent, image.Point{}, xdraw.Src)
	case gif.DisposalPrevious:
		s.canvas = previous
	}

	return out, nil
}

func (s *gifSource) Close() error {
	s.g = nil
	s.canvas = nil
	return nil
}

// cloneRGBA returns a deep copy of src.
func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
