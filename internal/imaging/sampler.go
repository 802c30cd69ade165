package imaging

import (
	"image"
	"io"

	"github.com/anthonynsimon/bild/transform"
	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	"github.com/ironsheep/matrix-tools-mcp/internal/config"
	"github.com/ironsheep/matrix-tools-mcp/internal/errors"
	"github.com/ironsheep/matrix-tools-mcp/internal/matrix"
)

// SampleSpec describes the grid an image is sampled onto.
type SampleSpec struct {
	// Width and Height are the target grid dimensions in cells.
	Width  int
	Height int

	// Rescale stretches the sampled intensities onto 0-255.
	Rescale bool

	// Filter selects the resampling kernel: "area" (box average),
	// "bilinear" or "bicubic". Unknown names use "area".
	Filter string
}

// SpecFromConfig returns the sampling settings from cfg.
func SpecFromConfig(cfg config.Sampling) SampleSpec {
	return SampleSpec{
		Width:   cfg.Width,
		Height:  cfg.Height,
		Rescale: cfg.Rescale,
		Filter:  cfg.Filter,
	}
}

// Sampler converts still images into intensity matrices.
//
// A Sampler holds only its configuration and logger; Sample may be called
// concurrently.
type Sampler struct {
	spec   SampleSpec
	logger *log.Logger
}

// NewSampler creates a Sampler whose default spec comes from cfg. A nil
// logger discards output.
func NewSampler(cfg config.Config, logger *log.Logger) *Sampler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Sampler{
		spec:   SpecFromConfig(cfg.Sampling),
		logger: logger,
	}
}

// Spec returns the sampler's configured default spec.
func (s *Sampler) Spec() SampleSpec {
	return s.spec
}

// Sample decodes an encoded still image and samples it onto spec's grid.
//
// Returns DECODE_ERROR for unreadable bytes and INVALID_INPUT for a spec
// with a non-positive size.
func (s *Sampler) Sample(r io.Reader, spec SampleSpec) (*matrix.Matrix, error) {
	img, info, err := Decode(r)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("decoded image", "format", info.Format, "width", info.Width, "height", info.Height)
	return s.SampleImage(img, spec)
}

// SampleImage samples an already decoded image onto spec's grid.
//
// # Pipeline
//
//  1. Grayscale: luminance with ITU-R BT.601 weights
//     (0.299*R + 0.587*G + 0.114*B), 8 bits per cell
//  2. Resample to Width×Height with the selected filter
//  3. Rescale (optional): the resampled grid's own min/max is stretched
//     onto [0, 255]; a grid with no spread becomes all zeros
//
// The output has exactly Height rows and Width columns. The pipeline has no
// randomness, so equal inputs give equal matrices.
func (s *Sampler) SampleImage(img image.Image, spec SampleSpec) (*matrix.Matrix, error) {
	if spec.Width < 1 || spec.Height < 1 {
		return nil, errors.New(errors.CodeInvalidInput, "target grid must be positive, got %dx%d", spec.Width, spec.Height)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New(errors.CodeDecode, "image has no pixels")
	}

	gray := resample(img, spec)

	values := make([]float64, spec.Width*spec.Height)
	for y := 0; y < spec.Height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+spec.Width]
		for x, v := range row {
			values[y*spec.Width+x] = float64(v)
		}
	}

	m, err := matrix.FromSlice(spec.Height, spec.Width, values)
	if err != nil {
		return nil, err
	}
	if spec.Rescale {
		m = m.Rescale()
	}
	return m, nil
}

// resample returns a width×height single-channel image whose bounds start
// at (0, 0). Alpha is ignored: a transparent pixel keeps its color's
// luminance instead of fading to black.
func resample(img image.Image, spec SampleSpec) *image.Gray {
	gray := opaque(imaging.Grayscale(img))

	switch spec.Filter {
	case config.FilterBilinear:
		return toGray(transform.Resize(gray, spec.Width, spec.Height, transform.Linear))
	case config.FilterBicubic:
		dst := image.NewGray(image.Rect(0, 0, spec.Width, spec.Height))
		xdraw.CatmullRom.Scale(dst, dst.Rect, gray, gray.Bounds(), xdraw.Src, nil)
		return dst
	default:
		return toGray(imaging.Resize(gray, spec.Width, spec.Height, imaging.Box))
	}
}

// opaque sets every alpha byte of img to fully opaque, in place.
func opaque(img *image.NRGBA) *image.NRGBA {
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img
}

// toGray copies the red channel of an opaque gray image. Every channel
// holds the same luminance after imaging.Grayscale, so one is enough.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, _, _, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			dst.Pix[y*dst.Stride+x] = uint8(r >> 8)
		}
	}
	return dst
}
