package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/ironsheep/matrix-tools-mcp/internal/config"
	"github.com/ironsheep/matrix-tools-mcp/internal/errors"
)

// solidImage creates a width×height image filled with c.
func solidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// gradientImage creates a horizontal gray ramp from black to white.
func gradientImage(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 255 / (width - 1))})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func newTestSampler() *Sampler {
	return NewSampler(config.Default(), nil)
}

func TestDecodeBytes(t *testing.T) {
	data := encodePNG(t, solidImage(30, 20, color.White))

	img, info, err := DecodeBytes(data)
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}
	if info.Width != 30 || info.Height != 20 {
		t.Errorf("dimensions: got %dx%d, want 30x20", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %q, want png", info.Format)
	}
	if img.Bounds().Dx() != 30 {
		t.Errorf("image width: got %d", img.Bounds().Dx())
	}
}

func TestDecodeBytes_BMP(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, solidImage(8, 6, color.Black)); err != nil {
		t.Fatalf("failed to encode bmp: %v", err)
	}

	_, info, err := DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}
	if info.Format != "bmp" {
		t.Errorf("format: got %q, want bmp", info.Format)
	}
}

func TestDecodeBytes_Errors(t *testing.T) {
	truncated := encodePNG(t, gradientImage(40, 40))
	truncated = truncated[:len(truncated)/2]

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"garbage", []byte("definitely not an image")},
		{"truncated png", truncated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeBytes(tt.data)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !errors.Is(err, errors.CodeDecode) {
				t.Errorf("expected DECODE_ERROR, got %v", err)
			}
		})
	}
}

func TestSample_Dimensions(t *testing.T) {
	s := newTestSampler()
	data := encodePNG(t, gradientImage(120, 80))

	sizes := []struct{ w, h int }{{50, 50}, {10, 3}, {1, 1}, {200, 7}}
	for _, size := range sizes {
		m, err := s.Sample(bytes.NewReader(data), SampleSpec{Width: size.w, Height: size.h})
		if err != nil {
			t.Fatalf("Sample %dx%d failed: %v", size.w, size.h, err)
		}
		rows, cols := m.Dims()
		if rows != size.h || cols != size.w {
			t.Errorf("Sample %dx%d: got %d rows x %d cols", size.w, size.h, rows, cols)
		}
	}
}

func TestSample_ConstantImageRescaled(t *testing.T) {
	s := newTestSampler()
	data := encodePNG(t, solidImage(64, 64, color.RGBA{90, 120, 200, 255}))

	m, err := s.Sample(bytes.NewReader(data), SampleSpec{Width: 50, Height: 50, Rescale: true})
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	lo, hi := m.Bounds()
	if lo != hi {
		t.Errorf("constant image should give a single value, got range %v..%v", lo, hi)
	}
}

func TestSample_GrayLevelPreserved(t *testing.T) {
	s := newTestSampler()

	for _, filter := range []string{config.FilterArea, config.FilterBilinear, config.FilterBicubic} {
		t.Run(filter, func(t *testing.T) {
			img := solidImage(40, 40, color.Gray{Y: 77})
			m, err := s.SampleImage(img, SampleSpec{Width: 10, Height: 10, Filter: filter})
			if err != nil {
				t.Fatalf("SampleImage failed: %v", err)
			}
			lo, hi := m.Bounds()
			if lo < 76 || hi > 78 {
				t.Errorf("gray 77 should survive resampling, got %v..%v", lo, hi)
			}
		})
	}
}

func TestSample_GradientRescale(t *testing.T) {
	s := newTestSampler()

	for _, filter := range []string{config.FilterArea, config.FilterBilinear, config.FilterBicubic} {
		t.Run(filter, func(t *testing.T) {
			m, err := s.SampleImage(gradientImage(100, 20), SampleSpec{Width: 20, Height: 4, Rescale: true, Filter: filter})
			if err != nil {
				t.Fatalf("SampleImage failed: %v", err)
			}
			lo, hi := m.Bounds()
			if lo != 0 || hi != 255 {
				t.Errorf("rescaled range: got %v..%v, want 0..255", lo, hi)
			}
			if m.At(0, 0) >= m.At(0, 19) {
				t.Errorf("ramp should increase left to right: %v vs %v", m.At(0, 0), m.At(0, 19))
			}
			if !m.IsIntegral() {
				t.Error("rescaled values should be whole numbers")
			}
		})
	}
}

func TestSample_Luminance(t *testing.T) {
	s := newTestSampler()
	m, err := s.SampleImage(solidImage(4, 4, color.RGBA{255, 0, 0, 255}), SampleSpec{Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("SampleImage failed: %v", err)
	}
	// 0.299 * 255
	if v := m.At(0, 0); v < 75 || v > 77 {
		t.Errorf("red luminance: got %v, want about 76", v)
	}
}

func TestSample_TransparentPixelsKeepLuminance(t *testing.T) {
	s := newTestSampler()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 200, 200, 200, 0
	}

	m, err := s.SampleImage(img, SampleSpec{Width: 2, Height: 2})
	if err != nil {
		t.Fatalf("SampleImage failed: %v", err)
	}
	if v := m.At(1, 1); v < 199 || v > 201 {
		t.Errorf("transparent gray: got %v, want 200", v)
	}
}

func TestSample_Deterministic(t *testing.T) {
	s := newTestSampler()
	data := encodePNG(t, gradientImage(73, 41))
	spec := SampleSpec{Width: 50, Height: 50, Rescale: true}

	a, err := s.Sample(bytes.NewReader(data), spec)
	if err != nil {
		t.Fatalf("first Sample failed: %v", err)
	}
	b, err := s.Sample(bytes.NewReader(data), spec)
	if err != nil {
		t.Fatalf("second Sample failed: %v", err)
	}
	if !a.Equal(b) {
		t.Error("sampling the same bytes twice gave different matrices")
	}
}

func TestSample_Errors(t *testing.T) {
	s := newTestSampler()

	_, err := s.Sample(bytes.NewReader([]byte("GIF89a but not really")), s.Spec())
	if !errors.Is(err, errors.CodeDecode) {
		t.Errorf("garbage: expected DECODE_ERROR, got %v", err)
	}

	_, err = s.SampleImage(solidImage(4, 4, color.White), SampleSpec{Width: 0, Height: 5})
	if !errors.Is(err, errors.CodeInvalidInput) {
		t.Errorf("zero width: expected INVALID_INPUT, got %v", err)
	}
}

func TestSpecFromConfig(t *testing.T) {
	spec := newTestSampler().Spec()
	if spec.Width != 50 || spec.Height != 50 || !spec.Rescale {
		t.Errorf("default spec: got %+v, want 50x50 with rescale", spec)
	}
}
