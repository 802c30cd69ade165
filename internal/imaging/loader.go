package imaging

import (
	"bytes"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	"github.com/ironsheep/matrix-tools-mcp/internal/errors"
)

// ImageInfo describes a decoded still image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the name the decoder registered: "png", "jpeg", "gif",
	// "bmp", "tiff" or "webp".
	Format string `json:"format"`
}

// Decode reads one still image from r.
//
// The whole stream is buffered so the format can be sniffed and the image
// decoded from the same bytes. JPEG EXIF orientation is applied, so a
// portrait photo comes back upright.
//
// Returns:
//   - image.Image: the decoded image, bounds starting at (0, 0).
//   - *ImageInfo: dimensions after orientation, and the detected format.
//   - error: DECODE_ERROR if the bytes are empty, unrecognized or truncated.
func Decode(r io.Reader) (image.Image, *ImageInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.Wrap(errors.CodeDecode, err, "failed to read image")
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode over an in-memory buffer.
func DecodeBytes(data []byte) (image.Image, *ImageInfo, error) {
	if len(data) == 0 {
		return nil, nil, errors.New(errors.CodeDecode, "image is empty")
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, nil, errors.Wrap(errors.CodeDecode, err, "unrecognized image format")
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, errors.Wrap(errors.CodeDecode, err, "failed to decode %s image", format)
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, nil, errors.New(errors.CodeDecode, "%s image has no pixels", format)
	}

	return img, &ImageInfo{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}, nil
}
