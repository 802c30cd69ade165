package video

import (
	"bytes"
	"image"
)

// FrameSource yields decoded frames in presentation order.
//
// Next returns io.EOF once the stream is exhausted. Close releases every
// resource the source holds and is safe to call more than once.
type FrameSource interface {
	Next() (image.Image, error)
	Close() error
}

var (
	gifMagic  = []byte("GIF8")
	jpegMagic = []byte{0xff, 0xd8}
)

// Open picks a frame source for data by its leading bytes. Animated GIFs and
// raw MJPEG streams are decoded in process; every other container is handed
// to the ffmpeg binary at ffmpegPath.
func Open(data []byte, ffmpegPath string) (FrameSource, error) {
	switch Container(data) {
	case "gif":
		src, err := newGIFSource(data)
		if err != nil {
			return nil, err
		}
		return src, nil
	case "mjpeg":
		return newMJPEGSource(bytes.NewReader(data), nil), nil
	default:
		src, err := openFFmpeg(data, ffmpegPath)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
}

// Container names the source kind Open would choose for data.
func Container(data []byte) string {
	switch {
	case bytes.HasPrefix(data, gifMagic):
		return "gif"
	case bytes.HasPrefix(data, jpegMagic):
		return "mjpeg"
	default:
		return "ffmpeg"
	}
}
