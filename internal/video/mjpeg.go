package video

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"image"
	"image/jpeg"
	"io"

	"github.com/ironsheep/matrix-tools-mcp/internal/errors"
)

// JPEG markers the frame scanner cares about.
const (
	markerTEM  = 0x01
	markerRST0 = 0xd0
	markerRST7 = 0xd7
	markerSOI  = 0xd8
	markerEOI  = 0xd9
	markerSOS  = 0xda
)

// mjpegSource splits a stream of concatenated JPEG images.
//
// After a start-of-image marker the scanner walks the frame segment by
// segment using each segment's length field, and only searches for markers
// inside entropy-coded scan data. Embedded thumbnails and APPn payloads that
// contain FF D9 therefore stay inside their frame. Bytes between frames are
// skipped. A truncated frame at the end of the stream is dropped.
type mjpegSource struct {
	r      *bufio.Reader
	closer io.Closer
	buf    bytes.Buffer
}

func newMJPEGSource(r io.Reader, closer io.Closer) *mjpegSource {
	return &mjpegSource{
		r:      bufio.NewReader(r),
		closer: closer,
	}
}

func (s *mjpegSource) Next() (image.Image, error) {
	if s.r == nil {
		return nil, io.EOF
	}
	s.buf.Reset()

	if err := s.seekStart(); err != nil {
		return nil, err
	}
	s.buf.Write(jpegMagic)
	if err := s.readFrame(); err != nil {
		return nil, err
	}

	img, err := jpeg.Decode(&s.buf)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDecode, err, "failed to decode frame")
	}
	return img, nil
}

func (s *mjpegSource) Close() error {
	s.r = nil
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}

// readByte returns io.EOF unchanged and wraps every other read failure.
func (s *mjpegSource) readByte() (byte, error) {
	c, err := s.r.ReadByte()
	if err != nil && err != io.EOF {
		return 0, errors.Wrap(errors.CodeDecode, err, "failed to read frame stream")
	}
	return c, err
}

// seekStart discards bytes up to and including the next FF D8.
func (s *mjpegSource) seekStart() error {
	var prev byte
	for {
		c, err := s.readByte()
		if err != nil {
			return err
		}
		if prev == 0xff && c == markerSOI {
			return nil
		}
		prev = c
	}
}

// readFrame copies the rest of a frame, up to and including its EOI, into
// s.buf. It returns io.EOF if the stream ends first.
func (s *mjpegSource) readFrame() error {
	marker, err := s.nextMarker()
	for err == nil {
		s.buf.Write([]byte{0xff, marker})
		switch {
		case marker == markerEOI:
			return nil
		case marker == markerSOI:
			return errors.New(errors.CodeDecode, "malformed frame: start of image inside a frame")
		case marker == markerTEM || (marker >= markerRST0 && marker <= markerRST7):
			marker, err = s.nextMarker()
		default:
			if err = s.copySegment(); err != nil {
				return err
			}
			if marker == markerSOS {
				marker, err = s.scanEntropy()
			} else {
				marker, err = s.nextMarker()
			}
		}
	}
	return err
}

// nextMarker reads the marker that must start at the current position,
// skipping fill bytes.
func (s *mjpegSource) nextMarker() (byte, error) {
	c, err := s.readByte()
	if err != nil {
		return 0, err
	}
	if c != 0xff {
		return 0, errors.New(errors.CodeDecode, "malformed frame: expected a marker, found 0x%02x", c)
	}
	for c == 0xff {
		if c, err = s.readByte(); err != nil {
			return 0, err
		}
	}
	if c == 0x00 {
		return 0, errors.New(errors.CodeDecode, "malformed frame: stuffed byte outside scan data")
	}
	return c, nil
}

// copySegment copies a length-prefixed segment body. The length counts its
// own two bytes.
func (s *mjpegSource) copySegment() error {
	var size [2]byte
	if _, err := io.ReadFull(s.r, size[:]); err != nil {
		return truncated(err)
	}
	n := binary.BigEndian.Uint16(size[:])
	if n < 2 {
		return errors.New(errors.CodeDecode, "malformed frame: segment length %d", n)
	}
	s.buf.Write(size[:])
	if _, err := io.CopyN(&s.buf, s.r, int64(n)-2); err != nil {
		return truncated(err)
	}
	return nil
}

// scanEntropy copies scan data and returns the first marker that is not a
// stuffed zero or a restart marker.
func (s *mjpegSource) scanEntropy() (byte, error) {
	for {
		c, err := s.readByte()
		if err != nil {
			return 0, err
		}
		if c != 0xff {
			s.buf.WriteByte(c)
			continue
		}

		for c == 0xff {
			if c, err = s.readByte(); err != nil {
				return 0, err
			}
		}
		if c == 0x00 || (c >= markerRST0 && c <= markerRST7) {
			s.buf.Write([]byte{0xff, c})
			continue
		}
		return c, nil
	}
}

// truncated maps a short read to io.EOF so a cut-off frame is dropped.
func truncated(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return io.EOF
	}
	return errors.Wrap(errors.CodeDecode, err, "failed to read frame stream")
}
