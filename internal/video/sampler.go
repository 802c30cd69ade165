// Package video samples frames of a video into intensity matrices.
//
// A FrameSource walks decoded frames; Policy picks which of them are kept;
// each kept frame goes through the same pipeline as a still image.
package video

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/matrix-tools-mcp/internal/config"
	"github.com/ironsheep/matrix-tools-mcp/internal/errors"
	"github.com/ironsheep/matrix-tools-mcp/internal/imaging"
	"github.com/ironsheep/matrix-tools-mcp/internal/matrix"
)

// NoFramesMessage is shown when a video decodes but yields nothing.
const NoFramesMessage = "No readable frames were detected in this video."

// Sampler turns a video into one matrix per selected frame.
type Sampler struct {
	images     *imaging.Sampler
	ffmpegPath string
	logger     *log.Logger
}

// NewSampler creates a Sampler that hands frames to images. A nil logger
// discards output.
func NewSampler(cfg config.Config, images *imaging.Sampler, logger *log.Logger) *Sampler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if images == nil {
		images = imaging.NewSampler(cfg, logger)
	}
	return &Sampler{
		images:     images,
		ffmpegPath: cfg.Video.FFmpegPath,
		logger:     logger,
	}
}

// Sample reads a whole video from r and returns the matrices of the frames
// policy selects, earliest first.
//
// A video that opens but has no readable frames gives an empty slice and a
// nil error. DECODE_ERROR means the container could not be opened at all.
func (s *Sampler) Sample(r io.Reader, spec imaging.SampleSpec, policy Policy) ([]*matrix.Matrix, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDecode, err, "failed to read video")
	}
	if len(data) == 0 {
		return nil, errors.New(errors.CodeDecode, "video is empty")
	}

	src, err := Open(data, s.ffmpegPath)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("opened video", "container", Container(data), "bytes", len(data))
	return s.SampleSource(src, spec, policy)
}

// SampleSource samples frames from src and always closes it, including
// when a frame fails to decode.
func (s *Sampler) SampleSource(src FrameSource, spec imaging.SampleSpec, policy Policy) ([]*matrix.Matrix, error) {
	defer func() {
		if err := src.Close(); err != nil {
			s.logger.Warn("failed to release frame source", "err", err)
		}
	}()

	policy = policy.normalized()
	out := make([]*matrix.Matrix, 0, policy.MaxFrames)

	index := 0
	for ; len(out) < policy.MaxFrames; index++ {
		img, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.CodeOf(err) != "" {
				return nil, err
			}
			return nil, errors.Wrap(errors.CodeDecode, err, "failed to read frame %d", index)
		}
		if !policy.Selects(index) {
			continue
		}

		m, err := s.images.SampleImage(img, spec)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}

	s.logger.Debug("sampled video", "decoded", index, "selected", len(out),
		"frame_skip", policy.FrameSkip, "max_frames", policy.MaxFrames)
	return out, nil
}

// FrameLabel is the display label of the n-th sampled frame, 1-based.
func FrameLabel(n int) string {
	return fmt.Sprintf("Frame %d", n)
}

// FrameVariable is the literal variable name of the n-th sampled frame,
// 1-based: FrameVariable("M_", 1) is "M_001".
func FrameVariable(prefix string, n int) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}
