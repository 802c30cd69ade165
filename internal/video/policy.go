package video

import (
	"strconv"
	"strings"

	"github.com/ironsheep/matrix-tools-mcp/internal/config"
)

// Policy decides which decoded frames are sampled.
//
// A frame is selected when its 0-based decode index is a multiple of
// FrameSkip. Sampling stops once MaxFrames frames have been selected or the
// stream ends, whichever comes first.
type Policy struct {
	FrameSkip int `json:"frame_skip"`
	MaxFrames int `json:"max_frames"`
}

// NewPolicy returns a Policy with skip clamped to at least 1 and maxFrames
// clamped into [1, limit]. Out-of-range values are clamped, never rejected.
func NewPolicy(skip, maxFrames, limit int) Policy {
	return Policy{
		FrameSkip: max(skip, 1),
		MaxFrames: min(max(maxFrames, 1), max(limit, 1)),
	}
}

// DefaultPolicy returns the configured default policy.
func DefaultPolicy(cfg config.Video) Policy {
	return NewPolicy(cfg.DefaultFrameSkip, cfg.DefaultMaxFrames, cfg.MaxFramesCap)
}

// ParsePolicy builds a Policy from raw text fields. A blank or non-integer
// field takes the configured default before clamping.
func ParsePolicy(rawSkip, rawMax string, cfg config.Video) Policy {
	return NewPolicy(
		parseIntOr(rawSkip, cfg.DefaultFrameSkip),
		parseIntOr(rawMax, cfg.DefaultMaxFrames),
		cfg.MaxFramesCap,
	)
}

// Selects reports whether the frame at decode index is sampled.
func (p Policy) Selects(index int) bool {
	return index%p.normalized().FrameSkip == 0
}

// normalized raises non-positive fields to 1.
func (p Policy) normalized() Policy {
	if p.FrameSkip < 1 {
		p.FrameSkip = 1
	}
	if p.MaxFrames < 1 {
		p.MaxFrames = 1
	}
	return p
}

// parseIntOr parses a trimmed integer, or returns def.
func parseIntOr(raw string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}
