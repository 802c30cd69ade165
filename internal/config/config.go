// Package config holds the process-wide settings for the matrix tools.
//
// A Config is built once at start-up (defaults, then an optional TOML file,
// then environment overrides) and handed by value to every component
// constructor. Components never modify it.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/ironsheep/matrix-tools-mcp/internal/errors"
)

// Environment variables read by FromEnv.
const (
	EnvLogLevel = "MATRIX_MCP_LOG_LEVEL"
	EnvFFmpeg   = "MATRIX_MCP_FFMPEG"
)

// Resampling filter names accepted in Sampling.Filter.
const (
	FilterArea     = "area"
	FilterBilinear = "bilinear"
	FilterBicubic  = "bicubic"
)

// Sampling configures the image and video samplers.
type Sampling struct {
	// Width and Height are the target grid dimensions.
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// Rescale maps sampled intensities onto 0-255.
	Rescale bool `toml:"rescale"`

	// Filter is one of "area", "bilinear", "bicubic".
	Filter string `toml:"filter"`
}

// Video configures frame selection for the video sampler.
type Video struct {
	DefaultFrameSkip int `toml:"default_frame_skip"`
	DefaultMaxFrames int `toml:"default_max_frames"`

	// MaxFramesCap is the hard upper bound on emitted matrices.
	MaxFramesCap int `toml:"max_frames_cap"`

	// FFmpegPath is the binary used for containers Go cannot decode natively.
	FFmpegPath string `toml:"ffmpeg_path"`
}

// Literal configures matrix literal formatting.
type Literal struct {
	DefaultVariable string `toml:"default_variable"`
	FramePrefix     string `toml:"frame_prefix"`
}

// Plot configures the heatmap renderer defaults.
type Plot struct {
	DefaultScale string `toml:"default_scale"`

	// CellSize is the pixel edge of one matrix cell; 0 picks it from CanvasSize.
	CellSize   int  `toml:"cell_size"`
	CanvasSize int  `toml:"canvas_size"`
	Colorbar   bool `toml:"colorbar"`
}

// Config is the complete, immutable configuration value.
type Config struct {
	Sampling Sampling `toml:"sampling"`
	Video    Video    `toml:"video"`
	Literal  Literal  `toml:"literal"`
	Plot     Plot     `toml:"plot"`

	// UploadLimitBytes caps media accepted by the server and CLI.
	UploadLimitBytes int64 `toml:"upload_limit_bytes"`

	LogLevel string `toml:"log_level"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Sampling: Sampling{
			Width:   50,
			Height:  50,
			Rescale: true,
			Filter:  FilterArea,
		},
		Video: Video{
			DefaultFrameSkip: 1,
			DefaultMaxFrames: 10,
			MaxFramesCap:     25,
			FFmpegPath:       "ffmpeg",
		},
		Literal: Literal{
			DefaultVariable: "M",
			FramePrefix:     "M_",
		},
		Plot: Plot{
			DefaultScale: "gray",
			CanvasSize:   500,
			Colorbar:     true,
		},
		UploadLimitBytes: 50 * 1024 * 1024,
		LogLevel:         "info",
	}
}

// Load returns the defaults overlaid with the TOML file at path (if any) and
// then with environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.CodeInvalidInput, err, "failed to read config %s", path)
		}
	}
	cfg = cfg.FromEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv returns a copy of c with environment overrides applied.
func (c Config) FromEnv(getenv func(string) string) Config {
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv(EnvFFmpeg)); v != "" {
		c.Video.FFmpegPath = v
	}
	return c
}

// Validate reports the first setting that no component could work with.
func (c Config) Validate() error {
	switch {
	case c.Sampling.Width < 1 || c.Sampling.Height < 1:
		return errors.New(errors.CodeInvalidInput, "sampling size must be positive, got %dx%d", c.Sampling.Width, c.Sampling.Height)
	case !ValidFilter(c.Sampling.Filter):
		return errors.New(errors.CodeInvalidInput, "unknown resampling filter %q", c.Sampling.Filter)
	case c.Video.MaxFramesCap < 1:
		return errors.New(errors.CodeInvalidInput, "max_frames_cap must be at least 1")
	case c.Video.DefaultFrameSkip < 1:
		return errors.New(errors.CodeInvalidInput, "default_frame_skip must be at least 1")
	case c.Video.DefaultMaxFrames < 1 || c.Video.DefaultMaxFrames > c.Video.MaxFramesCap:
		return errors.New(errors.CodeInvalidInput, "default_max_frames must be in [1, %d]", c.Video.MaxFramesCap)
	case c.Literal.DefaultVariable == "":
		return errors.New(errors.CodeInvalidInput, "default_variable must not be empty")
	case c.Plot.CellSize < 0 || c.Plot.CanvasSize < 1:
		return errors.New(errors.CodeInvalidInput, "plot sizes must be positive")
	case c.UploadLimitBytes < 1:
		return errors.New(errors.CodeInvalidInput, "upload_limit_bytes must be positive")
	}
	return nil
}

// ValidFilter reports whether name is a known resampling filter.
func ValidFilter(name string) bool {
	switch name {
	case FilterArea, FilterBilinear, FilterBicubic:
		return true
	}
	return false
}

// String summarizes the settings that matter when reading logs.
func (c Config) String() string {
	return fmt.Sprintf("grid=%dx%d rescale=%t filter=%s frames=%d/%d cap=%d scale=%s",
		c.Sampling.Width, c.Sampling.Height, c.Sampling.Rescale, c.Sampling.Filter,
		c.Video.DefaultFrameSkip, c.Video.DefaultMaxFrames, c.Video.MaxFramesCap,
		c.Plot.DefaultScale)
}
