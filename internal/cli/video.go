package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/matrix-tools-mcp/internal/imaging"
	"github.com/ironsheep/matrix-tools-mcp/internal/literal"
	"github.com/ironsheep/matrix-tools-mcp/internal/video"
)

func newVideoCmd() *cobra.Command {
	var frameSkip, maxFrames int

	cmd := &cobra.Command{
		Use:   "video FILE",
		Short: "Print one matrix literal per sampled video frame",
		Long: `Print one matrix literal per sampled video frame, named M_001, M_002, ...

Animated GIF and MJPEG are decoded directly; other containers need ffmpeg
on PATH (or video.ffmpeg_path in the config file, or MATRIX_MCP_FFMPEG).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFromContext(cmd.Context())

			policy := video.DefaultPolicy(a.cfg.Video)
			if cmd.Flags().Changed("frame-skip") {
				policy.FrameSkip = frameSkip
			}
			if cmd.Flags().Changed("max-frames") {
				policy.MaxFrames = maxFrames
			}
			policy = video.NewPolicy(policy.FrameSkip, policy.MaxFrames, a.cfg.Video.MaxFramesCap)

			data, err := readInput(cmd, args[0], a.cfg.UploadLimitBytes)
			if err != nil {
				return err
			}

			images := imaging.NewSampler(a.cfg, a.logger)
			sampler := video.NewSampler(a.cfg, images, a.logger)
			matrices, err := sampler.Sample(bytes.NewReader(data), images.Spec(), policy)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(matrices) == 0 {
				printWarning(out, video.NoFramesMessage)
				return nil
			}
			for i, m := range matrices {
				n := i + 1
				text, err := literal.Format(m, video.FrameVariable(a.cfg.Literal.FramePrefix, n))
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				printHeading(out, video.FrameLabel(n))
				fmt.Fprintln(out, text)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&frameSkip, "frame-skip", 1, "keep every Nth decoded frame")
	cmd.Flags().IntVar(&maxFrames, "max-frames", 10, "maximum number of frames (capped at the configured limit)")

	return cmd
}
