package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/matrix-tools-mcp/internal/imaging"
	"github.com/ironsheep/matrix-tools-mcp/internal/literal"
)

type imageOpts struct {
	name      string
	noRescale bool
	filter    string
	width     int
	height    int
}

func newImageCmd() *cobra.Command {
	var opts imageOpts

	cmd := &cobra.Command{
		Use:   "image FILE",
		Short: "Print the matrix literal of an image (FILE may be - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFromContext(cmd.Context())

			data, err := readInput(cmd, args[0], a.cfg.UploadLimitBytes)
			if err != nil {
				return err
			}
			img, info, err := imaging.DecodeBytes(data)
			if err != nil {
				return err
			}
			a.logger.Debug("decoded image", "file", args[0], "format", info.Format, "width", info.Width, "height", info.Height)

			spec := imaging.SpecFromConfig(a.cfg.Sampling)
			if opts.noRescale {
				spec.Rescale = false
			}
			if opts.filter != "" {
				spec.Filter = opts.filter
			}
			if opts.width > 0 {
				spec.Width = opts.width
			}
			if opts.height > 0 {
				spec.Height = opts.height
			}

			m, err := imaging.NewSampler(a.cfg, a.logger).SampleImage(img, spec)
			if err != nil {
				return err
			}

			name := opts.name
			if name == "" {
				name = a.cfg.Literal.DefaultVariable
			}
			text, err := literal.Format(m, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "variable name (default from config, M)")
	cmd.Flags().BoolVar(&opts.noRescale, "no-rescale", false, "keep raw 0-255 luminance instead of stretching the range")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "resampling filter: area, bilinear or bicubic")
	cmd.Flags().IntVar(&opts.width, "width", 0, "matrix columns (default from config, 50)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "matrix rows (default from config, 50)")

	return cmd
}
