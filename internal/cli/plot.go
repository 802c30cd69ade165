package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/matrix-tools-mcp/internal/heatmap"
	"github.com/ironsheep/matrix-tools-mcp/internal/literal"
)

type plotOpts struct {
	output     string
	cmap       string
	vmin       string
	vmax       string
	title      string
	cellSize   int
	noColorbar bool
}

func newPlotCmd() *cobra.Command {
	var opts plotOpts

	cmd := &cobra.Command{
		Use:   "plot FILE",
		Short: "Render a matrix literal file (or - for stdin) as a PNG heatmap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFromContext(cmd.Context())

			text, err := readInput(cmd, args[0], a.cfg.UploadLimitBytes)
			if err != nil {
				return err
			}
			m, err := literal.Parse(string(text))
			if err != nil {
				return err
			}

			renderer := heatmap.NewRenderer(a.cfg, a.logger)
			spec := renderer.DefaultSpec()
			if spec.VMin, err = literal.ParseOptionalFloat(opts.vmin, "vmin"); err != nil {
				return err
			}
			if spec.VMax, err = literal.ParseOptionalFloat(opts.vmax, "vmax"); err != nil {
				return err
			}
			if opts.cmap != "" {
				spec.Scale = opts.cmap
			}
			if _, ok := heatmap.LookupScale(spec.Scale); !ok {
				a.logger.Warn("unknown color scale, using gray", "cmap", spec.Scale)
			}
			spec.Title = opts.title
			if opts.cellSize > 0 {
				spec.CellSize = opts.cellSize
			}
			if opts.noColorbar {
				spec.Colorbar = false
			}

			png, err := renderer.Render(m, spec)
			if err != nil {
				return err
			}
			if err := os.WriteFile(opts.output, png, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", opts.output, err)
			}

			rows, cols := m.Dims()
			out := cmd.OutOrStdout()
			printSuccess(out, "Rendered %dx%d matrix", rows, cols)
			printFile(out, opts.output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "PNG file to write")
	cmd.Flags().StringVar(&opts.cmap, "cmap", "", "color scale (see `matrix-mcp scales`)")
	cmd.Flags().StringVar(&opts.vmin, "vmin", "", "value at the low end of the scale (default: matrix minimum)")
	cmd.Flags().StringVar(&opts.vmax, "vmax", "", "value at the high end of the scale (default: matrix maximum)")
	cmd.Flags().StringVar(&opts.title, "title", "", "title drawn above the plot")
	cmd.Flags().IntVar(&opts.cellSize, "cell-size", 0, "pixels per matrix cell (default fits 500 px)")
	cmd.Flags().BoolVar(&opts.noColorbar, "no-colorbar", false, "omit the color scale bar")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
