package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/matrix-tools-mcp/internal/heatmap"
)

func newScalesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scales",
		Short: "List the heatmap color scales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFromContext(cmd.Context())
			out := cmd.OutOrStdout()
			for _, s := range heatmap.Scales() {
				label := s.Label
				if s.Name == a.cfg.Plot.DefaultScale {
					label += StyleDim.Render(" (default)")
				}
				printKeyValue(out, s.Name, label)
			}
			return nil
		},
	}
}
