// Package cli implements the matrix-mcp command-line interface.
//
// With no subcommand the binary runs the MCP server on stdio. The
// subcommands run one conversion and exit:
//   - image: print the matrix literal of an image
//   - video: print one literal per sampled frame
//   - plot: render a matrix literal to a PNG heatmap
//   - scales: list the heatmap color scales
//
// --config loads a TOML file over the defaults and --verbose (-v) turns on
// debug logging. Logs always go to stderr.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/matrix-tools-mcp/internal/config"
	"github.com/ironsheep/matrix-tools-mcp/internal/server"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// SetVersion sets the version information displayed by --version and
// reported to MCP clients.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the CLI against the process's stdio.
func Execute() error {
	return NewRootCommand(os.Stderr).ExecuteContext(context.Background())
}

// NewRootCommand builds the command tree. Logs are written to logOut.
func NewRootCommand(logOut io.Writer) *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:   "matrix-mcp",
		Short: "Convert images and video to matrix literals and plot them as heatmaps",
		Long: `matrix-mcp samples images and video frames into grayscale intensity matrices,
formats them as literals like M = [[0, 12], [255, 7]], and renders literals
back into heatmap images.

Run without a subcommand to serve the tools to an MCP client over stdio.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger := newLogger(logOut, resolveLevel(verbose, cfg.LogLevel))
			logger.Debug("configuration", "config", cfg.String())
			cmd.SetContext(withApp(cmd.Context(), &app{cfg: cfg, logger: logger}))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFromContext(cmd.Context())
			server.Version = version
			a.logger.Info("matrix-mcp server starting", "version", version, "commit", commit)
			return server.New(a.cfg, a.logger).Serve(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("matrix-mcp %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "TOML configuration file")

	root.AddCommand(newImageCmd())
	root.AddCommand(newVideoCmd())
	root.AddCommand(newPlotCmd())
	root.AddCommand(newScalesCmd())

	return root
}

// readInput reads path, or stdin when path is "-", refusing more than limit
// bytes.
func readInput(cmd *cobra.Command, path string, limit int64) ([]byte, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s is larger than the %d byte upload limit", path, limit)
	}
	return data, nil
}
