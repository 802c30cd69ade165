package main

import (
	"fmt"
	"os"

	"github.com/ironsheep/matrix-tools-mcp/internal/cli"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cli.SetVersion(Version, GitCommit, BuildTime)
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "matrix-mcp:", err)
		os.Exit(1)
	}
}
