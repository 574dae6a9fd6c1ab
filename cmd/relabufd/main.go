// Command relabufd is the demo CLI entry point: it drives a
// pkg/relabuf.Buffer from a chosen collaborator source until the source
// closes or the process is signalled (SPEC_FULL.md §C.6).
package main

import (
	"fmt"
	"os"

	"github.com/let4be/relabuf/internal/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	rootCmd := cli.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
