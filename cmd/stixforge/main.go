// Command stixforge is the entrypoint for the batch STIX conversion CLI.
package main

import (
	"os"

	"github.com/stixforge/stixforge/internal/cli"
)

// version and commit are set at build time via -ldflags (e.g. Makefile).
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(cli.Execute(version, commit))
}
