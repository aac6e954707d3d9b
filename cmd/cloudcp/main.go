package main

import (
	"os"

	"github.com/3leaps/cloudcp/internal/cmd"
)

// Build-time metadata, injected via -ldflags.
var (
	version   = "dev"
	commit    = "HEAD"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)
	os.Exit(cmd.Execute())
}
