package main

import (
	"runtime"

	"github.com/bnema/permstore/internal/cli/cmd"
	"github.com/bnema/permstore/internal/domain/build"
)

// Build-time variables (set via ldflags).
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

func main() {
	cmd.SetBuildInfo(build.Info{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
	})
	cmd.Execute()
}
