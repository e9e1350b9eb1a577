// cmd/biasprobe/main.go
package main

import (
	biasprobe "github.com/mwiater/biasprobe/internal/commands"
)

// Build-time variables injected by the linker.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Indirections for test wiring.
var (
	setVersionInfo = biasprobe.SetVersionInfo
	executeCmd     = biasprobe.Execute
)

// main starts the biasprobe CLI application by delegating to the
// cobra root command defined in the commands package.
func main() {
	setVersionInfo(version, commit, date)
	executeCmd()
}
