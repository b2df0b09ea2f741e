package main

import "github.com/abdul-hamid-achik/httpspec/apps/cli/cmd"

// Set with -ldflags at build time.
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cmd.Execute(version, buildTime)
}
