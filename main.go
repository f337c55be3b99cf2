package main

import (
	"github.com/letterrip/workspace-mcp/cmd"
)

// version is set by the linker at build time.
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
