// Package main is the single-binary entrypoint for Spikewise.
package main

import "github.com/spikewise/spikewise/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
