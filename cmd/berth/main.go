// Package main is the single-binary entrypoint for berth: the daemon,
// the API server and the operator CLI in one executable.
package main

import "github.com/berth-cluster/berth/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
