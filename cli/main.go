package main

import (
	"fmt"
	"os"

	"github.com/nuclifi/nuclifi-deployer/internal/cli"
	"github.com/nuclifi/nuclifi-deployer/internal/config"
)

// Set at build time via -ldflags "-X main.version=..."
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	config.SetBuildFlags(version, commit, date)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
