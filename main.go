// SPDX-License-Identifier: MIT
package main

import (
	"os"

	"eqlab/cmd"
	"eqlab/internal/cli"
	"eqlab/internal/log"
	"eqlab/pkg/build"
)

func main() {
	// Missing ldflags only mean a development build.
	if err := build.Initialize(); err != nil {
		log.Debugf("Build: %v", err)
	}

	if err := cmd.Execute(); err != nil {
		cli.PrintError(os.Stderr, err.Error())
		os.Exit(1)
	}
}
