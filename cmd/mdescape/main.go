// Package main provides the entry point for the mdescape CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/mdescape/cmd/mdescape/commands"
	"github.com/Sumatoshi-tech/mdescape/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
