// Package main provides the entry point for the skelbot CLI.
package main

import (
	"fmt"
	"os"

	"github.com/skel-labs/skelbot/cmd/skelbot/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
