// Package main provides the entry point for the ragit CLI.
package main

import (
	"fmt"
	"os"

	"github.com/ragit-kb/ragit/cmd/ragit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
