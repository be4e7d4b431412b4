// Package main is the axiom CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/axiomkit/axiom/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
