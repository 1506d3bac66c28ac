// The geointel binary is the command line toolkit: offline prediction and
// clustering plus schema migration management.
package main

import (
	"fmt"
	"os"

	"github.com/rentscope/geointel/internal/interfaces/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
