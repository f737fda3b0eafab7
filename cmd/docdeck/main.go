// Command docdeck runs the DocDeck web console.
package main

import (
	"os"

	"github.com/koustreak/docdeck/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
