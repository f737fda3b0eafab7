// Package cli wires the docdeck command line.
package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X ...cli.Version=...".
var Version = "dev"

// NewRootCommand returns the docdeck command tree.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   "docdeck",
		Short: "DocDeck is a browser console for document databases.",
		Long: `DocDeck serves a small web console for browsing and editing
MongoDB databases (and Postgres, MySQL or an in-memory demo store)
through a JSON API.`,
		SilenceUsage: true,
	}

	rc.AddCommand(newServeCommand(stdout, stderr))
	rc.AddCommand(newVersionCommand(stdout))

	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the docdeck version.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("docdeck %s\n", Version)
		},
	}
}
