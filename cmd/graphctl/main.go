// Command graphctl is a thin HTTP client for the duragraph server: list
// the brick catalog, validate a graph document before uploading it, and
// kick off a run, all from a terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var serverAddr string

func main() {
	root := &cobra.Command{
		Use:   "graphctl",
		Short: "Command-line client for the duragraph execution server",
	}
	root.PersistentFlags().StringVar(&serverAddr, "server", "http://localhost:8080", "duragraph server base URL")

	root.AddCommand(newBricksCmd())
	root.AddCommand(newGraphCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
