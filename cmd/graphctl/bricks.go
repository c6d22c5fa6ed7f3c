package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/duragraph/duragraph/internal/infrastructure/http/dto"
	"github.com/spf13/cobra"
)

func newBricksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bricks",
		Short: "Inspect the registered brick catalog",
	}
	cmd.AddCommand(newBricksListCmd())
	return cmd
}

func newBricksListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registered brick",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(serverAddr)
			var bricks []dto.BrickDescriptor
			if err := client.get("/bricks", &bricks); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCATEGORY\tLABEL")
			for _, b := range bricks {
				fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Category, b.Label)
			}
			return w.Flush()
		},
	}
}
