package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *cli) layoutCommand() *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "layout <url>",
		Short: "Print the display list of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := c.newBrowser(ctx, width, 0)
			if err != nil {
				return err
			}
			if err := b.Load(ctx, args[0]); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "X\tY\tFONT\tTEXT")
			for _, item := range b.DisplayList() {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", item.X, item.Y, item.Font.Key(), item.Text)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&width, "width", "W", 0, "viewport width in pixels (default from config)")
	return cmd
}
