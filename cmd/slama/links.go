package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) linksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "links <url>",
		Short: "List the pages a page links to",
		Long: `Fetch a page and print the absolute URL of every <a href> on it, in
document order. Relative links are resolved against the page URL.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := c.newBrowser(ctx, 0, 0)
			if err != nil {
				return err
			}
			if err := b.Load(ctx, args[0]); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, u := range b.Links() {
				if _, err := fmt.Fprintln(out, u.String()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
