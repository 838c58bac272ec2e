package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slama/pkg/html"
)

func (c *cli) parseCommand() *cobra.Command {
	var serialize bool

	cmd := &cobra.Command{
		Use:   "parse <url>",
		Short: "Print the document tree of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			body, err := fetch(ctx, args[0])
			if err != nil {
				return err
			}
			doc := html.Parse(body)
			if err := doc.Err(); err != nil {
				loggerFromContext(ctx).Warn("page truncated", "err", err)
			}

			out := cmd.OutOrStdout()
			if serialize {
				_, err := fmt.Fprintln(out, doc.Serialize(doc.Root))
				return err
			}
			return doc.Dump(out, doc.Root)
		},
	}

	cmd.Flags().BoolVar(&serialize, "html", false, "print the repaired markup instead of an indented tree")
	return cmd
}
