package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"slama/pkg/html"
)

func (c *cli) tokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <url>",
		Short: "Print the token stream of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			body, err := fetch(ctx, args[0])
			if err != nil {
				return err
			}
			tokens, state := html.Tokenize(body)
			out := cmd.OutOrStdout()
			for _, tok := range tokens {
				if _, err := fmt.Fprintf(out, "%-6s %q\n", tok.Type, tok.Data); err != nil {
					return err
				}
			}
			if state != html.StateText {
				loggerFromContext(ctx).Warn("input ended inside markup", "state", state)
			}
			return nil
		},
	}
}
