package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDirectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "directions",
		Short: "List configured translation directions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			p, err := buildPipeline(cfg, nil)
			if err != nil {
				return err
			}
			reg := p.Registry()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "DIRECTION\tSUBWORD\tTRUECASE")
			for _, key := range reg.Directions() {
				res, err := reg.Direction(key)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%t\n", key, res.Subtokenizer.Kind(), res.Truecaser != nil)
			}

			return tw.Flush()
		},
	}
}
