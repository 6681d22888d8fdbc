package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCollectCmd() *cobra.Command {
	var process bool

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Fetch hashtag timelines and follow lists from the configured instance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closer, err := newPipeline(cmd)
			if err != nil {
				return err
			}
			defer closer.Close()

			stats, err := p.Collect(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "collected %d posts and %d users\n", stats.Posts, stats.Users)

			if !process {
				return nil
			}
			pstats, err := p.Process(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d posts and %d users\n", pstats.Posts, pstats.Users)
			return nil
		},
	}

	cmd.Flags().BoolVar(&process, "process", false, "Normalize the collected records afterwards")
	return cmd
}
