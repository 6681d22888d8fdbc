package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Normalize raw records into the processed post and user files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closer, err := newPipeline(cmd)
			if err != nil {
				return err
			}
			defer closer.Close()

			stats, err := p.Process(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "processed %d posts and %d users\n", stats.Posts, stats.Users)
			return nil
		},
	}
}
