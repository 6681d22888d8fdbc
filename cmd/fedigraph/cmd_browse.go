package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/fedigraph/pkg/report"
)

func newBrowseCmd() *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "browse <report.json>",
		Short: "Browse a saved run report in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := report.Load(args[0])
			if err != nil {
				return err
			}
			if summary {
				fmt.Fprint(cmd.OutOrStdout(), report.Summary(rep))
				return nil
			}
			return report.Browse(rep)
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "Print a static summary instead of the interactive browser")
	return cmd
}
