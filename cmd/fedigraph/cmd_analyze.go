package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/fedigraph/pkg/report"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		process bool
		browse  bool
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Build, prune and analyze the graphs and write the run report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, closer, err := newPipeline(cmd)
			if err != nil {
				return err
			}
			defer closer.Close()

			if process {
				if _, err := p.Process(cmd.Context()); err != nil {
					return err
				}
			}
			rep, err := p.Analyze(cmd.Context())
			if err != nil {
				return err
			}

			if browse {
				return report.Browse(rep)
			}
			if !quiet {
				fmt.Fprint(cmd.OutOrStdout(), report.Summary(rep))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&process, "process", false, "Normalize raw records first")
	cmd.Flags().BoolVar(&browse, "browse", false, "Open the interactive browser when done")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the summary")
	return cmd
}
