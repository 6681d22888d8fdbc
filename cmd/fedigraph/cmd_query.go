package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/fedigraph/pkg/graphql"
	"github.com/dd0wney/fedigraph/pkg/report"
)

func newQueryCmd() *cobra.Command {
	var vars string

	cmd := &cobra.Command{
		Use:     "query <report.json> <graphql>",
		Short:   "Run a GraphQL query against a saved run report",
		Example: `  fedigraph query output/<run>/report.json '{ graph(name: "friendship") { top(measure: "pagerank", limit: 5) { nodeId score } } }'`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := report.Load(args[0])
			if err != nil {
				return err
			}
			var variables map[string]any
			if vars != "" {
				if err := json.Unmarshal([]byte(vars), &variables); err != nil {
					return fmt.Errorf("parse --vars: %w", err)
				}
			}
			data, err := graphql.Query(rep, args[1], variables)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&vars, "vars", "", "Query variables as a JSON object")
	return cmd
}
