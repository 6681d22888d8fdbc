package graphql

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/dd0wney/fedigraph/pkg/report"
)

// Query runs a depth-limited query against a report and returns the data
// as indented JSON. Query errors are joined into the returned error.
func Query(r *report.Report, query string, variables map[string]any) ([]byte, error) {
	schema, err := GenerateSchema(r)
	if err != nil {
		return nil, err
	}

	result := ExecuteWithDepthLimit(schema, query, DefaultMaxDepth, variables)
	if result.HasErrors() {
		msgs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, errors.New("query: " + strings.Join(msgs, "; "))
	}
	return json.MarshalIndent(result.Data, "", "  ")
}

// Do executes a query without a depth limit.
func Do(schema graphql.Schema, query string, variables map[string]any) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: variables,
	})
}
