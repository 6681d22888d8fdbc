package graphql

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// DefaultMaxDepth bounds the nesting of report queries.
const DefaultMaxDepth = 6

// calculateQueryDepth calculates the maximum depth of a GraphQL query
func calculateQueryDepth(document *ast.Document) int {
	fragments := make(map[string]*ast.FragmentDefinition)
	for _, definition := range document.Definitions {
		if frag, ok := definition.(*ast.FragmentDefinition); ok {
			fragments[frag.Name.Value] = frag
		}
	}

	maxDepth := 0
	for _, definition := range document.Definitions {
		if op, ok := definition.(*ast.OperationDefinition); ok {
			depth := calculateSelectionSetDepth(op.SelectionSet, 0, fragments, map[string]bool{})
			if depth > maxDepth {
				maxDepth = depth
			}
		}
	}
	return maxDepth
}

// calculateSelectionSetDepth returns the deepest field nesting below a
// selection set. Fragment spreads are expanded; a fragment already on the
// current path is not expanded again.
func calculateSelectionSetDepth(selectionSet *ast.SelectionSet, currentDepth int,
	fragments map[string]*ast.FragmentDefinition, visiting map[string]bool) int {

	if selectionSet == nil {
		return currentDepth
	}

	maxDepth := currentDepth
	for _, selection := range selectionSet.Selections {
		depth := currentDepth
		switch sel := selection.(type) {
		case *ast.Field:
			if isIntrospectionField(sel.Name.Value) {
				continue
			}
			depth = calculateSelectionSetDepth(sel.SelectionSet, currentDepth+1, fragments, visiting)

		case *ast.InlineFragment:
			depth = calculateSelectionSetDepth(sel.SelectionSet, currentDepth, fragments, visiting)

		case *ast.FragmentSpread:
			name := sel.Name.Value
			frag, ok := fragments[name]
			if !ok || visiting[name] {
				continue
			}
			visiting[name] = true
			depth = calculateSelectionSetDepth(frag.SelectionSet, currentDepth, fragments, visiting)
			delete(visiting, name)
		}
		if depth > maxDepth {
			maxDepth = depth
		}
	}
	return maxDepth
}

// isIntrospectionField checks if a field is an introspection field
func isIntrospectionField(fieldName string) bool {
	return strings.HasPrefix(fieldName, "__")
}

// ValidateQueryDepth validates a query against the depth limit
func ValidateQueryDepth(query string, maxDepth int) error {
	document, err := parser.Parse(parser.ParseParams{
		Source: query,
	})
	if err != nil {
		return fmt.Errorf("failed to parse query: %w", err)
	}

	queryDepth := calculateQueryDepth(document)
	if queryDepth > maxDepth {
		return fmt.Errorf("query depth %d exceeds maximum allowed depth %d", queryDepth, maxDepth)
	}
	return nil
}

// ExecuteWithDepthLimit executes a GraphQL query with depth validation
func ExecuteWithDepthLimit(schema graphql.Schema, query string, maxDepth int, variableValues map[string]any) *graphql.Result {
	if err := ValidateQueryDepth(query, maxDepth); err != nil {
		return &graphql.Result{
			Errors: []gqlerrors.FormattedError{
				gqlerrors.FormatError(err),
			},
		}
	}

	return Do(schema, query, variableValues)
}
