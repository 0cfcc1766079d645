// Package graphql holds the graphql-go plumbing shared by the CRM schema:
// scalars, Relay-style connections, executors and the HTTP handler.
package graphql

import (
	"github.com/graphql-go/graphql"
)

// NewSchema builds a schema from the root query and mutation objects.
// mutation may be nil.
func NewSchema(query, mutation *graphql.Object) (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}
