package graphql

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/graphql-go/graphql"
)

const cursorPrefix = "arrayconnection:"

// ErrInvalidCursor is returned for an `after` value that is not a cursor
// produced by EncodeCursor.
var ErrInvalidCursor = errors.New("graphql: invalid cursor")

// EncodeCursor returns the opaque cursor of the row at offset.
func EncodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

// DecodeCursor reverses EncodeCursor.
func DecodeCursor(cursor string) (int, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, ErrInvalidCursor
	}
	s := string(raw)
	if !strings.HasPrefix(s, cursorPrefix) {
		return 0, ErrInvalidCursor
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, cursorPrefix))
	if err != nil || n < 0 {
		return 0, ErrInvalidCursor
	}
	return n, nil
}

// Window resolves the first/after arguments into an offset and limit.
// first defaults to max and is capped at it.
func Window(args map[string]interface{}, max int) (offset, limit int, err error) {
	limit = max
	if v, ok := args["first"].(int); ok {
		if v < 0 {
			return 0, 0, fmt.Errorf("graphql: first must not be negative")
		}
		if v < max {
			limit = v
		}
	}
	if after, ok := args["after"].(string); ok && after != "" {
		n, err := DecodeCursor(after)
		if err != nil {
			return 0, 0, err
		}
		offset = n + 1
	}
	return offset, limit, nil
}

// Edge is one node of a connection page.
type Edge struct {
	Cursor string      `json:"cursor"`
	Node   interface{} `json:"node"`
}

type PageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor"`
	EndCursor       *string `json:"endCursor"`
}

// Lazy is an Extra value computed only when its field is selected.
type Lazy func() (interface{}, error)

// Connection is the resolved value of a *Connection field. Extra carries
// connection-level fields beyond the standard three, keyed by field name.
// A Lazy value is called on demand.
type Connection struct {
	Edges      []Edge                 `json:"edges"`
	PageInfo   PageInfo               `json:"pageInfo"`
	TotalCount int64                  `json:"totalCount"`
	Extra      map[string]interface{} `json:"-"`
}

// NewConnection wraps one page of nodes that starts at offset within a list
// of total rows.
func NewConnection[T any](nodes []T, offset int, total int64) *Connection {
	c := &Connection{Edges: make([]Edge, len(nodes)), TotalCount: total}
	for i, n := range nodes {
		c.Edges[i] = Edge{Cursor: EncodeCursor(offset + i), Node: n}
	}
	c.PageInfo.HasPreviousPage = offset > 0
	c.PageInfo.HasNextPage = int64(offset+len(nodes)) < total
	if len(nodes) > 0 {
		start, end := c.Edges[0].Cursor, c.Edges[len(nodes)-1].Cursor
		c.PageInfo.StartCursor, c.PageInfo.EndCursor = &start, &end
	}
	return c
}

var pageInfoType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PageInfo",
	Fields: graphql.Fields{
		"hasNextPage":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"hasPreviousPage": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"startCursor":     &graphql.Field{Type: graphql.String},
		"endCursor":       &graphql.Field{Type: graphql.String},
	},
})

// ConnectionArgs are the arguments every list field takes besides its filter.
func ConnectionArgs(filter graphql.Input) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"filter":  &graphql.ArgumentConfig{Type: filter},
		"orderBy": &graphql.ArgumentConfig{Type: graphql.String},
		"first":   &graphql.ArgumentConfig{Type: graphql.Int},
		"after":   &graphql.ArgumentConfig{Type: graphql.String},
	}
}

// ConnectionType builds <Node>Connection and <Node>Edge for node. extra adds
// connection-level fields whose values come from Connection.Extra.
func ConnectionType(node *graphql.Object, extra graphql.Fields) *graphql.Object {
	edge := graphql.NewObject(graphql.ObjectConfig{
		Name: node.Name() + "Edge",
		Fields: graphql.Fields{
			"cursor": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
			"node":   &graphql.Field{Type: node},
		},
	})

	fields := graphql.Fields{
		"edges":      &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(edge))},
		"pageInfo":   &graphql.Field{Type: graphql.NewNonNull(pageInfoType)},
		"totalCount": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	}
	for name, f := range extra {
		name, f := name, f
		if f.Resolve == nil {
			f.Resolve = func(p graphql.ResolveParams) (interface{}, error) {
				c, ok := p.Source.(*Connection)
				if !ok {
					return nil, nil
				}
				if fn, ok := c.Extra[name].(Lazy); ok {
					return fn()
				}
				return c.Extra[name], nil
			}
		}
		fields[name] = f
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name:   node.Name() + "Connection",
		Fields: fields,
	})
}
