// Package filters turns declarative (field, operator, value) predicates into
// gorm scopes. Predicates always combine with AND; there is no OR, nesting or
// negation. Each entity publishes a Schema that whitelists its filterable and
// sortable fields, so callers can never reach an arbitrary column.
package filters

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Op is a comparison operator.
type Op string

const (
	Eq          Op = "eq"
	IContains   Op = "icontains"
	IStartsWith Op = "istartswith"
	Gte         Op = "gte"
	Lte         Op = "lte"
)

// ErrUnknownField is returned for a predicate or sort key the schema does not expose.
var ErrUnknownField = errors.New("filters: unknown field")

// ErrUnsupportedOp is returned when a field does not accept the operator.
var ErrUnsupportedOp = errors.New("filters: unsupported operator")

// Predicate constrains one field.
type Predicate struct {
	Field string
	Op    Op
	Value interface{}
}

// Filter is an AND-list of predicates. The zero value matches everything.
type Filter []Predicate

// Where appends a predicate and returns the extended filter.
func (f Filter) Where(field string, op Op, value interface{}) Filter {
	return append(f, Predicate{Field: field, Op: op, Value: value})
}

// Column maps a public field name to SQL.
type Column struct {
	// Expr is the column expression the operator is applied to.
	Expr string
	// Through, when set, wraps the condition for a related table, e.g.
	// "orders.id IN (SELECT order_id FROM order_products WHERE %s)".
	Through string
	Ops     []Op
}

func (c Column) accepts(op Op) bool {
	for _, o := range c.Ops {
		if o == op {
			return true
		}
	}
	return false
}

// Schema is the whitelist for one entity.
type Schema struct {
	Table    string
	Columns  map[string]Column
	Sortable map[string]string
}

// Scope validates f against the schema and returns a gorm scope applying it.
func (s Schema) Scope(f Filter) (func(*gorm.DB) *gorm.DB, error) {
	type clause struct {
		sql string
		arg interface{}
	}
	clauses := make([]clause, 0, len(f))

	for _, p := range f {
		col, ok := s.Columns[p.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, s.Table, p.Field)
		}
		if !col.accepts(p.Op) {
			return nil, fmt.Errorf("%w: %s on %s.%s", ErrUnsupportedOp, p.Op, s.Table, p.Field)
		}

		cond, arg := condition(col.Expr, p.Op, p.Value)
		if col.Through != "" {
			cond = fmt.Sprintf(col.Through, cond)
		}
		clauses = append(clauses, clause{sql: cond, arg: arg})
	}

	return func(db *gorm.DB) *gorm.DB {
		for _, c := range clauses {
			db = db.Where(c.sql, c.arg)
		}
		return db
	}, nil
}

// Order resolves an orderBy key such as "name" or "-orderDate" into an
// ORDER BY expression. An empty key sorts by ascending id.
func (s Schema) Order(key string) (string, error) {
	if key == "" {
		return s.Table + ".id ASC", nil
	}

	dir := "ASC"
	if strings.HasPrefix(key, "-") {
		dir = "DESC"
		key = key[1:]
	}

	col, ok := s.Sortable[key]
	if !ok {
		return "", fmt.Errorf("%w: cannot order %s by %q", ErrUnknownField, s.Table, key)
	}
	// Tie-break on id so paging over equal keys is stable.
	return fmt.Sprintf("%s %s, %s.id %s", col, dir, s.Table, dir), nil
}

func condition(expr string, op Op, value interface{}) (string, interface{}) {
	switch op {
	case IContains:
		return "LOWER(" + expr + ") LIKE ? ESCAPE '!'", "%" + escapeLike(strings.ToLower(fmt.Sprint(value))) + "%"
	case IStartsWith:
		return "LOWER(" + expr + ") LIKE ? ESCAPE '!'", escapeLike(strings.ToLower(fmt.Sprint(value))) + "%"
	case Gte:
		return expr + " >= ?", normalize(value)
	case Lte:
		return expr + " <= ?", normalize(value)
	default:
		return expr + " = ?", normalize(value)
	}
}

// normalize stores all instants in UTC, matching how rows are written.
func normalize(v interface{}) interface{} {
	if t, ok := v.(time.Time); ok {
		return t.UTC()
	}
	return v
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string { return likeEscaper.Replace(s) }
