package graphql

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order when parsing DateTime input.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDateTime accepts RFC3339 and the naive layouts in dateLayouts. Naive
// values are read as UTC.
func ParseDateTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func serializeDateTime(value interface{}) interface{} {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.UTC().Format(time.RFC3339)
	}
	return nil
}

func parseDateTime(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		if t, ok := ParseDateTime(v); ok {
			return t
		}
	case *string:
		if v != nil {
			return parseDateTime(*v)
		}
	}
	return nil
}

// DateTime serialises as RFC3339 in UTC.
var DateTime = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "DateTime",
	Description: "An instant. Output is RFC3339 in UTC; input also accepts 2006-01-02T15:04:05, 2006-01-02 15:04:05 and 2006-01-02.",
	Serialize:   serializeDateTime,
	ParseValue:  parseDateTime,
	ParseLiteral: func(valueAST ast.Value) interface{} {
		if v, ok := valueAST.(*ast.StringValue); ok {
			return parseDateTime(v.Value)
		}
		return nil
	},
})

func serializeDecimal(value interface{}) interface{} {
	switch v := value.(type) {
	case decimal.Decimal:
		return v.StringFixed(2)
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		return v.StringFixed(2)
	case decimal.NullDecimal:
		if !v.Valid {
			return nil
		}
		return v.Decimal.StringFixed(2)
	}
	return nil
}

// parseDecimal keeps the input as text. Resolvers parse it with ParseDecimal
// so a malformed amount becomes a domain error instead of a coercion error.
func parseDecimal(value interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case json.Number:
		return v.String()
	}
	return nil
}

// Decimal is money: a fixed two-place string on output; string, int or float
// on input.
var Decimal = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "Decimal",
	Description: "An exact decimal amount, serialised as a string with two decimal places.",
	Serialize:   serializeDecimal,
	ParseValue:  parseDecimal,
	ParseLiteral: func(valueAST ast.Value) interface{} {
		switch v := valueAST.(type) {
		case *ast.StringValue:
			return v.Value
		case *ast.IntValue:
			return v.Value
		case *ast.FloatValue:
			return v.Value
		}
		return nil
	},
})

// ParseDecimal converts a Decimal argument into a decimal.Decimal.
func ParseDecimal(value interface{}) (decimal.Decimal, bool) {
	s, ok := value.(string)
	if !ok {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
