// Package validate checks struct fields against rules declared in a
// `validate` tag. Rules are comma-separated and run in order; the first
// failing rule sets the field's message.
//
//	required      value must not be zero or blank
//	nullable      an empty value skips the remaining rules
//	email         address of the form local@domain.tld
//	min=N, max=N  string length in runes, or numeric value
//	in=a|b|c      value must be one of the listed options
//	numeric       string must parse as a number
//
// Example:
//
//	type CustomerInput struct {
//	    Name  string `json:"name"  validate:"required,max=255"`
//	    Email string `json:"email" validate:"required,email,max=255"`
//	    Phone string `json:"phone" validate:"nullable,max=32"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var emailRE = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Struct validates the exported fields of v that carry a `validate` tag and
// returns messages keyed by the field's JSON name. An empty map means v is
// valid; non-struct values are always valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return errs
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		name := jsonFieldName(field)
		value := rv.Field(i)
		rules := strings.Split(tag, ",")

		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}
		for _, rule := range rules {
			if msg := apply(strings.TrimSpace(rule), name, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}
	return errs
}

// HasErrors reports whether errs holds any message.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func apply(rule, field string, v reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "", "nullable":
		return ""
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("%s is required", field)
		}
	case "email":
		if !emailRE.MatchString(text(v)) {
			return fmt.Sprintf("%s must be a valid email address", field)
		}
	case "numeric":
		if _, err := strconv.ParseFloat(strings.TrimSpace(text(v)), 64); err != nil {
			return fmt.Sprintf("%s must be a number", field)
		}
	case "min", "max":
		limit, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return fmt.Sprintf("%s has an invalid %s rule", field, key)
		}
		return bound(key, field, limit, v)
	case "in":
		s := text(v)
		for _, opt := range strings.Split(param, "|") {
			if s == opt {
				return ""
			}
		}
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(param, "|", ", "))
	default:
		return fmt.Sprintf("%s has an unknown rule %q", field, key)
	}
	return ""
}

func bound(key, field string, limit float64, v reflect.Value) string {
	if n, ok := number(v); ok {
		if key == "min" && n < limit {
			return fmt.Sprintf("%s must be at least %v", field, limit)
		}
		if key == "max" && n > limit {
			return fmt.Sprintf("%s may not be greater than %v", field, limit)
		}
		return ""
	}

	n := float64(utf8.RuneCountInString(text(v)))
	if key == "min" && n < limit {
		return fmt.Sprintf("%s must be at least %v characters", field, limit)
	}
	if key == "max" && n > limit {
		return fmt.Sprintf("%s may not be longer than %v characters", field, limit)
	}
	return ""
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Ptr, reflect.Interface:
		return v.IsNil() || isEmpty(v.Elem())
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	}
	return v.IsZero()
}

func number(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}

func text(v reflect.Value) string {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == target {
			return true
		}
	}
	return false
}
