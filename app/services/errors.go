package services

import (
	"errors"
	"strings"
)

// Kind classifies a CRM failure.
type Kind string

const (
	KindInvalidInput       Kind = "InvalidInput"
	KindDuplicateEmail     Kind = "DuplicateEmail"
	KindInvalidPhoneFormat Kind = "InvalidPhoneFormat"
	KindInvalidPrice       Kind = "InvalidPrice"
	KindNegativeStock      Kind = "NegativeStock"
	KindCustomerNotFound   Kind = "CustomerNotFound"
	KindNoProductsSelected Kind = "NoProductsSelected"
	KindProductNotFound    Kind = "ProductNotFound"
	KindStoreFailure       Kind = "StoreFailure"
)

// Error is the typed error every CRM operation returns.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrInvalidPrice)
// holds for both "invalid price" and "price must be positive".
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Extensions is read by graphql-go and surfaces the kind as an error code.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": code(e.Kind)}
}

// code turns a Kind into SCREAMING_SNAKE_CASE.
func code(k Kind) string {
	var b strings.Builder
	for i, r := range string(k) {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

var (
	ErrInvalidInput       = &Error{Kind: KindInvalidInput, Msg: "invalid input"}
	ErrDuplicateEmail     = &Error{Kind: KindDuplicateEmail, Msg: "email already exists"}
	ErrInvalidPhoneFormat = &Error{Kind: KindInvalidPhoneFormat, Msg: "invalid phone format"}
	ErrInvalidPrice       = &Error{Kind: KindInvalidPrice, Msg: "invalid price"}
	ErrNonPositivePrice   = &Error{Kind: KindInvalidPrice, Msg: "price must be positive"}
	ErrPricePrecision     = &Error{Kind: KindInvalidPrice, Msg: "price must have at most two decimal places"}
	ErrNegativeStock      = &Error{Kind: KindNegativeStock, Msg: "stock cannot be negative"}
	ErrCustomerNotFound   = &Error{Kind: KindCustomerNotFound, Msg: "invalid customer ID"}
	ErrNoProductsSelected = &Error{Kind: KindNoProductsSelected, Msg: "at least one product must be selected"}
	ErrProductNotFound    = &Error{Kind: KindProductNotFound, Msg: "invalid product ID"}
	ErrStoreFailure       = &Error{Kind: KindStoreFailure, Msg: "store failure"}
)

// storeFailure wraps a persistence error that is not a validation outcome.
func storeFailure(err error) error {
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	return &Error{Kind: KindStoreFailure, Msg: "store failure: " + err.Error(), Err: err}
}

func invalidInput(msg string, err error) error {
	return &Error{Kind: KindInvalidInput, Msg: msg, Err: err}
}

// KindOf returns the kind of err, or "" for foreign errors.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return ""
}
