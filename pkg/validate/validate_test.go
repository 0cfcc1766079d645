package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/kashvi-crm/pkg/validate"
)

type customerInput struct {
	Name  string `json:"name"  validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
	Phone string `json:"phone" validate:"nullable,max=32"`
}

type orderInput struct {
	Status   string  `json:"status"   validate:"required,in=pending|shipped|cancelled"`
	Quantity int     `json:"quantity" validate:"min=1,max=1000"`
	Price    string  `json:"price"    validate:"required,numeric"`
	Note     *string `json:"note"     validate:"nullable,min=3"`
}

func TestValidCustomer(t *testing.T) {
	errs := validate.Struct(customerInput{Name: "Ada", Email: "ada@example.com"})
	assert.False(t, validate.HasErrors(errs), "%v", errs)
}

func TestRequired(t *testing.T) {
	errs := validate.Struct(&customerInput{Name: "   "})
	assert.Equal(t, "name is required", errs["name"])
	assert.Equal(t, "email is required", errs["email"])
	assert.NotContains(t, errs, "phone")
}

func TestMaxLengthCountsRunes(t *testing.T) {
	errs := validate.Struct(customerInput{
		Name:  strings.Repeat("é", 255),
		Email: "a@b.co",
		Phone: strings.Repeat("1", 33),
	})
	assert.NotContains(t, errs, "name")
	assert.Equal(t, "phone may not be longer than 32 characters", errs["phone"])
}

func TestEmail(t *testing.T) {
	errs := validate.Struct(customerInput{Name: "Ada", Email: "not-an-email"})
	assert.Equal(t, "email must be a valid email address", errs["email"])
}

func TestNumericRules(t *testing.T) {
	note := "ok"
	errs := validate.Struct(orderInput{Status: "lost", Quantity: 0, Price: "abc", Note: &note})

	assert.Equal(t, "status must be one of pending, shipped, cancelled", errs["status"])
	assert.Equal(t, "quantity must be at least 1", errs["quantity"])
	assert.Equal(t, "price must be a number", errs["price"])
	assert.Equal(t, "note must be at least 3 characters", errs["note"])

	errs = validate.Struct(orderInput{Status: "shipped", Quantity: 5, Price: "10.50"})
	assert.Empty(t, errs)
}

func TestNonStruct(t *testing.T) {
	assert.Empty(t, validate.Struct("x"))
	assert.Empty(t, validate.Struct((*customerInput)(nil)))
}
