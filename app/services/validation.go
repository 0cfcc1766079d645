package services

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/kashvi-crm/app/models"
	"github.com/shashiranjanraj/kashvi-crm/app/repositories"
	"github.com/shashiranjanraj/kashvi-crm/pkg/collection"
	"github.com/shashiranjanraj/kashvi-crm/pkg/validate"
)

// phonePattern accepts "+15551234567"-style digit strings or "555-123-4567".
var phonePattern = regexp.MustCompile(`^(\+?\d{7,15}|\d{3}-\d{3}-\d{4})$`)

// CustomerInput is the raw input of CreateCustomer and each bulk item.
type CustomerInput struct {
	Name  string `json:"name"  validate:"required,max=255"`
	Email string `json:"email" validate:"required,max=255"`
	Phone string `json:"phone" validate:"nullable,max=32"`
}

// ProductInput is the raw input of CreateProduct. Price is kept as text so
// parsing is exact; a nil Stock means 0.
type ProductInput struct {
	Name  string `json:"name"  validate:"required,max=255"`
	Price string `json:"price" validate:"required"`
	Stock *int   `json:"stock"`
}

// ValidateCustomer normalises in and checks it against the store. It returns
// the customer ready to insert.
func ValidateCustomer(ctx context.Context, store repositories.Store, in CustomerInput) (models.Customer, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := checkStruct(in); err != nil {
		return models.Customer{}, err
	}

	taken, err := store.EmailTaken(ctx, in.Email)
	if err != nil {
		return models.Customer{}, storeFailure(err)
	}
	if taken {
		return models.Customer{}, ErrDuplicateEmail
	}

	c := models.Customer{Name: in.Name, Email: in.Email}
	if in.Phone != "" {
		if !phonePattern.MatchString(in.Phone) {
			return models.Customer{}, ErrInvalidPhoneFormat
		}
		phone := in.Phone
		c.Phone = &phone
	}
	return c, nil
}

// ValidateProduct parses and checks in. It needs no store access.
func ValidateProduct(in ProductInput) (models.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Price = strings.TrimSpace(in.Price)

	if in.Price == "" {
		return models.Product{}, ErrInvalidPrice
	}
	if err := checkStruct(in); err != nil {
		return models.Product{}, err
	}

	price, err := decimal.NewFromString(in.Price)
	if err != nil {
		return models.Product{}, ErrInvalidPrice
	}
	if !price.IsPositive() {
		return models.Product{}, ErrNonPositivePrice
	}
	// Prices are stored as decimal(10,2); trailing zeros past the cents are fine.
	if !price.Equal(price.Round(2)) {
		return models.Product{}, ErrPricePrecision
	}
	price = price.Round(2)

	stock := 0
	if in.Stock != nil {
		stock = *in.Stock
	}
	if stock < 0 {
		return models.Product{}, ErrNegativeStock
	}

	return models.Product{Name: in.Name, Price: price, Stock: stock}, nil
}

// ValidateOrderRefs resolves the customer and products of an order. It fails
// on the first unresolved reference. Repeated product ids collapse to one, so
// a product listed twice is linked once and counted once in the order total,
// keeping the total equal to the sum of the linked products' prices.
func ValidateOrderRefs(ctx context.Context, store repositories.Store, customerID uint, productIDs []uint) (*models.Customer, []models.Product, error) {
	customer, err := store.FindCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil, ErrCustomerNotFound
		}
		return nil, nil, storeFailure(err)
	}

	if len(productIDs) == 0 {
		return nil, nil, ErrNoProductsSelected
	}

	ids := collection.Unique(productIDs)
	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		p, err := store.FindProduct(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, nil, ErrProductNotFound
			}
			return nil, nil, storeFailure(err)
		}
		products = append(products, *p)
	}
	return customer, products, nil
}

// checkStruct runs the struct-tag rules and reports the first failing field
// in a stable order.
func checkStruct(v interface{}) error {
	errs := validate.Struct(v)
	if !validate.HasErrors(errs) {
		return nil
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return invalidInput(errs[fields[0]], nil)
}
