package schema

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/kashvi-crm/app/filters"
	"github.com/shashiranjanraj/kashvi-crm/app/services"
	gql "github.com/shashiranjanraj/kashvi-crm/pkg/graphql"
)

func invalid(msg string) error {
	return &services.Error{Kind: services.KindInvalidInput, Msg: msg}
}

func str(m map[string]interface{}, key string) *string {
	if v, ok := m[key].(string); ok {
		return &v
	}
	return nil
}

func integer(m map[string]interface{}, key string) *int {
	if v, ok := m[key].(int); ok {
		return &v
	}
	return nil
}

func instant(m map[string]interface{}, key string) *time.Time {
	if v, ok := m[key].(time.Time); ok {
		return &v
	}
	return nil
}

func amount(m map[string]interface{}, key string) (*decimal.Decimal, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	d, ok := gql.ParseDecimal(v)
	if !ok {
		return nil, invalid(key + " is not a decimal amount")
	}
	return &d, nil
}

// id parses an ID argument. Anything that is not a positive integer maps to
// 0, which no row has, so lookups report the entity as not found.
func id(v interface{}) uint {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

func filterArg(args map[string]interface{}) map[string]interface{} {
	m, _ := args["filter"].(map[string]interface{})
	return m
}

func customerFilter(args map[string]interface{}) filters.CustomerFilter {
	m := filterArg(args)
	return filters.CustomerFilter{
		Name:         str(m, "name"),
		Email:        str(m, "email"),
		CreatedAtGte: instant(m, "createdAtGte"),
		CreatedAtLte: instant(m, "createdAtLte"),
		PhonePattern: str(m, "phonePattern"),
	}
}

func productFilter(args map[string]interface{}) (filters.ProductFilter, error) {
	m := filterArg(args)
	f := filters.ProductFilter{
		Name:     str(m, "name"),
		StockGte: integer(m, "stockGte"),
		StockLte: integer(m, "stockLte"),
	}
	var err error
	if f.PriceGte, err = amount(m, "priceGte"); err != nil {
		return f, err
	}
	if f.PriceLte, err = amount(m, "priceLte"); err != nil {
		return f, err
	}
	return f, nil
}

func orderFilter(args map[string]interface{}) (filters.OrderFilter, error) {
	m := filterArg(args)
	f := filters.OrderFilter{
		OrderDateGte: instant(m, "orderDateGte"),
		OrderDateLte: instant(m, "orderDateLte"),
		CustomerName: str(m, "customerName"),
		ProductName:  str(m, "productName"),
	}
	if raw := str(m, "productId"); raw != nil {
		n, err := strconv.ParseUint(*raw, 10, 64)
		if err != nil {
			return f, invalid("productId must be numeric")
		}
		pid := uint(n)
		f.ProductID = &pid
	}

	var err error
	if f.TotalAmountGte, err = amount(m, "totalAmountGte"); err != nil {
		return f, err
	}
	if f.TotalAmountLte, err = amount(m, "totalAmountLte"); err != nil {
		return f, err
	}
	return f, nil
}

func customerInputFrom(v interface{}) services.CustomerInput {
	m, _ := v.(map[string]interface{})
	in := services.CustomerInput{}
	if s := str(m, "name"); s != nil {
		in.Name = *s
	}
	if s := str(m, "email"); s != nil {
		in.Email = *s
	}
	if s := str(m, "phone"); s != nil {
		in.Phone = *s
	}
	return in
}

func productInputFrom(v interface{}) services.ProductInput {
	m, _ := v.(map[string]interface{})
	in := services.ProductInput{Stock: integer(m, "stock")}
	if s := str(m, "name"); s != nil {
		in.Name = *s
	}
	if s := str(m, "price"); s != nil {
		in.Price = *s
	}
	return in
}

func orderInputFrom(v interface{}) services.OrderInput {
	m, _ := v.(map[string]interface{})
	in := services.OrderInput{
		CustomerID: id(m["customerId"]),
		OrderDate:  instant(m, "orderDate"),
	}
	if list, ok := m["productIds"].([]interface{}); ok {
		in.ProductIDs = make([]uint, len(list))
		for i, raw := range list {
			in.ProductIDs[i] = id(raw)
		}
	}
	return in
}
