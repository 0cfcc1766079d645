package schema

import (
	"github.com/graphql-go/graphql"

	gql "github.com/shashiranjanraj/kashvi-crm/pkg/graphql"
)

// Object types resolve straight off the models through graphql-go's default
// resolver, which matches field names case-insensitively.

var customerType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Customer",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"email":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"phone":     &graphql.Field{Type: graphql.String},
		"createdAt": &graphql.Field{Type: gql.DateTime},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":    &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"price": &graphql.Field{Type: graphql.NewNonNull(gql.Decimal)},
		"stock": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"customer":    &graphql.Field{Type: graphql.NewNonNull(customerType)},
		"products":    &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType)))},
		"totalAmount": &graphql.Field{Type: graphql.NewNonNull(gql.Decimal)},
		"orderDate":   &graphql.Field{Type: graphql.NewNonNull(gql.DateTime)},
	},
})

var (
	customerConnection = gql.ConnectionType(customerType, nil)
	productConnection  = gql.ConnectionType(productType, nil)
	orderConnection    = gql.ConnectionType(orderType, graphql.Fields{
		"totalRevenue": &graphql.Field{
			Type:        graphql.NewNonNull(gql.Decimal),
			Description: "Sum of totalAmount over every order matching the filter, not just this page.",
		},
	})
)

// ─── Inputs ───────────────────────────────────────────────────────────────────

var customerFilterInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CustomerFilterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":         &graphql.InputObjectFieldConfig{Type: graphql.String},
		"email":        &graphql.InputObjectFieldConfig{Type: graphql.String},
		"createdAtGte": &graphql.InputObjectFieldConfig{Type: gql.DateTime},
		"createdAtLte": &graphql.InputObjectFieldConfig{Type: gql.DateTime},
		"phonePattern": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var productFilterInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ProductFilterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":     &graphql.InputObjectFieldConfig{Type: graphql.String},
		"priceGte": &graphql.InputObjectFieldConfig{Type: gql.Decimal},
		"priceLte": &graphql.InputObjectFieldConfig{Type: gql.Decimal},
		"stockGte": &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"stockLte": &graphql.InputObjectFieldConfig{Type: graphql.Int},
	},
})

var orderFilterInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "OrderFilterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"totalAmountGte": &graphql.InputObjectFieldConfig{Type: gql.Decimal},
		"totalAmountLte": &graphql.InputObjectFieldConfig{Type: gql.Decimal},
		"orderDateGte":   &graphql.InputObjectFieldConfig{Type: gql.DateTime},
		"orderDateLte":   &graphql.InputObjectFieldConfig{Type: gql.DateTime},
		"customerName":   &graphql.InputObjectFieldConfig{Type: graphql.String},
		"productName":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"productId":      &graphql.InputObjectFieldConfig{Type: graphql.ID},
	},
})

func customerInput(name string) *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name: name,
		Fields: graphql.InputObjectConfigFieldMap{
			"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"email": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"phone": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})
}

var (
	createCustomerInput = customerInput("CreateCustomerInput")
	bulkCustomerInput   = customerInput("BulkCustomerInput")
)

var createProductInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CreateProductInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"price": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(gql.Decimal)},
		"stock": &graphql.InputObjectFieldConfig{Type: graphql.Int},
	},
})

var createOrderInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CreateOrderInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"customerId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		"productIds": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
		"orderDate":  &graphql.InputObjectFieldConfig{Type: gql.DateTime},
	},
})

// ─── Payloads ─────────────────────────────────────────────────────────────────

var createCustomerPayload = graphql.NewObject(graphql.ObjectConfig{
	Name: "CreateCustomerPayload",
	Fields: graphql.Fields{
		"customer": &graphql.Field{Type: customerType},
		"message":  &graphql.Field{Type: graphql.String},
	},
})

var bulkCreateCustomersPayload = graphql.NewObject(graphql.ObjectConfig{
	Name: "BulkCreateCustomersPayload",
	Fields: graphql.Fields{
		"customers": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(customerType)))},
		"errors":    &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
	},
})

var createProductPayload = graphql.NewObject(graphql.ObjectConfig{
	Name:   "CreateProductPayload",
	Fields: graphql.Fields{"product": &graphql.Field{Type: productType}},
})

var createOrderPayload = graphql.NewObject(graphql.ObjectConfig{
	Name:   "CreateOrderPayload",
	Fields: graphql.Fields{"order": &graphql.Field{Type: orderType}},
})

var updateLowStockPayload = graphql.NewObject(graphql.ObjectConfig{
	Name: "UpdateLowStockProductsPayload",
	Fields: graphql.Fields{
		"products": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productType)))},
		"message":  &graphql.Field{Type: graphql.String},
	},
})
