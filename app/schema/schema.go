// Package schema defines the CRM GraphQL API on top of services.CRM.
package schema

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/kashvi-crm/app/models"
	"github.com/shashiranjanraj/kashvi-crm/app/repositories"
	"github.com/shashiranjanraj/kashvi-crm/app/services"
	gql "github.com/shashiranjanraj/kashvi-crm/pkg/graphql"
)

// New builds the schema. maxPage caps and defaults the `first` argument of
// the list fields.
func New(crm *services.CRM, maxPage int) (graphql.Schema, error) {
	if maxPage <= 0 {
		maxPage = 100
	}
	r := &resolver{crm: crm, maxPage: maxPage}
	return gql.NewSchema(r.query(), r.mutation())
}

type resolver struct {
	crm     *services.CRM
	maxPage int
}

func (r *resolver) page(args map[string]interface{}) (repositories.Page, error) {
	offset, limit, err := gql.Window(args, r.maxPage)
	if err != nil {
		return repositories.Page{}, invalid(err.Error())
	}
	if limit == 0 {
		// first: 0 asks for the count alone.
		limit = -1
	}
	orderBy, _ := args["orderBy"].(string)
	return repositories.Page{Offset: offset, Limit: limit, OrderBy: orderBy}, nil
}

// ─── Query ────────────────────────────────────────────────────────────────────

func (r *resolver) query() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"hello": &graphql.Field{
				Type: graphql.String,
				Resolve: func(graphql.ResolveParams) (interface{}, error) {
					return "Hello, GraphQL!", nil
				},
			},
			"allCustomers": &graphql.Field{
				Type:    customerConnection,
				Args:    gql.ConnectionArgs(customerFilterInput),
				Resolve: r.allCustomers,
			},
			"allProducts": &graphql.Field{
				Type:    productConnection,
				Args:    gql.ConnectionArgs(productFilterInput),
				Resolve: r.allProducts,
			},
			"allOrders": &graphql.Field{
				Type:    orderConnection,
				Args:    gql.ConnectionArgs(orderFilterInput),
				Resolve: r.allOrders,
			},
		},
	})
}

func (r *resolver) allCustomers(p graphql.ResolveParams) (interface{}, error) {
	page, err := r.page(p.Args)
	if err != nil {
		return nil, err
	}
	rows, total, err := r.crm.ListCustomers(p.Context, customerFilter(p.Args), page)
	if err != nil {
		return nil, err
	}
	return gql.NewConnection(rows, page.Offset, total), nil
}

func (r *resolver) allProducts(p graphql.ResolveParams) (interface{}, error) {
	page, err := r.page(p.Args)
	if err != nil {
		return nil, err
	}
	f, err := productFilter(p.Args)
	if err != nil {
		return nil, err
	}
	rows, total, err := r.crm.ListProducts(p.Context, f, page)
	if err != nil {
		return nil, err
	}
	return gql.NewConnection(rows, page.Offset, total), nil
}

func (r *resolver) allOrders(p graphql.ResolveParams) (interface{}, error) {
	page, err := r.page(p.Args)
	if err != nil {
		return nil, err
	}
	f, err := orderFilter(p.Args)
	if err != nil {
		return nil, err
	}
	rows, total, err := r.crm.ListOrders(p.Context, f, page)
	if err != nil {
		return nil, err
	}

	conn := gql.NewConnection(rows, page.Offset, total)
	conn.Extra = map[string]interface{}{
		"totalRevenue": gql.Lazy(func() (interface{}, error) {
			sum, err := r.crm.Revenue(p.Context, f)
			if err != nil {
				return nil, err
			}
			return sum, nil
		}),
	}
	return conn, nil
}

// ─── Mutation ─────────────────────────────────────────────────────────────────

func (r *resolver) mutation() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createCustomer": &graphql.Field{
				Type: createCustomerPayload,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createCustomerInput)},
				},
				Resolve: r.createCustomer,
			},
			"bulkCreateCustomers": &graphql.Field{
				Type: bulkCreateCustomersPayload,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(bulkCustomerInput))},
				},
				Resolve: r.bulkCreateCustomers,
			},
			"createProduct": &graphql.Field{
				Type: createProductPayload,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createProductInput)},
				},
				Resolve: r.createProduct,
			},
			"createOrder": &graphql.Field{
				Type: createOrderPayload,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createOrderInput)},
				},
				Resolve: r.createOrder,
			},
			"updateLowStockProducts": &graphql.Field{
				Type: updateLowStockPayload,
				Args: graphql.FieldConfigArgument{
					"threshold": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
					"increment": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
				},
				Resolve: r.updateLowStockProducts,
			},
		},
	})
}

// Resolvers return *services.Error unwrapped so graphql-go copies its
// extensions into the response.

func (r *resolver) createCustomer(p graphql.ResolveParams) (interface{}, error) {
	c, err := r.crm.CreateCustomer(p.Context, customerInputFrom(p.Args["input"]))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"customer": c, "message": "Customer created"}, nil
}

func (r *resolver) bulkCreateCustomers(p graphql.ResolveParams) (interface{}, error) {
	list, _ := p.Args["input"].([]interface{})
	items := make([]services.CustomerInput, len(list))
	for i, v := range list {
		items[i] = customerInputFrom(v)
	}

	created, errs := r.crm.BulkCreateCustomers(p.Context, items)
	return map[string]interface{}{"customers": created, "errors": errs}, nil
}

func (r *resolver) createProduct(p graphql.ResolveParams) (interface{}, error) {
	prod, err := r.crm.CreateProduct(p.Context, productInputFrom(p.Args["input"]))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"product": prod}, nil
}

func (r *resolver) createOrder(p graphql.ResolveParams) (interface{}, error) {
	o, err := r.crm.CreateOrder(p.Context, orderInputFrom(p.Args["input"]))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"order": o}, nil
}

func (r *resolver) updateLowStockProducts(p graphql.ResolveParams) (interface{}, error) {
	threshold, _ := p.Args["threshold"].(int)
	increment, _ := p.Args["increment"].(int)

	updated, err := r.crm.UpdateLowStockProducts(p.Context, threshold, increment)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		updated = []models.Product{}
	}
	return map[string]interface{}{
		"products": updated,
		"message":  fmt.Sprintf("Updated %d low-stock products", len(updated)),
	}, nil
}
