package schema_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-crm/app/repositories"
	"github.com/shashiranjanraj/kashvi-crm/app/schema"
	"github.com/shashiranjanraj/kashvi-crm/app/services"
	gql "github.com/shashiranjanraj/kashvi-crm/pkg/graphql"
	"github.com/shashiranjanraj/kashvi-crm/pkg/testkit"
)

func newClient(t *testing.T, maxPage int) gql.Executor {
	t.Helper()
	db := testkit.NewDB(t)
	crm := services.NewCRM(repositories.NewGormStore(db),
		services.WithClock(func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }))
	s, err := schema.New(crm, maxPage)
	require.NoError(t, err)
	return gql.NewLocalClient(s)
}

func exec(t *testing.T, c gql.Executor, query string, vars map[string]interface{}) *gql.Result {
	t.Helper()
	res, err := c.Execute(context.Background(), gql.Request{Query: query, Variables: vars})
	require.NoError(t, err)
	return res
}

// mustExec fails the test on GraphQL errors and decodes data into dest.
func mustExec(t *testing.T, c gql.Executor, query string, vars map[string]interface{}, dest interface{}) {
	t.Helper()
	res := exec(t, c, query, vars)
	require.NoError(t, res.Err())
	require.NoError(t, res.Decode(dest))
}

func errorCode(t *testing.T, res *gql.Result) string {
	t.Helper()
	require.NotEmpty(t, res.Errors, "expected a GraphQL error")
	code, _ := res.Errors[0].Extensions["code"].(string)
	return code
}

const createCustomer = `mutation($input: CreateCustomerInput!) {
  createCustomer(input: $input) { message customer { id name email phone createdAt } }
}`

const createProduct = `mutation($input: CreateProductInput!) {
  createProduct(input: $input) { product { id name price stock } }
}`

const createOrder = `mutation($input: CreateOrderInput!) {
  createOrder(input: $input) { order { id totalAmount orderDate customer { email } products { name } } }
}`

func customerID(t *testing.T, c gql.Executor, email string) string {
	t.Helper()
	var out struct {
		CreateCustomer struct{ Customer struct{ ID string } }
	}
	mustExec(t, c, createCustomer, map[string]interface{}{
		"input": map[string]interface{}{"name": "C " + email, "email": email},
	}, &out)
	return out.CreateCustomer.Customer.ID
}

func productID(t *testing.T, c gql.Executor, name string, price interface{}, stock int) string {
	t.Helper()
	var out struct {
		CreateProduct struct{ Product struct{ ID string } }
	}
	mustExec(t, c, createProduct, map[string]interface{}{
		"input": map[string]interface{}{"name": name, "price": price, "stock": stock},
	}, &out)
	return out.CreateProduct.Product.ID
}

func TestHello(t *testing.T) {
	c := newClient(t, 0)

	var out struct{ Hello string }
	mustExec(t, c, `{ hello }`, nil, &out)

	assert.Equal(t, "Hello, GraphQL!", out.Hello)
}

func TestCreateCustomer(t *testing.T) {
	c := newClient(t, 0)

	var out struct {
		CreateCustomer struct {
			Message  string
			Customer struct {
				ID, Name, Email, CreatedAt string
				Phone                      *string
			}
		}
	}
	mustExec(t, c, createCustomer, map[string]interface{}{
		"input": map[string]interface{}{"name": "Alice", "email": " Alice@Example.com ", "phone": "+1234567890"},
	}, &out)

	assert.Equal(t, "Customer created", out.CreateCustomer.Message)
	assert.Equal(t, "alice@example.com", out.CreateCustomer.Customer.Email)
	require.NotNil(t, out.CreateCustomer.Customer.Phone)
	assert.Equal(t, "+1234567890", *out.CreateCustomer.Customer.Phone)
	assert.NotEmpty(t, out.CreateCustomer.Customer.CreatedAt)
}

func TestCreateCustomer_ErrorCodes(t *testing.T) {
	c := newClient(t, 0)
	customerID(t, c, "alice@example.com")

	res := exec(t, c, createCustomer, map[string]interface{}{
		"input": map[string]interface{}{"name": "Again", "email": "ALICE@example.com"},
	})
	assert.Equal(t, "DUPLICATE_EMAIL", errorCode(t, res))
	assert.Equal(t, "email already exists", res.Errors[0].Message)

	res = exec(t, c, createCustomer, map[string]interface{}{
		"input": map[string]interface{}{"name": "Bob", "email": "bob@example.com", "phone": "12"},
	})
	assert.Equal(t, "INVALID_PHONE_FORMAT", errorCode(t, res))
}

func TestBulkCreateCustomers(t *testing.T) {
	c := newClient(t, 0)

	var out struct {
		BulkCreateCustomers struct {
			Customers []struct{ Email string }
			Errors    []string
		}
	}
	mustExec(t, c, `mutation($input: [BulkCustomerInput]!) {
	  bulkCreateCustomers(input: $input) { customers { email } errors }
	}`, map[string]interface{}{
		"input": []interface{}{
			map[string]interface{}{"name": "A", "email": "a@example.com"},
			map[string]interface{}{"name": "A2", "email": "a@example.com"},
			map[string]interface{}{"name": "B", "email": "b@example.com", "phone": "123-456-7890"},
		},
	}, &out)

	require.Len(t, out.BulkCreateCustomers.Customers, 2)
	assert.Equal(t, "b@example.com", out.BulkCreateCustomers.Customers[1].Email)
	assert.Equal(t, []string{"Record 1: email already exists"}, out.BulkCreateCustomers.Errors)
}

func TestCreateProduct_PriceForms(t *testing.T) {
	c := newClient(t, 0)

	var out struct {
		CreateProduct struct {
			Product struct {
				Price string
				Stock int
			}
		}
	}
	mustExec(t, c, `mutation { createProduct(input: {name: "Pen", price: 1.5}) { product { price stock } } }`, nil, &out)
	assert.Equal(t, "1.50", out.CreateProduct.Product.Price)
	assert.Equal(t, 0, out.CreateProduct.Product.Stock)

	mustExec(t, c, createProduct, map[string]interface{}{
		"input": map[string]interface{}{"name": "Pad", "price": "12", "stock": 4},
	}, &out)
	assert.Equal(t, "12.00", out.CreateProduct.Product.Price)
	assert.Equal(t, 4, out.CreateProduct.Product.Stock)

	res := exec(t, c, createProduct, map[string]interface{}{
		"input": map[string]interface{}{"name": "Bad", "price": "abc"},
	})
	assert.Equal(t, "INVALID_PRICE", errorCode(t, res))

	res = exec(t, c, createProduct, map[string]interface{}{
		"input": map[string]interface{}{"name": "Fine", "price": "1.005"},
	})
	assert.Equal(t, "INVALID_PRICE", errorCode(t, res))
	assert.Equal(t, "price must have at most two decimal places", res.Errors[0].Message)

	res = exec(t, c, createProduct, map[string]interface{}{
		"input": map[string]interface{}{"name": "Bad", "price": "5", "stock": -2},
	})
	assert.Equal(t, "NEGATIVE_STOCK", errorCode(t, res))
}

func TestCreateOrder(t *testing.T) {
	c := newClient(t, 0)
	cid := customerID(t, c, "alice@example.com")
	p1 := productID(t, c, "Laptop", "999.99", 3)
	p2 := productID(t, c, "Mouse", 25.01, 3)

	var out struct {
		CreateOrder struct {
			Order struct {
				TotalAmount string
				OrderDate   string
				Customer    struct{ Email string }
				Products    []struct{ Name string }
			}
		}
	}
	mustExec(t, c, createOrder, map[string]interface{}{
		"input": map[string]interface{}{"customerId": cid, "productIds": []interface{}{p1, p2}},
	}, &out)

	o := out.CreateOrder.Order
	assert.Equal(t, "1025.00", o.TotalAmount)
	assert.Equal(t, "2026-03-01T09:00:00Z", o.OrderDate)
	assert.Equal(t, "alice@example.com", o.Customer.Email)
	assert.Len(t, o.Products, 2)
}

func TestCreateOrder_ErrorCodes(t *testing.T) {
	c := newClient(t, 0)
	cid := customerID(t, c, "alice@example.com")
	pid := productID(t, c, "Laptop", "10", 3)

	cases := []struct {
		name       string
		customerID string
		productIDs []interface{}
		code       string
	}{
		{"non-numeric customer", "abc", []interface{}{pid}, "CUSTOMER_NOT_FOUND"},
		{"missing customer", "999", []interface{}{}, "CUSTOMER_NOT_FOUND"},
		{"no products", cid, []interface{}{}, "NO_PRODUCTS_SELECTED"},
		{"non-numeric product", cid, []interface{}{pid, "x"}, "PRODUCT_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := exec(t, c, createOrder, map[string]interface{}{
				"input": map[string]interface{}{"customerId": tc.customerID, "productIds": tc.productIDs},
			})
			assert.Equal(t, tc.code, errorCode(t, res))
		})
	}
}

func TestAllOrders_PagingAndRevenue(t *testing.T) {
	c := newClient(t, 2)
	cid := customerID(t, c, "alice@example.com")
	pid := productID(t, c, "Widget", "10.10", 100)

	for i := 0; i < 3; i++ {
		mustExec(t, c, createOrder, map[string]interface{}{
			"input": map[string]interface{}{
				"customerId": cid,
				"productIds": []interface{}{pid},
				"orderDate":  fmt.Sprintf("2026-02-0%d", i+1),
			},
		}, &struct{}{})
	}

	type page struct {
		AllOrders struct {
			TotalCount   int
			TotalRevenue string
			PageInfo     struct {
				HasNextPage, HasPreviousPage bool
				EndCursor                    *string
			}
			Edges []struct {
				Cursor string
				Node   struct{ ID, OrderDate string }
			}
		}
	}
	const q = `query($after: String, $first: Int) {
	  allOrders(first: $first, after: $after, orderBy: "-orderDate") {
	    totalCount totalRevenue
	    pageInfo { hasNextPage hasPreviousPage endCursor }
	    edges { cursor node { id orderDate } }
	  }
	}`

	var first page
	mustExec(t, c, q, map[string]interface{}{"first": 50}, &first)
	assert.Equal(t, 3, first.AllOrders.TotalCount)
	assert.Equal(t, "30.30", first.AllOrders.TotalRevenue)
	require.Len(t, first.AllOrders.Edges, 2, "first is capped at the max page size")
	assert.Equal(t, "2026-02-03T00:00:00Z", first.AllOrders.Edges[0].Node.OrderDate)
	assert.True(t, first.AllOrders.PageInfo.HasNextPage)
	assert.False(t, first.AllOrders.PageInfo.HasPreviousPage)
	require.NotNil(t, first.AllOrders.PageInfo.EndCursor)
	assert.Equal(t, gql.EncodeCursor(1), *first.AllOrders.PageInfo.EndCursor)

	var second page
	mustExec(t, c, q, map[string]interface{}{"after": *first.AllOrders.PageInfo.EndCursor}, &second)
	require.Len(t, second.AllOrders.Edges, 1)
	assert.Equal(t, "2026-02-01T00:00:00Z", second.AllOrders.Edges[0].Node.OrderDate)
	assert.False(t, second.AllOrders.PageInfo.HasNextPage)
	assert.True(t, second.AllOrders.PageInfo.HasPreviousPage)
}

func TestAllOrders_Filters(t *testing.T) {
	c := newClient(t, 0)
	alice := customerID(t, c, "alice@example.com")
	bob := customerID(t, c, "bob@example.com")
	phone := productID(t, c, "Phone", "300", 5)
	charger := productID(t, c, "Phone Charger", "20", 5)
	desk := productID(t, c, "Desk", "150", 5)

	for _, in := range []map[string]interface{}{
		{"customerId": alice, "productIds": []interface{}{phone, charger}, "orderDate": "2026-01-10 12:00:00"},
		{"customerId": bob, "productIds": []interface{}{desk}, "orderDate": "2026-02-10T12:00:00Z"},
	} {
		mustExec(t, c, createOrder, map[string]interface{}{"input": in}, &struct{}{})
	}

	type result struct {
		AllOrders struct {
			TotalCount   int
			TotalRevenue string
		}
	}
	run := func(filter string) result {
		var out result
		mustExec(t, c, `{ allOrders(filter: `+filter+`) { totalCount totalRevenue } }`, nil, &out)
		return out
	}

	r := run(`{productName: "phone"}`)
	assert.Equal(t, 1, r.AllOrders.TotalCount)
	assert.Equal(t, "320.00", r.AllOrders.TotalRevenue)

	r = run(`{customerName: "C BOB"}`)
	assert.Equal(t, 1, r.AllOrders.TotalCount)

	r = run(`{orderDateGte: "2026-02-01"}`)
	assert.Equal(t, 1, r.AllOrders.TotalCount)
	assert.Equal(t, "150.00", r.AllOrders.TotalRevenue)

	r = run(`{totalAmountGte: 200}`)
	assert.Equal(t, 1, r.AllOrders.TotalCount)

	r = run(fmt.Sprintf(`{productId: "%s"}`, desk))
	assert.Equal(t, 1, r.AllOrders.TotalCount)

	r = run(`{customerName: "nobody"}`)
	assert.Equal(t, 0, r.AllOrders.TotalCount)
	assert.Equal(t, "0.00", r.AllOrders.TotalRevenue)
}

func TestAllCustomersAndProducts_Filters(t *testing.T) {
	c := newClient(t, 0)
	customerID(t, c, "zoe@shop.io")
	customerID(t, c, "adam@example.com")
	productID(t, c, "Cheap", "1", 0)
	productID(t, c, "Pricey", "500", 50)

	var customers struct {
		AllCustomers struct {
			Edges []struct{ Node struct{ Email string } }
		}
	}
	mustExec(t, c, `{ allCustomers(filter: {email: "SHOP"}, orderBy: "email") { edges { node { email } } } }`, nil, &customers)
	require.Len(t, customers.AllCustomers.Edges, 1)
	assert.Equal(t, "zoe@shop.io", customers.AllCustomers.Edges[0].Node.Email)

	var products struct {
		AllProducts struct {
			TotalCount int
			Edges      []struct{ Node struct{ Name string } }
		}
	}
	mustExec(t, c, `{ allProducts(filter: {priceGte: "10", stockGte: 1}) { totalCount edges { node { name } } } }`, nil, &products)
	assert.Equal(t, 1, products.AllProducts.TotalCount)
	assert.Equal(t, "Pricey", products.AllProducts.Edges[0].Node.Name)
}

func TestAllCustomers_InvalidArguments(t *testing.T) {
	c := newClient(t, 0)

	res := exec(t, c, `{ allCustomers(orderBy: "password") { totalCount } }`, nil)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, res))

	res = exec(t, c, `{ allCustomers(after: "bm90LWEtY3Vyc29y") { totalCount } }`, nil)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, res))

	res = exec(t, c, `{ allProducts(filter: {priceLte: "cheap"}) { totalCount } }`, nil)
	assert.Equal(t, "INVALID_INPUT", errorCode(t, res))
}

func TestAllCustomers_FirstZeroCountsOnly(t *testing.T) {
	c := newClient(t, 2)
	for i := 0; i < 5; i++ {
		customerID(t, c, fmt.Sprintf("c%d@example.com", i))
	}

	var out struct {
		AllCustomers struct {
			Edges      []struct{ Node struct{ ID string } }
			TotalCount int
			PageInfo   struct{ HasNextPage bool }
		}
	}
	mustExec(t, c, `{ allCustomers(first: 0) { edges { node { id } } totalCount pageInfo { hasNextPage } } }`, nil, &out)
	assert.Empty(t, out.AllCustomers.Edges)
	assert.Equal(t, 5, out.AllCustomers.TotalCount)
	assert.True(t, out.AllCustomers.PageInfo.HasNextPage)

	mustExec(t, c, `{ allCustomers(first: 50) { edges { node { id } } totalCount pageInfo { hasNextPage } } }`, nil, &out)
	assert.Len(t, out.AllCustomers.Edges, 2, "first is capped at the max page")
	assert.True(t, out.AllCustomers.PageInfo.HasNextPage)
}

func TestUpdateLowStockProducts(t *testing.T) {
	c := newClient(t, 0)
	productID(t, c, "Low", "1", 2)
	productID(t, c, "High", "1", 40)

	var out struct {
		UpdateLowStockProducts struct {
			Message  string
			Products []struct {
				Name  string
				Stock int
			}
		}
	}
	mustExec(t, c, `mutation { updateLowStockProducts { message products { name stock } } }`, nil, &out)

	assert.Equal(t, "Updated 1 low-stock products", out.UpdateLowStockProducts.Message)
	require.Len(t, out.UpdateLowStockProducts.Products, 1)
	assert.Equal(t, 12, out.UpdateLowStockProducts.Products[0].Stock)

	mustExec(t, c, `mutation { updateLowStockProducts(threshold: 5) { message products { name } } }`, nil, &out)
	assert.Equal(t, "Updated 0 low-stock products", out.UpdateLowStockProducts.Message)
	assert.Empty(t, out.UpdateLowStockProducts.Products)
}
