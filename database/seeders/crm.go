package seeders

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kashvi-crm/app/models"
	"github.com/shashiranjanraj/kashvi-crm/app/repositories"
	"github.com/shashiranjanraj/kashvi-crm/app/services"
)

func init() {
	Register("crm", SeedCRM)
}

var sampleCustomers = []services.CustomerInput{
	{Name: "Alice Johnson", Email: "alice@example.com", Phone: "+1234567890"},
	{Name: "Bob Smith", Email: "bob@example.com", Phone: "123-456-7890"},
	{Name: "Carol Davis", Email: "carol@example.com"},
}

func stock(n int) *int { return &n }

var sampleProducts = []services.ProductInput{
	{Name: "Laptop", Price: "999.99", Stock: stock(10)},
	{Name: "Phone", Price: "499.99", Stock: stock(25)},
	{Name: "Headphones", Price: "79.50", Stock: stock(5)},
}

// SeedCRM inserts sample customers and products through the CRM service and
// places one order for the first customer. Customers that already exist are
// skipped, so running it twice only adds products and an order.
func SeedCRM(ctx context.Context, db *gorm.DB) error {
	crm := services.NewCRM(repositories.NewGormStore(db))

	var customers []models.Customer
	for _, in := range sampleCustomers {
		c, err := crm.CreateCustomer(ctx, in)
		if errors.Is(err, services.ErrDuplicateEmail) {
			continue
		}
		if err != nil {
			return err
		}
		customers = append(customers, *c)
	}

	var productIDs []uint
	for _, in := range sampleProducts {
		p, err := crm.CreateProduct(ctx, in)
		if err != nil {
			return err
		}
		productIDs = append(productIDs, p.ID)
	}

	if len(customers) == 0 {
		return nil
	}
	_, err := crm.CreateOrder(ctx, services.OrderInput{
		CustomerID: customers[0].ID,
		ProductIDs: productIDs[:2],
	})
	return err
}
