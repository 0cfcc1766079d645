package jobs

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/kashvi-crm/pkg/collection"
	"github.com/shashiranjanraj/kashvi-crm/pkg/graphql"
	"github.com/shashiranjanraj/kashvi-crm/pkg/logger"
)

const restockMutation = `mutation($threshold: Int, $increment: Int) {
  updateLowStockProducts(threshold: $threshold, increment: $increment) {
    products { name stock }
    message
  }
}`

// LowStock restocks every product under threshold by increment and logs one
// line per updated product.
type LowStock struct {
	base
	threshold int
	increment int
}

func NewLowStock(exec graphql.Executor, logPath string, threshold, increment int, opts ...Option) *LowStock {
	return &LowStock{base: newBase("low-stock", exec, logPath, opts), threshold: threshold, increment: increment}
}

func (j *LowStock) Run(ctx context.Context) { j.run(ctx, j.restock) }

type stockedProduct struct {
	Name  string
	Stock int
}

func (j *LowStock) restock(ctx context.Context) error {
	var out struct {
		UpdateLowStockProducts struct {
			Products []stockedProduct
			Message  string
		}
	}
	vars := map[string]interface{}{"threshold": j.threshold, "increment": j.increment}
	if err := j.query(ctx, restockMutation, vars, &out); err != nil {
		return err
	}

	ts := j.stamp()
	lines := collection.Map(out.UpdateLowStockProducts.Products, func(p stockedProduct) string {
		return fmt.Sprintf("%s - Updated %s to stock %d", ts, p.Name, p.Stock)
	})
	logger.WithCtx(ctx).Info(out.UpdateLowStockProducts.Message)
	return j.appendLines(lines...)
}
