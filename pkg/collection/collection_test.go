package collection_test

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/kashvi-crm/pkg/collection"
)

func TestMap(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, collection.Map([]int{1, 2}, strconv.Itoa))
	assert.Empty(t, collection.Map(nil, strconv.Itoa))
}

func TestUnique_KeepsFirstSeenOrder(t *testing.T) {
	assert.Equal(t, []uint{3, 1, 2}, collection.Unique([]uint{3, 1, 3, 2, 1}))
	assert.NotNil(t, collection.Unique([]uint(nil)))
}

func TestReduce_DecimalSum(t *testing.T) {
	prices := []decimal.Decimal{
		decimal.RequireFromString("0.10"),
		decimal.RequireFromString("0.20"),
	}
	sum := collection.Reduce(prices, decimal.Zero, func(acc, p decimal.Decimal) decimal.Decimal { return acc.Add(p) })
	assert.Equal(t, "0.30", sum.StringFixed(2))
}
