package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalPrice(t *testing.T) {
	entries := []CartEntry{
		{ID: "1", Quantity: 2, Product: Product{Price: 10000}},
		{ID: "2", Quantity: 3, Product: Product{Price: 5000}},
	}
	assert.Equal(t, float64(35000), TotalPrice(entries))
	assert.Equal(t, float64(0), TotalPrice(nil))
}

func TestCartViewReplaceCopiesItems(t *testing.T) {
	v := NewCartView()
	items := []CartEntry{{ID: "a", Quantity: 1}}
	v.Replace(items)
	items[0].Quantity = 99

	assert.True(t, v.Loaded)
	assert.Equal(t, 1, v.Items[0].Quantity)

	e, ok := v.Find("a")
	assert.True(t, ok)
	assert.Equal(t, "a", e.ID)

	_, ok = v.Find("missing")
	assert.False(t, ok)
}

func TestCartViewClearAndFail(t *testing.T) {
	v := NewCartView()
	v.Replace([]CartEntry{{ID: "a"}})
	v.Clear()
	v.Fail(ErrLoadCart)

	assert.True(t, v.IsEmpty())
	assert.False(t, v.Loaded)
	assert.Equal(t, "Failed to load cart items", v.Banner)
}
