package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineItem(id string, qty int) LineItem {
	return LineItem{ProductID: id, Quantity: qty, UnitPrice: decimal.NewFromInt(10)}
}

func TestClampQuantity(t *testing.T) {
	assert.Equal(t, 1, ClampQuantity(-4))
	assert.Equal(t, 1, ClampQuantity(0))
	assert.Equal(t, 42, ClampQuantity(42))
	assert.Equal(t, 99, ClampQuantity(500))
}

func TestCart_AddKeepsInsertionOrder(t *testing.T) {
	c := NewCart("u")
	c.Add(lineItem("a", 1))
	c.Add(lineItem("b", 1))
	c.Add(lineItem("a", 2))

	require.Len(t, c.Items, 2)
	assert.Equal(t, "a", c.Items[0].ProductID)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, "b", c.Items[1].ProductID)
	assert.Equal(t, 4, c.UnitCount())
}

func TestCart_RemoveAndSetQuantityReportPresence(t *testing.T) {
	c := NewCart("u")
	c.Add(lineItem("a", 1))

	assert.False(t, c.Remove("zzz"))
	assert.False(t, c.SetQuantity("zzz", 5))
	assert.True(t, c.SetQuantity("a", 5))
	assert.True(t, c.Remove("a"))
	assert.Empty(t, c.Items)
}

func TestCart_SnapshotIsACopy(t *testing.T) {
	c := NewCart("u")
	c.Add(lineItem("a", 1))

	snap := c.Snapshot()
	c.SetQuantity("a", 9)

	assert.Equal(t, 1, snap[0].Quantity)
}

func TestCart_TouchIsMonotonic(t *testing.T) {
	c := NewCart("u")
	now := time.Unix(100, 0)

	first := c.Touch(now)
	assert.Equal(t, now.UnixNano(), first)

	second := c.Touch(now)
	assert.Equal(t, first+1, second)

	third := c.Touch(now.Add(-time.Hour))
	assert.Equal(t, second+1, third, "clock going backwards never lowers the version")
}

func TestCart_Normalize(t *testing.T) {
	c := &Cart{Items: []LineItem{lineItem("a", 60), lineItem("", 3), lineItem("a", 60), lineItem("b", -1)}}

	c.Normalize()

	require.Len(t, c.Items, 2)
	assert.Equal(t, 99, c.Items[0].Quantity)
	assert.Equal(t, 1, c.Items[1].Quantity)
}

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryAyurvedic, ParseCategory("Ayurvedic"))
	assert.Equal(t, CategoryAyurvedic, ParseCategory("ayurvedic"))
	assert.Equal(t, CategoryNewArrivals, ParseCategory("New Arrivals"))
	assert.Equal(t, CategoryTech, ParseCategory("TECH"))
	assert.Equal(t, CategoryHome, ParseCategory("home"))
	assert.Equal(t, CategoryOther, ParseCategory("Pooja"))
	assert.Equal(t, CategoryOther, ParseCategory(""))
}

func TestProduct_CatalogEntryDefaultsWeight(t *testing.T) {
	discounted := decimal.NewFromInt(80)
	p := Product{ID: "p1", Category: "Home", Price: Price{Original: decimal.NewFromInt(100), Discounted: &discounted}}

	e := p.CatalogEntry()

	assert.Equal(t, DefaultWeightGrams, e.WeightGrams)
	assert.Equal(t, CategoryHome, e.Category)
	assert.True(t, e.OriginalPrice.Equal(decimal.NewFromInt(100)))
	assert.True(t, p.Price.Current().Equal(discounted))
}
