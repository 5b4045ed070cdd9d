package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinQuantity = 1
	MaxQuantity = 99
)

// LineItem is one product entry in a cart. Name and Image are a display
// snapshot taken when the item was added; UnitPrice is the price in effect
// at that moment.
type LineItem struct {
	ProductID string          `json:"id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Quantity  int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"price"`
}

// Cart holds the line items owned by a single user, in insertion order.
// Version is stamped on every mutation and travels with each save.
type Cart struct {
	UserID  string
	Items   []LineItem
	Version int64
}

type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
	TotalShipping decimal.Decimal `json:"totalShipping"`
	PlatformFee   decimal.Decimal `json:"platformFee"`
	Total         decimal.Decimal `json:"total"`
}

// ZeroTotals returns the totals of an empty cart.
func ZeroTotals() Totals {
	return Totals{
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalShipping: decimal.Zero,
		PlatformFee:   decimal.Zero,
		Total:         decimal.Zero,
	}
}

type CartView struct {
	Items     []LineItem `json:"items"`
	ItemCount int        `json:"itemCount"`
	Version   int64      `json:"version"`
	Totals
}

func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []LineItem{}}
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add merges item into the cart. An existing product has its quantity
// increased; a new one is appended. Quantities are clamped either way.
func (c *Cart) Add(item LineItem) {
	if i := c.indexOf(item.ProductID); i >= 0 {
		c.Items[i].Quantity = ClampQuantity(c.Items[i].Quantity + item.Quantity)
		return
	}
	item.Quantity = ClampQuantity(item.Quantity)
	c.Items = append(c.Items, item)
}

// Remove reports whether the product was present.
func (c *Cart) Remove(productID string) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// SetQuantity reports whether the product was present.
func (c *Cart) SetQuantity(productID string, q int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity = ClampQuantity(q)
	return true
}

func (c *Cart) Clear() {
	c.Items = []LineItem{}
}

// UnitCount is the sum of all quantities.
func (c *Cart) UnitCount() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// Snapshot returns a copy of the items that is safe to hand to another
// goroutine.
func (c *Cart) Snapshot() []LineItem {
	out := make([]LineItem, len(c.Items))
	copy(out, c.Items)
	return out
}

// Touch advances Version to max(previous+1, now in unix nanos) and returns it.
func (c *Cart) Touch(now time.Time) int64 {
	next := now.UnixNano()
	if next <= c.Version {
		next = c.Version + 1
	}
	c.Version = next
	return next
}

// Normalize repairs items loaded from storage: blank ids are dropped,
// duplicates are merged and quantities clamped.
func (c *Cart) Normalize() {
	items := c.Items
	c.Items = make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			continue
		}
		c.Add(it)
	}
}
