package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultWeightGrams = 500

type Category string

const (
	CategoryTech        Category = "Tech"
	CategoryHome        Category = "Home"
	CategoryNewArrivals Category = "NewArrivals"
	CategoryAyurvedic   Category = "Ayurvedic"
	CategoryOther       Category = "other"
)

// ParseCategory maps a stored category label onto the pricing categories.
// Matching ignores case, spaces, dashes and underscores; anything unknown is
// CategoryOther.
func ParseCategory(s string) Category {
	key := strings.ToLower(s)
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)
	switch key {
	case "tech":
		return CategoryTech
	case "home":
		return CategoryHome
	case "newarrivals", "newarrival":
		return CategoryNewArrivals
	case "ayurvedic":
		return CategoryAyurvedic
	default:
		return CategoryOther
	}
}

type Price struct {
	Original   decimal.Decimal  `json:"original"`
	Discounted *decimal.Decimal `json:"discounted,omitempty"`
	Currency   string           `json:"currency"`
}

// Current is the discounted price when one is set, otherwise the original.
func (p Price) Current() decimal.Decimal {
	if p.Discounted != nil {
		return *p.Discounted
	}
	return p.Original
}

type Ratings struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Price         Price     `json:"price"`
	Category      string    `json:"category"`
	Subcategory   string    `json:"subcategory"`
	Image         string    `json:"image"`
	ImagePublicID string    `json:"imagePublicId,omitempty"`
	ExtraImages   []string  `json:"extraImages"`
	Features      []string  `json:"features"`
	Brand         string    `json:"brand"`
	Quantity      int       `json:"quantity"`
	WeightGrams   int       `json:"weight,omitempty"`
	Ratings       Ratings   `json:"ratings"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CatalogEntry is the read-only view of a product used for pricing.
type CatalogEntry struct {
	ProductID       string
	OriginalPrice   decimal.Decimal
	DiscountedPrice *decimal.Decimal
	Category        Category
	WeightGrams     int
}

func (p Product) CatalogEntry() CatalogEntry {
	weight := p.WeightGrams
	if weight <= 0 {
		weight = DefaultWeightGrams
	}
	return CatalogEntry{
		ProductID:       p.ID,
		OriginalPrice:   p.Price.Original,
		DiscountedPrice: p.Price.Discounted,
		Category:        ParseCategory(p.Category),
		WeightGrams:     weight,
	}
}

type ProductFilter struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

type ProductPage struct {
	Products []Product `json:"products"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}
