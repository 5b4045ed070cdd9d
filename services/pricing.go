package services

import (
	"shopwave/models"

	"github.com/shopspring/decimal"
)

var (
	platformFeeRate = decimal.RequireFromString("0.02")
	platformFeeCap  = decimal.NewFromInt(15)
)

// ShippingLine is the pricing view of one cart line after catalog lookup.
type ShippingLine struct {
	Category    models.Category
	Quantity    int
	WeightGrams int
}

// ShippingPolicy turns priced lines into a shipping charge.
type ShippingPolicy interface {
	Name() string
	Shipping(lines []ShippingLine) decimal.Decimal
}

// CategorySplitShipping charges Ayurvedic units and everything else as two
// separate buckets. A mixed cart pays a flat rate for the non-Ayurvedic
// bucket.
type CategorySplitShipping struct{}

func (CategorySplitShipping) Name() string { return "category_split" }

func (CategorySplitShipping) Shipping(lines []ShippingLine) decimal.Decimal {
	var ayurvedic, general int
	for _, l := range lines {
		if l.Category == models.CategoryAyurvedic {
			ayurvedic += l.Quantity
		} else {
			general += l.Quantity
		}
	}
	total := ayurvedicShipping(ayurvedic)
	if general > 0 {
		if ayurvedic > 0 {
			total += 22
		} else {
			total += generalShipping(general)
		}
	}
	return decimal.NewFromInt(total)
}

func ayurvedicShipping(q int) int64 {
	switch {
	case q <= 0:
		return 0
	case q <= 2:
		return 45
	case q <= 8:
		return 65
	default:
		return 100 + int64(ceilDiv(q-8, 5))*35
	}
}

func generalShipping(q int) int64 {
	if q <= 5 {
		return 49
	}
	return 49 + int64(q-5)*2
}

// WeightTierShipping charges by total cart weight.
//
// Deprecated: superseded by CategorySplitShipping. Kept only for
// deployments that still run SHIPPING_POLICY=weight_tier.
type WeightTierShipping struct{}

func (WeightTierShipping) Name() string { return "weight_tier" }

func (WeightTierShipping) Shipping(lines []ShippingLine) decimal.Decimal {
	weight := 0
	for _, l := range lines {
		weight += l.Quantity * l.WeightGrams
	}
	switch {
	case weight <= 0:
		return decimal.Zero
	case weight <= 500:
		return decimal.NewFromInt(49)
	case weight <= 1000:
		return decimal.NewFromInt(99)
	default:
		return decimal.NewFromInt(99 + int64(ceilDiv(weight-1000, 500))*49)
	}
}

// ShippingPolicyByName resolves a configured policy name. Unknown names get
// the category split.
func ShippingPolicyByName(name string) ShippingPolicy {
	if name == (WeightTierShipping{}).Name() {
		return WeightTierShipping{}
	}
	return CategorySplitShipping{}
}

// PlatformFee is 2% of the subtotal rounded to whole units, capped at 15.
func PlatformFee(subtotal decimal.Decimal) decimal.Decimal {
	fee := subtotal.Mul(platformFeeRate).Round(0)
	if fee.GreaterThan(platformFeeCap) {
		return platformFeeCap
	}
	if fee.IsNegative() {
		return decimal.Zero
	}
	return fee
}

// ComputeTotals derives cart totals from items and the current catalog.
// Items missing from the catalog are priced at their own unit price with
// the default category and weight.
func ComputeTotals(items []models.LineItem, catalog Catalog, policy ShippingPolicy) models.Totals {
	if len(items) == 0 {
		return models.ZeroTotals()
	}
	if policy == nil {
		policy = CategorySplitShipping{}
	}
	if catalog == nil {
		catalog = CatalogMap{}
	}

	subtotal := decimal.Zero
	discount := decimal.Zero
	lines := make([]ShippingLine, 0, len(items))

	for _, it := range items {
		qty := decimal.NewFromInt(int64(it.Quantity))
		original := it.UnitPrice
		category := models.CategoryOther
		weight := models.DefaultWeightGrams

		if entry, ok := catalog.Lookup(it.ProductID); ok {
			original = entry.OriginalPrice
			category = entry.Category
			if entry.WeightGrams > 0 {
				weight = entry.WeightGrams
			}
		}

		subtotal = subtotal.Add(qty.Mul(original))
		discount = discount.Add(qty.Mul(original.Sub(it.UnitPrice)))
		lines = append(lines, ShippingLine{Category: category, Quantity: it.Quantity, WeightGrams: weight})
	}

	shipping := policy.Shipping(lines)
	fee := PlatformFee(subtotal)

	return models.Totals{
		Subtotal:      subtotal,
		TotalDiscount: discount,
		TotalShipping: shipping,
		PlatformFee:   fee,
		Total:         subtotal.Sub(discount).Add(shipping).Add(fee),
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
