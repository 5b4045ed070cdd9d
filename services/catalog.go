package services

import (
	"context"

	"shopwave/models"

	"go.uber.org/zap"
)

// Catalog is a synchronous read-only product lookup used during pricing.
type Catalog interface {
	Lookup(productID string) (models.CatalogEntry, bool)
}

// CatalogMap is an in-memory Catalog keyed by product id.
type CatalogMap map[string]models.CatalogEntry

func (m CatalogMap) Lookup(productID string) (models.CatalogEntry, bool) {
	e, ok := m[productID]
	return e, ok
}

// CatalogSource builds a Catalog covering the given product ids.
type CatalogSource interface {
	CatalogFor(ctx context.Context, productIDs []string) Catalog
}

// ProductFinder is the slice of the product repository the catalog needs.
type ProductFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

// ProductCatalog resolves catalog entries from the product store, one batch
// query per computation.
type ProductCatalog struct {
	products ProductFinder
	logger   *zap.Logger
}

func NewProductCatalog(products ProductFinder, logger *zap.Logger) *ProductCatalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductCatalog{products: products, logger: logger}
}

// CatalogFor never fails. A store error yields an empty catalog so every
// item falls back to its own snapshot price.
func (c *ProductCatalog) CatalogFor(ctx context.Context, productIDs []string) Catalog {
	out := CatalogMap{}
	if len(productIDs) == 0 {
		return out
	}
	products, err := c.products.FindByIDs(ctx, productIDs)
	if err != nil {
		c.logger.Warn("catalog lookup failed, pricing from cart snapshot",
			zap.Int("products", len(productIDs)), zap.Error(err))
		return out
	}
	for _, p := range products {
		out[p.ID] = p.CatalogEntry()
	}
	return out
}

func productIDs(items []models.LineItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
