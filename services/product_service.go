package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"strings"
	"time"
	"unicode"

	"shopwave/models"
	"shopwave/repositories"

	"go.uber.org/zap"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSlug   = errors.New("slug already in use")
	ErrInvalidProduct  = errors.New("invalid product")
	ErrUploadDisabled  = errors.New("image uploads are not configured")
)

const (
	defaultProductLimit = 20
	maxProductLimit     = 100
	lowStockThreshold   = 5
)

type ProductStore interface {
	ProductFinder
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, int64, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	SlugExists(ctx context.Context, slug, exceptID string) (bool, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, since time.Time, lowStock int) (models.CatalogStats, error)
}

// ListCache holds serialized product pages. Implementations must tolerate
// being unavailable.
type ListCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Invalidate(ctx context.Context)
}

type ImageStore interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (string, string, error)
	Delete(ctx context.Context, publicID string) error
}

type ProductService struct {
	store  ProductStore
	cache  ListCache
	images ImageStore
	logger *zap.Logger
}

func NewProductService(store ProductStore, cache ListCache, images ImageStore, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{store: store, cache: cache, images: images, logger: logger}
}

func productCacheKey(f models.ProductFilter) string {
	return fmt.Sprintf("products_list_c%s_s%s_p%d_l%d",
		url.QueryEscape(strings.ToLower(f.Category)), url.QueryEscape(strings.ToLower(f.Search)), f.Page, f.Limit)
}

func normalizeProductFilter(f models.ProductFilter) models.ProductFilter {
	f.Category = strings.TrimSpace(f.Category)
	f.Search = strings.TrimSpace(f.Search)
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultProductLimit
	}
	if f.Limit > maxProductLimit {
		f.Limit = maxProductLimit
	}
	return f
}

func (s *ProductService) List(ctx context.Context, filter models.ProductFilter) (*models.ProductPage, error) {
	filter = normalizeProductFilter(filter)
	key := productCacheKey(filter)

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			var page models.ProductPage
			if err := json.Unmarshal(cached, &page); err == nil {
				return &page, nil
			}
		}
	}

	products, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := &models.ProductPage{Products: products, Total: total, Page: filter.Page, Limit: filter.Limit}

	if s.cache != nil {
		if data, err := json.Marshal(page); err == nil {
			s.cache.Set(ctx, key, data)
		}
	}
	return page, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.store.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	return p, err
}

func (s *ProductService) Create(ctx context.Context, req models.CreateProductRequest, image *multipart.FileHeader) (*models.Product, error) {
	p := &models.Product{
		Name:        strings.TrimSpace(req.Name),
		Slug:        req.Slug,
		Description: req.Description,
		Price: models.Price{
			Original:   req.Price,
			Discounted: req.Discounted,
			Currency:   req.Currency,
		},
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Image:       req.Image,
		ExtraImages: req.ExtraImages,
		Features:    req.Features,
		Brand:       req.Brand,
		Quantity:    req.Quantity,
		WeightGrams: req.WeightGrams,
	}
	if p.Price.Currency == "" {
		p.Price.Currency = "INR"
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(ctx, p.Slug, ""); err != nil {
		return nil, err
	}

	if image != nil {
		if err := s.attachImage(ctx, p, image); err != nil {
			return nil, err
		}
	}

	if err := s.store.Create(ctx, p); err != nil {
		s.discardImage(ctx, p.ImagePublicID)
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateSlug
		}
		return nil, err
	}

	s.invalidate(ctx)
	s.logger.Info("product created", zap.String("product_id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id string, req models.UpdateProductRequest, image *multipart.FileHeader) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price.Original = *req.Price
	}
	if req.Discounted != nil {
		if req.Discounted.IsZero() {
			p.Price.Discounted = nil
		} else {
			d := *req.Discounted
			p.Price.Discounted = &d
		}
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Subcategory != nil {
		p.Subcategory = *req.Subcategory
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	if req.ExtraImages != nil {
		p.ExtraImages = req.ExtraImages
	}
	if req.Features != nil {
		p.Features = req.Features
	}
	if req.Brand != nil {
		p.Brand = *req.Brand
	}
	if req.Quantity != nil {
		p.Quantity = *req.Quantity
	}
	if req.WeightGrams != nil {
		p.WeightGrams = *req.WeightGrams
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	oldPublicID := p.ImagePublicID
	if image != nil {
		if err := s.attachImage(ctx, p, image); err != nil {
			return nil, err
		}
	}

	if err := s.store.Update(ctx, p); err != nil {
		if image != nil {
			s.discardImage(ctx, p.ImagePublicID)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if image != nil {
		s.discardImage(ctx, oldPublicID)
	}

	s.invalidate(ctx)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.discardImage(ctx, p.ImagePublicID)
	s.invalidate(ctx)
	s.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}

// CatalogStats counts all products, those added in the last week and those
// running low on stock.
func (s *ProductService) CatalogStats(ctx context.Context, now time.Time) (models.CatalogStats, error) {
	return s.store.Stats(ctx, now.AddDate(0, 0, -7), lowStockThreshold)
}

func (s *ProductService) ensureSlugFree(ctx context.Context, slug, exceptID string) error {
	taken, err := s.store.SlugExists(ctx, slug, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %s", ErrDuplicateSlug, slug)
	}
	return nil
}

func (s *ProductService) attachImage(ctx context.Context, p *models.Product, image *multipart.FileHeader) error {
	if s.images == nil {
		return ErrUploadDisabled
	}
	imageURL, publicID, err := s.images.Upload(ctx, image)
	if err != nil {
		return err
	}
	p.Image = imageURL
	p.ImagePublicID = publicID
	return nil
}

func (s *ProductService) discardImage(ctx context.Context, publicID string) {
	if s.images == nil || publicID == "" {
		return
	}
	if err := s.images.Delete(ctx, publicID); err != nil {
		s.logger.Warn("failed to delete product image", zap.String("public_id", publicID), zap.Error(err))
	}
}

func (s *ProductService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case p.Slug == "":
		return fmt.Errorf("%w: slug is required", ErrInvalidProduct)
	case p.Category == "":
		return fmt.Errorf("%w: category is required", ErrInvalidProduct)
	case !p.Price.Original.IsPositive():
		return fmt.Errorf("%w: price must be positive", ErrInvalidProduct)
	case p.Price.Discounted != nil && (p.Price.Discounted.IsNegative() || p.Price.Discounted.GreaterThan(p.Price.Original)):
		return fmt.Errorf("%w: discounted price must be between 0 and the original price", ErrInvalidProduct)
	case p.Quantity < 0:
		return fmt.Errorf("%w: quantity cannot be negative", ErrInvalidProduct)
	case p.WeightGrams < 0:
		return fmt.Errorf("%w: weight cannot be negative", ErrInvalidProduct)
	}
	return nil
}

// Slugify lowercases s and joins its letters and digits with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
