package services

import (
	"context"
	"errors"
	"mime/multipart"
	"sort"
	"strconv"
	"testing"
	"time"

	"shopwave/models"
	"shopwave/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductStore struct {
	products map[string]models.Product
	stats    models.CatalogStats
	lists    int
	findErr  error
}

func newFakeProductStore(products ...models.Product) *fakeProductStore {
	s := &fakeProductStore{products: map[string]models.Product{}}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeProductStore) FindByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeProductStore) List(_ context.Context, f models.ProductFilter) ([]models.Product, int64, error) {
	s.lists++
	out := []models.Product{}
	for _, p := range s.products {
		if f.Category == "" || p.Category == f.Category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (s *fakeProductStore) FindByID(_ context.Context, id string) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (s *fakeProductStore) SlugExists(_ context.Context, slug, exceptID string) (bool, error) {
	for _, p := range s.products {
		if p.Slug == slug && p.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeProductStore) Create(_ context.Context, p *models.Product) error {
	p.ID = "new-" + strconv.Itoa(len(s.products)+1)
	s.products[p.ID] = *p
	return nil
}

func (s *fakeProductStore) Update(_ context.Context, p *models.Product) error {
	if _, ok := s.products[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.products[p.ID] = *p
	return nil
}

func (s *fakeProductStore) Delete(_ context.Context, id string) error {
	if _, ok := s.products[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *fakeProductStore) Stats(context.Context, time.Time, int) (models.CatalogStats, error) {
	return s.stats, nil
}

type memoryListCache struct {
	data          map[string][]byte
	invalidations int
}

func newMemoryListCache() *memoryListCache {
	return &memoryListCache{data: map[string][]byte{}}
}

func (c *memoryListCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := c.data[key]
	return v, ok
}

func (c *memoryListCache) Set(_ context.Context, key string, value []byte) {
	c.data[key] = value
}

func (c *memoryListCache) Invalidate(context.Context) {
	c.invalidations++
	c.data = map[string][]byte{}
}

type fakeImageStore struct {
	uploads   int
	deleted   []string
	uploadErr error
}

func (f *fakeImageStore) Upload(context.Context, *multipart.FileHeader) (string, string, error) {
	if f.uploadErr != nil {
		return "", "", f.uploadErr
	}
	f.uploads++
	id := "img-" + strconv.Itoa(f.uploads)
	return "https://cdn.example.com/" + id + ".jpg", id, nil
}

func (f *fakeImageStore) Delete(_ context.Context, publicID string) error {
	f.deleted = append(f.deleted, publicID)
	return nil
}

func sampleProduct(id, slug, category string) models.Product {
	return models.Product{
		ID:       id,
		Name:     slug,
		Slug:     slug,
		Category: category,
		Price:    models.Price{Original: dec("100"), Currency: "INR"},
		Quantity: 10,
	}
}

func TestProductService_ListUsesCache(t *testing.T) {
	store := newFakeProductStore(sampleProduct("a", "lamp", "Home"), sampleProduct("b", "oil", "Ayurvedic"))
	cache := newMemoryListCache()
	svc := NewProductService(store, cache, nil, nil)

	page, err := svc.List(context.Background(), models.ProductFilter{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.Limit)

	again, err := svc.List(context.Background(), models.ProductFilter{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, store.lists)
	assert.Equal(t, page.Total, again.Total)
	assertDecimal(t, "100", again.Products[0].Price.Original)
}

func TestProductService_CreateDerivesSlugAndInvalidates(t *testing.T) {
	store := newFakeProductStore()
	cache := newMemoryListCache()
	svc := NewProductService(store, cache, nil, nil)

	p, err := svc.Create(context.Background(), models.CreateProductRequest{
		Name:     "  Brass Desk Lamp ",
		Price:    dec("1499"),
		Category: "Home",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "brass-desk-lamp", p.Slug)
	assert.Equal(t, "INR", p.Price.Currency)
	assert.Equal(t, 1, cache.invalidations)

	_, err = svc.Create(context.Background(), models.CreateProductRequest{
		Name:     "Brass desk lamp",
		Price:    dec("10"),
		Category: "Home",
	}, nil)
	assert.ErrorIs(t, err, ErrDuplicateSlug)
}

func TestProductService_CreateValidates(t *testing.T) {
	svc := NewProductService(newFakeProductStore(), nil, nil, nil)
	over := dec("200")

	cases := map[string]models.CreateProductRequest{
		"zero price":      {Name: "x", Price: dec("0"), Category: "Home"},
		"no category":     {Name: "x", Price: dec("1")},
		"discount > base": {Name: "x", Price: dec("100"), Discounted: &over, Category: "Home"},
		"negative stock":  {Name: "x", Price: dec("1"), Category: "Home", Quantity: -1},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), req, nil)
			assert.ErrorIs(t, err, ErrInvalidProduct)
		})
	}
}

func TestProductService_ImageUpload(t *testing.T) {
	store := newFakeProductStore(sampleProduct("a", "lamp", "Home"))
	images := &fakeImageStore{}
	svc := NewProductService(store, nil, images, nil)

	p, err := svc.Update(context.Background(), "a", models.UpdateProductRequest{}, &multipart.FileHeader{Filename: "a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "img-1", p.ImagePublicID)

	_, err = svc.Update(context.Background(), "a", models.UpdateProductRequest{}, &multipart.FileHeader{Filename: "b.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"img-1"}, images.deleted)

	require.NoError(t, svc.Delete(context.Background(), "a"))
	assert.Equal(t, []string{"img-1", "img-2"}, images.deleted)
}

func TestProductService_UploadWithoutImageStore(t *testing.T) {
	svc := NewProductService(newFakeProductStore(), nil, nil, nil)
	_, err := svc.Create(context.Background(), models.CreateProductRequest{
		Name: "Lamp", Price: dec("1"), Category: "Home",
	}, &multipart.FileHeader{Filename: "a.jpg"})
	assert.ErrorIs(t, err, ErrUploadDisabled)
}

func TestProductService_UploadFailureAbortsCreate(t *testing.T) {
	store := newFakeProductStore()
	svc := NewProductService(store, nil, &fakeImageStore{uploadErr: errors.New("cdn down")}, nil)
	_, err := svc.Create(context.Background(), models.CreateProductRequest{
		Name: "Lamp", Price: dec("1"), Category: "Home",
	}, &multipart.FileHeader{Filename: "a.jpg"})
	require.Error(t, err)
	assert.Empty(t, store.products)
}

func TestProductService_UpdateClearsDiscount(t *testing.T) {
	p := sampleProduct("a", "lamp", "Home")
	d := dec("80")
	p.Price.Discounted = &d
	svc := NewProductService(newFakeProductStore(p), nil, nil, nil)

	zero := dec("0")
	updated, err := svc.Update(context.Background(), "a", models.UpdateProductRequest{Discounted: &zero}, nil)
	require.NoError(t, err)
	assert.Nil(t, updated.Price.Discounted)
}

func TestProductService_NotFound(t *testing.T) {
	svc := NewProductService(newFakeProductStore(), nil, nil, nil)
	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), "missing"), ErrProductNotFound)
	_, err = svc.Update(context.Background(), "missing", models.UpdateProductRequest{}, nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductCatalog_LooksUpEntries(t *testing.T) {
	p := sampleProduct("a", "oil", "ayurvedic")
	catalog := NewProductCatalog(newFakeProductStore(p), nil).CatalogFor(context.Background(), []string{"a", "b"})

	e, ok := catalog.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, models.CategoryAyurvedic, e.Category)
	assert.Equal(t, models.DefaultWeightGrams, e.WeightGrams)

	_, ok = catalog.Lookup("b")
	assert.False(t, ok)
}

func TestProductCatalog_FailureIsEmpty(t *testing.T) {
	store := newFakeProductStore(sampleProduct("a", "oil", "Ayurvedic"))
	store.findErr = errors.New("mongo down")

	catalog := NewProductCatalog(store, nil).CatalogFor(context.Background(), []string{"a"})
	_, ok := catalog.Lookup("a")
	assert.False(t, ok)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "brass-desk-lamp", Slugify("Brass  Desk-Lamp!"))
	assert.Equal(t, "ashwagandha-500mg", Slugify("  Ashwagandha (500mg) "))
	assert.Equal(t, "", Slugify("!!!"))
}
