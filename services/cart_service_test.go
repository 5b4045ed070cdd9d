package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"shopwave/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savedCart struct {
	userID  string
	items   []models.LineItem
	version int64
}

type fakeCartStore struct {
	mu      sync.Mutex
	stored  map[string]*models.Cart
	saves   []savedCart
	loads   int
	loadErr error
	saveErr error
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{stored: make(map[string]*models.Cart)}
}

func (f *fakeCartStore) LoadCart(_ context.Context, userID string) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	c, ok := f.stored[userID]
	if !ok {
		return nil, nil
	}
	return &models.Cart{UserID: userID, Items: c.Snapshot(), Version: c.Version}, nil
}

func (f *fakeCartStore) CartVersion(_ context.Context, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return 0, f.loadErr
	}
	if c, ok := f.stored[userID]; ok {
		return c.Version, nil
	}
	return 0, nil
}

func (f *fakeCartStore) SaveCart(_ context.Context, userID string, items []models.LineItem, version int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, savedCart{userID: userID, items: items, version: version})
	if f.saveErr != nil {
		return f.saveErr
	}
	if existing, ok := f.stored[userID]; ok && existing.Version >= version {
		return nil
	}
	f.stored[userID] = &models.Cart{UserID: userID, Items: items, Version: version}
	return nil
}

// newestSave is the attempted save with the highest version. Saves run
// concurrently, so arrival order says nothing.
func (f *fakeCartStore) newestSave() savedCart {
	f.mu.Lock()
	defer f.mu.Unlock()
	newest := f.saves[0]
	for _, s := range f.saves[1:] {
		if s.version > newest.version {
			newest = s
		}
	}
	return newest
}

func (f *fakeCartStore) storedItems(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := []string{}
	if c, ok := f.stored[userID]; ok {
		for _, it := range c.Items {
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}

func (f *fakeCartStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

type staticCatalog CatalogMap

func (s staticCatalog) CatalogFor(context.Context, []string) Catalog {
	return CatalogMap(s)
}

func newTestCartService(store CartStore) *CartService {
	catalog := staticCatalog{
		"oil":  entry("oil", "300", models.CategoryAyurvedic),
		"lamp": entry("lamp", "1200", models.CategoryHome),
		"tv":   entry("tv", "20000", models.CategoryTech),
	}
	return NewCartService(store, catalog, CartServiceConfig{IdleTTL: time.Minute}, nil)
}

func TestCartService_GetStartsEmpty(t *testing.T) {
	store := newFakeCartStore()
	svc := newTestCartService(store)

	view, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Empty(t, view.Items)
	assert.Equal(t, 0, view.ItemCount)
	assertDecimal(t, "0", view.Total)

	_, err = svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.loads, "cart is loaded once per session")
	assert.Equal(t, 0, store.saveCount(), "reads never save")
}

func TestCartService_AddThenRemoveRestoresCart(t *testing.T) {
	ctx := context.Background()
	svc := newTestCartService(newFakeCartStore())

	before, err := svc.AddItem(ctx, "u", "oil", 2, dec("250"), "Oil", "oil.png")
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, "u", "lamp", 1, dec("1000"), "Lamp", "lamp.png")
	require.NoError(t, err)

	after, err := svc.RemoveItem(ctx, "u", "lamp")
	require.NoError(t, err)

	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.Totals, after.Totals)
	svc.Wait()
}

func TestCartService_AddMergesAndClamps(t *testing.T) {
	ctx := context.Background()
	svc := newTestCartService(newFakeCartStore())

	_, err := svc.AddItem(ctx, "u", "lamp", 3, dec("1000"), "Lamp", "")
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, "u", "lamp", 4, dec("1000"), "Lamp", "")
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 7, view.Items[0].Quantity)

	view, err = svc.AddItem(ctx, "u", "lamp", 95, dec("1000"), "Lamp", "")
	require.NoError(t, err)
	assert.Equal(t, models.MaxQuantity, view.Items[0].Quantity)

	view, err = svc.AddItem(ctx, "u", "tv", 0, dec("19000"), "TV", "")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Items[1].Quantity)

	view, err = svc.AddItem(ctx, "u", "oil", 150, dec("250"), "Oil", "")
	require.NoError(t, err)
	assert.Equal(t, models.MaxQuantity, view.Items[2].Quantity)

	assert.Equal(t, []string{"lamp", "tv", "oil"}, []string{view.Items[0].ProductID, view.Items[1].ProductID, view.Items[2].ProductID})
	svc.Wait()
}

func TestCartService_SetQuantityClamps(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	svc := newTestCartService(store)

	_, err := svc.AddItem(ctx, "u", "tv", 1, dec("19000"), "TV", "")
	require.NoError(t, err)

	view, err := svc.SetQuantity(ctx, "u", "tv", 500)
	require.NoError(t, err)
	assert.Equal(t, 99, view.Items[0].Quantity)

	view, err = svc.SetQuantity(ctx, "u", "tv", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Items[0].Quantity)

	svc.Wait()
	saves := store.saveCount()

	view, err = svc.SetQuantity(ctx, "u", "missing", 3)
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)

	_, err = svc.RemoveItem(ctx, "u", "missing")
	require.NoError(t, err)

	svc.Wait()
	assert.Equal(t, saves, store.saveCount(), "no-ops do not save")
}

func TestCartService_TotalsMatchComputeTotals(t *testing.T) {
	ctx := context.Background()
	svc := newTestCartService(newFakeCartStore())

	_, err := svc.AddItem(ctx, "u", "oil", 2, dec("250"), "Oil", "")
	require.NoError(t, err)
	view, err := svc.AddItem(ctx, "u", "lamp", 1, dec("1000"), "Lamp", "")
	require.NoError(t, err)

	assertDecimal(t, "1800", view.Subtotal)
	assertDecimal(t, "300", view.TotalDiscount)
	assertDecimal(t, "67", view.TotalShipping)
	assertDecimal(t, "15", view.PlatformFee)
	assertDecimal(t, "1582", view.Total)
	assert.Equal(t, 3, view.ItemCount)
	svc.Wait()
}

func TestCartService_ClearPersistsEmptyList(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	svc := newTestCartService(store)

	_, err := svc.AddItem(ctx, "u", "tv", 2, dec("19000"), "TV", "")
	require.NoError(t, err)

	view, err := svc.Clear(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assertDecimal(t, "0", view.Total)

	svc.Wait()
	assert.Empty(t, store.stored["u"].Items)
}

func TestCartService_VersionsIncreaseAndLatestWins(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	svc := newTestCartService(store)
	fixed := time.Unix(1700000000, 0)
	svc.now = func() time.Time { return fixed }

	var last int64
	for i := 1; i <= 5; i++ {
		view, err := svc.AddItem(ctx, "u", "lamp", 1, dec("1000"), "Lamp", "")
		require.NoError(t, err)
		assert.Greater(t, view.Version, last)
		last = view.Version
	}
	svc.Wait()

	stored := store.stored["u"]
	require.NotNil(t, stored)
	assert.Equal(t, last, stored.Version)
	assert.Equal(t, 5, stored.Items[0].Quantity)
}

func TestCartService_LoadedCartResumes(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	store.stored["u"] = &models.Cart{
		UserID:  "u",
		Version: 42,
		Items: []models.LineItem{
			item("lamp", 2, "1000"),
			item("lamp", 3, "1000"),
			item("", 1, "5"),
			item("tv", 0, "19000"),
		},
	}
	svc := newTestCartService(store)

	view, err := svc.Get(ctx, "u")
	require.NoError(t, err)

	require.Len(t, view.Items, 2)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, 1, view.Items[1].Quantity)
	assert.Equal(t, int64(42), view.Version)

	view, err = svc.AddItem(ctx, "u", "oil", 1, dec("300"), "Oil", "")
	require.NoError(t, err)
	assert.Greater(t, view.Version, int64(42))
	svc.Wait()
}

func TestCartService_LoadFailureStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	store.loadErr = errors.New("connection refused")
	svc := newTestCartService(store)

	view, err := svc.AddItem(ctx, "u", "tv", 1, dec("19000"), "TV", "")
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)

	svc.Wait()
	assert.Equal(t, 1, store.saveCount())
}

func TestCartService_SaveFailureIsNotSurfaced(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	store.saveErr = errors.New("timeout")
	svc := newTestCartService(store)

	view, err := svc.AddItem(ctx, "u", "tv", 1, dec("19000"), "TV", "")
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)

	view, err = svc.SetQuantity(ctx, "u", "tv", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, view.Items[0].Quantity)

	svc.Wait()
	assert.Equal(t, 2, store.saveCount())
	assert.Equal(t, 3, store.newestSave().items[0].Quantity)
}

func TestCartService_RejectsMissingIdentifiers(t *testing.T) {
	ctx := context.Background()
	svc := newTestCartService(newFakeCartStore())

	_, err := svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.AddItem(ctx, "u", "", 1, dec("1"), "", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.RemoveItem(ctx, "u", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.SetQuantity(ctx, "u", "", 2)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCartService_ConcurrentAddsDoNotLoseUpdates(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	svc := newTestCartService(store)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, "u", "lamp", 1, dec("1000"), "Lamp", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	view, err := svc.Get(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 50, view.Items[0].Quantity)

	svc.Wait()
	assert.Equal(t, 50, store.stored["u"].Items[0].Quantity)
	assert.Equal(t, 1, store.loads)
}

func TestCartService_UsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := newTestCartService(newFakeCartStore())

	_, err := svc.AddItem(ctx, "alice", "lamp", 1, dec("1000"), "Lamp", "")
	require.NoError(t, err)

	view, err := svc.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	svc.Wait()
}

func TestCartService_SweepDropsIdleSessions(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	svc := newTestCartService(store)
	start := time.Unix(1700000000, 0)
	svc.now = func() time.Time { return start }

	_, err := svc.AddItem(ctx, "u", "lamp", 2, dec("1000"), "Lamp", "")
	require.NoError(t, err)
	svc.Wait()

	assert.Equal(t, 0, svc.Sweep(start.Add(30*time.Second)))
	assert.Equal(t, 1, svc.Sweep(start.Add(2*time.Minute)))

	view, err := svc.Get(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 2, store.loads, "evicted cart is reloaded")
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
}

func TestCartService_CloseDrainsSaves(t *testing.T) {
	store := newFakeCartStore()
	svc := newTestCartService(store)

	_, err := svc.AddItem(context.Background(), "u", "lamp", 1, dec("1000"), "Lamp", "")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, svc.Close(ctx))
	assert.Equal(t, 1, store.saveCount())
}

func TestCartService_ReloadsCartChangedByAnotherInstance(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	a := newTestCartService(store)
	b := newTestCartService(store)

	_, err := a.AddItem(ctx, "u", "lamp", 1, dec("1000"), "Lamp", "")
	require.NoError(t, err)
	a.Wait()

	_, err = b.AddItem(ctx, "u", "tv", 1, dec("19000"), "TV", "")
	require.NoError(t, err)
	b.Wait()

	view, err := a.Get(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)

	_, err = a.AddItem(ctx, "u", "oil", 1, dec("300"), "Oil", "")
	require.NoError(t, err)
	a.Wait()

	assert.Equal(t, []string{"lamp", "tv", "oil"}, store.storedItems("u"))
}

func TestCartService_VersionCheckFailureKeepsSessionCart(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	svc := newTestCartService(store)

	_, err := svc.AddItem(ctx, "u", "lamp", 2, dec("1000"), "Lamp", "")
	require.NoError(t, err)
	svc.Wait()

	store.mu.Lock()
	store.loadErr = errors.New("connection reset")
	store.mu.Unlock()

	view, err := svc.Get(ctx, "u")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
}

func TestCartService_CheckoutClearsOnlyOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := newFakeCartStore()
	svc := newTestCartService(store)

	_, err := svc.AddItem(ctx, "u", "lamp", 2, dec("1000"), "Lamp", "")
	require.NoError(t, err)

	failed := errors.New("payment declined")
	err = svc.Checkout(ctx, "u", func(view models.CartView) error {
		assert.Len(t, view.Items, 1)
		return failed
	})
	assert.ErrorIs(t, err, failed)

	view, err := svc.Get(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)

	var seen models.CartView
	require.NoError(t, svc.Checkout(ctx, "u", func(view models.CartView) error {
		seen = view
		return nil
	}))
	assert.Equal(t, 2, seen.ItemCount)
	assertDecimal(t, "2000", seen.Subtotal)
	assert.Empty(t, store.storedItems("u"), "cleared cart is saved before checkout returns")

	view, err = svc.Get(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	svc.Wait()

	assert.ErrorIs(t, svc.Checkout(ctx, "", func(models.CartView) error { return nil }), ErrInvalidArgument)
}
