package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"shopwave/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrInvalidArgument = errors.New("invalid argument")

// CartStore persists the line items of one user. LoadCart returns nil, nil
// and CartVersion returns 0 when nothing is stored. SaveCart must ignore
// writes whose version is not newer than the stored one.
type CartStore interface {
	LoadCart(ctx context.Context, userID string) (*models.Cart, error)
	CartVersion(ctx context.Context, userID string) (int64, error)
	SaveCart(ctx context.Context, userID string, items []models.LineItem, version int64) error
}

type CartServiceConfig struct {
	Policy      ShippingPolicy
	SaveTimeout time.Duration
	IdleTTL     time.Duration
}

type cartSession struct {
	mu       sync.Mutex
	cart     *models.Cart
	lastUsed time.Time
	evicted  bool
	inflight atomic.Int32
}

// CartService owns the in-memory carts of active users. Each user's cart is
// mutated under its own lock and written back in the background after every
// change. The stored version is checked on every request so a cart changed
// by another instance is reloaded before it is used.
type CartService struct {
	store       CartStore
	catalog     CatalogSource
	policy      ShippingPolicy
	logger      *zap.Logger
	saveTimeout time.Duration
	idleTTL     time.Duration
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*cartSession
	pending  sync.WaitGroup
}

func NewCartService(store CartStore, catalog CatalogSource, cfg CartServiceConfig, logger *zap.Logger) *CartService {
	if cfg.Policy == nil {
		cfg.Policy = CategorySplitShipping{}
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = 10 * time.Second
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		store:       store,
		catalog:     catalog,
		policy:      cfg.Policy,
		logger:      logger,
		saveTimeout: cfg.SaveTimeout,
		idleTTL:     cfg.IdleTTL,
		now:         time.Now,
		sessions:    make(map[string]*cartSession),
	}
}

func (s *CartService) Get(ctx context.Context, userID string) (models.CartView, error) {
	return s.mutate(ctx, userID, func(*models.Cart) bool { return false })
}

// AddItem merges the product into the cart. Quantities above the cap are
// clamped silently.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int, unitPrice decimal.Decimal, name, image string) (models.CartView, error) {
	if productID == "" {
		return models.CartView{}, fmt.Errorf("%w: product id is required", ErrInvalidArgument)
	}
	return s.mutate(ctx, userID, func(c *models.Cart) bool {
		c.Add(models.LineItem{
			ProductID: productID,
			Name:      name,
			Image:     image,
			Quantity:  quantity,
			UnitPrice: unitPrice,
		})
		return true
	})
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (models.CartView, error) {
	if productID == "" {
		return models.CartView{}, fmt.Errorf("%w: product id is required", ErrInvalidArgument)
	}
	return s.mutate(ctx, userID, func(c *models.Cart) bool {
		return c.Remove(productID)
	})
}

func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, quantity int) (models.CartView, error) {
	if productID == "" {
		return models.CartView{}, fmt.Errorf("%w: product id is required", ErrInvalidArgument)
	}
	return s.mutate(ctx, userID, func(c *models.Cart) bool {
		return c.SetQuantity(productID, quantity)
	})
}

func (s *CartService) Clear(ctx context.Context, userID string) (models.CartView, error) {
	return s.mutate(ctx, userID, func(c *models.Cart) bool {
		c.Clear()
		return true
	})
}

// Totals prices an arbitrary item list with the service's catalog and
// shipping policy.
func (s *CartService) Totals(ctx context.Context, items []models.LineItem) models.Totals {
	if len(items) == 0 {
		return models.ZeroTotals()
	}
	var catalog Catalog = CatalogMap{}
	if s.catalog != nil {
		catalog = s.catalog.CatalogFor(ctx, productIDs(items))
	}
	return ComputeTotals(items, catalog, s.policy)
}

func (s *CartService) mutate(ctx context.Context, userID string, fn func(*models.Cart) bool) (models.CartView, error) {
	if userID == "" {
		return models.CartView{}, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}

	sess := s.acquire(ctx, userID)
	if fn(sess.cart) {
		version := sess.cart.Touch(s.now())
		s.saveAsync(sess, userID, sess.cart.Snapshot(), version)
	}
	items := sess.cart.Snapshot()
	count := sess.cart.UnitCount()
	version := sess.cart.Version
	sess.lastUsed = s.now()
	sess.mu.Unlock()

	return s.view(ctx, items, count, version), nil
}

func (s *CartService) view(ctx context.Context, items []models.LineItem, count int, version int64) models.CartView {
	return models.CartView{
		Items:     items,
		ItemCount: count,
		Version:   version,
		Totals:    s.Totals(ctx, items),
	}
}

// Checkout hands the current cart to place while holding the user's session
// and empties the cart only when place succeeds. Other changes to the same
// cart wait until checkout returns, so a second checkout sees the emptied
// cart and nothing added meanwhile is cleared. The emptied cart is saved
// before Checkout returns.
func (s *CartService) Checkout(ctx context.Context, userID string, place func(models.CartView) error) error {
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}

	sess := s.acquire(ctx, userID)
	defer sess.mu.Unlock()
	sess.lastUsed = s.now()

	if err := place(s.view(ctx, sess.cart.Snapshot(), sess.cart.UnitCount(), sess.cart.Version)); err != nil {
		return err
	}

	sess.cart.Clear()
	version := sess.cart.Touch(s.now())
	s.save(userID, sess.cart.Snapshot(), version)
	return nil
}

// acquire returns the user's session locked, loading it on first use and
// reloading it when the store holds a newer version.
func (s *CartService) acquire(ctx context.Context, userID string) *cartSession {
	for {
		s.mu.Lock()
		sess, ok := s.sessions[userID]
		if !ok {
			sess = &cartSession{}
			s.sessions[userID] = sess
		}
		s.mu.Unlock()

		sess.mu.Lock()
		if sess.evicted {
			sess.mu.Unlock()
			continue
		}
		if sess.cart == nil {
			sess.cart = s.load(ctx, userID)
		} else {
			s.refresh(ctx, userID, sess)
		}
		return sess
	}
}

func (s *CartService) load(ctx context.Context, userID string) *models.Cart {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.saveTimeout)
	defer cancel()

	cart, err := s.fetch(ctx, userID)
	if err != nil {
		s.logger.Warn("cart load failed, starting empty", zap.String("user_id", userID), zap.Error(err))
		return models.NewCart(userID)
	}
	return cart
}

// refresh keeps the session copy when the check fails; a stale cart is
// better than an empty one.
func (s *CartService) refresh(ctx context.Context, userID string, sess *cartSession) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.saveTimeout)
	defer cancel()

	stored, err := s.store.CartVersion(ctx, userID)
	if err != nil {
		s.logger.Warn("cart version check failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if stored <= sess.cart.Version {
		return
	}

	cart, err := s.fetch(ctx, userID)
	if err != nil {
		s.logger.Warn("cart reload failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	s.logger.Debug("reloaded cart changed elsewhere",
		zap.String("user_id", userID),
		zap.Int64("local_version", sess.cart.Version),
		zap.Int64("stored_version", cart.Version))
	sess.cart = cart
}

func (s *CartService) fetch(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.store.LoadCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return models.NewCart(userID), nil
	}
	cart.UserID = userID
	cart.Normalize()
	return cart, nil
}

func (s *CartService) saveAsync(sess *cartSession, userID string, items []models.LineItem, version int64) {
	s.pending.Add(1)
	sess.inflight.Add(1)
	go func() {
		defer s.pending.Done()
		defer sess.inflight.Add(-1)
		s.save(userID, items, version)
	}()
}

func (s *CartService) save(userID string, items []models.LineItem, version int64) {
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	if err := s.store.SaveCart(ctx, userID, items, version); err != nil {
		s.logger.Warn("cart save failed",
			zap.String("user_id", userID),
			zap.Int64("version", version),
			zap.Int("items", len(items)),
			zap.Error(err))
	}
}

// Sweep drops sessions idle since before now minus the idle TTL. Sessions
// that are busy or still saving are kept.
func (s *CartService) Sweep(now time.Time) int {
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for userID, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if sess.lastUsed.Before(cutoff) && sess.inflight.Load() == 0 {
			sess.evicted = true
			delete(s.sessions, userID)
			dropped++
		}
		sess.mu.Unlock()
	}
	return dropped
}

// Run sweeps idle sessions until ctx is done.
func (s *CartService) Run(ctx context.Context) {
	interval := s.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				s.logger.Debug("swept idle carts", zap.Int("count", n))
			}
		}
	}
}

// Wait blocks until every background save started so far has finished.
func (s *CartService) Wait() {
	s.pending.Wait()
}

// Close drains pending saves or gives up when ctx is done.
func (s *CartService) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for cart saves: %w", ctx.Err())
	}
}
