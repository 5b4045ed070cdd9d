package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"shopwave/models"
	"shopwave/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrTotalMismatch = errors.New("order total does not match the cart")
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

const EventOrderPlaced = "order.placed"

var cashbackRate = decimal.NewFromFloat(0.01)

// CartCheckout is the part of the cart engine used when placing an order.
// Checkout empties the cart only when place returns nil.
type CartCheckout interface {
	Checkout(ctx context.Context, userID string, place func(models.CartView) error) error
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order, customerName string) error
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error)
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Stats(ctx context.Context) (models.OrderStats, error)
	TopProducts(ctx context.Context, limit int) ([]models.TopProduct, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, messageType string, payload interface{}) error
}

type OrderMailer interface {
	SendOrderConfirmation(order *models.Order) error
}

type OrderService struct {
	carts     CartCheckout
	store     OrderStore
	publisher EventPublisher
	mailer    OrderMailer
	logger    *zap.Logger
	now       func() time.Time

	background sync.WaitGroup
}

// NewOrderService wires order placement. publisher and mailer are optional.
func NewOrderService(carts CartCheckout, store OrderStore, publisher EventPublisher, mailer OrderMailer, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		carts:     carts,
		store:     store,
		publisher: publisher,
		mailer:    mailer,
		logger:    logger,
		now:       time.Now,
	}
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), strings.ToUpper(suffix))
}

// CoinsFor is the cashback credited for an order total.
func CoinsFor(total decimal.Decimal) int64 {
	if !total.IsPositive() {
		return 0
	}
	return total.Mul(cashbackRate).Floor().IntPart()
}

// PlaceOrder turns the caller's cart into a pending order. Totals always
// come from the cart engine; a client supplied total only guards against a
// stale checkout page. The cart stays locked while the order is written, so
// a repeated submit finds it empty.
func (s *OrderService) PlaceOrder(ctx context.Context, identity models.Identity, req models.PlaceOrderRequest) (*models.Order, error) {
	if identity.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}

	email := req.Email
	if email == "" {
		email = identity.Email
	}
	name := req.FullName
	if name == "" {
		name = identity.Name
	}
	if name == "" {
		name = req.ShippingAddress.FullName
	}

	now := s.now()
	var order *models.Order
	err := s.carts.Checkout(ctx, identity.UserID, func(cart models.CartView) error {
		if len(cart.Items) == 0 {
			return ErrEmptyCart
		}
		if req.ExpectedTotal != nil && !req.ExpectedTotal.Equal(cart.Total) {
			return fmt.Errorf("%w: expected %s, cart total is %s", ErrTotalMismatch, req.ExpectedTotal.String(), cart.Total.String())
		}

		o := newOrder(identity.UserID, email, req, cart, now)
		if err := s.store.Create(ctx, o, name); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", order.UserID),
		zap.String("total", order.Total.String()))

	s.notify(order, now)
	return order, nil
}

func newOrder(userID, email string, req models.PlaceOrderRequest, cart models.CartView, now time.Time) *models.Order {
	order := &models.Order{
		OrderNumber:     newOrderNumber(now),
		UserID:          userID,
		Email:           email,
		Status:          models.OrderStatusPending,
		Subtotal:        cart.Subtotal,
		TotalDiscount:   cart.TotalDiscount,
		TotalShipping:   cart.TotalShipping,
		PlatformFee:     cart.PlatformFee,
		Total:           cart.Total,
		CoinsEarned:     CoinsFor(cart.Total),
		PaymentMethod:   req.PaymentMethod,
		PaymentID:       req.PaymentID,
		ShippingAddress: req.ShippingAddress,
		Items:           make([]models.OrderItem, 0, len(cart.Items)),
	}
	for _, it := range cart.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Image,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))),
		})
	}
	return order
}

func (s *OrderService) notify(order *models.Order, placedAt time.Time) {
	if s.publisher != nil {
		event := models.OrderPlacedEvent{
			Event:       EventOrderPlaced,
			OrderNumber: order.OrderNumber,
			UserID:      order.UserID,
			Email:       order.Email,
			Total:       order.Total,
			Items:       order.Items,
			PlacedAt:    placedAt.UTC(),
		}
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			if err := s.publisher.Publish(context.Background(), EventOrderPlaced, event); err != nil {
				s.logger.Warn("failed to publish order event", zap.String("order_number", event.OrderNumber), zap.Error(err))
			}
		}()
	}

	if s.mailer != nil && order.Email != "" {
		s.background.Add(1)
		go func() {
			defer s.background.Done()
			if err := s.mailer.SendOrderConfirmation(order); err != nil {
				s.logger.Warn("failed to send order confirmation", zap.String("order_number", order.OrderNumber), zap.Error(err))
			}
		}()
	}
}

// Wait blocks until queued events and mails have been handed off.
func (s *OrderService) Wait() {
	s.background.Wait()
}

// Close waits like Wait but gives up when ctx is done.
func (s *OrderService) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for order notifications: %w", ctx.Err())
	}
}

func (s *OrderService) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, int, error) {
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.store.List(ctx, filter)
}

func (s *OrderService) ListForUser(ctx context.Context, userID, status string, limit, offset int) ([]models.Order, int, error) {
	if userID == "" {
		return nil, 0, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	return s.List(ctx, models.OrderFilter{UserID: userID, Status: status, Limit: limit, Offset: offset})
}

func (s *OrderService) Get(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.store.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string) error {
	status = strings.ToLower(strings.TrimSpace(status))
	if !models.IsValidOrderStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	err := s.store.UpdateStatus(ctx, id, status)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err == nil {
		s.logger.Info("order status updated", zap.Int64("order_id", id), zap.String("status", status))
	}
	return err
}
