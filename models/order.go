package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

var orderStatuses = map[string]bool{
	OrderStatusPending:    true,
	OrderStatusProcessing: true,
	OrderStatusShipped:    true,
	OrderStatusDelivered:  true,
	OrderStatusCancelled:  true,
}

func IsValidOrderStatus(status string) bool {
	return orderStatuses[status]
}

type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type Order struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          string          `json:"userId"`
	Email           string          `json:"email"`
	Status          string          `json:"status"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TotalDiscount   decimal.Decimal `json:"totalDiscount"`
	TotalShipping   decimal.Decimal `json:"totalShipping"`
	PlatformFee     decimal.Decimal `json:"platformFee"`
	Total           decimal.Decimal `json:"total"`
	CoinsEarned     int64           `json:"coinsEarned"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentID       string          `json:"paymentId,omitempty"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Items           []OrderItem     `json:"items,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"orderId"`
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Quantity  int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type OrderFilter struct {
	UserID string
	Status string
	Search string
	Limit  int
	Offset int
}

// OrderPlacedEvent is published once an order has been committed.
type OrderPlacedEvent struct {
	Event       string          `json:"event"`
	OrderNumber string          `json:"orderNumber"`
	UserID      string          `json:"userId"`
	Email       string          `json:"email"`
	Total       decimal.Decimal `json:"total"`
	Items       []OrderItem     `json:"items"`
	PlacedAt    time.Time       `json:"placedAt"`
}

type TopProduct struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitsSold int64           `json:"unitsSold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// OrderStats is the order side of the admin dashboard.
type OrderStats struct {
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalOrders    int64           `json:"totalOrders"`
	TotalCustomers int64           `json:"totalCustomers"`
	AvgOrderValue  decimal.Decimal `json:"avgOrderValue"`
}

type CatalogStats struct {
	TotalProducts int64 `json:"totalProducts"`
	NewProducts   int64 `json:"newProducts"`
	LowStock      int64 `json:"lowStock"`
}

type DashboardStats struct {
	OrderStats
	CatalogStats
	TopProducts []TopProduct `json:"topProducts"`
}
