package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Customer struct {
	ID          int64           `json:"id"`
	UserID      string          `json:"userId"`
	Email       string          `json:"email"`
	FullName    string          `json:"fullName"`
	Coins       int64           `json:"coins"`
	OrdersCount int64           `json:"ordersCount"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
