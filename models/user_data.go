package models

import (
	"encoding/json"
	"time"
)

const (
	UserDataCart          = "cart"
	UserDataWishlist      = "wishlist"
	UserDataNotifications = "notifications"
)

// IsClientUserDataType reports whether a blob type may be read and written
// directly by clients. The cart is owned by the cart service.
func IsClientUserDataType(t string) bool {
	return t == UserDataWishlist || t == UserDataNotifications
}

type UserData struct {
	UserID    string          `json:"userId"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Identity is the verified caller, taken from the session token.
type Identity struct {
	UserID string
	Email  string
	Name   string
	Role   string
}
