package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type AddCartItemRequest struct {
	ProductID string `json:"id" form:"id" binding:"required"`
	Quantity  int    `json:"qty" form:"qty"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"qty" form:"qty"`
}

type PlaceOrderRequest struct {
	FullName        string           `json:"fullName"`
	Email           string           `json:"email" binding:"omitempty,email"`
	PaymentMethod   string           `json:"paymentMethod" binding:"required"`
	PaymentID       string           `json:"paymentId"`
	ShippingAddress ShippingAddress  `json:"shippingAddress"`
	ExpectedTotal   *decimal.Decimal `json:"total"`
}

type CreateProductRequest struct {
	Name        string           `json:"name" form:"name" binding:"required"`
	Slug        string           `json:"slug" form:"slug"`
	Description string           `json:"description" form:"description"`
	Price       decimal.Decimal  `json:"price" form:"price" binding:"required"`
	Discounted  *decimal.Decimal `json:"discountedPrice" form:"discountedPrice"`
	Currency    string           `json:"currency" form:"currency"`
	Category    string           `json:"category" form:"category" binding:"required"`
	Subcategory string           `json:"subcategory" form:"subcategory"`
	Image       string           `json:"image" form:"image"`
	ExtraImages []string         `json:"extraImages" form:"extraImages"`
	Features    []string         `json:"features" form:"features"`
	Brand       string           `json:"brand" form:"brand"`
	Quantity    int              `json:"quantity" form:"quantity"`
	WeightGrams int              `json:"weight" form:"weight"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name" form:"name"`
	Description *string          `json:"description" form:"description"`
	Price       *decimal.Decimal `json:"price" form:"price"`
	Discounted  *decimal.Decimal `json:"discountedPrice" form:"discountedPrice"`
	Category    *string          `json:"category" form:"category"`
	Subcategory *string          `json:"subcategory" form:"subcategory"`
	Image       *string          `json:"image" form:"image"`
	ExtraImages []string         `json:"extraImages" form:"extraImages"`
	Features    []string         `json:"features" form:"features"`
	Brand       *string          `json:"brand" form:"brand"`
	Quantity    *int             `json:"quantity" form:"quantity"`
	WeightGrams *int             `json:"weight" form:"weight"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UserDataRequest struct {
	Data json.RawMessage `json:"data" binding:"required"`
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

type PaginationResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    interface{}    `json:"data"`
	Meta    PaginationMeta `json:"meta"`
}

type PaginationLinks struct {
	Self string `json:"self"`
	Next string `json:"next,omitempty"`
	Prev string `json:"prev,omitempty"`
}

type HATEOASResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    interface{}     `json:"data"`
	Meta    PaginationMeta  `json:"meta"`
	Links   PaginationLinks `json:"links"`
}
