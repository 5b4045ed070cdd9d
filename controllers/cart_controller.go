package controllers

import (
	"net/http"

	"shopwave/models"
	"shopwave/services"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	Carts    *services.CartService
	Products *services.ProductService
}

func NewCartController(carts *services.CartService, products *services.ProductService) *CartController {
	return &CartController{Carts: carts, Products: products}
}

// @Summary Get cart
// @Description Current cart with server computed totals
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	view, err := ctrl.Carts.Get(c.Request.Context(), currentIdentity(c).UserID)
	if err != nil {
		respondError(c, "Failed to load cart", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart retrieved", Data: view})
}

// @Summary Add item to cart
// @Description Adds a product, merging with an existing line. Quantity is clamped to 1..99.
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.AddCartItemRequest true "Product and quantity"
// @Success 200 {object} models.Response{data=models.CartView}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	product, err := ctrl.Products.Get(c.Request.Context(), req.ProductID)
	if err != nil {
		respondError(c, "Product not available", err)
		return
	}

	view, err := ctrl.Carts.AddItem(c.Request.Context(), currentIdentity(c).UserID,
		product.ID, req.Quantity, product.Price.Current(), product.Name, product.Image)
	if err != nil {
		respondError(c, "Failed to add item", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Item added to cart", Data: view})
}

// @Summary Update item quantity
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param productId path string true "Product ID"
// @Param request body models.UpdateCartItemRequest true "New quantity"
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart/items/{productId} [patch]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	view, err := ctrl.Carts.SetQuantity(c.Request.Context(), currentIdentity(c).UserID, c.Param("productId"), req.Quantity)
	if err != nil {
		respondError(c, "Failed to update item", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart updated", Data: view})
}

// @Summary Remove item from cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Param productId path string true "Product ID"
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart/items/{productId} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	view, err := ctrl.Carts.RemoveItem(c.Request.Context(), currentIdentity(c).UserID, c.Param("productId"))
	if err != nil {
		respondError(c, "Failed to remove item", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Item removed", Data: view})
}

// @Summary Clear cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.CartView}
// @Router /cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	view, err := ctrl.Carts.Clear(c.Request.Context(), currentIdentity(c).UserID)
	if err != nil {
		respondError(c, "Failed to clear cart", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart cleared", Data: view})
}
