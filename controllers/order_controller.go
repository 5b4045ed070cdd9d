package controllers

import (
	"net/http"

	"shopwave/models"
	"shopwave/services"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// @Summary Place order
// @Description Checks out the current cart. Totals are computed on the server; a client total that differs is rejected with 409.
// @Tags Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.PlaceOrderRequest true "Checkout details"
// @Success 201 {object} models.Response{data=models.Order}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /orders [post]
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	order, err := ctrl.Orders.PlaceOrder(c.Request.Context(), currentIdentity(c), req)
	if err != nil {
		respondError(c, "Failed to place order", err)
		return
	}
	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Order placed successfully", Data: order})
}

// @Summary My orders
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Success 200 {object} models.PaginationResponse
// @Router /orders [get]
func (ctrl *OrderController) GetMyOrders(c *gin.Context) {
	page, limit, offset := getPaginationParams(c, 10)

	orders, total, err := ctrl.Orders.ListForUser(c.Request.Context(), currentIdentity(c).UserID, c.Query("status"), limit, offset)
	if err != nil {
		respondError(c, "Failed to load orders", err)
		return
	}
	c.JSON(http.StatusOK, models.PaginationResponse{
		Success: true,
		Message: "Orders retrieved",
		Data:    orders,
		Meta:    paginationMeta(page, limit, total),
	})
}

// @Summary Get all orders
// @Description Get all orders with pagination (Admin)
// @Tags Admin - Orders
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param status query string false "Filter by status"
// @Param search query string false "Search by order number or email"
// @Success 200 {object} models.HATEOASResponse
// @Router /admin/orders [get]
func (ctrl *OrderController) GetAllOrders(c *gin.Context) {
	page, limit, offset := getPaginationParams(c, 10)

	orders, total, err := ctrl.Orders.List(c.Request.Context(), models.OrderFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(c, "Failed to load orders", err)
		return
	}
	c.JSON(http.StatusOK, buildHATEOASResponse(c, "Orders retrieved successfully", orders, page, limit, total))
}

// @Summary Get order by ID
// @Description Get order details (Admin)
// @Tags Admin - Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Response{data=models.Order}
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/orders/{id} [get]
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	order, err := ctrl.Orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, "Order not found", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Order retrieved", Data: order})
}

// @Summary Update order status
// @Tags Admin - Orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param request body models.UpdateOrderStatusRequest true "New status"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/orders/{id}/status [patch]
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := ctrl.Orders.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		respondError(c, "Failed to update order status", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Order status updated", Data: gin.H{"id": id, "status": req.Status}})
}
