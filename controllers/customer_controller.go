package controllers

import (
	"net/http"

	"shopwave/services"

	"github.com/gin-gonic/gin"
)

type CustomerController struct {
	Customers *services.CustomerService
}

func NewCustomerController(customers *services.CustomerService) *CustomerController {
	return &CustomerController{Customers: customers}
}

// @Summary Get all customers
// @Description Customers with their order count, spend and coin balance (Admin)
// @Tags Admin - Customers
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param search query string false "Search by email or name"
// @Success 200 {object} models.HATEOASResponse
// @Router /admin/customers [get]
func (ctrl *CustomerController) GetAllCustomers(c *gin.Context) {
	page, limit, offset := getPaginationParams(c, 10)

	customers, total, err := ctrl.Customers.List(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, "Failed to load customers", err)
		return
	}
	c.JSON(http.StatusOK, buildHATEOASResponse(c, "Customers retrieved successfully", customers, page, limit, total))
}
