package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"shopwave/models"
	"shopwave/services"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	Products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{Products: products}
}

func productFilter(c *gin.Context, defaultLimit int) models.ProductFilter {
	page, limit, _ := getPaginationParams(c, defaultLimit)
	return models.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Page:     page,
		Limit:    limit,
	}
}

// optionalImage returns the uploaded "image" file of a multipart request,
// or nil when there is none.
func optionalImage(c *gin.Context) (*multipart.FileHeader, error) {
	file, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	return file, err
}

// @Summary Get all products
// @Description Paginated catalog, filtered by category and a free text search
// @Tags Products
// @Produce json
// @Param category query string false "Category"
// @Param search query string false "Search text"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} models.PaginationResponse
// @Router /products [get]
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	page, err := ctrl.Products.List(c.Request.Context(), productFilter(c, 20))
	if err != nil {
		respondError(c, "Failed to load products", err)
		return
	}
	c.JSON(http.StatusOK, models.PaginationResponse{
		Success: true,
		Message: "Products retrieved",
		Data:    page.Products,
		Meta:    paginationMeta(page.Page, page.Limit, int(page.Total)),
	})
}

// @Summary Get product by ID
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.Response{data=models.Product}
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	product, err := ctrl.Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Product not found", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product retrieved", Data: product})
}

// @Summary List products (Admin)
// @Tags Admin - Products
// @Security BearerAuth
// @Produce json
// @Param category query string false "Category"
// @Param search query string false "Search text"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} models.HATEOASResponse
// @Router /admin/products [get]
func (ctrl *ProductController) AdminListProducts(c *gin.Context) {
	filter := productFilter(c, 10)
	page, err := ctrl.Products.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "Failed to load products", err)
		return
	}
	c.JSON(http.StatusOK, buildHATEOASResponse(c, "Products retrieved successfully", page.Products, page.Page, page.Limit, int(page.Total)))
}

// @Summary Create product (Admin)
// @Description Accepts JSON or multipart form data with an optional image file
// @Tags Admin - Products
// @Security BearerAuth
// @Accept json,mpfd
// @Produce json
// @Param request body models.CreateProductRequest true "Product"
// @Param image formData file false "Product image"
// @Success 201 {object} models.Response{data=models.Product}
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/products [post]
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}
	image, err := optionalImage(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	product, err := ctrl.Products.Create(c.Request.Context(), req, image)
	if err != nil {
		respondError(c, "Failed to create product", err)
		return
	}
	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Product created successfully", Data: product})
}

// @Summary Update product (Admin)
// @Tags Admin - Products
// @Security BearerAuth
// @Accept json,mpfd
// @Produce json
// @Param id path string true "Product ID"
// @Param request body models.UpdateProductRequest true "Fields to change"
// @Param image formData file false "Replacement image"
// @Success 200 {object} models.Response{data=models.Product}
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/products/{id} [patch]
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}
	image, err := optionalImage(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	product, err := ctrl.Products.Update(c.Request.Context(), c.Param("id"), req, image)
	if err != nil {
		respondError(c, "Failed to update product", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product updated successfully", Data: product})
}

// @Summary Delete product (Admin)
// @Tags Admin - Products
// @Security BearerAuth
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/products/{id} [delete]
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := ctrl.Products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, "Failed to delete product", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product deleted successfully", Data: gin.H{"id": id}})
}
