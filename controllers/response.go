package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"shopwave/libs"
	"shopwave/models"
	"shopwave/repositories"
	"shopwave/services"

	"github.com/gin-gonic/gin"
)

func getPaginationParams(c *gin.Context, defaultLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}

	offset = (page - 1) * limit
	return page, limit, offset
}

func paginationMeta(page, limit, totalItems int) models.PaginationMeta {
	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + limit - 1) / limit
	}
	return models.PaginationMeta{
		Page:       page,
		Limit:      limit,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

func generateLinks(c *gin.Context, page, limit, totalPages int) models.PaginationLinks {
	scheme := "https"
	if c.Request.TLS == nil && c.GetHeader("X-Forwarded-Proto") != "https" {
		scheme = "http"
	}

	query := c.Request.URL.Query()
	makeURL := func(pageNum int) string {
		params := url.Values{}
		for key, values := range query {
			if key == "page" || key == "limit" {
				continue
			}
			for _, value := range values {
				params.Add(key, value)
			}
		}
		params.Set("page", strconv.Itoa(pageNum))
		params.Set("limit", strconv.Itoa(limit))
		return fmt.Sprintf("%s://%s%s?%s", scheme, c.Request.Host, c.Request.URL.Path, params.Encode())
	}

	links := models.PaginationLinks{Self: makeURL(page)}
	if page > 1 {
		links.Prev = makeURL(page - 1)
	}
	if page < totalPages {
		links.Next = makeURL(page + 1)
	}
	return links
}

func buildHATEOASResponse(c *gin.Context, message string, data interface{}, page, limit, totalItems int) models.HATEOASResponse {
	meta := paginationMeta(page, limit, totalItems)
	if meta.Page > meta.TotalPages && meta.TotalPages > 0 {
		meta.Page = meta.TotalPages
	}
	return models.HATEOASResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
		Links:   generateLinks(c, meta.Page, limit, meta.TotalPages),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidArgument),
		errors.Is(err, services.ErrInvalidProduct),
		errors.Is(err, services.ErrDuplicateSlug),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrUnknownDataType),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, repositories.ErrInvalidData),
		errors.Is(err, libs.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrCustomerNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrTotalMismatch):
		return http.StatusConflict
	case errors.Is(err, services.ErrUploadDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope. Internal errors are recorded on
// the context for the request logger and hidden from the client.
func respondError(c *gin.Context, message string, err error) {
	status := statusFor(err)
	body := models.ErrorResponse{Success: false, Message: message}
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	} else {
		body.Error = err.Error()
	}
	c.JSON(status, body)
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Message: "Invalid request body",
		Error:   err.Error(),
	})
}

func currentIdentity(c *gin.Context) models.Identity {
	return models.Identity{
		UserID: c.GetString("user_id"),
		Email:  c.GetString("user_email"),
		Name:   c.GetString("user_name"),
		Role:   c.GetString("user_role"),
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid ID"})
		return 0, false
	}
	return id, true
}
