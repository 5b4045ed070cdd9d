package controllers

import (
	"net/http"

	"shopwave/models"
	"shopwave/services"

	"github.com/gin-gonic/gin"
)

type UserDataController struct {
	UserData *services.UserDataService
}

func NewUserDataController(userData *services.UserDataService) *UserDataController {
	return &UserDataController{UserData: userData}
}

// @Summary Get user data
// @Description Wishlist or notifications blob of the caller
// @Tags User Data
// @Security BearerAuth
// @Produce json
// @Param type path string true "wishlist or notifications"
// @Success 200 {object} models.Response{data=models.UserData}
// @Failure 400 {object} models.ErrorResponse
// @Router /user-data/{type} [get]
func (ctrl *UserDataController) GetUserData(c *gin.Context) {
	data, err := ctrl.UserData.Get(c.Request.Context(), currentIdentity(c).UserID, c.Param("type"))
	if err != nil {
		respondError(c, "Failed to load user data", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "User data retrieved", Data: data})
}

// @Summary Replace user data
// @Tags User Data
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param type path string true "wishlist or notifications"
// @Param request body models.UserDataRequest true "New blob"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /user-data/{type} [put]
func (ctrl *UserDataController) PutUserData(c *gin.Context) {
	var req models.UserDataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	dataType := c.Param("type")
	if err := ctrl.UserData.Put(c.Request.Context(), currentIdentity(c).UserID, dataType, req.Data); err != nil {
		respondError(c, "Failed to save user data", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "User data saved", Data: gin.H{"type": dataType}})
}
