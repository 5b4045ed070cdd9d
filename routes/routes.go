package routes

import (
	"net/http"

	"shopwave/controllers"
	"shopwave/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Controllers struct {
	Auth      *middleware.Authenticator
	Health    http.Handler
	Cart      *controllers.CartController
	Products  *controllers.ProductController
	Orders    *controllers.OrderController
	Customers *controllers.CustomerController
	UserData  *controllers.UserDataController
	Dashboard *controllers.DashboardController
}

func SetupRoutes(router *gin.Engine, ctrl Controllers) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", gin.WrapH(ctrl.Health))

	router.GET("/products", ctrl.Products.GetAllProducts)
	router.GET("/products/:id", ctrl.Products.GetProductByID)

	auth := router.Group("/")
	auth.Use(ctrl.Auth.AuthMiddleware())
	{
		auth.GET("/cart", ctrl.Cart.GetCart)
		auth.DELETE("/cart", ctrl.Cart.ClearCart)
		auth.POST("/cart/items", ctrl.Cart.AddItem)
		auth.PATCH("/cart/items/:productId", ctrl.Cart.UpdateItem)
		auth.DELETE("/cart/items/:productId", ctrl.Cart.RemoveItem)

		auth.POST("/orders", ctrl.Orders.CreateOrder)
		auth.GET("/orders", ctrl.Orders.GetMyOrders)

		auth.GET("/user-data/:type", ctrl.UserData.GetUserData)
		auth.PUT("/user-data/:type", ctrl.UserData.PutUserData)
	}

	admin := router.Group("/admin")
	admin.Use(ctrl.Auth.AuthMiddleware(), ctrl.Auth.AdminMiddleware())
	{
		admin.GET("/stats", ctrl.Dashboard.GetStats)

		admin.GET("/products", ctrl.Products.AdminListProducts)
		admin.POST("/products", ctrl.Products.CreateProduct)
		admin.PATCH("/products/:id", ctrl.Products.UpdateProduct)
		admin.DELETE("/products/:id", ctrl.Products.DeleteProduct)

		admin.GET("/orders", ctrl.Orders.GetAllOrders)
		admin.GET("/orders/:id", ctrl.Orders.GetOrderByID)
		admin.PATCH("/orders/:id/status", ctrl.Orders.UpdateOrderStatus)

		admin.GET("/customers", ctrl.Customers.GetAllCustomers)
	}
}
