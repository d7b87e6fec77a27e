package routes

import (
	"net/http"

	"github.com/aarav-mehta-dev/wellness-backend-go/handlers"
	customMiddleware "github.com/aarav-mehta-dev/wellness-backend-go/middleware"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	// Public routes
	api.POST("/auth/signup", handlers.SignUp)
	api.POST("/auth/login", handlers.Login)
	api.GET("/products", handlers.GetProducts)
	api.GET("/products/:id", handlers.GetProduct)

	// Authenticated routes
	auth := api.Group("", customMiddleware.AuthMiddleware())

	auth.GET("/auth/check", handlers.Check)
	auth.POST("/auth/reset-password", handlers.ResetPassword)

	// User profile and address book
	auth.GET("/users/me", handlers.GetUserProfile)
	auth.PUT("/users/me", handlers.UpdateUserProfile)
	auth.GET("/users/me/addresses", handlers.GetUserAddresses)
	auth.POST("/users/me/addresses", handlers.AddUserAddress)
	auth.PUT("/users/me/addresses/:id", handlers.UpdateUserAddress)
	auth.DELETE("/users/me/addresses/:id", handlers.DeleteUserAddress)

	// Orders
	auth.POST("/orders", handlers.CreateOrder)
	auth.GET("/orders", handlers.ListOrders)
	auth.GET("/orders/user/my-orders", handlers.GetUserOrders)
	auth.GET("/orders/user/my-orders/count", handlers.GetUserOrdersCount)
	auth.GET("/orders/avg-order-value", handlers.GetAvgOrderValue)
	auth.GET("/orders/admin/count", handlers.CountOrders, customMiddleware.AdminOnly)
	auth.GET("/orders/admin/users-with-orders", handlers.GetUsersWithOrders, customMiddleware.AdminOnly)
	auth.GET("/orders/:id", handlers.GetOrderByID)
	auth.PUT("/orders/:id", handlers.UpdateOrder, customMiddleware.AdminOnly)
	auth.DELETE("/orders/:id", handlers.DeleteOrder, customMiddleware.AdminOnly)

	// Total spent across all paid orders
	auth.GET("/total-amount", handlers.GetTotalSpent)

	// Wishlist
	auth.POST("/wishlist/add", handlers.AddToWishlist)
	auth.DELETE("/wishlist/remove/:productId", handlers.RemoveFromWishlist)
	auth.GET("/wishlist/my-wishlist", handlers.GetMyWishlist)

	// Admin catalog and user directory
	auth.POST("/products", handlers.CreateProduct, customMiddleware.AdminOnly)
	auth.PUT("/products/:id", handlers.UpdateProduct, customMiddleware.AdminOnly)
	auth.GET("/users", handlers.GetUsers, customMiddleware.AdminOnly)
	auth.GET("/users/count", handlers.GetTotalUsersCount, customMiddleware.AdminOnly)
	auth.GET("/users/:id", handlers.GetUserByID, customMiddleware.AdminOnly)
	auth.PUT("/users/:id", handlers.UpdateUser, customMiddleware.AdminOnly)
	auth.DELETE("/users/:id", handlers.DeleteUser, customMiddleware.AdminOnly)
}
