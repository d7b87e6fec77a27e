package main

import (
	"log"

	"github.com/aarav-mehta-dev/wellness-backend-go/config"
	"github.com/aarav-mehta-dev/wellness-backend-go/database"
	customMiddleware "github.com/aarav-mehta-dev/wellness-backend-go/middleware"
	"github.com/aarav-mehta-dev/wellness-backend-go/routes"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load environment variables
	config.LoadEnv()

	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(customMiddleware.Metrics())

	// Connect to MongoDB
	if err := database.ConnectDB(); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Setup routes
	routes.SetupRoutes(e)

	// Start the server
	port := config.GetEnv("PORT", "3000")
	e.Logger.Fatal(e.Start(":" + port))
}
