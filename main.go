package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"go-restaurant-booking/controllers"
	middleware "go-restaurant-booking/middleware"
	routes "go-restaurant-booking/routes"
)

func main() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("no .env file found, using environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	router := gin.New()
	router.Use(gin.Logger())

	// Enable CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:9000"},
		AllowMethods:     []string{"POST", "GET", "PATCH", "DELETE", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Page not found"})
	})

	// API routes
	routes.UserRoutes(router)
	router.Use(middleware.Authentication())
	routes.FoodRoutes(router)
	routes.MenuRoutes(router)
	routes.TableRoutes(router)
	routes.OrderRoutes(router)
	routes.OrderItemRoutes(router)
	routes.ReservationRoutes(router)
	routes.StockRoutes(router)
	routes.PaymentRoutes(router)

	// Default timer substrate for the reconciliation sweeper. Deployments
	// with an external scheduler can disable it and hit POST /sweep instead.
	if os.Getenv("DISABLE_SWEEP_LOOP") == "" {
		go controllers.SweepLoop(context.Background(), 5*time.Minute)
	}

	// Run the server
	router.Run(":" + port)
}
