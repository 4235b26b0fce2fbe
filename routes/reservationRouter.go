package routes

import (
	controller "go-restaurant-booking/controllers"

	"github.com/gin-gonic/gin"
)

func ReservationRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.GET("/reservations", controller.GetReservations())
	incomingRoutes.GET("/reservations/:reservation_id", controller.GetReservation())
	incomingRoutes.GET("/reservationsbydate/:date", controller.GetReservationsByDate())
	incomingRoutes.POST("/reservations", controller.CreateReservation())
	incomingRoutes.DELETE("/reservations/:reservation_id", controller.CancelReservation())
}

func StockRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.GET("/stock", controller.GetStockLevels())
	incomingRoutes.GET("/stock/:food_id", controller.GetStockLevel())
	incomingRoutes.PUT("/stock/:food_id/override", controller.SetManualOverride())
	incomingRoutes.POST("/sweep", controller.RunSweep())
}

func PaymentRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.GET("/payments", controller.GetPayments())
	incomingRoutes.GET("/payments/:payment_id", controller.GetPayment())
	incomingRoutes.GET("/paymentsByDates/:startDate/:endDate", controller.GetPaymentsByDate())
	incomingRoutes.POST("/payments/webhook", controller.PaymentWebhook())
}
