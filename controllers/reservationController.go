package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"go-restaurant-booking/database"
	"go-restaurant-booking/models"
	"go-restaurant-booking/services"
)

var reservationCollection *mongo.Collection = database.OpenCollection(database.Client, "reservation")

// CreateReservation is the entry point of the transactional booking
// workflow. All concurrency handling happens in the services; this handler
// only validates input and maps the error taxonomy onto status codes.
func CreateReservation() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var req services.BookingRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(&req); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}

		result, err := bookingService.CreateReservationWithOrder(ctx, req)
		if err != nil {
			status, msg := bookingErrorStatus(err)
			c.JSON(status, gin.H{"error": msg})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// bookingErrorStatus maps the service error taxonomy onto the contract the
// clients rely on: contention is retryable, business rejections are not,
// anything else is a server fault.
func bookingErrorStatus(err error) (int, string) {
	var exhausted *services.ErrLockExhausted
	if errors.As(err, &exhausted) {
		return http.StatusTooManyRequests, "system busy, please retry"
	}
	var conflict *services.ErrStockConflict
	if errors.As(err, &conflict) {
		return http.StatusConflict, conflict.Error()
	}
	if errors.Is(err, services.ErrReservationConflict) {
		return http.StatusConflict, err.Error()
	}
	var insufficient *services.ErrInsufficientStock
	if errors.As(err, &insufficient) {
		return http.StatusBadRequest, insufficient.Error()
	}
	var unavailable *services.ErrItemUnavailable
	if errors.As(err, &unavailable) {
		return http.StatusBadRequest, unavailable.Error()
	}
	log.Printf("booking failed: %v", err)
	return http.StatusInternalServerError, "reservation was not created"
}

func GetReservations() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		result, err := reservationCollection.Find(context.TODO(), bson.M{})
		defer cancel()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while listing reservations"})
			return
		}
		var allReservations []bson.M
		if err := result.All(ctx, &allReservations); err != nil {
			log.Fatal(err)
		}
		c.JSON(http.StatusOK, allReservations)
	}
}

func GetReservation() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		reservationId := c.Param("reservation_id")
		var reservation models.Reservation

		err := reservationCollection.FindOne(ctx, bson.M{"reservation_id": reservationId}).Decode(&reservation)
		defer cancel()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while fetching the reservation"})
			return
		}
		c.JSON(http.StatusOK, reservation)
	}
}

func GetReservationsByDate() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		date := c.Param("date")
		result, err := reservationCollection.Find(ctx, bson.M{"date": date})
		defer cancel()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while listing reservations by date"})
			return
		}
		var reservations []bson.M
		if err := result.All(ctx, &reservations); err != nil {
			log.Fatal(err)
		}
		c.JSON(http.StatusOK, reservations)
	}
}

// CancelReservation runs the compensation path: stock back, table freed,
// order cancelled. The same idempotency flags the sweeper uses guard it, so
// a cancel racing an automatic expiry applies once.
func CancelReservation() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()
		reservationId := c.Param("reservation_id")

		if err := bookingService.CancelReservation(ctx, sweeper, reservationId); err != nil {
			status, msg := bookingErrorStatus(err)
			c.JSON(status, gin.H{"error": msg})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "reservation cancelled"})
	}
}
