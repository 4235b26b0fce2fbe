package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"go-restaurant-booking/database"
	"go-restaurant-booking/models"
)

var paymentCollection *mongo.Collection = database.OpenCollection(database.Client, "payment")

func GetPayments() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		result, err := paymentCollection.Find(context.TODO(), bson.M{})
		defer cancel()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while listing payments"})
			return
		}
		var allPayments []bson.M
		if err := result.All(ctx, &allPayments); err != nil {
			log.Fatal(err)
		}
		c.JSON(http.StatusOK, allPayments)
	}
}

func GetPayment() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		paymentId := c.Param("payment_id")
		var payment models.Payment

		err := paymentCollection.FindOne(ctx, bson.M{"payment_id": paymentId}).Decode(&payment)
		defer cancel()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while fetching the payment"})
			return
		}
		c.JSON(http.StatusOK, payment)
	}
}

func GetPaymentsByDate() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		startDateStr := c.Param("startDate")
		endDateStr := c.Param("endDate")
		startDate, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date format"})
			return
		}
		endDate, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date format"})
			return
		}

		match := bson.D{{Key: "$match", Value: bson.D{{Key: "created_at", Value: bson.D{{Key: "$gte", Value: startDate}, {Key: "$lte", Value: endDate}}}}}}
		lookup := bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "order"},
			{Key: "localField", Value: "order_id"},
			{Key: "foreignField", Value: "order_id"},
			{Key: "as", Value: "order"},
		}}}
		unwind := bson.D{{Key: "$unwind", Value: bson.D{{Key: "path", Value: "$order"}, {Key: "preserveNullAndEmptyArrays", Value: true}}}}
		project := bson.D{{Key: "$project", Value: bson.D{
			{Key: "payment_id", Value: 1},
			{Key: "order_id", Value: 1},
			{Key: "amount", Value: 1},
			{Key: "status", Value: 1},
			{Key: "expiry_time", Value: 1},
			{Key: "created_at", Value: 1},
			{Key: "table_number", Value: "$order.table_number"},
			{Key: "order_status", Value: "$order.status"},
		}}}

		cursor, err := paymentCollection.Aggregate(ctx, mongo.Pipeline{match, lookup, unwind, project})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching payments"})
			return
		}
		var payments []bson.M
		if err := cursor.All(ctx, &payments); err != nil {
			log.Fatal(err)
		}
		c.JSON(http.StatusOK, payments)
	}
}

type paymentNotification struct {
	Payment_id string `json:"payment_id" validate:"required"`
	Status     string `json:"status" validate:"required,eq=settlement|eq=expire"`
}

// PaymentWebhook ingests the gateway callback. Settlement confirms the
// reservation; expiry is left for the sweeper, which owns the compensating
// rollback.
func PaymentWebhook() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var notification paymentNotification
		if err := c.BindJSON(&notification); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if validationErr := validate.Struct(&notification); validationErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}

		var payment models.Payment
		if err := paymentCollection.FindOne(ctx, bson.M{"payment_id": notification.Payment_id}).Decode(&payment); err != nil {
			msg := fmt.Sprintf("message: payment was not found")
			c.JSON(http.StatusNotFound, gin.H{"error": msg})
			return
		}

		_, err := paymentCollection.UpdateOne(ctx,
			bson.M{"payment_id": notification.Payment_id, "status": models.PaymentStatusPending},
			bson.D{{Key: "$set", Value: bson.D{
				{Key: "status", Value: notification.Status},
				{Key: "updated_at", Value: time.Now()},
			}}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payment update failed"})
			return
		}

		if notification.Status == models.PaymentStatusSettlement {
			if err := UpdateOrderStatus(ctx, payment.Order_id, models.OrderStatusOnProcess); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "order status update failed"})
				return
			}
			_, err := reservationCollection.UpdateOne(ctx,
				bson.M{"order_id": payment.Order_id},
				bson.D{{Key: "$set", Value: bson.D{
					{Key: "status", Value: models.ReservationStatusConfirmed},
					{Key: "updated_at", Value: time.Now()},
				}}},
			)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "reservation confirm failed"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"message": "payment updated"})
	}
}
