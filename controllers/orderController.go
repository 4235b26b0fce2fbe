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
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-restaurant-booking/database"
	"go-restaurant-booking/models"
)

var orderCollection *mongo.Collection = database.OpenCollection(database.Client, "order")

func GetOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)

		result, err := orderCollection.Find(context.TODO(), bson.M{})
		defer cancel()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while listing orders"})
			return
		}
		var allOrders []bson.M
		if err := result.All(ctx, &allOrders); err != nil {
			log.Fatal(err)
		}
		c.JSON(http.StatusOK, allOrders)
	}
}

func GetOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		orderId := c.Param("order_id")
		var order models.Order

		err := orderCollection.FindOne(ctx, bson.M{"order_id": orderId}).Decode(&order)
		defer cancel()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while fetching the order"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func UpdateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)

		var order models.Order
		orderId := c.Param("order_id")
		if err := c.BindJSON(&order); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		var updateObj bson.D

		if order.Status != "" {
			updateObj = append(updateObj, bson.E{Key: "status", Value: order.Status})
		}
		if order.Table_id != nil {
			var table models.Table
			err := tableCollection.FindOne(ctx, bson.M{"table_id": order.Table_id}).Decode(&table)
			if err != nil {
				defer cancel()
				msg := fmt.Sprintf("message: table was not found")
				c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
				return
			}
			updateObj = append(updateObj, bson.E{Key: "table_id", Value: order.Table_id})
		}
		updated_at, _ := time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
		updateObj = append(updateObj, bson.E{Key: "updated_at", Value: updated_at})

		filter := bson.M{"order_id": orderId}
		result, err := orderCollection.UpdateOne(
			ctx,
			filter,
			bson.D{
				{Key: "$set", Value: updateObj},
			},
			options.Update().SetUpsert(false),
		)
		defer cancel()
		if err != nil {
			msg := fmt.Sprintf("order update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
			return
		}
		hub.Publish("orderUpdated", order)
		c.JSON(http.StatusOK, result)
	}
}

// UpdateOrderStatus updates the status of an order based on the order ID.
func UpdateOrderStatus(ctx context.Context, orderID string, status string) error {
	filter := bson.M{"order_id": orderID}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "status", Value: status},
			{Key: "updated_at", Value: time.Now()},
		}},
	}

	_, err := orderCollection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(false))
	if err != nil {
		fmt.Printf("failed to update order status: %v\n", err)
		return err
	}
	return nil
}

type OrderWithItems struct {
	Order      models.Order       `bson:",inline"`
	OrderItems []models.OrderItem `json:"order_items"`
}

func GetAllOrdersWithItems() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var allOrders []models.Order
		var ordersWithItems []OrderWithItems

		cursor, err := orderCollection.Find(context.TODO(), bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		defer cursor.Close(ctx)

		if err := cursor.All(ctx, &allOrders); err != nil {
			log.Fatal(err)
		}

		for _, order := range allOrders {
			var orderItems []models.OrderItem
			orderItemCursor, err := orderItemCollection.Find(ctx, bson.M{"order_id": order.Order_id})
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if err := orderItemCursor.All(ctx, &orderItems); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ordersWithItems = append(ordersWithItems, OrderWithItems{
				Order:      order,
				OrderItems: orderItems,
			})
		}
		c.JSON(http.StatusOK, ordersWithItems)
	}
}
