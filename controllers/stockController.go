package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"go-restaurant-booking/database"
	"go-restaurant-booking/models"
)

var stockCollection *mongo.Collection = database.OpenCollection(database.Client, "stock")

func GetStockLevels() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		result, err := stockCollection.Find(context.TODO(), bson.M{})
		defer cancel()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while listing stock levels"})
			return
		}
		var allStock []bson.M
		if err := result.All(ctx, &allStock); err != nil {
			log.Fatal(err)
		}
		c.JSON(http.StatusOK, allStock)
	}
}

func GetStockLevel() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		foodId := c.Param("food_id")
		var ledger models.StockLedger

		err := stockCollection.FindOne(ctx, bson.M{"food_id": foodId}).Decode(&ledger)
		defer cancel()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while fetching the stock level"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"food_id":   ledger.Food_id,
			"available": ledger.Available(),
			"ledger":    ledger,
		})
	}
}

type manualOverrideRequest struct {
	Quantity *int `json:"quantity"`
}

// SetManualOverride sets or clears the manual quantity. The write bumps the
// version so any deduction snapshotted before it loses its race.
func SetManualOverride() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		foodId := c.Param("food_id")
		var req manualOverrideRequest
		if err := c.BindJSON(&req); err != nil {
			defer cancel()
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Quantity != nil && *req.Quantity < 0 {
			defer cancel()
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must not be negative"})
			return
		}

		result, err := stockCollection.UpdateOne(ctx,
			bson.M{"food_id": foodId},
			bson.D{
				{Key: "$set", Value: bson.D{
					{Key: "manual_quantity", Value: req.Quantity},
					{Key: "updated_at", Value: time.Now()},
				}},
				{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
			},
		)
		defer cancel()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "stock override update failed"})
			return
		}
		if result.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "stock ledger entry not found"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
