package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"go-restaurant-booking/database"
	"go-restaurant-booking/models"
	"go-restaurant-booking/services"
)

// OrderItemPack is the POS payload: one order and its line items in a single
// request.
type OrderItemPack struct {
	Table_id     *string
	Table_number *int
	Created_by   string
	User_id      *string
	Order_type   string
	Is_open_bill bool
	Order_items  []models.OrderItem
}

var orderItemCollection *mongo.Collection = database.OpenCollection(database.Client, "orderItem")

func GetOrderItems() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		result, err := orderItemCollection.Find(context.TODO(), bson.M{})
		defer cancel()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occurred while fetching order items"})
			return
		}
		var allOrderItems []bson.M
		if err := result.All(ctx, &allOrderItems); err != nil {
			log.Fatal(err)
		}
		c.JSON(http.StatusOK, allOrderItems)
	}
}

func GetOrderItemsByOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		orderId := c.Param("order_id")
		allOrderItems, err := ItemsByOrder(orderId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "error occured while listing order items by order id"})
			return
		}
		c.JSON(http.StatusOK, allOrderItems)
	}
}

func ItemsByOrder(id string) (OrderItem []primitive.M, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
	matchStage := bson.D{{Key: "$match", Value: bson.D{{Key: "order_id", Value: id}}}}
	lookupStage := bson.D{{Key: "$lookup", Value: bson.D{{Key: "from", Value: "food"}, {Key: "localField", Value: "food_id"}, {Key: "foreignField", Value: "food_id"}, {Key: "as", Value: "food"}}}}
	unwindStage := bson.D{{Key: "$unwind", Value: bson.D{{Key: "path", Value: "$food"}, {Key: "preserveNullAndEmptyArrays", Value: true}}}}

	projectStage := bson.D{{Key: "$project", Value: bson.D{
		{Key: "amount", Value: bson.D{{Key: "$multiply", Value: bson.A{"$food.price", "$quantity"}}}},
		{Key: "food_name", Value: "$food.name"},
		{Key: "food_image", Value: "$food.food_image"},
		{Key: "order_id", Value: "$order_id"},
		{Key: "price", Value: "$food.price"},
		{Key: "quantity", Value: 1},
	}}}

	groupStage := bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: bson.D{
			{Key: "order_id", Value: "$order_id"},
		}},
		{Key: "payment_due", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		{Key: "total_count", Value: bson.D{{Key: "$sum", Value: 1}}},
		{Key: "order_items", Value: bson.D{{Key: "$push", Value: "$$ROOT"}}},
	}}}

	var orderItems []primitive.M
	result, err := orderItemCollection.Aggregate(
		ctx, mongo.Pipeline{
			matchStage,
			lookupStage,
			unwindStage,
			projectStage,
			groupStage,
		})
	defer cancel()
	if err != nil {
		return nil, err
	}
	if err := result.All(ctx, &orderItems); err != nil {
		return nil, err
	}
	return orderItems, nil
}

// CreateOrderItem creates a dine-in or open-bill order with its items. Stock
// goes through the optimistic pipeline: validate, snapshot, deduct with
// version checks. A failure after deduction rolls the stock back before the
// response, so the ledger never carries quantities for an order that was
// never written.
func CreateOrderItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Second)
		defer cancel()

		var orderItemPack OrderItemPack
		if err := c.BindJSON(&orderItemPack); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(orderItemPack.Order_items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "order has no items"})
			return
		}

		lines := make([]services.OrderLine, 0, len(orderItemPack.Order_items))
		for _, item := range orderItemPack.Order_items {
			if validationErr := validate.Struct(item); validationErr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
				return
			}
			lines = append(lines, services.OrderLine{Food_id: *item.Food_id, Quantity: *item.Quantity})
		}

		orderCode, err := bookingService.NextOrderCode(ctx)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order code was not issued"})
			return
		}

		snapshots, err := stockService.ValidateAndReserve(ctx, lines)
		if err != nil {
			status, msg := bookingErrorStatus(err)
			c.JSON(status, gin.H{"error": msg})
			return
		}
		deductions, err := stockService.Deduct(ctx, snapshots)
		if err != nil {
			stockService.Rollback(ctx, deductions)
			status, msg := bookingErrorStatus(err)
			c.JSON(status, gin.H{"error": msg})
			return
		}

		order := buildDineInOrder(orderItemPack, orderCode)
		orderItemsToBeInserted := []interface{}{}
		for _, orderItem := range orderItemPack.Order_items {
			orderItem.Order_id = order.Order_id
			orderItem.ID = primitive.NewObjectID()
			orderItem.Order_item_id = orderItem.ID.Hex()
			orderItem.Created_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
			orderItem.Updated_at, _ = time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
			var num = toFixed(*orderItem.Unit_price, 2)
			orderItem.Unit_price = &num
			order.Total_amount += num * float64(*orderItem.Quantity)
			order.Total_quantity += *orderItem.Quantity
			orderItemsToBeInserted = append(orderItemsToBeInserted, orderItem)
		}

		if _, err := orderCollection.InsertOne(ctx, order); err != nil {
			stockService.Rollback(ctx, deductions)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order was not created"})
			return
		}
		insertItems, err := orderItemCollection.InsertMany(ctx, orderItemsToBeInserted)
		if err != nil {
			stockService.Rollback(ctx, deductions)
			_ = UpdateOrderStatus(ctx, order.Order_id, models.OrderStatusCanceled)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order items were not created"})
			return
		}

		if order.Table_id != nil {
			_, err = tableCollection.UpdateOne(ctx,
				bson.M{"table_id": order.Table_id},
				bson.D{{Key: "$set", Value: bson.D{
					{Key: "availiable", Value: false},
					{Key: "status", Value: "occupied"},
					{Key: "updated_at", Value: time.Now()},
				}}},
			)
			if err != nil {
				log.Printf("table status update failed for order %s: %v", order.Order_id, err)
			}
		}

		hub.Publish("newOrder", order)
		c.JSON(http.StatusOK, gin.H{
			"order_id":    order.Order_id,
			"InsertedIDs": insertItems.InsertedIDs,
		})
	}
}

func buildDineInOrder(pack OrderItemPack, code string) models.Order {
	now, _ := time.Parse(time.RFC3339, time.Now().Format(time.RFC3339))
	expiry := now.Add(2 * time.Hour)

	orderType := pack.Order_type
	if orderType == "" {
		orderType = models.OrderTypeDineIn
	}
	order := models.Order{
		ID:           primitive.NewObjectID(),
		Order_Date:   now,
		Created_at:   now,
		Updated_at:   now,
		Order_code:   code,
		Order_type:   orderType,
		User_id:      pack.User_id,
		Created_by:   &pack.Created_by,
		Table_id:     pack.Table_id,
		Table_number: pack.Table_number,
		Status:       models.OrderStatusPending,
		Expiry_time:  &expiry,
		Is_open_bill: pack.Is_open_bill || orderType == models.OrderTypeOpenBill,
	}
	order.Order_id = order.ID.Hex()
	return order
}
