package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"go-restaurant-booking/models"
)

var sweepOrderItemCollection *mongo.Collection = OpenCollection(Client, "orderItem")
var sweepTableCollection *mongo.Collection = OpenCollection(Client, "table")

type MongoSweepStore struct {
	orders     *mongo.Collection
	orderItems *mongo.Collection
	payments   *mongo.Collection
	tables     *mongo.Collection
}

func NewMongoSweepStore() *MongoSweepStore {
	return &MongoSweepStore{
		orders:     bookingOrderCollection,
		orderItems: sweepOrderItemCollection,
		payments:   bookingPaymentCollection,
		tables:     sweepTableCollection,
	}
}

func (s *MongoSweepStore) ExpiredOrders(ctx context.Context, now time.Time, limit int64) ([]models.Order, error) {
	cursor, err := s.orders.Find(ctx, bson.M{
		"status":      bson.M{"$in": []string{models.OrderStatusPending, models.OrderStatusReserved}},
		"expiry_time": bson.M{"$ne": nil, "$lte": now},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	for cursor.Next(ctx) && int64(len(orders)) < limit {
		var order models.Order
		if err := cursor.Decode(&order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, cursor.Err()
}

func (s *MongoSweepStore) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *MongoSweepStore) OrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	cursor, err := s.orderItems.Find(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return nil, err
	}
	var items []models.OrderItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkStockRolledBack flips the flag with the current value in the filter,
// so only one caller ever sees ModifiedCount == 1.
func (s *MongoSweepStore) MarkStockRolledBack(ctx context.Context, orderID string) (bool, error) {
	result, err := s.orders.UpdateOne(ctx,
		bson.M{"order_id": orderID, "stock_rolled_back": false},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "stock_rolled_back", Value: true},
			{Key: "updated_at", Value: time.Now()},
		}}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (s *MongoSweepStore) MarkTableReleased(ctx context.Context, orderID string) (bool, error) {
	result, err := s.orders.UpdateOne(ctx,
		bson.M{"order_id": orderID, "table_released": false},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "table_released", Value: true},
			{Key: "updated_at", Value: time.Now()},
		}}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (s *MongoSweepStore) SetOrderStatus(ctx context.Context, orderID string, status string) error {
	_, err := s.orders.UpdateOne(ctx,
		bson.M{"order_id": orderID},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: status},
			{Key: "updated_at", Value: time.Now()},
		}}},
	)
	return err
}

func (s *MongoSweepStore) ReleaseTable(ctx context.Context, tableID string) error {
	_, err := s.tables.UpdateOne(ctx,
		bson.M{"table_id": tableID},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: "available"},
			{Key: "availiable", Value: true},
			{Key: "updated_at", Value: time.Now()},
		}}},
	)
	return err
}

func (s *MongoSweepStore) ExpirePayments(ctx context.Context, orderID string) error {
	_, err := s.payments.UpdateMany(ctx,
		bson.M{"order_id": orderID, "status": models.PaymentStatusPending},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: models.PaymentStatusExpire},
			{Key: "updated_at", Value: time.Now()},
		}}},
	)
	return err
}

// OrphanedPayments joins payments against orders and keeps the ones whose
// parent is missing. Handled only by the sweeper, never a live request.
func (s *MongoSweepStore) OrphanedPayments(ctx context.Context, now time.Time) ([]models.Payment, error) {
	lookupStage := bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: "order"},
		{Key: "localField", Value: "order_id"},
		{Key: "foreignField", Value: "order_id"},
		{Key: "as", Value: "parent"},
	}}}
	matchStage := bson.D{{Key: "$match", Value: bson.D{
		{Key: "status", Value: models.PaymentStatusPending},
		{Key: "parent", Value: bson.D{{Key: "$size", Value: 0}}},
	}}}

	cursor, err := s.payments.Aggregate(ctx, mongo.Pipeline{lookupStage, matchStage})
	if err != nil {
		return nil, err
	}
	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *MongoSweepStore) MarkPaymentOrphaned(ctx context.Context, paymentID string) error {
	_, err := s.payments.UpdateOne(ctx,
		bson.M{"payment_id": paymentID},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: models.PaymentStatusOrphaned},
			{Key: "updated_at", Value: time.Now()},
		}}},
	)
	return err
}
