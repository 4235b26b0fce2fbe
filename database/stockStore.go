package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-restaurant-booking/models"
)

var stockCollection *mongo.Collection = OpenCollection(Client, "stock")
var foodStockCollection *mongo.Collection = OpenCollection(Client, "food")

// MongoStockStore maps the CAS contract onto filtered updates: the version
// is part of the filter, so a lost race matches zero documents instead of
// clobbering someone else's write.
type MongoStockStore struct {
	stock *mongo.Collection
	food  *mongo.Collection
}

func NewMongoStockStore() *MongoStockStore {
	return &MongoStockStore{stock: stockCollection, food: foodStockCollection}
}

func (s *MongoStockStore) GetFood(ctx context.Context, foodID string) (*models.Food, error) {
	var food models.Food
	err := s.food.FindOne(ctx, bson.M{"food_id": foodID}).Decode(&food)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &food, nil
}

func (s *MongoStockStore) GetLedger(ctx context.Context, foodID string) (*models.StockLedger, error) {
	var ledger models.StockLedger
	err := s.stock.FindOne(ctx, bson.M{"food_id": foodID}).Decode(&ledger)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (s *MongoStockStore) DeductLedger(ctx context.Context, foodID string, qty int, version int64, manual bool) (bool, error) {
	field := "calculated_quantity"
	if manual {
		field = "manual_quantity"
	}
	result, err := s.stock.UpdateOne(ctx,
		bson.M{"food_id": foodID, "version": version},
		bson.D{
			{Key: "$inc", Value: bson.D{{Key: field, Value: -qty}, {Key: "version", Value: 1}}},
			{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now()}}},
		},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (s *MongoStockStore) RestoreLedger(ctx context.Context, foodID string, qty int, manual bool) error {
	field := "calculated_quantity"
	if manual {
		field = "manual_quantity"
	}
	_, err := s.stock.UpdateOne(ctx,
		bson.M{"food_id": foodID},
		bson.D{
			{Key: "$inc", Value: bson.D{{Key: field, Value: qty}, {Key: "version", Value: 1}}},
			{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now()}}},
		},
	)
	return err
}

func (s *MongoStockStore) DeductFood(ctx context.Context, foodID string, qty int, version int64) (*models.Food, error) {
	after := options.After
	var food models.Food
	err := s.food.FindOneAndUpdate(ctx,
		bson.M{"food_id": foodID, "version": version},
		bson.D{
			{Key: "$inc", Value: bson.D{{Key: "quantity", Value: -qty}, {Key: "version", Value: 1}}},
			{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now()}}},
		},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&food)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &food, nil
}

func (s *MongoStockStore) RestoreFood(ctx context.Context, foodID string, qty int) error {
	_, err := s.food.UpdateOne(ctx,
		bson.M{"food_id": foodID},
		bson.D{
			{Key: "$inc", Value: bson.D{{Key: "quantity", Value: qty}, {Key: "version", Value: 1}}},
			{Key: "$set", Value: bson.D{{Key: "is_active", Value: true}, {Key: "updated_at", Value: time.Now()}}},
		},
	)
	return err
}

func (s *MongoStockStore) SetFoodActive(ctx context.Context, foodID string, active bool) error {
	_, err := s.food.UpdateOne(ctx,
		bson.M{"food_id": foodID},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "is_active", Value: active},
			{Key: "updated_at", Value: time.Now()},
		}}},
	)
	return err
}
