package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-restaurant-booking/models"
	"go-restaurant-booking/services"
)

var lockCollection *mongo.Collection = OpenCollection(Client, "lock")

// MongoLockStore persists the lock registry. The unique index on
// resource_key is what turns two simultaneous creates into exactly one
// winner; without it the whole scheme is broken.
type MongoLockStore struct {
	collection *mongo.Collection
}

func NewMongoLockStore() *MongoLockStore {
	s := &MongoLockStore{collection: lockCollection}
	s.ensureIndex()
	return s
}

func (s *MongoLockStore) ensureIndex() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "resource_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		log.Printf("lock index creation failed: %v", err)
	}
}

func (s *MongoLockStore) Insert(ctx context.Context, lock models.Lock) error {
	_, err := s.collection.InsertOne(ctx, lock)
	if mongo.IsDuplicateKeyError(err) {
		return services.ErrDuplicateResource
	}
	return err
}

func (s *MongoLockStore) Get(ctx context.Context, resource string) (*models.Lock, error) {
	var lock models.Lock
	err := s.collection.FindOne(ctx, bson.M{"resource_key": resource}).Decode(&lock)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lock, nil
}

func (s *MongoLockStore) DeleteExpired(ctx context.Context, resource string, now time.Time) (bool, error) {
	result, err := s.collection.DeleteOne(ctx, bson.M{
		"resource_key": resource,
		"expires_at":   bson.M{"$lte": now},
	})
	if err != nil {
		return false, err
	}
	return result.DeletedCount == 1, nil
}

func (s *MongoLockStore) DeleteByHolder(ctx context.Context, resource string, holder string) (bool, error) {
	result, err := s.collection.DeleteOne(ctx, bson.M{
		"resource_key": resource,
		"holder":       holder,
	})
	if err != nil {
		return false, err
	}
	return result.DeletedCount == 1, nil
}

func (s *MongoLockStore) DeleteAllExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
