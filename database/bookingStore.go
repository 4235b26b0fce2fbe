package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-restaurant-booking/models"
)

var reservationCollection *mongo.Collection = OpenCollection(Client, "reservation")
var bookingOrderCollection *mongo.Collection = OpenCollection(Client, "order")
var bookingPaymentCollection *mongo.Collection = OpenCollection(Client, "payment")
var counterCollection *mongo.Collection = OpenCollection(Client, "counter")

type MongoBookingStore struct {
	client       *mongo.Client
	reservations *mongo.Collection
	orders       *mongo.Collection
	orderItems   *mongo.Collection
	payments     *mongo.Collection
	counters     *mongo.Collection
}

func NewMongoBookingStore() *MongoBookingStore {
	return &MongoBookingStore{
		client:       Client,
		reservations: reservationCollection,
		orders:       bookingOrderCollection,
		orderItems:   sweepOrderItemCollection,
		payments:     bookingPaymentCollection,
		counters:     counterCollection,
	}
}

func (s *MongoBookingStore) CountConflicting(ctx context.Context, area, date, timeSlot string, tableIDs []string) (int64, error) {
	return s.reservations.CountDocuments(ctx, bson.M{
		"area":      area,
		"date":      date,
		"time":      timeSlot,
		"status":    bson.M{"$in": []string{models.ReservationStatusPending, models.ReservationStatusConfirmed}},
		"table_ids": bson.M{"$in": tableIDs},
	})
}

func (s *MongoBookingStore) NextSequence(ctx context.Context, name string) (int64, error) {
	after := options.After
	upsert := true
	var counter models.Counter
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"name": name},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "sequence", Value: int64(1)}}}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after, Upsert: &upsert},
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Sequence, nil
}

// CreateBooking writes the whole aggregate inside one mongo transaction so a
// crash between inserts cannot leave a reservation without its order, or an
// order without the line items its stock compensation needs.
func (s *MongoBookingStore) CreateBooking(ctx context.Context, res *models.Reservation, order *models.Order, payment *models.Payment, items []models.OrderItem) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.reservations.InsertOne(sc, res); err != nil {
			return nil, err
		}
		if _, err := s.orders.InsertOne(sc, order); err != nil {
			return nil, err
		}
		if len(items) > 0 {
			docs := make([]interface{}, 0, len(items))
			for _, item := range items {
				docs = append(docs, item)
			}
			if _, err := s.orderItems.InsertMany(sc, docs); err != nil {
				return nil, err
			}
		}
		if payment != nil {
			if _, err := s.payments.InsertOne(sc, payment); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

func (s *MongoBookingStore) GetReservation(ctx context.Context, reservationID string) (*models.Reservation, error) {
	var res models.Reservation
	err := s.reservations.FindOne(ctx, bson.M{"reservation_id": reservationID}).Decode(&res)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *MongoBookingStore) SetReservationStatus(ctx context.Context, reservationID string, status string) error {
	_, err := s.reservations.UpdateOne(ctx,
		bson.M{"reservation_id": reservationID},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: status},
			{Key: "updated_at", Value: time.Now()},
		}}},
	)
	return err
}
