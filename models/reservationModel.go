package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ReservationStatusPending   = "pending"
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCompleted = "completed"
	ReservationStatusCancelled = "cancelled"
)

type Reservation struct {
	ID               primitive.ObjectID `bson:"_id"`
	Reservation_id   string             `bson:"reservation_id" json:"reservation_id"`
	Reservation_code string             `bson:"reservation_code" json:"reservation_code"`
	Area             string             `bson:"area" json:"area" validate:"required"`
	Date             string             `bson:"date" json:"date" validate:"required"`
	Time             string             `bson:"time" json:"time" validate:"required"`
	Table_ids        []string           `bson:"table_ids" json:"table_ids" validate:"required,min=1"`
	Number_of_guests int                `bson:"number_of_guests" json:"number_of_guests" validate:"required,min=1"`
	Status           string             `bson:"status" json:"status"`
	Order_id         *string            `bson:"order_id" json:"order_id"`
	User_id          *string            `bson:"user_id" json:"user_id"`
	Created_by       *string            `bson:"created_by" json:"created_by"`
	Created_at       time.Time          `bson:"created_at" json:"created_at"`
	Updated_at       time.Time          `bson:"updated_at" json:"updated_at"`
}
