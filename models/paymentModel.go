package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentStatusPending    = "pending"
	PaymentStatusSettlement = "settlement"
	PaymentStatusExpire     = "expire"
	PaymentStatusOrphaned   = "orphaned"
)

type Payment struct {
	ID          primitive.ObjectID `bson:"_id"`
	Payment_id  string             `bson:"payment_id" json:"payment_id"`
	Order_id    string             `bson:"order_id" json:"order_id"`
	Amount      float64            `bson:"amount" json:"amount"`
	Status      string             `bson:"status" json:"status"`
	Expiry_time *time.Time         `bson:"expiry_time" json:"expiry_time"`
	Created_at  time.Time          `bson:"created_at" json:"created_at"`
	Updated_at  time.Time          `bson:"updated_at" json:"updated_at"`
}

// Counter backs the per-day reservation code sequence. One document per day,
// bumped with an atomic $inc upsert.
type Counter struct {
	ID       primitive.ObjectID `bson:"_id"`
	Name     string             `bson:"name"`
	Sequence int64              `bson:"sequence"`
}
