package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lock is one row of the persisted lock registry. The resource_key column
// carries a unique index so that concurrent creates collide at the store.
type Lock struct {
	ID           primitive.ObjectID `bson:"_id"`
	Resource_key string             `bson:"resource_key" json:"resource_key"`
	Holder       string             `bson:"holder" json:"holder"`
	Acquired_at  time.Time          `bson:"acquired_at" json:"acquired_at"`
	Expires_at   time.Time          `bson:"expires_at" json:"expires_at"`
}

func (l Lock) Expired(now time.Time) bool {
	return !l.Expires_at.After(now)
}
