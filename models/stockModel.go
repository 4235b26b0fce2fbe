package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StockLedger is the per-item inventory row. Manual_quantity, when set, takes
// priority over Calculated_quantity. Every write must present the version it
// read and bumps it by one.
type StockLedger struct {
	ID                  primitive.ObjectID `bson:"_id"`
	Food_id             string             `bson:"food_id" json:"food_id"`
	Manual_quantity     *int               `bson:"manual_quantity" json:"manual_quantity"`
	Calculated_quantity int                `bson:"calculated_quantity" json:"calculated_quantity"`
	Version             int64              `bson:"version" json:"version"`
	Updated_at          time.Time          `bson:"updated_at" json:"updated_at"`
}

// Available is the effective quantity: manual override wins when present.
func (s StockLedger) Available() int {
	if s.Manual_quantity != nil {
		return *s.Manual_quantity
	}
	return s.Calculated_quantity
}

// StockSnapshot is the transient record taken during validation, held only for
// the duration of one booking attempt. It pins the versions that the deduction
// phase will CAS against.
type StockSnapshot struct {
	Food_id        string
	Quantity       int
	Food_version   int64
	Ledger_version int64
	Manual_active  bool
}

// DeductionResult records one applied deduction so that rollback can restore
// exactly what was taken.
type DeductionResult struct {
	Food_id       string
	Quantity      int
	Manual_active bool
	Deactivated   bool
}
