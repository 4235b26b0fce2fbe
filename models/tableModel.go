package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Table struct {
	ID               primitive.ObjectID `bson:"_id"`
	Table_number     *int               `json:"table_number" validate:"required"`
	Number_of_guests *int               `json:"number_of_guests" validate:"required"`
	Area             string             `json:"area"`
	Status           string             `json:"status"`
	Availiable       bool               `json:"availiable"`
	Created_at       time.Time          `json:"created_at"`
	Updated_at       time.Time          `json:"updated_at"`
	Table_id         string             `json:"table_id"`
}
