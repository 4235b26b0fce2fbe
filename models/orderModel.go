package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending   = "Pending"
	OrderStatusOnProcess = "OnProcess"
	OrderStatusReserved  = "Reserved"
	OrderStatusCompleted = "Completed"
	OrderStatusCanceled  = "Canceled"
)

const (
	OrderTypeDineIn      = "DINE_IN"
	OrderTypeReservation = "RESERVATION"
	OrderTypeOpenBill    = "OPEN_BILL"
)

type Order struct {
	ID             primitive.ObjectID `bson:"_id"`
	Order_Date     time.Time          `json:"order_date"`
	Created_at     time.Time          `json:"created_at"`
	Updated_at     time.Time          `json:"updated_at"`
	Order_id       string             `json:"order_id"`
	Order_code     string             `json:"order_code"`
	Order_type     string             `bson:"order_type" json:"order_type" validate:"required,eq=DINE_IN|eq=RESERVATION|eq=OPEN_BILL"`
	User_id        *string            `json:"user_id"`
	Created_by     *string            `json:"created_by"`
	Table_id       *string            `json:"table_id"`
	Table_number   *int               `json:"table_number"`
	Total_amount   float64            `json:"total_amount"`
	Total_quantity int                `json:"total_quantity"`
	Status         string             `json:"status" validate:"required,eq=Pending|eq=OnProcess|eq=Reserved|eq=Completed|eq=Canceled"`
	Expiry_time    *time.Time         `bson:"expiry_time" json:"expiry_time"`

	// Idempotency flags for the sweeper: each compensating action runs at
	// most once per order.
	Is_open_bill      bool `bson:"is_open_bill" json:"is_open_bill"`
	Stock_rolled_back bool `bson:"stock_rolled_back" json:"stock_rolled_back"`
	Table_released    bool `bson:"table_released" json:"table_released"`
}

type OrderItem struct {
	ID            primitive.ObjectID `bson:"_id"`
	Quantity      *int               `json:"quantity" validate:"required"`
	Unit_price    *float64           `json:"unit_price" validate:"required"`
	Created_at    time.Time          `json:"created_at"`
	Updated_at    time.Time          `json:"updated_at"`
	Food_id       *string            `json:"food_id" validate:"required"`
	Order_item_id string             `json:"order_item_id"`
	Order_id      string             `json:"order_id"`
}
