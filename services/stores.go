package services

import (
	"context"
	"time"

	"go-restaurant-booking/models"
)

// The services talk to storage through these interfaces. The mongo
// implementations live in the database package; tests supply an in-memory
// version. Every method is a single atomic operation against the store.

type LockStore interface {
	// Insert creates the lock record, returning ErrDuplicateResource when a
	// record with the same resource_key already exists.
	Insert(ctx context.Context, lock models.Lock) error
	Get(ctx context.Context, resource string) (*models.Lock, error)
	// DeleteExpired removes the record for resource only if its expiry has
	// passed. Reports whether a record was removed.
	DeleteExpired(ctx context.Context, resource string, now time.Time) (bool, error)
	// DeleteByHolder removes the record only when the holder matches.
	DeleteByHolder(ctx context.Context, resource string, holder string) (bool, error)
	DeleteAllExpired(ctx context.Context, now time.Time) (int64, error)
}

type StockStore interface {
	GetFood(ctx context.Context, foodID string) (*models.Food, error)
	GetLedger(ctx context.Context, foodID string) (*models.StockLedger, error)
	// DeductLedger decrements the manual or calculated quantity and bumps
	// the version, but only if the stored version still equals version.
	// Reports whether the conditional write matched.
	DeductLedger(ctx context.Context, foodID string, qty int, version int64, manual bool) (bool, error)
	// RestoreLedger re-adds qty to the manual or calculated quantity and
	// bumps the version unconditionally.
	RestoreLedger(ctx context.Context, foodID string, qty int, manual bool) error
	// DeductFood decrements the catalog quantity under the same version
	// condition and returns the post-write document, or nil on a miss.
	DeductFood(ctx context.Context, foodID string, qty int, version int64) (*models.Food, error)
	RestoreFood(ctx context.Context, foodID string, qty int) error
	SetFoodActive(ctx context.Context, foodID string, active bool) error
}

type BookingStore interface {
	// CountConflicting counts reservations in pending or confirmed status
	// for the same area/date/time whose table set intersects tableIDs.
	CountConflicting(ctx context.Context, area, date, timeSlot string, tableIDs []string) (int64, error)
	// NextSequence atomically increments and returns the named counter.
	NextSequence(ctx context.Context, name string) (int64, error)
	// CreateBooking writes the reservation, order, its line items and the
	// optional payment as a single atomic unit.
	CreateBooking(ctx context.Context, res *models.Reservation, order *models.Order, payment *models.Payment, items []models.OrderItem) error
	GetReservation(ctx context.Context, reservationID string) (*models.Reservation, error)
	SetReservationStatus(ctx context.Context, reservationID string, status string) error
}

type SweepStore interface {
	// ExpiredOrders returns pending orders whose expiry_time has passed.
	ExpiredOrders(ctx context.Context, now time.Time, limit int64) ([]models.Order, error)
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	OrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error)
	// MarkStockRolledBack flips the flag from false to true, reporting
	// whether this call won the flip. Same contract for MarkTableReleased.
	MarkStockRolledBack(ctx context.Context, orderID string) (bool, error)
	MarkTableReleased(ctx context.Context, orderID string) (bool, error)
	SetOrderStatus(ctx context.Context, orderID string, status string) error
	ReleaseTable(ctx context.Context, tableID string) error
	ExpirePayments(ctx context.Context, orderID string) error
	// OrphanedPayments returns pending payments whose parent order no
	// longer exists.
	OrphanedPayments(ctx context.Context, now time.Time) ([]models.Payment, error)
	MarkPaymentOrphaned(ctx context.Context, paymentID string) error
}

// Publisher is the one-way event fan-out the core needs; delivery is best
// effort. The websocket hub satisfies it.
type Publisher interface {
	Publish(event string, payload interface{})
}
