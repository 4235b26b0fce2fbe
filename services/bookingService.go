package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-restaurant-booking/models"
)

// BookingService is the transactional workflow: reservation lock, under-lock
// conflict re-check, sequential code, stock pipeline, then one atomic write
// for the whole aggregate. It is the only component that triggers a
// compensating stock rollback on failure.
type BookingService struct {
	locks   *LockService
	stock   *StockService
	store   BookingStore
	pub     Publisher
	now     func() time.Time
	timeout time.Duration
}

func NewBookingService(locks *LockService, stock *StockService, store BookingStore, pub Publisher) *BookingService {
	return &BookingService{
		locks:   locks,
		stock:   stock,
		store:   store,
		pub:     pub,
		now:     time.Now,
		timeout: 30 * time.Minute,
	}
}

type BookingRequest struct {
	Area             string      `json:"area" validate:"required"`
	Date             string      `json:"date" validate:"required"`
	Time             string      `json:"time" validate:"required"`
	Table_ids        []string    `json:"table_ids" validate:"required,min=1"`
	Number_of_guests int         `json:"number_of_guests" validate:"required,min=1"`
	User_id          *string     `json:"user_id"`
	Created_by       *string     `json:"created_by"`
	Items            []OrderLine `json:"items"`
	Deposit          float64     `json:"deposit"`
	Is_open_bill     bool        `json:"is_open_bill"`
}

type BookingResult struct {
	Reservation models.Reservation `json:"reservation"`
	Order       models.Order       `json:"order"`
	Items       []models.OrderItem `json:"items"`
	Payment     *models.Payment    `json:"payment"`
}

// CreateReservationWithOrder books the tables and creates the reservation,
// its order and, when a deposit is due, the payment record as one unit. Any
// failure after stock was deducted rolls the deduction back before the error
// leaves this function.
func (b *BookingService) CreateReservationWithOrder(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	var result *BookingResult
	err := b.locks.WithReservationLock(ctx, req.Area, req.Date, req.Time, req.Table_ids, func(ctx context.Context) error {
		// The reservation key only serializes identical table sets; the
		// per-table locks below serialize overlapping ones too, so no two
		// requests sharing a table ever run this section concurrently.
		return b.locks.WithTableSlotLocks(ctx, req.Area, req.Date, req.Time, req.Table_ids, func(ctx context.Context) error {
			// The pre-lock availability check the client did is advisory
			// only; the authoritative check runs here, under the locks.
			conflicts, err := b.store.CountConflicting(ctx, req.Area, req.Date, req.Time, req.Table_ids)
			if err != nil {
				return err
			}
			if conflicts > 0 {
				return ErrReservationConflict
			}

			code, err := b.nextReservationCode(ctx, req.Date)
			if err != nil {
				return err
			}

			var deductions []models.DeductionResult
			if len(req.Items) > 0 {
				snapshots, err := b.stock.ValidateAndReserve(ctx, req.Items)
				if err != nil {
					return err
				}
				deductions, err = b.stock.Deduct(ctx, snapshots)
				if err != nil {
					// Partial deductions from a failed run are undone right
					// away; the order does not exist yet so no flag applies.
					b.stock.Rollback(ctx, deductions)
					return err
				}
			}

			res, order, payment, items := b.buildAggregate(req, code)
			if err := b.store.CreateBooking(ctx, &res, &order, payment, items); err != nil {
				b.stock.Rollback(ctx, deductions)
				return err
			}
			result = &BookingResult{Reservation: res, Order: order, Items: items, Payment: payment}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if b.pub != nil {
		b.pub.Publish("reservationCreated", result.Reservation)
	}
	return result, nil
}

// nextReservationCode builds a human-readable code that cannot collide:
// RSV-YYYYMMDD-NNNN from an atomically incremented per-day counter.
func (b *BookingService) nextReservationCode(ctx context.Context, date string) (string, error) {
	day := strings.ReplaceAll(date, "-", "")
	seq, err := b.store.NextSequence(ctx, "reservation-"+day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("RSV-%s-%04d", day, seq), nil
}

// NextOrderCode issues the code walk-in orders carry, ORD-YYYYMMDD-NNNN,
// from the same counter mechanism. Gaps from abandoned requests are fine;
// duplicates are not.
func (b *BookingService) NextOrderCode(ctx context.Context) (string, error) {
	day := b.now().Format("20060102")
	seq, err := b.store.NextSequence(ctx, "order-"+day)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORD-%s-%04d", day, seq), nil
}

func (b *BookingService) buildAggregate(req BookingRequest, code string) (models.Reservation, models.Order, *models.Payment, []models.OrderItem) {
	now := b.now()
	expiry := now.Add(b.timeout)

	res := models.Reservation{
		ID:               primitive.NewObjectID(),
		Reservation_code: code,
		Area:             req.Area,
		Date:             req.Date,
		Time:             req.Time,
		Table_ids:        req.Table_ids,
		Number_of_guests: req.Number_of_guests,
		Status:           models.ReservationStatusPending,
		User_id:          req.User_id,
		Created_by:       req.Created_by,
		Created_at:       now,
		Updated_at:       now,
	}
	res.Reservation_id = res.ID.Hex()

	order := models.Order{
		ID:           primitive.NewObjectID(),
		Order_Date:   now,
		Created_at:   now,
		Updated_at:   now,
		Order_code:   code,
		Order_type:   models.OrderTypeReservation,
		User_id:      req.User_id,
		Created_by:   req.Created_by,
		Status:       models.OrderStatusReserved,
		Expiry_time:  &expiry,
		Is_open_bill: req.Is_open_bill,
	}
	order.Order_id = order.ID.Hex()
	res.Order_id = &order.Order_id

	// The line items are persisted with the order so the sweeper and a
	// manual cancel can rebuild the exact stock compensation later.
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, line := range req.Items {
		line := line
		item := models.OrderItem{
			ID:         primitive.NewObjectID(),
			Order_id:   order.Order_id,
			Food_id:    &line.Food_id,
			Quantity:   &line.Quantity,
			Unit_price: &line.Unit_price,
			Created_at: now,
			Updated_at: now,
		}
		item.Order_item_id = item.ID.Hex()
		items = append(items, item)
		order.Total_quantity += line.Quantity
		order.Total_amount += line.Unit_price * float64(line.Quantity)
	}

	var payment *models.Payment
	if req.Deposit > 0 {
		payment = &models.Payment{
			ID:          primitive.NewObjectID(),
			Order_id:    order.Order_id,
			Amount:      req.Deposit,
			Status:      models.PaymentStatusPending,
			Expiry_time: &expiry,
			Created_at:  now,
			Updated_at:  now,
		}
		payment.Payment_id = payment.ID.Hex()
	}

	return res, order, payment, items
}

// CancelReservation walks the same compensation path the sweeper uses, so a
// staff cancellation and an automatic expiry cannot double-apply.
func (b *BookingService) CancelReservation(ctx context.Context, sweeper *Sweeper, reservationID string) error {
	res, err := b.store.GetReservation(ctx, reservationID)
	if err != nil {
		return err
	}
	if res == nil {
		return fmt.Errorf("reservation %s not found", reservationID)
	}
	if res.Order_id != nil {
		if err := sweeper.CompensateOrder(ctx, *res.Order_id); err != nil {
			return err
		}
	}
	return b.store.SetReservationStatus(ctx, reservationID, models.ReservationStatusCancelled)
}
