package services

import (
	"context"
	"log"
	"time"

	"go-restaurant-booking/models"
)

// Sweeper repairs drift that synchronous handling cannot prevent: unpaid
// orders past their expiry window, locks whose holders crashed, payments
// whose parent order is gone. One RunSweep call is one pass; any timer can
// drive it.
type Sweeper struct {
	locks *LockService
	stock *StockService
	store SweepStore
	pub   Publisher
	now   func() time.Time

	batchSize int64
}

func NewSweeper(locks *LockService, stock *StockService, store SweepStore, pub Publisher) *Sweeper {
	return &Sweeper{
		locks:     locks,
		stock:     stock,
		store:     store,
		pub:       pub,
		now:       time.Now,
		batchSize: 100,
	}
}

// expiryPolicy says whether orders of a given type may be auto-expired when
// their payment window lapses. Reservations and open bills follow the
// physical event, not a payment timer, so the sweeper must leave them alone.
type expiryPolicy struct {
	Order_type string
	AutoExpire bool
	Reason     string
}

var expiryPolicies = []expiryPolicy{
	{Order_type: models.OrderTypeDineIn, AutoExpire: true, Reason: "payment window bounds the order"},
	{Order_type: models.OrderTypeReservation, AutoExpire: false, Reason: "lifecycle tied to the event time"},
	{Order_type: models.OrderTypeOpenBill, AutoExpire: false, Reason: "settled when the bill is closed"},
}

func autoExpirable(order models.Order) bool {
	if order.Is_open_bill {
		return false
	}
	for _, p := range expiryPolicies {
		if p.Order_type == order.Order_type {
			return p.AutoExpire
		}
	}
	// Unknown types are left for a human rather than silently cancelled.
	return false
}

// SweepReport summarizes one pass.
type SweepReport struct {
	Candidates       int   `json:"candidates"`
	Expired          int   `json:"expired"`
	Skipped          int   `json:"skipped"`
	Failed           int   `json:"failed"`
	LocksCleaned     int64 `json:"locks_cleaned"`
	OrphanedPayments int   `json:"orphaned_payments"`
}

// RunSweep performs one full pass. Every candidate is handled under its own
// short-lived order lock so a slow sweep never blocks live traffic, and every
// corrective action is best effort: one failure is logged and the rest of the
// pass continues.
func (s *Sweeper) RunSweep(ctx context.Context) SweepReport {
	var report SweepReport

	orders, err := s.store.ExpiredOrders(ctx, s.now(), s.batchSize)
	if err != nil {
		log.Printf("sweep: listing expired orders failed: %v", err)
	}
	report.Candidates = len(orders)
	for _, order := range orders {
		if !autoExpirable(order) {
			report.Skipped++
			continue
		}
		if err := s.CompensateOrder(ctx, order.Order_id); err != nil {
			log.Printf("sweep: expiring order %s failed: %v", order.Order_id, err)
			report.Failed++
			continue
		}
		report.Expired++
		if s.pub != nil {
			s.pub.Publish("orderExpired", order.Order_id)
		}
	}

	cleaned, err := s.locks.CleanupExpired(ctx)
	if err != nil {
		log.Printf("sweep: lock cleanup failed: %v", err)
	}
	report.LocksCleaned = cleaned

	orphans, err := s.store.OrphanedPayments(ctx, s.now())
	if err != nil {
		log.Printf("sweep: listing orphaned payments failed: %v", err)
	}
	for _, p := range orphans {
		if err := s.store.MarkPaymentOrphaned(ctx, p.Payment_id); err != nil {
			log.Printf("sweep: marking payment %s orphaned failed: %v", p.Payment_id, err)
			continue
		}
		report.OrphanedPayments++
	}

	return report
}

// CompensateOrder undoes the side effects of one order and cancels it. Safe
// to call any number of times: the stock_rolled_back and table_released
// flags are flipped with conditional writes, so each compensation applies at
// most once even across crashed and retried sweeps.
func (s *Sweeper) CompensateOrder(ctx context.Context, orderID string) error {
	return s.locks.WithOrderLock(ctx, orderID, func(ctx context.Context) error {
		order, err := s.store.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return nil
		}

		won, err := s.store.MarkStockRolledBack(ctx, orderID)
		if err != nil {
			return err
		}
		if won {
			items, err := s.store.OrderItems(ctx, orderID)
			if err != nil {
				return err
			}
			s.stock.Rollback(ctx, deductionsFromItems(items))
		}

		if order.Table_id != nil {
			won, err := s.store.MarkTableReleased(ctx, orderID)
			if err != nil {
				return err
			}
			if won {
				if err := s.store.ReleaseTable(ctx, *order.Table_id); err != nil {
					log.Printf("sweep: releasing table %s failed: %v", *order.Table_id, err)
				}
			}
		}

		if err := s.store.ExpirePayments(ctx, orderID); err != nil {
			log.Printf("sweep: expiring payments for %s failed: %v", orderID, err)
		}
		return s.store.SetOrderStatus(ctx, orderID, models.OrderStatusCanceled)
	})
}

// deductionsFromItems rebuilds the rollback input from the persisted order
// items. Manual_active is false here: the re-add targets the calculated
// quantity, the same bucket live consumption draws from.
func deductionsFromItems(items []models.OrderItem) []models.DeductionResult {
	results := make([]models.DeductionResult, 0, len(items))
	for _, item := range items {
		if item.Food_id == nil || item.Quantity == nil {
			continue
		}
		results = append(results, models.DeductionResult{
			Food_id:  *item.Food_id,
			Quantity: *item.Quantity,
		})
	}
	return results
}
