package services

import (
	"context"
	"log"
	"time"

	"go-restaurant-booking/models"
)

// StockService runs the three-phase optimistic flow over inventory:
// validate-and-snapshot, deduct with version checks, compensating rollback.
// No lock is held during deduction; lost races are resolved by retry.
type StockService struct {
	store StockStore

	deductRetries int
	retryDelay    time.Duration
}

func NewStockService(store StockStore) *StockService {
	return &StockService{
		store:         store,
		deductRetries: 3,
		retryDelay:    25 * time.Millisecond,
	}
}

// OrderLine is one requested line item. The stock pipeline only reads the
// id and quantity; the price is carried through to the persisted order item.
type OrderLine struct {
	Food_id    string  `json:"food_id" validate:"required"`
	Quantity   int     `json:"quantity" validate:"required,min=1"`
	Unit_price float64 `json:"unit_price"`
}

// ValidateAndReserve reads every requested item and its ledger row, rejecting
// the whole request if any item is inactive or short on stock. It writes
// nothing, so a failure here needs no cleanup. The returned snapshots pin the
// versions the deduction phase will check against.
func (s *StockService) ValidateAndReserve(ctx context.Context, lines []OrderLine) ([]models.StockSnapshot, error) {
	snapshots := make([]models.StockSnapshot, 0, len(lines))
	for _, line := range lines {
		food, err := s.store.GetFood(ctx, line.Food_id)
		if err != nil {
			return nil, err
		}
		if food == nil || !food.Is_active {
			return nil, &ErrItemUnavailable{Food_id: line.Food_id}
		}
		ledger, err := s.store.GetLedger(ctx, line.Food_id)
		if err != nil {
			return nil, err
		}
		if ledger == nil {
			return nil, &ErrItemUnavailable{Food_id: line.Food_id}
		}
		if available := ledger.Available(); available < line.Quantity {
			return nil, &ErrInsufficientStock{
				Food_id:   line.Food_id,
				Requested: line.Quantity,
				Available: available,
			}
		}
		snapshots = append(snapshots, models.StockSnapshot{
			Food_id:        line.Food_id,
			Quantity:       line.Quantity,
			Food_version:   food.Version,
			Ledger_version: ledger.Version,
			Manual_active:  ledger.Manual_quantity != nil,
		})
	}
	return snapshots, nil
}

// Deduct applies each snapshot with a conditional write on the version it
// recorded. A version miss is retried against the same snapshot with backoff;
// after the budget it surfaces as ErrStockConflict together with the
// deductions that did land, so the caller can roll them back. A ledger write
// whose paired catalog write fails is undone here, on the spot, before the
// conflict is raised.
func (s *StockService) Deduct(ctx context.Context, snapshots []models.StockSnapshot) ([]models.DeductionResult, error) {
	applied := make([]models.DeductionResult, 0, len(snapshots))
	for _, snap := range snapshots {
		ok, err := s.deductOne(ctx, snap)
		if err != nil {
			return applied, err
		}
		if !ok {
			return applied, &ErrStockConflict{Food_id: snap.Food_id, Attempts: s.deductRetries + 1}
		}

		food, err := s.store.DeductFood(ctx, snap.Food_id, snap.Quantity, snap.Food_version)
		if err != nil || food == nil {
			// Catalog write lost its race or faulted: restore the ledger
			// half immediately so the two never disagree.
			if rerr := s.store.RestoreLedger(ctx, snap.Food_id, snap.Quantity, snap.Manual_active); rerr != nil {
				log.Printf("ledger restore failed for %s: %v", snap.Food_id, rerr)
			}
			if err != nil {
				return applied, err
			}
			return applied, &ErrStockConflict{Food_id: snap.Food_id, Attempts: 1}
		}

		result := models.DeductionResult{
			Food_id:       snap.Food_id,
			Quantity:      snap.Quantity,
			Manual_active: snap.Manual_active,
		}
		if food.Quantity <= 0 {
			if err := s.store.SetFoodActive(ctx, snap.Food_id, false); err != nil {
				log.Printf("deactivate %s failed: %v", snap.Food_id, err)
			} else {
				result.Deactivated = true
			}
		}
		applied = append(applied, result)
	}
	return applied, nil
}

func (s *StockService) deductOne(ctx context.Context, snap models.StockSnapshot) (bool, error) {
	delay := s.retryDelay
	for attempt := 0; attempt <= s.deductRetries; attempt++ {
		ok, err := s.store.DeductLedger(ctx, snap.Food_id, snap.Quantity, snap.Ledger_version, snap.Manual_active)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if attempt == s.deductRetries {
			break
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return false, nil
}

// Rollback re-adds every applied deduction to the ledger and the catalog,
// reactivating items that were switched off at zero. Each item is best
// effort: a failure is logged and the rest still run. The pipeline keeps no
// memory of past rollbacks; running it once per order is the caller's duty,
// enforced with the order's stock_rolled_back flag.
func (s *StockService) Rollback(ctx context.Context, results []models.DeductionResult) {
	for _, r := range results {
		if err := s.store.RestoreLedger(ctx, r.Food_id, r.Quantity, r.Manual_active); err != nil {
			log.Printf("stock rollback: ledger restore failed for %s: %v", r.Food_id, err)
			continue
		}
		if err := s.store.RestoreFood(ctx, r.Food_id, r.Quantity); err != nil {
			log.Printf("stock rollback: catalog restore failed for %s: %v", r.Food_id, err)
		}
	}
}
