package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func newBookingFixture() (*memStore, *BookingService, *recordingPublisher) {
	store := newMemStore()
	locks := NewLockService(store)
	stock := NewStockService(store)
	stock.retryDelay = time.Millisecond
	pub := &recordingPublisher{}
	booking := NewBookingService(locks, stock, store, pub)
	return store, booking, pub
}

func baseRequest() BookingRequest {
	return BookingRequest{
		Area:             "patio",
		Date:             "2025-01-01",
		Time:             "19:00",
		Table_ids:        []string{"T1", "T2"},
		Number_of_guests: 4,
	}
}

func TestCreateReservationWithOrder(t *testing.T) {
	store, booking, pub := newBookingFixture()
	ctx := context.Background()

	result, err := booking.CreateReservationWithOrder(ctx, baseRequest())
	if err != nil {
		t.Fatal(err)
	}
	if result.Reservation.Status != "pending" {
		t.Fatalf("expected pending reservation, got %s", result.Reservation.Status)
	}
	if result.Order.Order_type != "RESERVATION" {
		t.Fatalf("expected RESERVATION order, got %s", result.Order.Order_type)
	}
	if result.Order.Status != "Reserved" {
		t.Fatalf("expected Reserved order status, got %s", result.Order.Status)
	}
	if result.Payment != nil {
		t.Fatal("no deposit requested, no payment expected")
	}
	if !strings.HasPrefix(result.Reservation.Reservation_code, "RSV-20250101-") {
		t.Fatalf("unexpected code %s", result.Reservation.Reservation_code)
	}
	if res, _ := store.GetReservation(ctx, result.Reservation.Reservation_id); res == nil {
		t.Fatal("reservation not persisted")
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.events) != 1 || pub.events[0] != "reservationCreated" {
		t.Fatalf("expected one reservationCreated event, got %v", pub.events)
	}

	// The reservation lock must be gone afterwards.
	locked, _ := booking.locks.IsLocked(ctx, ReservationLockKey("patio", "2025-01-01", "19:00", []string{"T1", "T2"}))
	if locked {
		t.Fatal("reservation lock must be released")
	}
}

func TestCreateReservationWithDeposit(t *testing.T) {
	_, booking, _ := newBookingFixture()
	ctx := context.Background()

	req := baseRequest()
	req.Deposit = 50
	result, err := booking.CreateReservationWithOrder(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if result.Payment == nil {
		t.Fatal("expected a payment record for the deposit")
	}
	if result.Payment.Amount != 50 || result.Payment.Status != "pending" {
		t.Fatalf("unexpected payment %+v", result.Payment)
	}
	if result.Payment.Order_id != result.Order.Order_id {
		t.Fatal("payment must reference the order")
	}
}

func TestReservationConflictOnOverlap(t *testing.T) {
	_, booking, _ := newBookingFixture()
	ctx := context.Background()

	if _, err := booking.CreateReservationWithOrder(ctx, baseRequest()); err != nil {
		t.Fatal(err)
	}

	// Overlapping table set, same slot.
	req := baseRequest()
	req.Table_ids = []string{"T2", "T3"}
	_, err := booking.CreateReservationWithOrder(ctx, req)
	if !errors.Is(err, ErrReservationConflict) {
		t.Fatalf("expected ErrReservationConflict, got %v", err)
	}

	// Disjoint table set books fine.
	req.Table_ids = []string{"T4"}
	if _, err := booking.CreateReservationWithOrder(ctx, req); err != nil {
		t.Fatal(err)
	}

	// Same tables, different slot books fine.
	req = baseRequest()
	req.Time = "21:00"
	if _, err := booking.CreateReservationWithOrder(ctx, req); err != nil {
		t.Fatal(err)
	}
}

func TestConcurrentOverlappingBookingsOneWinner(t *testing.T) {
	_, booking, _ := newBookingFixture()
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, conflicts := 0, 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := booking.CreateReservationWithOrder(ctx, baseRequest())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrReservationConflict):
				conflicts++
			default:
				var exhausted *ErrLockExhausted
				if !errors.As(err, &exhausted) {
					t.Errorf("unexpected error %v", err)
				}
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("exactly one booking must win, got %d", wins)
	}
}

func TestBookingWithItemsDeductsStock(t *testing.T) {
	store, booking, _ := newBookingFixture()
	ctx := context.Background()
	store.seedItem("espresso", 5, nil)

	req := baseRequest()
	req.Items = []OrderLine{{Food_id: "espresso", Quantity: 2, Unit_price: 4.5}}
	result, err := booking.CreateReservationWithOrder(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if store.ledgerQty("espresso") != 3 {
		t.Fatalf("expected ledger 3 after booking, got %d", store.ledgerQty("espresso"))
	}
	if result.Order.Total_quantity != 2 {
		t.Fatalf("expected total quantity 2, got %d", result.Order.Total_quantity)
	}
	if result.Order.Total_amount != 9 {
		t.Fatalf("expected total amount 9, got %v", result.Order.Total_amount)
	}

	// The items must be persisted with the order, or later compensation
	// has nothing to rebuild the rollback from.
	items, err := store.OrderItems(ctx, result.Order.Order_id)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || *items[0].Food_id != "espresso" || *items[0].Quantity != 2 {
		t.Fatalf("unexpected persisted items %+v", items)
	}
}

func TestCancelReservationWithItemsRestoresStock(t *testing.T) {
	store := newMemStore()
	locks := NewLockService(store)
	stock := NewStockService(store)
	stock.retryDelay = time.Millisecond
	pub := &recordingPublisher{}
	booking := NewBookingService(locks, stock, store, pub)
	sweeper := NewSweeper(locks, stock, store, pub)
	ctx := context.Background()

	store.seedItem("espresso", 5, nil)
	req := baseRequest()
	req.Items = []OrderLine{{Food_id: "espresso", Quantity: 3, Unit_price: 4.5}}
	result, err := booking.CreateReservationWithOrder(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if store.ledgerQty("espresso") != 2 {
		t.Fatalf("expected ledger 2 after booking, got %d", store.ledgerQty("espresso"))
	}

	if err := booking.CancelReservation(ctx, sweeper, result.Reservation.Reservation_id); err != nil {
		t.Fatal(err)
	}
	if got := store.ledgerQty("espresso"); got != 5 {
		t.Fatalf("cancelled reservation must restore stock to 5, got %d", got)
	}
	if res, _ := store.GetReservation(ctx, result.Reservation.Reservation_id); res.Status != "cancelled" {
		t.Fatalf("expected cancelled reservation, got %s", res.Status)
	}
	if status := store.orderStatus(result.Order.Order_id); status != "Canceled" {
		t.Fatalf("expected Canceled order, got %s", status)
	}

	// A second cancel finds the flag already burned and restores nothing.
	if err := booking.CancelReservation(ctx, sweeper, result.Reservation.Reservation_id); err != nil {
		t.Fatal(err)
	}
	if got := store.ledgerQty("espresso"); got != 5 {
		t.Fatalf("repeated cancel must not restore twice, got %d", got)
	}
}

func TestConcurrentOverlappingDistinctSetsOneWinner(t *testing.T) {
	store, booking, _ := newBookingFixture()
	ctx := context.Background()
	// Widen the window between the conflict check and the commit: without
	// per-table serialization both requests would pass the check.
	store.checkDelay = 20 * time.Millisecond

	sets := [][]string{{"T1", "T2"}, {"T2", "T3"}}
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for _, tables := range sets {
		wg.Add(1)
		go func(tables []string) {
			defer wg.Done()
			req := baseRequest()
			req.Table_ids = tables
			_, err := booking.CreateReservationWithOrder(ctx, req)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrReservationConflict):
			default:
				var exhausted *ErrLockExhausted
				if !errors.As(err, &exhausted) {
					t.Errorf("unexpected error %v", err)
				}
			}
		}(tables)
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("requests sharing T2 must book exactly once, got %d wins", wins)
	}
}

func TestBookingInsufficientStockFailsCleanly(t *testing.T) {
	store, booking, _ := newBookingFixture()
	ctx := context.Background()
	store.seedItem("espresso", 1, nil)

	req := baseRequest()
	req.Items = []OrderLine{{Food_id: "espresso", Quantity: 2}}
	_, err := booking.CreateReservationWithOrder(ctx, req)
	var insufficient *ErrInsufficientStock
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if store.ledgerQty("espresso") != 1 {
		t.Fatal("failed validation must leave stock untouched")
	}
	// Nothing may be persisted.
	if count, _ := store.CountConflicting(ctx, req.Area, req.Date, req.Time, req.Table_ids); count != 0 {
		t.Fatal("no reservation may exist after a failed booking")
	}
}

func TestOrderCodesAreSequential(t *testing.T) {
	_, booking, _ := newBookingFixture()
	ctx := context.Background()

	day := time.Now().Format("20060102")
	first, err := booking.NextOrderCode(ctx)
	if err != nil {
		t.Fatal(err)
	}
	second, err := booking.NextOrderCode(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first != "ORD-"+day+"-0001" || second != "ORD-"+day+"-0002" {
		t.Fatalf("unexpected codes %s, %s", first, second)
	}
}

func TestSequentialCodesAreUnique(t *testing.T) {
	_, booking, _ := newBookingFixture()
	ctx := context.Background()

	seen := make(map[string]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := baseRequest()
			req.Table_ids = []string{fmt.Sprintf("T%d", i)}
			result, err := booking.CreateReservationWithOrder(ctx, req)
			if err != nil {
				t.Errorf("booking %d failed: %v", i, err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[result.Reservation.Reservation_code] {
				t.Errorf("duplicate code %s", result.Reservation.Reservation_code)
			}
			seen[result.Reservation.Reservation_code] = true
		}(i)
	}
	wg.Wait()
}
