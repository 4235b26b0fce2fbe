package services

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-restaurant-booking/models"
)

// memStore implements every store interface the services need, with each
// method atomic under one mutex, mirroring the single-document atomicity the
// mongo implementations get from the server.
type memStore struct {
	mu sync.Mutex

	// checkDelay widens the window between a conflict check and the commit
	// that follows it, making unserialized interleavings observable.
	checkDelay time.Duration

	locks        map[string]models.Lock
	foods        map[string]*models.Food
	ledgers      map[string]*models.StockLedger
	orders       map[string]*models.Order
	orderItems   map[string][]models.OrderItem
	payments     map[string]*models.Payment
	reservations map[string]*models.Reservation
	counters     map[string]int64
	tables       map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		locks:        make(map[string]models.Lock),
		foods:        make(map[string]*models.Food),
		ledgers:      make(map[string]*models.StockLedger),
		orders:       make(map[string]*models.Order),
		orderItems:   make(map[string][]models.OrderItem),
		payments:     make(map[string]*models.Payment),
		reservations: make(map[string]*models.Reservation),
		counters:     make(map[string]int64),
		tables:       make(map[string]string),
	}
}

// --- LockStore ---

func (m *memStore) Insert(ctx context.Context, lock models.Lock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.locks[lock.Resource_key]; exists {
		return ErrDuplicateResource
	}
	m.locks[lock.Resource_key] = lock
	return nil
}

func (m *memStore) Get(ctx context.Context, resource string) (*models.Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, exists := m.locks[resource]
	if !exists {
		return nil, nil
	}
	copied := lock
	return &copied, nil
}

func (m *memStore) DeleteExpired(ctx context.Context, resource string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, exists := m.locks[resource]
	if !exists || lock.Expires_at.After(now) {
		return false, nil
	}
	delete(m.locks, resource)
	return true, nil
}

func (m *memStore) DeleteByHolder(ctx context.Context, resource string, holder string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, exists := m.locks[resource]
	if !exists || lock.Holder != holder {
		return false, nil
	}
	delete(m.locks, resource)
	return true, nil
}

func (m *memStore) DeleteAllExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for key, lock := range m.locks {
		if !lock.Expires_at.After(now) {
			delete(m.locks, key)
			count++
		}
	}
	return count, nil
}

// --- StockStore ---

func (m *memStore) GetFood(ctx context.Context, foodID string) (*models.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	food, exists := m.foods[foodID]
	if !exists {
		return nil, nil
	}
	copied := *food
	return &copied, nil
}

func (m *memStore) GetLedger(ctx context.Context, foodID string) (*models.StockLedger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, exists := m.ledgers[foodID]
	if !exists {
		return nil, nil
	}
	copied := *ledger
	if ledger.Manual_quantity != nil {
		qty := *ledger.Manual_quantity
		copied.Manual_quantity = &qty
	}
	return &copied, nil
}

func (m *memStore) DeductLedger(ctx context.Context, foodID string, qty int, version int64, manual bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, exists := m.ledgers[foodID]
	if !exists || ledger.Version != version {
		return false, nil
	}
	if manual {
		if ledger.Manual_quantity == nil {
			return false, nil
		}
		*ledger.Manual_quantity -= qty
	} else {
		ledger.Calculated_quantity -= qty
	}
	ledger.Version++
	return true, nil
}

func (m *memStore) RestoreLedger(ctx context.Context, foodID string, qty int, manual bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ledger, exists := m.ledgers[foodID]
	if !exists {
		return nil
	}
	if manual && ledger.Manual_quantity != nil {
		*ledger.Manual_quantity += qty
	} else {
		ledger.Calculated_quantity += qty
	}
	ledger.Version++
	return nil
}

func (m *memStore) DeductFood(ctx context.Context, foodID string, qty int, version int64) (*models.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	food, exists := m.foods[foodID]
	if !exists || food.Version != version {
		return nil, nil
	}
	food.Quantity -= qty
	food.Version++
	copied := *food
	return &copied, nil
}

func (m *memStore) RestoreFood(ctx context.Context, foodID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	food, exists := m.foods[foodID]
	if !exists {
		return nil
	}
	food.Quantity += qty
	food.Version++
	food.Is_active = true
	return nil
}

func (m *memStore) SetFoodActive(ctx context.Context, foodID string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if food, exists := m.foods[foodID]; exists {
		food.Is_active = active
	}
	return nil
}

// --- BookingStore ---

func (m *memStore) CountConflicting(ctx context.Context, area, date, timeSlot string, tableIDs []string) (int64, error) {
	m.mu.Lock()
	requested := make(map[string]bool, len(tableIDs))
	for _, id := range tableIDs {
		requested[id] = true
	}
	var count int64
	for _, res := range m.reservations {
		if res.Area != area || res.Date != date || res.Time != timeSlot {
			continue
		}
		if res.Status != models.ReservationStatusPending && res.Status != models.ReservationStatusConfirmed {
			continue
		}
		for _, id := range res.Table_ids {
			if requested[id] {
				count++
				break
			}
		}
	}
	m.mu.Unlock()
	if m.checkDelay > 0 {
		time.Sleep(m.checkDelay)
	}
	return count, nil
}

func (m *memStore) NextSequence(ctx context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
	return m.counters[name], nil
}

func (m *memStore) CreateBooking(ctx context.Context, res *models.Reservation, order *models.Order, payment *models.Payment, items []models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	resCopy := *res
	m.reservations[res.Reservation_id] = &resCopy
	orderCopy := *order
	m.orders[order.Order_id] = &orderCopy
	m.orderItems[order.Order_id] = append([]models.OrderItem(nil), items...)
	if payment != nil {
		paymentCopy := *payment
		m.payments[payment.Payment_id] = &paymentCopy
	}
	return nil
}

func (m *memStore) GetReservation(ctx context.Context, reservationID string) (*models.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, exists := m.reservations[reservationID]
	if !exists {
		return nil, nil
	}
	copied := *res
	return &copied, nil
}

func (m *memStore) SetReservationStatus(ctx context.Context, reservationID string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if res, exists := m.reservations[reservationID]; exists {
		res.Status = status
	}
	return nil
}

// --- SweepStore ---

func (m *memStore) ExpiredOrders(ctx context.Context, now time.Time, limit int64) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orders []models.Order
	for _, order := range m.orders {
		if int64(len(orders)) >= limit {
			break
		}
		if order.Status != models.OrderStatusPending && order.Status != models.OrderStatusReserved {
			continue
		}
		if order.Expiry_time != nil && !order.Expiry_time.After(now) {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (m *memStore) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, exists := m.orders[orderID]
	if !exists {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (m *memStore) OrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.OrderItem(nil), m.orderItems[orderID]...), nil
}

func (m *memStore) MarkStockRolledBack(ctx context.Context, orderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, exists := m.orders[orderID]
	if !exists || order.Stock_rolled_back {
		return false, nil
	}
	order.Stock_rolled_back = true
	return true, nil
}

func (m *memStore) MarkTableReleased(ctx context.Context, orderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, exists := m.orders[orderID]
	if !exists || order.Table_released {
		return false, nil
	}
	order.Table_released = true
	return true, nil
}

func (m *memStore) SetOrderStatus(ctx context.Context, orderID string, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order, exists := m.orders[orderID]; exists {
		order.Status = status
	}
	return nil
}

func (m *memStore) ReleaseTable(ctx context.Context, tableID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[tableID] = "available"
	return nil
}

func (m *memStore) ExpirePayments(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, payment := range m.payments {
		if payment.Order_id == orderID && payment.Status == models.PaymentStatusPending {
			payment.Status = models.PaymentStatusExpire
		}
	}
	return nil
}

func (m *memStore) OrphanedPayments(ctx context.Context, now time.Time) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orphans []models.Payment
	for _, payment := range m.payments {
		if payment.Status != models.PaymentStatusPending {
			continue
		}
		if _, exists := m.orders[payment.Order_id]; !exists {
			orphans = append(orphans, *payment)
		}
	}
	return orphans, nil
}

func (m *memStore) MarkPaymentOrphaned(ctx context.Context, paymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if payment, exists := m.payments[paymentID]; exists {
		payment.Status = models.PaymentStatusOrphaned
	}
	return nil
}

// --- seeding helpers ---

func (m *memStore) seedItem(foodID string, qty int, manual *int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.foods[foodID] = &models.Food{
		ID:        primitive.NewObjectID(),
		Food_id:   foodID,
		Quantity:  qty,
		Is_active: true,
	}
	m.ledgers[foodID] = &models.StockLedger{
		ID:                  primitive.NewObjectID(),
		Food_id:             foodID,
		Calculated_quantity: qty,
		Manual_quantity:     manual,
	}
}

func (m *memStore) seedOrder(order models.Order, items []models.OrderItem) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := order
	m.orders[order.Order_id] = &copied
	m.orderItems[order.Order_id] = items
}

func (m *memStore) ledgerQty(foodID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ledgers[foodID].Available()
}

func (m *memStore) orderStatus(orderID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order, exists := m.orders[orderID]; exists {
		return order.Status
	}
	return ""
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}
