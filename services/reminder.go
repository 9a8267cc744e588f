package services

import (
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/washline/washline-api/models"
)

// ReminderRegistry re-notifies staff about pending orders until someone
// acknowledges them. It is a single long-lived object owned by main and passed
// to whoever needs it; the timer map never leaks outside. Timers do not
// survive a restart, so Restore rebuilds them from orders that are still
// pending and unacknowledged.
type ReminderRegistry struct {
	mu            sync.Mutex
	timers        map[uint]*time.Ticker
	stop          map[uint]chan struct{}
	interval      time.Duration
	notifications *NotificationService
	db            *gorm.DB
}

// NewReminderRegistry creates a reminder registry that fires every interval
func NewReminderRegistry(db *gorm.DB, notifications *NotificationService, interval time.Duration) *ReminderRegistry {
	return &ReminderRegistry{
		timers:        make(map[uint]*time.Ticker),
		stop:          make(map[uint]chan struct{}),
		interval:      interval,
		notifications: notifications,
		db:            db,
	}
}

// Track starts a recurring reminder for a pending order. Tracking an order
// that is already tracked is a no-op.
func (r *ReminderRegistry) Track(orderID uint, orderNumber string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.timers[orderID]; exists {
		return
	}

	ticker := time.NewTicker(r.interval)
	stop := make(chan struct{})
	r.timers[orderID] = ticker
	r.stop[orderID] = stop

	go func() {
		for {
			select {
			case <-ticker.C:
				r.notifications.NotifyReminder(orderID, orderNumber)
			case <-stop:
				return
			}
		}
	}()
}

// Cancel stops the reminder for an order. Cancelling an untracked order is a
// no-op, so callers can cancel unconditionally on any transition.
func (r *ReminderRegistry) Cancel(orderID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticker, exists := r.timers[orderID]
	if !exists {
		return
	}
	ticker.Stop()
	close(r.stop[orderID])
	delete(r.timers, orderID)
	delete(r.stop, orderID)
}

// Acknowledge marks the order as viewed by staff and stops its reminder
func (r *ReminderRegistry) Acknowledge(orderID uint) error {
	if err := r.db.Model(&models.Order{}).Where("id = ?", orderID).
		Update("acknowledged", true).Error; err != nil {
		return err
	}
	r.Cancel(orderID)
	return nil
}

// Tracked reports whether an order currently has an active reminder
func (r *ReminderRegistry) Tracked(orderID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.timers[orderID]
	return exists
}

// Restore re-derives reminders after a restart from persisted state: every
// order still pending and not yet acknowledged gets a fresh timer.
func (r *ReminderRegistry) Restore() error {
	var orders []models.Order
	err := r.db.Where("status = ? AND acknowledged = ?", StatusPending, false).
		Find(&orders).Error
	if err != nil {
		return err
	}
	for _, order := range orders {
		r.Track(order.ID, order.Number)
	}
	if len(orders) > 0 {
		log.Printf("Restored %d pending-order reminders", len(orders))
	}
	return nil
}

// Shutdown stops every active reminder
func (r *ReminderRegistry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for orderID, ticker := range r.timers {
		ticker.Stop()
		close(r.stop[orderID])
	}
	r.timers = make(map[uint]*time.Ticker)
	r.stop = make(map[uint]chan struct{})
}
