package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/washline/washline-api/models"
)

// Order lifecycle statuses, in fulfillment order. Cancelled is a parallel
// terminal state reachable from any non-terminal status, so it never appears
// in the successor table.
const (
	StatusPending        = "pending"
	StatusPickedUp       = "picked_up"
	StatusProcessing     = "processing"
	StatusDrying         = "drying"
	StatusPressing       = "pressing"
	StatusReady          = "ready"
	StatusOutForDelivery = "out_for_delivery"
	StatusDelivered      = "delivered"
	StatusCancelled      = "cancelled"
)

// transitions is the allowed-successor table. The guided chain is linear:
// staff move an order exactly one step at a time, skipping states is
// disallowed. Drying and pressing are optional intermediate states entered
// only through the admin override; once there, the order rejoins the chain
// one step at a time.
var transitions = map[string][]string{
	StatusPending:        {StatusPickedUp},
	StatusPickedUp:       {StatusProcessing},
	StatusProcessing:     {StatusReady},
	StatusDrying:         {StatusPressing},
	StatusPressing:       {StatusReady},
	StatusReady:          {StatusOutForDelivery},
	StatusOutForDelivery: {StatusDelivered},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// statusLabels maps each status to its customer-facing label
var statusLabels = map[string]string{
	StatusPending:        "Pending pickup",
	StatusPickedUp:       "Picked up",
	StatusProcessing:     "Washing",
	StatusDrying:         "Drying",
	StatusPressing:       "Pressing",
	StatusReady:          "Ready for delivery",
	StatusOutForDelivery: "Out for delivery",
	StatusDelivered:      "Delivered",
	StatusCancelled:      "Cancelled",
}

// AllowedNextStatuses returns the fixed successor list for a status. Terminal
// and unrecognized statuses yield an empty list.
func AllowedNextStatuses(current string) []string {
	next, ok := transitions[current]
	if !ok {
		return []string{}
	}
	return next
}

// IsTerminalStatus reports whether a status has no successors
func IsTerminalStatus(status string) bool {
	return status == StatusDelivered || status == StatusCancelled
}

// StatusLabel returns the customer-facing label for a status, falling back to
// the raw status string
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return status
}

// InvalidTransitionError is returned when a requested status change is not in
// the allowed-successor table. Allowed carries the valid options so the actor
// can be shown what is possible from the current state.
type InvalidTransitionError struct {
	From    string
	To      string
	Allowed []string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %q to %q", e.From, e.To)
}

// ConflictError is returned when a mutation carries a stale order version.
// The write is rejected instead of silently overwriting a concurrent edit;
// the caller should re-read the order and retry.
type ConflictError struct {
	ExpectedVersion int
	ActualVersion   int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("order was modified concurrently (observed version %d, current %d)", e.ExpectedVersion, e.ActualVersion)
}

// LifecycleService owns all order status mutations. Every transition is
// version-checked, recorded as a StatusEvent row and followed by a customer
// notification and reminder cancellation.
type LifecycleService struct {
	db            *gorm.DB
	notifications *NotificationService
	reminders     *ReminderRegistry
}

// NewLifecycleService creates a lifecycle service
func NewLifecycleService(db *gorm.DB, notifications *NotificationService, reminders *ReminderRegistry) *LifecycleService {
	return &LifecycleService{db: db, notifications: notifications, reminders: reminders}
}

// ApplyStatusTransition advances an order one step along the guided staff
// workflow. It fails with InvalidTransitionError when newStatus is not the
// allowed successor and with ConflictError when observedVersion is stale.
func (s *LifecycleService) ApplyStatusTransition(order *models.Order, newStatus string, actor *models.User, observedVersion int) error {
	if order.Version != observedVersion {
		return &ConflictError{ExpectedVersion: observedVersion, ActualVersion: order.Version}
	}

	allowed := AllowedNextStatuses(order.Status)
	if !contains(allowed, newStatus) {
		return &InvalidTransitionError{From: order.Status, To: newStatus, Allowed: allowed}
	}

	return s.commitTransition(order, newStatus, actor, false)
}

// Cancel moves an order to the cancelled terminal state. Any non-terminal
// order can be cancelled; orders are never hard-deleted.
func (s *LifecycleService) Cancel(order *models.Order, actor *models.User, observedVersion int) error {
	if order.Version != observedVersion {
		return &ConflictError{ExpectedVersion: observedVersion, ActualVersion: order.Version}
	}
	if IsTerminalStatus(order.Status) {
		return &InvalidTransitionError{From: order.Status, To: StatusCancelled, Allowed: AllowedNextStatuses(order.Status)}
	}

	return s.commitTransition(order, StatusCancelled, actor, false)
}

// ForceStatus sets an arbitrary status, bypassing the successor table. It
// exists for admins correcting data-entry mistakes and always leaves a
// forced audit event; the guided staff path never goes through here.
func (s *LifecycleService) ForceStatus(order *models.Order, newStatus string, admin *models.User, observedVersion int) error {
	if order.Version != observedVersion {
		return &ConflictError{ExpectedVersion: observedVersion, ActualVersion: order.Version}
	}
	if _, known := transitions[newStatus]; !known {
		return &InvalidTransitionError{From: order.Status, To: newStatus, Allowed: AllowedNextStatuses(order.Status)}
	}

	return s.commitTransition(order, newStatus, admin, true)
}

// ConfirmActualWeight records the weight staff measured at pickup and
// recomputes the final total. It is only allowed while the order is pending
// or picked up, and it does not advance the lifecycle status: weight
// confirmation is an orthogonal flag.
func (s *LifecycleService) ConfirmActualWeight(order *models.Order, actualWeightKg float64, actor *models.User, observedVersion int) error {
	if order.Version != observedVersion {
		return &ConflictError{ExpectedVersion: observedVersion, ActualVersion: order.Version}
	}
	if order.Status != StatusPending && order.Status != StatusPickedUp {
		return &InvalidTransitionError{From: order.Status, To: order.Status, Allowed: AllowedNextStatuses(order.Status)}
	}

	var service models.ServiceType
	if err := s.db.First(&service, order.ServiceTypeID).Error; err != nil {
		return fmt.Errorf("failed to load service type: %w", err)
	}

	selections := make([]AddOnSelection, 0, len(order.AddOns))
	for _, line := range order.AddOns {
		selections = append(selections, AddOnSelection{AddOn: line.AddOn, Quantity: line.Quantity})
	}

	finalTotal, _ := OrderTotal(service, &actualWeightKg, selections)
	finalTotal += order.DeliveryFee

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"actual_weight_kg": actualWeightKg,
			"weight_confirmed": true,
			"final_total":      finalTotal,
			"version":          order.Version + 1,
			"updated_at":       time.Now(),
		}
		return s.guardedUpdate(tx, order, updates)
	})
	if err != nil {
		return err
	}

	order.ActualWeightKg = &actualWeightKg
	order.WeightConfirmed = true
	order.FinalTotal = &finalTotal
	order.Version++
	return nil
}

// commitTransition performs the shared transition bookkeeping: status write,
// version bump, staff assignment, audit event, notification and reminder
// cancellation.
func (s *LifecycleService) commitTransition(order *models.Order, newStatus string, actor *models.User, forced bool) error {
	assignStaff := order.AssignedStaffID == nil && actor.Role != models.RoleCustomer

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":     newStatus,
			"version":    order.Version + 1,
			"updated_at": time.Now(),
		}
		if assignStaff {
			updates["assigned_staff_id"] = actor.ID
		}

		if err := s.guardedUpdate(tx, order, updates); err != nil {
			return err
		}

		event := models.StatusEvent{
			OrderID: order.ID,
			Status:  newStatus,
			ActorID: actor.ID,
			Forced:  forced,
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to record status event: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	order.Status = newStatus
	order.Version++
	if assignStaff {
		id := actor.ID
		order.AssignedStaffID = &id
	}

	// Side effects after the transaction commits: tell the customer and stop
	// re-notifying staff about this order.
	if s.notifications != nil {
		s.notifications.NotifyStatusUpdate(order)
	}
	if s.reminders != nil {
		s.reminders.Cancel(order.ID)
	}

	return nil
}

// guardedUpdate writes an order mutation with the version predicate so the
// first committer wins: a concurrent write that landed after our read leaves
// zero rows to update, and the caller gets a ConflictError instead of
// silently overwriting it. The in-memory order is left untouched; callers
// apply their own field updates after the transaction commits.
func (s *LifecycleService) guardedUpdate(tx *gorm.DB, order *models.Order, updates map[string]interface{}) error {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var current models.Order
		if err := tx.Select("version").First(&current, order.ID).Error; err != nil {
			return fmt.Errorf("failed to reload order version: %w", err)
		}
		return &ConflictError{ExpectedVersion: order.Version, ActualVersion: current.Version}
	}
	return nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
