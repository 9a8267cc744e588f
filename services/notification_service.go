package services

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/washline/washline-api/models"
)

// NotificationService creates and updates persisted notifications. Delivery to
// devices is handled by a separate push worker reading the same table; this
// service only writes the rows.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// NotifyNewOrder records a broadcast notification for staff when a customer
// places an order
func (s *NotificationService) NotifyNewOrder(order *models.Order) {
	notification := models.Notification{
		Type:     models.NotifNewOrder,
		Title:    "New order received",
		Message:  fmt.Sprintf("Order %s is waiting for pickup", order.Number),
		Priority: 1,
		OrderID:  &order.ID,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		log.Printf("Failed to create new-order notification for order %d: %v", order.ID, err)
	}
}

// NotifyStatusUpdate tells the order's owning customer that the order moved to
// a new status
func (s *NotificationService) NotifyStatusUpdate(order *models.Order) {
	customerID := order.CustomerID
	notification := models.Notification{
		Type:         models.NotifOrderStatusUpdate,
		Title:        "Order update",
		Message:      fmt.Sprintf("Order %s is now %s", order.Number, StatusLabel(order.Status)),
		TargetUserID: &customerID,
		OrderID:      &order.ID,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		log.Printf("Failed to create status notification for order %d: %v", order.ID, err)
	}
}

// NotifyClientRegistration records that staff registered a walk-in customer
func (s *NotificationService) NotifyClientRegistration(customer *models.User) {
	customerID := customer.ID
	notification := models.Notification{
		Type:         models.NotifClientRegistration,
		Title:        "Welcome to Washline",
		Message:      fmt.Sprintf("An account was created for %s. Use your invitation code to activate it.", customer.Email),
		TargetUserID: &customerID,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		log.Printf("Failed to create registration notification for user %d: %v", customer.ID, err)
	}
}

// NotifyReminder records a staff reminder for an order still waiting to be
// acknowledged
func (s *NotificationService) NotifyReminder(orderID uint, orderNumber string) {
	notification := models.Notification{
		Type:     models.NotifReminder,
		Title:    "Order awaiting pickup",
		Message:  fmt.Sprintf("Order %s has not been acknowledged yet", orderNumber),
		Priority: 2,
		OrderID:  &orderID,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		log.Printf("Failed to create reminder notification for order %d: %v", orderID, err)
	}
}

// Send records an admin-authored notification: targetUserID nil means
// broadcast to everyone, otherwise an individual message
func (s *NotificationService) Send(targetUserID *uint, title, message string, priority int) (*models.Notification, error) {
	notifType := models.NotifBroadcast
	if targetUserID != nil {
		notifType = models.NotifIndividual
	}
	notification := models.Notification{
		Type:         notifType,
		Title:        title,
		Message:      message,
		TargetUserID: targetUserID,
		Priority:     priority,
	}
	if err := s.db.Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return &notification, nil
}

// MarkRead flips the read flag on a notification owned by userID. Broadcasts
// can be marked read by anyone.
func (s *NotificationService) MarkRead(notificationID, userID uint) error {
	var notification models.Notification
	if err := s.db.First(&notification, notificationID).Error; err != nil {
		return err
	}
	if notification.TargetUserID != nil && *notification.TargetUserID != userID {
		return gorm.ErrRecordNotFound
	}
	if notification.Read {
		return nil
	}
	now := time.Now()
	return s.db.Model(&notification).Updates(map[string]interface{}{
		"read":    true,
		"read_at": now,
	}).Error
}

// ListForUser returns the user's individual notifications plus broadcasts,
// newest first
func (s *NotificationService) ListForUser(userID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	query := s.db.Where("target_user_id = ? OR target_user_id IS NULL", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}
