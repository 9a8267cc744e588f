package controllers

import (
	"gorm.io/gorm"

	"github.com/washline/washline-api/config"
	"github.com/washline/washline-api/services"
)

// Package-level service instances, wired once by main (or by tests against an
// in-memory database).
var (
	notificationService *services.NotificationService
	reminderRegistry    *services.ReminderRegistry
	lifecycleService    *services.LifecycleService
	priceBook           *services.PriceBook
)

// Init wires the domain services the controllers depend on
func Init(db *gorm.DB, cfg *config.Config) {
	notificationService = services.NewNotificationService(db)
	reminderRegistry = services.NewReminderRegistry(db, notificationService, cfg.ReminderInterval)
	lifecycleService = services.NewLifecycleService(db, notificationService, reminderRegistry)
	priceBook = services.NewPriceBook(db, cfg.CurrencyCode)
}

// Reminders exposes the reminder registry so main can restore persisted
// reminders at boot and stop them on shutdown
func Reminders() *services.ReminderRegistry {
	return reminderRegistry
}
