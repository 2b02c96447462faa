package services

import (
	"encoding/json"

	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Websocket event names pushed to connected accounts.
const (
	EventNotification      = "notification"
	EventPaymentUpdate     = "payment_update"
	EventAppointmentBooked = "appointment_booked"
)

// frontDeskRoles see new bookings as they arrive.
var frontDeskRoles = []models.Role{
	models.RoleSecretary, models.RoleSupervisor, models.RoleManager, models.RoleOwner, models.RoleAdmin,
}

// Pusher delivers realtime events to an account's open connections. The hub package
// implements it.
type Pusher interface {
	PushToAccount(accountID uint, event string, data interface{})
}

// Broadcaster is implemented by pushers that can also reach every account of a role.
type Broadcaster interface {
	BroadcastToRoles(event string, data interface{}, roles ...models.Role)
}

// recordEvent appends one row to the event log inside tx.
func recordEvent(tx *gorm.DB, entry models.EventLog, metadata map[string]interface{}) error {
	if metadata != nil {
		raw, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		entry.Metadata = datatypes.JSON(raw)
	}
	return tx.Create(&entry).Error
}

func createNotification(tx *gorm.DB, n *models.Notification) error {
	return tx.Create(n).Error
}

// pushNotifications is called after commit so clients never see rolled back rows.
func pushNotifications(p Pusher, notifications ...models.Notification) {
	if p == nil {
		return
	}
	for _, n := range notifications {
		p.PushToAccount(n.AccountID, EventNotification, n)
	}
}

func uintPtr(v uint) *uint {
	return &v
}

func logFailure(action string, err error) {
	utils.ErrorLogger.Printf("%s: %v", action, err)
}
