package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReminderMonitor periodically creates the notifications nobody asks for explicitly:
// appointment reminders, maintenance due alerts and review requests.
type ReminderMonitor struct {
	DB       *gorm.DB
	Pusher   Pusher
	StopChan chan struct{}
	Interval time.Duration
	LeadTime time.Duration
}

type ReminderStats struct {
	AppointmentReminders int
	MaintenanceDue       int
	ReviewRequests       int
}

func NewReminderMonitor(db *gorm.DB, pusher Pusher, interval, leadTime time.Duration) *ReminderMonitor {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if leadTime <= 0 {
		leadTime = 24 * time.Hour
	}
	return &ReminderMonitor{
		DB:       db,
		Pusher:   pusher,
		StopChan: make(chan struct{}),
		Interval: interval,
		LeadTime: leadTime,
	}
}

func (rm *ReminderMonitor) Start() {
	go func() {
		ticker := time.NewTicker(rm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rm.CheckReminders(context.Background())
			case <-rm.StopChan:
				return
			}
		}
	}()
	utils.InfoLogger.Printf("Reminder monitor started (every %s)", rm.Interval)
}

func (rm *ReminderMonitor) Stop() {
	close(rm.StopChan)
}

// CheckReminders runs one pass. Every notification kind is sent at most once per
// appointment or due date.
func (rm *ReminderMonitor) CheckReminders(ctx context.Context) ReminderStats {
	var stats ReminderStats
	var err error

	if stats.AppointmentReminders, err = rm.remindAppointments(ctx); err != nil {
		logFailure("appointment reminders", err)
	}
	if stats.MaintenanceDue, err = rm.notifyMaintenanceDue(ctx); err != nil {
		logFailure("maintenance alerts", err)
	}
	if stats.ReviewRequests, err = rm.requestReviews(ctx); err != nil {
		logFailure("review requests", err)
	}

	if stats != (ReminderStats{}) {
		utils.InfoLogger.Printf("Reminders sent: %+v", stats)
	}
	return stats
}

func (rm *ReminderMonitor) remindAppointments(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	var due []models.Appointment
	err := rm.DB.WithContext(ctx).
		Preload("Customer").
		Preload("ServiceType").
		Where("status = ? AND reminder_sent = ?", models.StatusScheduled, false).
		Where("scheduled_at > ? AND scheduled_at <= ?", now, now.Add(rm.LeadTime)).
		Order("scheduled_at ASC").
		Limit(100).
		Find(&due).Error
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, appt := range due {
		var notification models.Notification
		err := rm.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// claim the reminder first so a second monitor skips it
			result := tx.Model(&models.Appointment{}).
				Where("id = ? AND reminder_sent = ?", appt.ID, false).
				Update("reminder_sent", true)
			if result.Error != nil || result.RowsAffected == 0 {
				return result.Error
			}
			notification = models.Notification{
				AccountID:     appt.Customer.AccountID,
				AppointmentID: uintPtr(appt.ID),
				Type:          models.NotificationAppointmentReminder,
				Title:         "Upcoming appointment",
				Message: fmt.Sprintf("Reminder: %s is scheduled for %s.",
					appt.ServiceType.Name, appt.ScheduledAt.Format("Mon 2006-01-02 15:04")),
			}
			return createNotification(tx, &notification)
		})
		if err != nil {
			return sent, err
		}
		if notification.ID != 0 {
			pushNotifications(rm.Pusher, notification)
			sent++
		}
	}
	return sent, nil
}

func (rm *ReminderMonitor) notifyMaintenanceDue(ctx context.Context) (int, error) {
	var vehicles []models.Vehicle
	err := rm.DB.WithContext(ctx).
		Preload("Customer").
		Where("next_service_date IS NOT NULL AND next_service_date <= ?", datatypes.Date(today())).
		Find(&vehicles).Error
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, v := range vehicles {
		dueDate := time.Time(*v.NextServiceDate)
		if v.MaintenanceNotifiedFor != nil && time.Time(*v.MaintenanceNotifiedFor).Equal(dueDate) {
			continue
		}

		notification := models.Notification{
			AccountID: v.Customer.AccountID,
			Type:      models.NotificationMaintenanceDue,
			Title:     "Maintenance due",
			Message: fmt.Sprintf("Your %d %s %s (%s) was due for service on %s.",
				v.Year, v.Make, v.Model, v.LicensePlate, dueDate.Format("2006-01-02")),
		}
		err := rm.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Vehicle{}).Where("id = ?", v.ID).
				Update("maintenance_notified_for", *v.NextServiceDate).Error; err != nil {
				return err
			}
			if err := createNotification(tx, &notification); err != nil {
				return err
			}
			return recordEvent(tx, models.EventLog{
				Type:        models.EventMaintenanceDue,
				AccountID:   uintPtr(v.Customer.AccountID),
				Description: fmt.Sprintf("Vehicle %s due for maintenance", v.VIN),
			}, map[string]interface{}{"vehicle_id": v.ID, "due": dueDate.Format("2006-01-02")})
		})
		if err != nil {
			return sent, err
		}
		pushNotifications(rm.Pusher, notification)
		sent++
	}
	return sent, nil
}

// requestReviews asks for a review on completed appointments that have none and were
// not asked before.
func (rm *ReminderMonitor) requestReviews(ctx context.Context) (int, error) {
	var pending []models.Appointment
	err := rm.DB.WithContext(ctx).
		Preload("Customer").
		Preload("ServiceType").
		Where("status = ?", models.StatusCompleted).
		Where("NOT EXISTS (SELECT 1 FROM reviews WHERE reviews.appointment_id = appointments.id)").
		Where("NOT EXISTS (SELECT 1 FROM notifications WHERE notifications.appointment_id = appointments.id AND notifications.type = ?)",
			models.NotificationReviewRequest).
		Limit(100).
		Find(&pending).Error
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, appt := range pending {
		notification := models.Notification{
			AccountID:     appt.Customer.AccountID,
			AppointmentID: uintPtr(appt.ID),
			Type:          models.NotificationReviewRequest,
			Title:         "How did we do?",
			Message:       fmt.Sprintf("Please rate your %s appointment.", appt.ServiceType.Name),
		}
		if err := createNotification(rm.DB.WithContext(ctx), &notification); err != nil {
			return sent, err
		}
		pushNotifications(rm.Pusher, notification)
		sent++
	}
	return sent, nil
}
