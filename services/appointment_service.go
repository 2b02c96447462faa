package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BookingInput struct {
	VehicleID     uint      `json:"vehicle_id" binding:"required"`
	ServiceTypeID uint      `json:"service_type_id" binding:"required"`
	TechnicianID  *uint     `json:"technician_id"`
	ScheduledAt   time.Time `json:"scheduled_at" binding:"required"`
	Notes         string    `json:"notes"`
}

type CompleteInput struct {
	Comment   string   `json:"comment"`
	FinalCost *float64 `json:"final_cost"`
}

type AppointmentFilter struct {
	Status models.AppointmentStatus
}

type AppointmentService struct {
	DB     *gorm.DB
	Pusher Pusher
}

func NewAppointmentService(db *gorm.DB, pusher Pusher) *AppointmentService {
	return &AppointmentService{DB: db, Pusher: pusher}
}

func preloadAppointment(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Customer.Account.User").
		Preload("Vehicle").
		Preload("ServiceType.Facility").
		Preload("Technician.Account.User").
		Preload("Review")
}

// Book creates a SCHEDULED appointment for the calling customer. The estimated cost is
// the service price at booking time.
func (s *AppointmentService) Book(ctx context.Context, accountID uint, in BookingInput) (*models.Appointment, error) {
	scheduledAt := in.ScheduledAt.UTC()
	if !scheduledAt.After(time.Now().UTC()) {
		return nil, invalid("appointment must be scheduled in the future")
	}

	var appointment models.Appointment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := customerByAccount(tx, accountID)
		if err != nil {
			return err
		}

		var vehicle models.Vehicle
		if err := tx.Where("id = ? AND customer_id = ?", in.VehicleID, customer.ID).First(&vehicle).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("vehicle %d is not registered to you", in.VehicleID)
			}
			return err
		}

		var service models.ServiceType
		if err := tx.Preload("Facility.Schedule").First(&service, in.ServiceTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("service type %d does not exist", in.ServiceTypeID)
			}
			return err
		}
		if service.Facility == nil || !service.Facility.IsActive {
			return invalid("facility for %q is not accepting appointments", service.Name)
		}

		schedule := models.DefaultSchedule(service.FacilityID)
		if service.Facility.Schedule != nil {
			schedule = *service.Facility.Schedule
		}
		if !schedule.Opens(scheduledAt) {
			return invalid("facility is closed at %s", scheduledAt.Format("Mon 2006-01-02 15:04"))
		}
		if err := checkDailyCapacity(tx, schedule, scheduledAt); err != nil {
			return err
		}

		if in.TechnicianID != nil {
			if _, err := activeTechnician(tx, *in.TechnicianID); err != nil {
				return err
			}
		}

		appointment = models.Appointment{
			CustomerID:    customer.ID,
			VehicleID:     vehicle.ID,
			ServiceTypeID: service.ID,
			TechnicianID:  in.TechnicianID,
			ScheduledAt:   scheduledAt,
			Status:        models.StatusScheduled,
			Notes:         in.Notes,
			EstimatedCost: service.Price,
		}
		if err := tx.Create(&appointment).Error; err != nil {
			return err
		}

		return recordEvent(tx, models.EventLog{
			Type:          models.EventAppointmentCreated,
			AccountID:     uintPtr(accountID),
			FacilityID:    uintPtr(service.FacilityID),
			AppointmentID: uintPtr(appointment.ID),
			Description:   fmt.Sprintf("%s booked for %s", service.Name, scheduledAt.Format(time.RFC3339)),
		}, map[string]interface{}{"vehicle_id": vehicle.ID, "service_type_id": service.ID})
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Appointment %d booked by account %d", appointment.ID, accountID)
	booked, err := s.load(ctx, appointment.ID)
	if err != nil {
		return nil, err
	}
	if b, ok := s.Pusher.(Broadcaster); ok {
		b.BroadcastToRoles(EventAppointmentBooked, booked, frontDeskRoles...)
	}
	return booked, nil
}

// checkDailyCapacity counts the non-cancelled appointments of the facility on the
// same day.
func checkDailyCapacity(tx *gorm.DB, schedule models.Schedule, at time.Time) error {
	if schedule.MaxDailyAppointments <= 0 {
		return nil
	}
	dayStart := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	var booked int64
	err := tx.Model(&models.Appointment{}).
		Joins("JOIN service_types ON service_types.id = appointments.service_type_id").
		Where("service_types.facility_id = ?", schedule.FacilityID).
		Where("appointments.scheduled_at >= ? AND appointments.scheduled_at < ?", dayStart, dayStart.AddDate(0, 0, 1)).
		Where("appointments.status <> ?", models.StatusCancelled).
		Count(&booked).Error
	if err != nil {
		return err
	}
	if booked >= int64(schedule.MaxDailyAppointments) {
		return invalid("facility is fully booked on %s", dayStart.Format("2006-01-02"))
	}
	return nil
}

// transition moves appt to next with a compare-and-set on the current status, so two
// concurrent requests cannot both succeed.
func transition(tx *gorm.DB, appt *models.Appointment, next models.AppointmentStatus, fields map[string]interface{}) error {
	if !appt.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot move appointment from %s to %s", ErrInvalidTransition, appt.Status, next)
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["status"] = next

	result := tx.Model(&models.Appointment{}).
		Where("id = ? AND status = ?", appt.ID, appt.Status).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: appointment %d was changed by another request", ErrInvalidTransition, appt.ID)
	}
	appt.Status = next
	return nil
}

// Cancel is open to the owning customer while the appointment is SCHEDULED.
func (s *AppointmentService) Cancel(ctx context.Context, accountID, appointmentID uint) (*models.Appointment, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := customerByAccount(tx, accountID)
		if err != nil {
			return hideForbidden(err, "appointment")
		}
		var appt models.Appointment
		if err := tx.Where("id = ? AND customer_id = ?", appointmentID, customer.ID).First(&appt).Error; err != nil {
			return notFound(err, "appointment")
		}
		if err := transition(tx, &appt, models.StatusCancelled, nil); err != nil {
			return err
		}
		return recordEvent(tx, models.EventLog{
			Type:          models.EventAppointmentCancelled,
			AccountID:     uintPtr(accountID),
			AppointmentID: uintPtr(appt.ID),
			Description:   "Appointment cancelled by customer",
		}, nil)
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Appointment %d cancelled", appointmentID)
	return s.load(ctx, appointmentID)
}

// assignedAppointment loads the appointment and checks the caller is its technician.
func assignedAppointment(tx *gorm.DB, accountID, appointmentID uint) (*models.Appointment, *models.Employee, error) {
	var appt models.Appointment
	if err := tx.Preload("ServiceType").Preload("Customer").First(&appt, appointmentID).Error; err != nil {
		return nil, nil, notFound(err, "appointment")
	}
	employee, err := employeeByAccount(tx, accountID)
	if err != nil {
		return nil, nil, err
	}
	if appt.TechnicianID == nil || *appt.TechnicianID != employee.ID {
		return nil, nil, fmt.Errorf("%w: appointment %d is not assigned to you", ErrForbidden, appointmentID)
	}
	return &appt, employee, nil
}

// Start is open to the assigned technician while the appointment is SCHEDULED.
func (s *AppointmentService) Start(ctx context.Context, accountID, appointmentID uint) (*models.Appointment, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appt, _, err := assignedAppointment(tx, accountID, appointmentID)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if err := transition(tx, appt, models.StatusInProgress, map[string]interface{}{
			"actual_start_time": now,
		}); err != nil {
			return err
		}
		return recordEvent(tx, models.EventLog{
			Type:          models.EventAppointmentUpdated,
			AccountID:     uintPtr(accountID),
			FacilityID:    uintPtr(appt.ServiceType.FacilityID),
			AppointmentID: uintPtr(appt.ID),
			Description:   "Work started",
		}, map[string]interface{}{"status": models.StatusInProgress})
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Appointment %d started by account %d", appointmentID, accountID)
	return s.load(ctx, appointmentID)
}

// Complete is open to the assigned technician while the appointment is IN_PROGRESS.
// The customer gets exactly one STATUS_UPDATE notification and the vehicle's service
// dates move forward.
func (s *AppointmentService) Complete(ctx context.Context, accountID, appointmentID uint, in CompleteInput) (*models.Appointment, error) {
	if in.FinalCost != nil && *in.FinalCost < 0 {
		return nil, invalid("final cost cannot be negative")
	}

	var notification models.Notification
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appt, _, err := assignedAppointment(tx, accountID, appointmentID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		fields := map[string]interface{}{"actual_end_time": now}
		if in.Comment != "" {
			fields["notes"] = in.Comment
		}
		if in.FinalCost != nil {
			fields["final_cost"] = *in.FinalCost
		}
		if err := transition(tx, appt, models.StatusCompleted, fields); err != nil {
			return err
		}

		if err := advanceServiceDates(tx, appt.VehicleID, appt.ServiceType, now); err != nil {
			return err
		}

		notification = models.Notification{
			AccountID:     appt.Customer.AccountID,
			AppointmentID: uintPtr(appt.ID),
			Type:          models.NotificationStatusUpdate,
			Title:         "Service completed",
			Message:       fmt.Sprintf("Your %s appointment has been completed.", appt.ServiceType.Name),
		}
		if err := createNotification(tx, &notification); err != nil {
			return err
		}

		return recordEvent(tx, models.EventLog{
			Type:          models.EventAppointmentCompleted,
			AccountID:     uintPtr(accountID),
			FacilityID:    uintPtr(appt.ServiceType.FacilityID),
			AppointmentID: uintPtr(appt.ID),
			Description:   "Work completed",
		}, map[string]interface{}{"final_cost": in.FinalCost})
	})
	if err != nil {
		return nil, err
	}

	pushNotifications(s.Pusher, notification)
	utils.InfoLogger.Printf("Appointment %d completed by account %d", appointmentID, accountID)
	return s.load(ctx, appointmentID)
}

// advanceServiceDates records the service on the vehicle and schedules the next one
// when the service type has a maintenance interval.
func advanceServiceDates(tx *gorm.DB, vehicleID uint, service models.ServiceType, at time.Time) error {
	today := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	fields := map[string]interface{}{"last_service_date": datatypes.Date(today)}
	if service.MaintenanceIntervalMonths != nil {
		fields["next_service_date"] = datatypes.Date(today.AddDate(0, *service.MaintenanceIntervalMonths, 0))
	}
	return tx.Model(&models.Vehicle{}).Where("id = ?", vehicleID).Updates(fields).Error
}

// AssignTechnician (re)assigns a SCHEDULED appointment. Front desk roles only; the
// controller checks the role.
func (s *AppointmentService) AssignTechnician(ctx context.Context, actorID, appointmentID, technicianID uint) (*models.Appointment, error) {
	var notification models.Notification
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var appt models.Appointment
		if err := tx.Preload("ServiceType").First(&appt, appointmentID).Error; err != nil {
			return notFound(err, "appointment")
		}
		if appt.Status != models.StatusScheduled {
			return fmt.Errorf("%w: only scheduled appointments can be assigned", ErrInvalidTransition)
		}
		technician, err := activeTechnician(tx, technicianID)
		if err != nil {
			return err
		}

		result := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", appt.ID, models.StatusScheduled).
			Update("technician_id", technician.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: appointment %d was changed by another request", ErrInvalidTransition, appt.ID)
		}

		notification = models.Notification{
			AccountID:     technician.AccountID,
			AppointmentID: uintPtr(appt.ID),
			Type:          models.NotificationStatusUpdate,
			Title:         "New assignment",
			Message: fmt.Sprintf("You have been assigned %s on %s.",
				appt.ServiceType.Name, appt.ScheduledAt.Format("2006-01-02 15:04")),
		}
		if err := createNotification(tx, &notification); err != nil {
			return err
		}

		return recordEvent(tx, models.EventLog{
			Type:          models.EventAppointmentUpdated,
			AccountID:     optionalID(actorID),
			FacilityID:    uintPtr(appt.ServiceType.FacilityID),
			AppointmentID: uintPtr(appt.ID),
			Description:   "Technician assigned",
		}, map[string]interface{}{"technician_id": technician.ID})
	})
	if err != nil {
		return nil, err
	}

	pushNotifications(s.Pusher, notification)
	return s.load(ctx, appointmentID)
}

// scope restricts an appointment query to what the account may see: customers their
// own, technicians their assignments, front desk everything.
func scope(tx *gorm.DB, accountID uint, role models.Role) (*gorm.DB, error) {
	switch {
	case role == models.RoleCustomer:
		customer, err := customerByAccount(tx, accountID)
		if err != nil {
			return nil, err
		}
		return tx.Where("appointments.customer_id = ?", customer.ID), nil
	case role.IsManagement() || role == models.RoleSupervisor || role == models.RoleSecretary:
		return tx, nil
	default:
		employee, err := employeeByAccount(tx, accountID)
		if err != nil {
			return nil, err
		}
		return tx.Where("appointments.technician_id = ?", employee.ID), nil
	}
}

func (s *AppointmentService) GetAppointment(ctx context.Context, accountID uint, role models.Role, appointmentID uint) (*models.Appointment, error) {
	query, err := scope(s.DB.WithContext(ctx), accountID, role)
	if err != nil {
		return nil, hideForbidden(err, "appointment")
	}
	var appt models.Appointment
	if err := preloadAppointment(query).Where("appointments.id = ?", appointmentID).First(&appt).Error; err != nil {
		return nil, notFound(err, "appointment")
	}
	return &appt, nil
}

func (s *AppointmentService) ListAppointments(ctx context.Context, accountID uint, role models.Role, filter AppointmentFilter) ([]models.Appointment, error) {
	query, err := scope(s.DB.WithContext(ctx), accountID, role)
	if err != nil {
		return nil, err
	}
	if filter.Status != "" {
		query = query.Where("appointments.status = ?", filter.Status)
	}
	var appointments []models.Appointment
	err = preloadAppointment(query).Order("appointments.scheduled_at DESC").Find(&appointments).Error
	return appointments, err
}

func (s *AppointmentService) load(ctx context.Context, id uint) (*models.Appointment, error) {
	var appt models.Appointment
	if err := preloadAppointment(s.DB.WithContext(ctx)).First(&appt, id).Error; err != nil {
		return nil, notFound(err, "appointment")
	}
	return &appt, nil
}

// BookingOptions is what a customer needs to fill the booking form.
type BookingOptions struct {
	Vehicles     []models.Vehicle     `json:"vehicles"`
	ServiceTypes []models.ServiceType `json:"service_types"`
}

func (s *AppointmentService) BookingOptions(ctx context.Context, accountID uint) (*BookingOptions, error) {
	var opts BookingOptions
	err := s.DB.WithContext(ctx).
		Joins("JOIN customers ON customers.id = vehicles.customer_id").
		Where("customers.account_id = ?", accountID).
		Find(&opts.Vehicles).Error
	if err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).
		Joins("JOIN facilities ON facilities.id = service_types.facility_id").
		Where("facilities.is_active = ?", true).
		Order("service_types.id ASC").
		Find(&opts.ServiceTypes).Error
	if err != nil {
		return nil, err
	}
	return &opts, nil
}
