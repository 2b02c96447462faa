package models

import "time"

type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "SCHEDULED"
	StatusInProgress AppointmentStatus = "IN_PROGRESS"
	StatusCompleted  AppointmentStatus = "COMPLETED"
	StatusCancelled  AppointmentStatus = "CANCELLED"
)

// transitions lists every legal status move. IN_PROGRESS -> CANCELLED is deliberately
// absent: no operation exposes it.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted},
}

func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s AppointmentStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

type Appointment struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	CustomerID      uint              `gorm:"not null;index" json:"customer_id"`
	Customer        Customer          `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"customer"`
	VehicleID       uint              `gorm:"not null;index" json:"vehicle_id"`
	Vehicle         Vehicle           `gorm:"foreignKey:VehicleID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"vehicle"`
	ServiceTypeID   uint              `gorm:"not null;index" json:"service_type_id"`
	ServiceType     ServiceType       `gorm:"foreignKey:ServiceTypeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"service_type"`
	TechnicianID    *uint             `gorm:"index" json:"technician_id,omitempty"`
	Technician      *Employee         `gorm:"foreignKey:TechnicianID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"technician,omitempty"`
	ScheduledAt     time.Time         `gorm:"not null;index" json:"scheduled_at"`
	Status          AppointmentStatus `gorm:"type:varchar(20);not null;default:'SCHEDULED';index" json:"status"`
	Notes           string            `gorm:"type:text" json:"notes"`
	EstimatedCost   float64           `gorm:"type:decimal(10,2);not null;default:0" json:"estimated_cost"`
	FinalCost       *float64          `gorm:"type:decimal(10,2)" json:"final_cost,omitempty"`
	ActualStartTime *time.Time        `json:"actual_start_time,omitempty"`
	ActualEndTime   *time.Time        `json:"actual_end_time,omitempty"`
	ReminderSent    bool              `gorm:"not null;default:false" json:"-"`
	Review          *Review           `gorm:"foreignKey:AppointmentID" json:"review,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// IsOnTime compares the actual end against scheduled start plus service duration.
// It is nil until the appointment is completed. ServiceType must be loaded.
func (a Appointment) IsOnTime() *bool {
	if a.Status != StatusCompleted || a.ActualEndTime == nil || a.ScheduledAt.IsZero() {
		return nil
	}
	deadline := a.ScheduledAt.Add(a.ServiceType.Duration())
	onTime := !a.ActualEndTime.After(deadline)
	return &onTime
}
