package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type EventType string

const (
	EventAppointmentCreated   EventType = "APPOINTMENT_CREATED"
	EventAppointmentUpdated   EventType = "APPOINTMENT_UPDATED"
	EventAppointmentCompleted EventType = "APPOINTMENT_COMPLETED"
	EventAppointmentCancelled EventType = "APPOINTMENT_CANCELLED"
	EventReviewSubmitted      EventType = "REVIEW_SUBMITTED"
	EventMaintenanceDue       EventType = "MAINTENANCE_DUE"
	EventFacilityCreated      EventType = "FACILITY_CREATED"
	EventPaymentRecorded      EventType = "PAYMENT_RECORDED"
)

var ErrEventLogImmutable = errors.New("event log entries are append-only")

type EventLog struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Type          EventType      `gorm:"type:varchar(50);not null;index" json:"type"`
	AccountID     *uint          `gorm:"index" json:"account_id,omitempty"`
	FacilityID    *uint          `gorm:"index" json:"facility_id,omitempty"`
	AppointmentID *uint          `gorm:"index" json:"appointment_id,omitempty"`
	Description   string         `gorm:"type:text" json:"description"`
	Metadata      datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;index" json:"created_at"`
}

func (e *EventLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrEventLogImmutable
}

func (e *EventLog) BeforeDelete(tx *gorm.DB) error {
	return ErrEventLogImmutable
}
