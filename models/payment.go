package models

import "time"

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentCash         PaymentMethod = "CASH"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCreditCard, PaymentDebitCard, PaymentCash, PaymentBankTransfer:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// Payment settles one appointment.
type Payment struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	AppointmentID uint          `gorm:"uniqueIndex;not null" json:"appointment_id"`
	Appointment   Appointment   `gorm:"foreignKey:AppointmentID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Amount        float64       `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method        PaymentMethod `gorm:"type:varchar(20);not null" json:"method"`
	Status        PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	TransactionID *string       `gorm:"type:varchar(100);uniqueIndex" json:"transaction_id,omitempty"`
	VANumber      string        `gorm:"type:varchar(50)" json:"va_number,omitempty"`
	RecordedByID  *uint         `json:"recorded_by_id,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
