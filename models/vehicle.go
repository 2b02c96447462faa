package models

import (
	"time"

	"gorm.io/datatypes"
)

type Vehicle struct {
	ID                     uint            `gorm:"primaryKey" json:"id"`
	CustomerID             uint            `gorm:"not null;index" json:"customer_id"`
	Customer               Customer        `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	VIN                    string          `gorm:"column:vin;type:varchar(17);uniqueIndex;not null" json:"vin"`
	Make                   string          `gorm:"type:varchar(50);not null" json:"make"`
	Model                  string          `gorm:"type:varchar(50);not null" json:"model"`
	Year                   int             `gorm:"not null" json:"year"`
	Color                  string          `gorm:"type:varchar(30)" json:"color"`
	LicensePlate           string          `gorm:"type:varchar(15);not null" json:"license_plate"`
	Mileage                int             `gorm:"not null;default:0" json:"mileage"`
	RegistrationDate       *datatypes.Date `json:"registration_date,omitempty"`
	LastServiceDate        *datatypes.Date `json:"last_service_date,omitempty"`
	NextServiceDate        *datatypes.Date `gorm:"index" json:"next_service_date,omitempty"`
	MaintenanceNotifiedFor *datatypes.Date `json:"-"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}
