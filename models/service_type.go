package models

import "time"

type ServiceType struct {
	ID                        uint            `gorm:"primaryKey" json:"id"`
	FacilityID                uint            `gorm:"not null;index" json:"facility_id"`
	Facility                  *Facility       `gorm:"foreignKey:FacilityID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"facility,omitempty"`
	Name                      string          `gorm:"type:varchar(100);not null" json:"name"`
	Description               string          `gorm:"type:text" json:"description"`
	DurationMinutes           int             `gorm:"not null" json:"duration_minutes"`
	Price                     float64         `gorm:"type:decimal(10,2);not null" json:"price"`
	MaintenanceIntervalMonths *int            `json:"maintenance_interval_months,omitempty"`
	RequiredCertifications    []Certification `gorm:"many2many:service_type_certifications" json:"required_certifications,omitempty"`
	RequiredEquipment         []Equipment     `gorm:"many2many:service_type_equipment" json:"required_equipment,omitempty"`
	CreatedAt                 time.Time       `json:"created_at"`
	UpdatedAt                 time.Time       `json:"updated_at"`
}

func (s ServiceType) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}
