package models

import (
	"time"

	"gorm.io/datatypes"
)

type Employee struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	AccountID       uint            `gorm:"uniqueIndex;not null" json:"account_id"`
	Account         Account         `gorm:"foreignKey:AccountID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"account"`
	SupervisorID    *uint           `gorm:"index" json:"supervisor_id,omitempty"`
	Supervisor      *Employee       `gorm:"foreignKey:SupervisorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"supervisor,omitempty"`
	FacilityID      *uint           `gorm:"index" json:"facility_id,omitempty"`
	Facility        *Facility       `gorm:"foreignKey:FacilityID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"facility,omitempty"`
	HireDate        datatypes.Date  `json:"hire_date"`
	Salary          float64         `gorm:"type:decimal(10,2);not null;default:0" json:"salary"`
	IsActive        bool            `gorm:"not null" json:"is_active"`
	Specializations string          `gorm:"type:text" json:"specializations"`
	Certifications  []Certification `gorm:"many2many:employee_certifications" json:"certifications,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TechnicianAvailability is a published working window for one technician on one day.
type TechnicianAvailability struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EmployeeID  uint           `gorm:"not null;index" json:"employee_id"`
	Employee    Employee       `gorm:"foreignKey:EmployeeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Date        datatypes.Date `gorm:"not null;index" json:"date"`
	StartTime   string         `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime     string         `gorm:"type:varchar(5);not null" json:"end_time"`
	IsAvailable bool           `gorm:"not null" json:"is_available"`
	CreatedAt   time.Time      `json:"created_at"`
}
