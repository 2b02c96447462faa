package models

import "time"

type FacilityType string

const (
	FacilityOffice      FacilityType = "OFFICE"
	FacilityTuning      FacilityType = "TUNING"
	FacilityMaintenance FacilityType = "MAINTENANCE"
	FacilityAlignment   FacilityType = "ALIGNMENT"
	FacilityDiagnostic  FacilityType = "DIAGNOSTIC"
	FacilityTire        FacilityType = "TIRE"
	FacilityPaint       FacilityType = "PAINT"
	FacilityCarwash     FacilityType = "CARWASH"
)

var FacilityTypes = []FacilityType{
	FacilityOffice, FacilityTuning, FacilityMaintenance, FacilityAlignment,
	FacilityDiagnostic, FacilityTire, FacilityPaint, FacilityCarwash,
}

func (t FacilityType) Valid() bool {
	for _, known := range FacilityTypes {
		if t == known {
			return true
		}
	}
	return false
}

type Facility struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	RepairShopID uint          `gorm:"not null;index" json:"repair_shop_id"`
	RepairShop   RepairShop    `gorm:"foreignKey:RepairShopID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Name         string        `gorm:"type:varchar(100);not null" json:"name"`
	Type         FacilityType  `gorm:"type:varchar(20);not null;index" json:"type"`
	Description  string        `gorm:"type:text" json:"description"`
	Capacity     int           `gorm:"not null;default:0" json:"capacity"`
	IsActive     bool          `gorm:"not null" json:"is_active"`
	Schedule     *Schedule     `gorm:"foreignKey:FacilityID" json:"schedule,omitempty"`
	Equipment    []Equipment   `gorm:"foreignKey:FacilityID" json:"equipment,omitempty"`
	ServiceTypes []ServiceType `gorm:"foreignKey:FacilityID" json:"service_types,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Schedule holds the opening hours of a facility as "HH:MM" strings.
type Schedule struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	FacilityID           uint      `gorm:"uniqueIndex;not null" json:"facility_id"`
	OpeningTime          string    `gorm:"type:varchar(5);not null" json:"opening_time"`
	ClosingTime          string    `gorm:"type:varchar(5);not null" json:"closing_time"`
	IsOpenWeekends       bool      `gorm:"not null;default:false" json:"is_open_weekends"`
	MaxDailyAppointments int       `gorm:"not null;default:0" json:"max_daily_appointments"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

const (
	DefaultOpeningTime          = "08:00"
	DefaultClosingTime          = "17:00"
	DefaultMaxDailyAppointments = 10
)

func DefaultSchedule(facilityID uint) Schedule {
	return Schedule{
		FacilityID:           facilityID,
		OpeningTime:          DefaultOpeningTime,
		ClosingTime:          DefaultClosingTime,
		IsOpenWeekends:       false,
		MaxDailyAppointments: DefaultMaxDailyAppointments,
	}
}

// Opens reports whether t falls inside the opening hours and, on weekends, whether
// the facility opens at all.
func (s Schedule) Opens(t time.Time) bool {
	if !s.IsOpenWeekends && (t.Weekday() == time.Saturday || t.Weekday() == time.Sunday) {
		return false
	}
	clock := t.Format("15:04")
	return clock >= s.OpeningTime && clock < s.ClosingTime
}

type Equipment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FacilityID    uint      `gorm:"not null;index" json:"facility_id"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	IsOperational bool      `gorm:"not null" json:"is_operational"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Certification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
