package models

import (
	"time"

	"gorm.io/datatypes"
)

// RepairShop is stored as a single row. Singleton is always true and carries a
// unique index, so the database rejects a second row even when two creations race.
type RepairShop struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Singleton bool      `gorm:"not null;uniqueIndex" json:"-"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	Address   string    `gorm:"type:text" json:"address"`
	Phone     string    `gorm:"type:varchar(15)" json:"phone"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	TaxID     string    `gorm:"type:varchar(50)" json:"tax_id"`
	OwnerID   *uint     `gorm:"index" json:"owner_id,omitempty"`
	Owner     *Account  `gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"owner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Analytics is a denormalized snapshot, rebuilt wholesale on demand.
type Analytics struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	RepairShopID          uint           `gorm:"uniqueIndex;not null" json:"repair_shop_id"`
	TotalCustomers        int64          `gorm:"not null;default:0" json:"total_customers"`
	TotalVehicles         int64          `gorm:"not null;default:0" json:"total_vehicles"`
	TotalAppointments     int64          `gorm:"not null;default:0" json:"total_appointments"`
	TotalRevenue          float64        `gorm:"type:decimal(12,2);not null;default:0" json:"total_revenue"`
	CustomerSatisfaction  float64        `gorm:"type:decimal(3,2);not null;default:0" json:"customer_satisfaction"`
	FacilityUtilization   datatypes.JSON `json:"facility_utilization"`
	TechnicianPerformance datatypes.JSON `json:"technician_performance"`
	ServiceRevenue        datatypes.JSON `json:"service_revenue"`
	LastUpdated           *time.Time     `json:"last_updated"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

type FacilityUtilization struct {
	FacilityID      uint    `json:"facility_id"`
	Name            string  `json:"name"`
	Capacity        int     `json:"capacity"`
	Completed       int64   `json:"completed"`
	UtilizationRate float64 `json:"utilization_rate"`
}

type TechnicianPerformance struct {
	EmployeeID     uint    `json:"employee_id"`
	Name           string  `json:"name"`
	Assigned       int64   `json:"assigned"`
	Completed      int64   `json:"completed"`
	AverageRating  float64 `json:"average_rating"`
	CompletionRate float64 `json:"completion_rate"`
}

type ServiceRevenue struct {
	ServiceTypeID uint    `json:"service_type_id"`
	Name          string  `json:"name"`
	Completed     int64   `json:"completed"`
	Revenue       float64 `json:"revenue"`
}
