package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yeremiapane/auto-service/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AvailabilityInput struct {
	Date        string `json:"date" binding:"required"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	IsAvailable *bool  `json:"is_available"`
}

type AvailabilityService struct {
	DB *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{DB: db}
}

// Publish lets a technician announce a working window for a day from today on.
func (s *AvailabilityService) Publish(ctx context.Context, accountID uint, in AvailabilityInput) (*models.TechnicianAvailability, error) {
	day, err := time.Parse("2006-01-02", in.Date)
	if err != nil {
		return nil, invalid("date must be YYYY-MM-DD")
	}
	if day.Before(today()) {
		return nil, invalid("availability cannot be published for past days")
	}
	if err := validateHours(in.StartTime, in.EndTime); err != nil {
		return nil, err
	}

	employee, err := employeeByAccount(s.DB.WithContext(ctx), accountID)
	if err != nil {
		return nil, err
	}
	if employee.Account.Role != models.RoleTechnician {
		return nil, fmt.Errorf("%w: only technicians publish availability", ErrForbidden)
	}

	slot := models.TechnicianAvailability{
		EmployeeID:  employee.ID,
		Date:        datatypes.Date(day),
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		IsAvailable: in.IsAvailable == nil || *in.IsAvailable,
	}
	if err := s.DB.WithContext(ctx).Omit("Employee").Create(&slot).Error; err != nil {
		return nil, err
	}
	return &slot, nil
}

// Upcoming lists the windows of a technician from today on.
func (s *AvailabilityService) Upcoming(ctx context.Context, employeeID uint) ([]models.TechnicianAvailability, error) {
	var employee models.Employee
	if err := s.DB.WithContext(ctx).Preload("Account").First(&employee, employeeID).Error; err != nil {
		return nil, notFound(err, "technician")
	}
	if employee.Account.Role != models.RoleTechnician {
		return nil, fmt.Errorf("%w: technician", ErrNotFound)
	}

	var slots []models.TechnicianAvailability
	err := s.DB.WithContext(ctx).
		Where("employee_id = ? AND date >= ?", employee.ID, datatypes.Date(today())).
		Order("date ASC, start_time ASC").
		Find(&slots).Error
	return slots, err
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
