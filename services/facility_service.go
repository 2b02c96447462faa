package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/utils"
	"gorm.io/gorm"
)

type FacilityInput struct {
	Name        string              `json:"name" binding:"required,max=100"`
	Type        models.FacilityType `json:"type" binding:"required"`
	Description string              `json:"description"`
	Capacity    int                 `json:"capacity"`
	IsActive    *bool               `json:"is_active"`
}

type ScheduleInput struct {
	OpeningTime          string `json:"opening_time"`
	ClosingTime          string `json:"closing_time"`
	IsOpenWeekends       *bool  `json:"is_open_weekends"`
	MaxDailyAppointments *int   `json:"max_daily_appointments"`
}

type EquipmentInput struct {
	Name          string `json:"name" binding:"required,max=100"`
	Description   string `json:"description"`
	IsOperational *bool  `json:"is_operational"`
}

type CertificationInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// FacilityDetail is a facility with its services and the technicians working there.
type FacilityDetail struct {
	models.Facility
	Technicians []models.Employee `json:"technicians"`
}

type FacilityService struct {
	DB    *gorm.DB
	Shops *ShopService
}

func NewFacilityService(db *gorm.DB, shops *ShopService) *FacilityService {
	return &FacilityService{DB: db, Shops: shops}
}

// CreateFacility stores the facility and its default Schedule in the same transaction.
func (s *FacilityService) CreateFacility(ctx context.Context, actorID uint, in FacilityInput) (*models.Facility, error) {
	if !in.Type.Valid() {
		return nil, invalid("unknown facility type %q", in.Type)
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("facility name is required")
	}
	if in.Capacity < 0 {
		return nil, invalid("capacity cannot be negative")
	}
	shop, err := s.Shops.GetShop(ctx)
	if err != nil {
		return nil, err
	}

	facility := models.Facility{
		RepairShopID: shop.ID,
		Name:         strings.TrimSpace(in.Name),
		Type:         in.Type,
		Description:  in.Description,
		Capacity:     in.Capacity,
		IsActive:     in.IsActive == nil || *in.IsActive,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Schedule", "Equipment", "ServiceTypes").Create(&facility).Error; err != nil {
			return err
		}
		schedule := models.DefaultSchedule(facility.ID)
		if err := tx.Create(&schedule).Error; err != nil {
			return err
		}
		facility.Schedule = &schedule

		return recordEvent(tx, models.EventLog{
			Type:        models.EventFacilityCreated,
			AccountID:   optionalID(actorID),
			FacilityID:  uintPtr(facility.ID),
			Description: fmt.Sprintf("Facility %q created", facility.Name),
		}, map[string]interface{}{"type": facility.Type, "capacity": facility.Capacity})
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Facility %d (%s) created", facility.ID, facility.Type)
	return &facility, nil
}

// ListFacilities returns the active facilities, which is all the public sees.
func (s *FacilityService) ListFacilities(ctx context.Context) ([]models.Facility, error) {
	var facilities []models.Facility
	err := s.DB.WithContext(ctx).Preload("Schedule").
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&facilities).Error
	return facilities, err
}

func (s *FacilityService) ListAllFacilities(ctx context.Context) ([]models.Facility, error) {
	var facilities []models.Facility
	err := s.DB.WithContext(ctx).Preload("Schedule").Preload("Equipment").
		Order("id ASC").
		Find(&facilities).Error
	return facilities, err
}

func (s *FacilityService) GetFacility(ctx context.Context, id uint) (*FacilityDetail, error) {
	var facility models.Facility
	err := s.DB.WithContext(ctx).
		Preload("Schedule").
		Preload("Equipment").
		Preload("ServiceTypes").
		First(&facility, id).Error
	if err != nil {
		return nil, notFound(err, "facility")
	}

	var technicians []models.Employee
	err = s.DB.WithContext(ctx).
		Joins("JOIN accounts ON accounts.id = employees.account_id").
		Where("employees.facility_id = ? AND employees.is_active = ? AND accounts.role = ?", id, true, models.RoleTechnician).
		Preload("Account.User").
		Find(&technicians).Error
	if err != nil {
		return nil, err
	}
	return &FacilityDetail{Facility: facility, Technicians: technicians}, nil
}

func (s *FacilityService) GetSchedule(ctx context.Context, facilityID uint) (*models.Schedule, error) {
	var schedule models.Schedule
	if err := s.DB.WithContext(ctx).Where("facility_id = ?", facilityID).First(&schedule).Error; err != nil {
		return nil, notFound(err, "facility schedule")
	}
	return &schedule, nil
}

func (s *FacilityService) UpdateSchedule(ctx context.Context, facilityID uint, in ScheduleInput) (*models.Schedule, error) {
	schedule, err := s.GetSchedule(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	if in.OpeningTime != "" {
		schedule.OpeningTime = in.OpeningTime
	}
	if in.ClosingTime != "" {
		schedule.ClosingTime = in.ClosingTime
	}
	if in.IsOpenWeekends != nil {
		schedule.IsOpenWeekends = *in.IsOpenWeekends
	}
	if in.MaxDailyAppointments != nil {
		if *in.MaxDailyAppointments < 0 {
			return nil, invalid("max daily appointments cannot be negative")
		}
		schedule.MaxDailyAppointments = *in.MaxDailyAppointments
	}
	if err := validateHours(schedule.OpeningTime, schedule.ClosingTime); err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Model(&models.Schedule{}).Where("id = ?", schedule.ID).Updates(map[string]interface{}{
		"opening_time":           schedule.OpeningTime,
		"closing_time":           schedule.ClosingTime,
		"is_open_weekends":       schedule.IsOpenWeekends,
		"max_daily_appointments": schedule.MaxDailyAppointments,
	}).Error
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

// validateHours checks both values are HH:MM and opening comes first.
func validateHours(opening, closing string) error {
	open, err := time.Parse("15:04", opening)
	if err != nil {
		return invalid("opening time must be HH:MM")
	}
	closeAt, err := time.Parse("15:04", closing)
	if err != nil {
		return invalid("closing time must be HH:MM")
	}
	if !open.Before(closeAt) {
		return invalid("opening time must be before closing time")
	}
	return nil
}

func (s *FacilityService) SetFacilityActive(ctx context.Context, id uint, active bool) (*models.Facility, error) {
	var facility models.Facility
	if err := s.DB.WithContext(ctx).First(&facility, id).Error; err != nil {
		return nil, notFound(err, "facility")
	}
	if err := s.DB.WithContext(ctx).Model(&facility).Update("is_active", active).Error; err != nil {
		return nil, err
	}
	facility.IsActive = active
	return &facility, nil
}

func (s *FacilityService) AddEquipment(ctx context.Context, facilityID uint, in EquipmentInput) (*models.Equipment, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Facility{}).Where("id = ?", facilityID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: facility", ErrNotFound)
	}

	equipment := models.Equipment{
		FacilityID:    facilityID,
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		IsOperational: in.IsOperational == nil || *in.IsOperational,
	}
	if equipment.Name == "" {
		return nil, invalid("equipment name is required")
	}
	if err := s.DB.WithContext(ctx).Create(&equipment).Error; err != nil {
		return nil, err
	}
	return &equipment, nil
}

func (s *FacilityService) CreateCertification(ctx context.Context, in CertificationInput) (*models.Certification, error) {
	cert := models.Certification{Name: strings.TrimSpace(in.Name), Description: in.Description}
	if cert.Name == "" {
		return nil, invalid("certification name is required")
	}

	var existing int64
	if err := s.DB.WithContext(ctx).Model(&models.Certification{}).Where("name = ?", cert.Name).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: certification %q", ErrConflict, cert.Name)
	}
	if err := s.DB.WithContext(ctx).Create(&cert).Error; err != nil {
		return nil, conflict(err, "certification")
	}
	return &cert, nil
}

func optionalID(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}
