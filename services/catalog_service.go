package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yeremiapane/auto-service/models"
	"gorm.io/gorm"
)

type ServiceTypeInput struct {
	FacilityID                uint    `json:"facility_id" binding:"required"`
	Name                      string  `json:"name" binding:"required,max=100"`
	Description               string  `json:"description"`
	DurationMinutes           int     `json:"duration_minutes" binding:"required"`
	Price                     float64 `json:"price"`
	MaintenanceIntervalMonths *int    `json:"maintenance_interval_months"`
	CertificationIDs          []uint  `json:"certification_ids"`
	EquipmentIDs              []uint  `json:"equipment_ids"`
}

type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

func (s *CatalogService) CreateServiceType(ctx context.Context, in ServiceTypeInput) (*models.ServiceType, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("service name is required")
	}
	if in.DurationMinutes <= 0 {
		return nil, invalid("duration must be positive")
	}
	if in.Price < 0 {
		return nil, invalid("price cannot be negative")
	}
	if in.MaintenanceIntervalMonths != nil && *in.MaintenanceIntervalMonths <= 0 {
		return nil, invalid("maintenance interval must be positive")
	}

	service := models.ServiceType{
		FacilityID:                in.FacilityID,
		Name:                      strings.TrimSpace(in.Name),
		Description:               in.Description,
		DurationMinutes:           in.DurationMinutes,
		Price:                     in.Price,
		MaintenanceIntervalMonths: in.MaintenanceIntervalMonths,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var facility models.Facility
		if err := tx.First(&facility, in.FacilityID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("facility %d does not exist", in.FacilityID)
			}
			return err
		}

		if len(in.CertificationIDs) > 0 {
			if err := tx.Find(&service.RequiredCertifications, in.CertificationIDs).Error; err != nil {
				return err
			}
			if len(service.RequiredCertifications) != len(in.CertificationIDs) {
				return invalid("unknown certification in %v", in.CertificationIDs)
			}
		}
		if len(in.EquipmentIDs) > 0 {
			err := tx.Where("facility_id = ? AND id IN ?", in.FacilityID, in.EquipmentIDs).
				Find(&service.RequiredEquipment).Error
			if err != nil {
				return err
			}
			if len(service.RequiredEquipment) != len(in.EquipmentIDs) {
				return invalid("equipment must belong to facility %d", in.FacilityID)
			}
		}

		return tx.Create(&service).Error
	})
	if err != nil {
		return nil, err
	}
	return &service, nil
}

// ListServiceTypes lists every service, or those of one facility when facilityID is set.
func (s *CatalogService) ListServiceTypes(ctx context.Context, facilityID uint) ([]models.ServiceType, error) {
	query := s.DB.WithContext(ctx).Preload("Facility")
	if facilityID != 0 {
		query = query.Where("facility_id = ?", facilityID)
	}
	var services []models.ServiceType
	err := query.Order("id ASC").Find(&services).Error
	return services, err
}

func (s *CatalogService) GetServiceType(ctx context.Context, id uint) (*models.ServiceType, error) {
	var service models.ServiceType
	err := s.DB.WithContext(ctx).
		Preload("Facility").
		Preload("RequiredCertifications").
		Preload("RequiredEquipment").
		First(&service, id).Error
	if err != nil {
		return nil, notFound(err, "service type")
	}
	return &service, nil
}
