package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VehicleInput struct {
	VIN              string `json:"vin" binding:"required,len=17"`
	Make             string `json:"make" binding:"required,max=50"`
	Model            string `json:"model" binding:"required,max=50"`
	Year             int    `json:"year" binding:"required"`
	Color            string `json:"color" binding:"max=30"`
	LicensePlate     string `json:"license_plate" binding:"required,max=15"`
	Mileage          int    `json:"mileage"`
	RegistrationDate string `json:"registration_date"`
}

// VehicleDetail is a vehicle with its service history, newest first.
type VehicleDetail struct {
	models.Vehicle
	ServiceHistory []models.Appointment `json:"service_history"`
}

type VehicleService struct {
	DB *gorm.DB
}

func NewVehicleService(db *gorm.DB) *VehicleService {
	return &VehicleService{DB: db}
}

func (s *VehicleService) Register(ctx context.Context, accountID uint, in VehicleInput) (*models.Vehicle, error) {
	vin := strings.ToUpper(strings.TrimSpace(in.VIN))
	if len(vin) != 17 {
		return nil, invalid("VIN must be 17 characters")
	}
	if in.Year < 1886 || in.Year > time.Now().Year()+1 {
		return nil, invalid("year %d is out of range", in.Year)
	}
	if in.Mileage < 0 {
		return nil, invalid("mileage cannot be negative")
	}

	vehicle := models.Vehicle{
		VIN:          vin,
		Make:         strings.TrimSpace(in.Make),
		Model:        strings.TrimSpace(in.Model),
		Year:         in.Year,
		Color:        in.Color,
		LicensePlate: strings.TrimSpace(in.LicensePlate),
		Mileage:      in.Mileage,
	}
	if in.RegistrationDate != "" {
		parsed, err := time.Parse("2006-01-02", in.RegistrationDate)
		if err != nil {
			return nil, invalid("registration_date must be YYYY-MM-DD")
		}
		date := datatypes.Date(parsed)
		vehicle.RegistrationDate = &date
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := customerByAccount(tx, accountID)
		if err != nil {
			return err
		}
		vehicle.CustomerID = customer.ID

		var taken int64
		if err := tx.Model(&models.Vehicle{}).Where("vin = ?", vin).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return fmt.Errorf("%w: VIN %s is already registered", ErrConflict, vin)
		}
		if err := tx.Create(&vehicle).Error; err != nil {
			return conflict(err, "VIN is already registered")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Vehicle %s registered for customer %d", vehicle.VIN, vehicle.CustomerID)
	return &vehicle, nil
}

// ListVehicles returns the caller's vehicles. Non-customers own none.
func (s *VehicleService) ListVehicles(ctx context.Context, accountID uint) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := s.DB.WithContext(ctx).
		Joins("JOIN customers ON customers.id = vehicles.customer_id").
		Where("customers.account_id = ?", accountID).
		Order("vehicles.id ASC").
		Find(&vehicles).Error
	return vehicles, err
}

// GetVehicle only finds vehicles owned by the caller.
func (s *VehicleService) GetVehicle(ctx context.Context, accountID, vehicleID uint) (*VehicleDetail, error) {
	var vehicle models.Vehicle
	err := s.DB.WithContext(ctx).
		Joins("JOIN customers ON customers.id = vehicles.customer_id").
		Where("vehicles.id = ? AND customers.account_id = ?", vehicleID, accountID).
		First(&vehicle).Error
	if err != nil {
		return nil, notFound(err, "vehicle")
	}

	var history []models.Appointment
	err = s.DB.WithContext(ctx).
		Preload("ServiceType").
		Preload("Review").
		Where("vehicle_id = ?", vehicle.ID).
		Order("scheduled_at DESC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return &VehicleDetail{Vehicle: vehicle, ServiceHistory: history}, nil
}
