package testutils

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yeremiapane/auto-service/config"
	"github.com/yeremiapane/auto-service/database"
	"github.com/yeremiapane/auto-service/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Password is the plain text password of every seeded account.
const Password = "password123"

var dbSeq int64

// NewTestDB opens a fresh in-memory sqlite database with the full schema. Each call
// gets its own database; the pool holds one connection so the memory db lives as
// long as the test.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:autoservice_%d_%d?mode=memory&cache=shared", time.Now().UnixNano(), atomic.AddInt64(&dbSeq, 1))

	cfg := config.GormConfig()
	cfg.Logger = gormlogger.Discard
	db, err := gorm.Open(sqlite.Open(name), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Seeded is an account together with its role record.
type Seeded struct {
	Account    models.Account
	CustomerID uint
	EmployeeID uint
}

// CreateAccount inserts a User and Account with role. Customers get a Customer row,
// every other role an active Employee row.
func CreateAccount(t testing.TB, db *gorm.DB, role models.Role, username string) Seeded {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	account := models.Account{
		User: models.User{
			Username:  username,
			Email:     strings.ToLower(username) + "@example.com",
			FirstName: username,
			LastName:  "Test",
			Password:  string(hash),
		},
		Role:  role,
		Phone: "0800000000",
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("create account %s: %v", username, err)
	}

	seeded := Seeded{Account: account}
	if role == models.RoleCustomer {
		customer := models.Customer{AccountID: account.ID, PreferredContact: models.ContactEmail}
		if err := db.Create(&customer).Error; err != nil {
			t.Fatalf("create customer: %v", err)
		}
		seeded.CustomerID = customer.ID
		return seeded
	}

	employee := models.Employee{
		AccountID: account.ID,
		HireDate:  datatypes.Date(time.Now().UTC()),
		IsActive:  true,
	}
	if err := db.Omit("Account").Create(&employee).Error; err != nil {
		t.Fatalf("create employee: %v", err)
	}
	seeded.EmployeeID = employee.ID
	return seeded
}

// CreateShop inserts the repair shop and its analytics row.
func CreateShop(t testing.TB, db *gorm.DB) models.RepairShop {
	t.Helper()
	shop := models.RepairShop{Singleton: true, Name: "Test Garage", Phone: "0211234567"}
	if err := db.Create(&shop).Error; err != nil {
		t.Fatalf("create shop: %v", err)
	}
	if err := db.Create(&models.Analytics{RepairShopID: shop.ID}).Error; err != nil {
		t.Fatalf("create analytics: %v", err)
	}
	return shop
}

// CreateFacility inserts an active facility with the default schedule.
func CreateFacility(t testing.TB, db *gorm.DB, shopID uint, name string) models.Facility {
	t.Helper()
	facility := models.Facility{
		RepairShopID: shopID,
		Name:         name,
		Type:         models.FacilityMaintenance,
		Capacity:     4,
		IsActive:     true,
	}
	if err := db.Omit("RepairShop").Create(&facility).Error; err != nil {
		t.Fatalf("create facility: %v", err)
	}
	schedule := models.DefaultSchedule(facility.ID)
	if err := db.Create(&schedule).Error; err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	facility.Schedule = &schedule
	return facility
}

func CreateServiceType(t testing.TB, db *gorm.DB, facilityID uint, name string, price float64, intervalMonths *int) models.ServiceType {
	t.Helper()
	service := models.ServiceType{
		FacilityID:                facilityID,
		Name:                      name,
		DurationMinutes:           60,
		Price:                     price,
		MaintenanceIntervalMonths: intervalMonths,
	}
	if err := db.Create(&service).Error; err != nil {
		t.Fatalf("create service type: %v", err)
	}
	return service
}

func CreateVehicle(t testing.TB, db *gorm.DB, customerID uint, vin string) models.Vehicle {
	t.Helper()
	vehicle := models.Vehicle{
		CustomerID:   customerID,
		VIN:          vin,
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         2019,
		LicensePlate: "B1234XYZ",
		Mileage:      42000,
	}
	if err := db.Omit("Customer").Create(&vehicle).Error; err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	return vehicle
}

// CreateAppointment inserts an appointment directly, bypassing booking rules.
func CreateAppointment(t testing.TB, db *gorm.DB, appt models.Appointment) models.Appointment {
	t.Helper()
	if appt.Status == "" {
		appt.Status = models.StatusScheduled
	}
	if appt.ScheduledAt.IsZero() {
		appt.ScheduledAt = NextWeekdayAt(10)
	}
	if err := db.Omit("Customer", "Vehicle", "ServiceType", "Technician", "Review").Create(&appt).Error; err != nil {
		t.Fatalf("create appointment: %v", err)
	}
	return appt
}

// NextWeekdayAt returns hour:00 UTC on the next Monday to Friday at least two days out.
func NextWeekdayAt(hour int) time.Time {
	d := time.Now().UTC().AddDate(0, 0, 2)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }
