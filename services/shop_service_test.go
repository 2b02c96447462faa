package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/testutils"
)

func TestSecondShopIsRejected(t *testing.T) {
	db := testutils.NewTestDB(t)
	ctx := context.Background()
	shops := NewShopService(db)

	shop, err := shops.CreateShop(ctx, ShopInput{Name: "Bengkel Jaya"})
	require.NoError(t, err)

	var analytics models.Analytics
	require.NoError(t, db.Where("repair_shop_id = ?", shop.ID).First(&analytics).Error)

	_, err = shops.CreateShop(ctx, ShopInput{Name: "Another"})
	assert.ErrorIs(t, err, ErrConflict)

	// a fresh service without the cache sees the same thing
	_, err = NewShopService(db).CreateShop(ctx, ShopInput{Name: "Another"})
	assert.ErrorIs(t, err, ErrConflict)

	var count int64
	require.NoError(t, db.Model(&models.RepairShop{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// the unique index holds even without the precheck
	err = db.Create(&models.RepairShop{Singleton: true, Name: "Raced"}).Error
	assert.Error(t, err)
}

func TestShopOwnerMustBeOwner(t *testing.T) {
	db := testutils.NewTestDB(t)
	manager := testutils.CreateAccount(t, db, models.RoleManager, "manager")

	_, err := NewShopService(db).CreateShop(context.Background(), ShopInput{Name: "Jaya", OwnerID: &manager.Account.ID})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProvisionIsIdempotent(t *testing.T) {
	db := testutils.NewTestDB(t)
	ctx := context.Background()

	first, err := NewShopService(db).Provision(ctx, ShopInput{Name: "Jaya"})
	require.NoError(t, err)
	second, err := NewShopService(db).Provision(ctx, ShopInput{Name: "Ignored"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Jaya", second.Name)
}

func TestDeleteShopIsForbidden(t *testing.T) {
	db := testutils.NewTestDB(t)
	testutils.CreateShop(t, db)

	err := NewShopService(db).DeleteShop(context.Background())
	assert.ErrorIs(t, err, ErrForbidden)

	var count int64
	require.NoError(t, db.Model(&models.RepairShop{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateFacilityGetsDefaultSchedule(t *testing.T) {
	db := testutils.NewTestDB(t)
	ctx := context.Background()
	shop := testutils.CreateShop(t, db)
	admin := testutils.CreateAccount(t, db, models.RoleAdmin, "admin")
	facilities := NewFacilityService(db, NewShopService(db))

	facility, err := facilities.CreateFacility(ctx, admin.Account.ID, FacilityInput{
		Name:     "Tire Center",
		Type:     models.FacilityTire,
		Capacity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, shop.ID, facility.RepairShopID)
	assert.True(t, facility.IsActive)

	schedule, err := facilities.GetSchedule(ctx, facility.ID)
	require.NoError(t, err)
	assert.Equal(t, "08:00", schedule.OpeningTime)
	assert.Equal(t, "17:00", schedule.ClosingTime)
	assert.False(t, schedule.IsOpenWeekends)
	assert.Equal(t, 10, schedule.MaxDailyAppointments)

	var event models.EventLog
	require.NoError(t, db.Where("type = ?", models.EventFacilityCreated).First(&event).Error)
	require.NotNil(t, event.FacilityID)
	assert.Equal(t, facility.ID, *event.FacilityID)

	inactive := false
	hidden, err := facilities.CreateFacility(ctx, admin.Account.ID, FacilityInput{Name: "Paint Shop", Type: models.FacilityPaint, IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, hidden.IsActive)

	public, err := facilities.ListFacilities(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, facility.ID, public[0].ID)

	all, err := facilities.ListAllFacilities(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreateFacilityValidation(t *testing.T) {
	db := testutils.NewTestDB(t)
	ctx := context.Background()
	facilities := NewFacilityService(db, NewShopService(db))

	_, err := facilities.CreateFacility(ctx, 0, FacilityInput{Name: "Bay", Type: models.FacilityTuning})
	assert.ErrorIs(t, err, ErrNotFound, "no shop yet")

	testutils.CreateShop(t, db)
	_, err = facilities.CreateFacility(ctx, 0, FacilityInput{Name: "Bay", Type: "GARAGE"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = facilities.CreateFacility(ctx, 0, FacilityInput{Name: "Bay", Type: models.FacilityTuning, Capacity: -1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateSchedule(t *testing.T) {
	db := testutils.NewTestDB(t)
	ctx := context.Background()
	shop := testutils.CreateShop(t, db)
	facility := testutils.CreateFacility(t, db, shop.ID, "Bay")
	facilities := NewFacilityService(db, NewShopService(db))

	open := true
	limit := 4
	schedule, err := facilities.UpdateSchedule(ctx, facility.ID, ScheduleInput{
		OpeningTime:          "07:30",
		IsOpenWeekends:       &open,
		MaxDailyAppointments: &limit,
	})
	require.NoError(t, err)
	assert.Equal(t, "07:30", schedule.OpeningTime)
	assert.Equal(t, "17:00", schedule.ClosingTime)
	assert.True(t, schedule.IsOpenWeekends)
	assert.Equal(t, 4, schedule.MaxDailyAppointments)

	_, err = facilities.UpdateSchedule(ctx, facility.ID, ScheduleInput{OpeningTime: "18:00"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = facilities.UpdateSchedule(ctx, facility.ID, ScheduleInput{ClosingTime: "5pm"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = facilities.UpdateSchedule(ctx, 999, ScheduleInput{})
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := facilities.GetSchedule(ctx, facility.ID)
	require.NoError(t, err)
	assert.Equal(t, "07:30", stored.OpeningTime)
}

func TestFacilityDetailListsTechnicians(t *testing.T) {
	db := testutils.NewTestDB(t)
	ctx := context.Background()
	shop := testutils.CreateShop(t, db)
	facility := testutils.CreateFacility(t, db, shop.ID, "Bay")
	tech := testutils.CreateAccount(t, db, models.RoleTechnician, "tech")
	clerk := testutils.CreateAccount(t, db, models.RoleStaff, "clerk")
	for _, id := range []uint{tech.EmployeeID, clerk.EmployeeID} {
		require.NoError(t, db.Model(&models.Employee{}).Where("id = ?", id).Update("facility_id", facility.ID).Error)
	}

	facilities := NewFacilityService(db, NewShopService(db))
	equipment, err := facilities.AddEquipment(ctx, facility.ID, EquipmentInput{Name: "Lift"})
	require.NoError(t, err)
	assert.True(t, equipment.IsOperational)

	detail, err := facilities.GetFacility(ctx, facility.ID)
	require.NoError(t, err)
	require.Len(t, detail.Technicians, 1)
	assert.Equal(t, tech.EmployeeID, detail.Technicians[0].ID)
	assert.Len(t, detail.Equipment, 1)

	_, err = facilities.GetFacility(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog(t *testing.T) {
	db := testutils.NewTestDB(t)
	ctx := context.Background()
	shop := testutils.CreateShop(t, db)
	facility := testutils.CreateFacility(t, db, shop.ID, "Bay")
	other := testutils.CreateFacility(t, db, shop.ID, "Other Bay")
	facilities := NewFacilityService(db, NewShopService(db))
	catalog := NewCatalogService(db)

	cert, err := facilities.CreateCertification(ctx, CertificationInput{Name: "ASE A1"})
	require.NoError(t, err)
	_, err = facilities.CreateCertification(ctx, CertificationInput{Name: "ASE A1"})
	assert.ErrorIs(t, err, ErrConflict)

	lift, err := facilities.AddEquipment(ctx, facility.ID, EquipmentInput{Name: "Lift"})
	require.NoError(t, err)
	foreign, err := facilities.AddEquipment(ctx, other.ID, EquipmentInput{Name: "Booth"})
	require.NoError(t, err)

	service, err := catalog.CreateServiceType(ctx, ServiceTypeInput{
		FacilityID:       facility.ID,
		Name:             "Engine Tune",
		DurationMinutes:  120,
		Price:            400000,
		CertificationIDs: []uint{cert.ID},
		EquipmentIDs:     []uint{lift.ID},
	})
	require.NoError(t, err)

	loaded, err := catalog.GetServiceType(ctx, service.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.RequiredCertifications, 1)
	assert.Len(t, loaded.RequiredEquipment, 1)

	_, err = catalog.CreateServiceType(ctx, ServiceTypeInput{
		FacilityID: facility.ID, Name: "Bad", DurationMinutes: 30, EquipmentIDs: []uint{foreign.ID},
	})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = catalog.CreateServiceType(ctx, ServiceTypeInput{FacilityID: facility.ID, Name: "Zero", DurationMinutes: 0})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = catalog.CreateServiceType(ctx, ServiceTypeInput{FacilityID: 999, Name: "Lost", DurationMinutes: 30})
	assert.ErrorIs(t, err, ErrValidation)

	list, err := catalog.ListServiceTypes(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
	list, err = catalog.ListServiceTypes(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
