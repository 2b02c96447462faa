package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/testutils"
)

func TestRegisterVehicle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vehicles := NewVehicleService(f.db)

	in := VehicleInput{
		VIN:              "jh4ka8260mc000000",
		Make:             "Honda",
		Model:            "Jazz",
		Year:             2018,
		LicensePlate:     "D 1234 AB",
		Mileage:          30500,
		RegistrationDate: "2018-05-02",
	}
	vehicle, err := vehicles.Register(ctx, f.customer.Account.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "JH4KA8260MC000000", vehicle.VIN)
	assert.Equal(t, f.customer.CustomerID, vehicle.CustomerID)
	require.NotNil(t, vehicle.RegistrationDate)

	_, err = vehicles.Register(ctx, f.customer.Account.ID, in)
	assert.ErrorIs(t, err, ErrConflict)

	for name, mutate := range map[string]func(*VehicleInput){
		"short VIN":      func(v *VehicleInput) { v.VIN = "ABC" },
		"too old":        func(v *VehicleInput) { v.Year = 1800 },
		"future year":    func(v *VehicleInput) { v.Year = time.Now().Year() + 2 },
		"bad date":       func(v *VehicleInput) { v.RegistrationDate = "02/05/2018" },
		"negative miles": func(v *VehicleInput) { v.Mileage = -1 },
	} {
		t.Run(name, func(t *testing.T) {
			bad := in
			bad.VIN = "WVWZZZ1JZXW000001"
			mutate(&bad)
			_, err := vehicles.Register(ctx, f.customer.Account.ID, bad)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	t.Run("staff cannot own vehicles", func(t *testing.T) {
		staff := in
		staff.VIN = "WVWZZZ1JZXW000002"
		_, err := vehicles.Register(ctx, f.secretary.Account.ID, staff)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	owned, err := vehicles.ListVehicles(ctx, f.customer.Account.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 2)
}

func TestGetVehicleIsScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vehicles := NewVehicleService(f.db)

	testutils.CreateAppointment(t, f.db, models.Appointment{
		CustomerID: f.customer.CustomerID, VehicleID: f.vehicle.ID, ServiceTypeID: f.service.ID,
		Status: models.StatusCompleted, ScheduledAt: time.Now().UTC().AddDate(0, -2, 0),
	})
	testutils.CreateAppointment(t, f.db, models.Appointment{
		CustomerID: f.customer.CustomerID, VehicleID: f.vehicle.ID, ServiceTypeID: f.service.ID,
	})

	detail, err := vehicles.GetVehicle(ctx, f.customer.Account.ID, f.vehicle.ID)
	require.NoError(t, err)
	require.Len(t, detail.ServiceHistory, 2)
	assert.True(t, detail.ServiceHistory[0].ScheduledAt.After(detail.ServiceHistory[1].ScheduledAt))
	assert.Equal(t, "Oil Change", detail.ServiceHistory[0].ServiceType.Name)

	other := testutils.CreateAccount(t, f.db, models.RoleCustomer, "andi")
	_, err = vehicles.GetVehicle(ctx, other.Account.ID, f.vehicle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
