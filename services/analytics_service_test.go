package services

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/testutils"
)

func TestRecomputeWithoutData(t *testing.T) {
	db := testutils.NewTestDB(t)
	testutils.CreateShop(t, db)
	analytics := NewAnalyticsService(db, NewShopService(db))

	report, err := analytics.Recompute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.TotalCustomers)
	assert.Zero(t, report.TotalAppointments)
	assert.Zero(t, report.TotalRevenue)
	assert.Zero(t, report.CustomerSatisfaction)
	assert.Empty(t, report.Facilities)
	assert.NotNil(t, report.LastUpdated)
}

func TestRecomputeAggregates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	analytics := NewAnalyticsService(f.db, NewShopService(f.db))

	done := testutils.CreateAppointment(t, f.db, models.Appointment{
		CustomerID: f.customer.CustomerID, VehicleID: f.vehicle.ID, ServiceTypeID: f.service.ID,
		TechnicianID: &f.technician.EmployeeID, Status: models.StatusCompleted,
		EstimatedCost: 150000, FinalCost: testutils.FloatPtr(175000),
	})
	testutils.CreateAppointment(t, f.db, models.Appointment{
		CustomerID: f.customer.CustomerID, VehicleID: f.vehicle.ID, ServiceTypeID: f.service.ID,
		TechnicianID: &f.technician.EmployeeID, EstimatedCost: 150000,
	})
	require.NoError(t, f.db.Create(&models.Review{
		AppointmentID: done.ID, Rating: 4, Comment: "solid", TechnicianRating: testutils.IntPtr(5),
	}).Error)

	report, err := analytics.Recompute(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.TotalCustomers)
	assert.Equal(t, int64(1), report.TotalVehicles)
	assert.Equal(t, int64(2), report.TotalAppointments)
	assert.Equal(t, 175000.0, report.TotalRevenue)
	assert.Equal(t, 4.0, report.CustomerSatisfaction)

	require.Len(t, report.Facilities, 1)
	assert.Equal(t, int64(1), report.Facilities[0].Completed)
	assert.InDelta(t, 0.25, report.Facilities[0].UtilizationRate, 1e-9)

	require.Len(t, report.Technicians, 1)
	assert.Equal(t, int64(2), report.Technicians[0].Assigned)
	assert.Equal(t, int64(1), report.Technicians[0].Completed)
	assert.Equal(t, 5.0, report.Technicians[0].AverageRating)
	assert.InDelta(t, 0.5, report.Technicians[0].CompletionRate, 1e-9)

	require.Len(t, report.Services, 1)
	assert.Equal(t, 175000.0, report.Services[0].Revenue)

	stored, err := analytics.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.TotalRevenue, stored.TotalRevenue)
	require.Len(t, stored.Technicians, 1)
	assert.Equal(t, "tono Test", stored.Technicians[0].Name)
}

func TestZeroCapacityFacilityHasNoUtilization(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&models.Facility{}).Where("id = ?", f.facility.ID).UpdateColumn("capacity", 0).Error)
	testutils.CreateAppointment(t, f.db, models.Appointment{
		CustomerID: f.customer.CustomerID, VehicleID: f.vehicle.ID, ServiceTypeID: f.service.ID,
		Status: models.StatusCompleted, EstimatedCost: 150000,
	})

	report, err := NewAnalyticsService(f.db, NewShopService(f.db)).Recompute(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Facilities, 1)
	assert.Zero(t, report.Facilities[0].Capacity)
	assert.Equal(t, int64(1), report.Facilities[0].Completed)
	assert.Zero(t, report.Facilities[0].UtilizationRate)
}

func TestAnalyticsNeedsShop(t *testing.T) {
	db := testutils.NewTestDB(t)
	_, err := NewAnalyticsService(db, NewShopService(db)).Recompute(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportPDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	analytics := NewAnalyticsService(f.db, NewShopService(f.db))
	_, err := analytics.Recompute(ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, analytics.ExportPDF(ctx, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestEventLogIsAppendOnly(t *testing.T) {
	db := testutils.NewTestDB(t)
	entry := models.EventLog{Type: models.EventFacilityCreated, Description: "created"}
	require.NoError(t, db.Create(&entry).Error)

	err := db.Model(&entry).Update("description", "changed").Error
	assert.ErrorIs(t, err, models.ErrEventLogImmutable)
	err = db.Delete(&entry).Error
	assert.ErrorIs(t, err, models.ErrEventLogImmutable)

	// raw statements skip the hooks and hit the triggers
	assert.Error(t, db.Exec("UPDATE event_logs SET description = ? WHERE id = ?", "raw", entry.ID).Error)
	assert.Error(t, db.Exec("DELETE FROM event_logs WHERE id = ?", entry.ID).Error)

	var reloaded models.EventLog
	require.NoError(t, db.First(&reloaded, entry.ID).Error)
	assert.Equal(t, "created", reloaded.Description)
}
