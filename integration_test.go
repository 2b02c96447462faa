package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/router"
	"github.com/yeremiapane/auto-service/services"
	"github.com/yeremiapane/auto-service/testutils"
	"github.com/yeremiapane/auto-service/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type client struct {
	t *testing.T
	r *gin.Engine
}

func (c client) call(method, path, token string, body interface{}, wantCode int) map[string]interface{} {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	require.Equal(c.t, wantCode, w.Code, "%s %s: %s", method, path, w.Body.String())

	var resp map[string]interface{}
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func data(resp map[string]interface{}) map[string]interface{} {
	return resp["data"].(map[string]interface{})
}

func id(v interface{}) string {
	return strconv.Itoa(int(v.(float64)))
}

// TestRepairShopFlow walks one appointment through the whole system:
// signup, vehicle, booking, assignment, work, review request, review, payment and
// analytics.
func TestRepairShopFlow(t *testing.T) {
	db := testutils.NewTestDB(t)
	shop := testutils.CreateShop(t, db)
	facility := testutils.CreateFacility(t, db, shop.ID, "Maintenance Bay")
	service := testutils.CreateServiceType(t, db, facility.ID, "Oil Change", 150000, testutils.IntPtr(6))
	testutils.CreateAccount(t, db, models.RoleSecretary, "sari")
	testutils.CreateAccount(t, db, models.RoleTechnician, "tono")
	testutils.CreateAccount(t, db, models.RoleAdmin, "admin")

	r := router.SetupRouter(router.Deps{
		DB:          db,
		Revocations: utils.NewMemoryRevocationStore(),
		CORSOrigin:  "*",
		AuthLimiter: func(c *gin.Context) { c.Next() },
	})
	c := client{t: t, r: r}

	login := func(username string) string {
		resp := c.call(http.MethodPost, "/login/", "", gin.H{"username": username, "password": testutils.Password}, http.StatusOK)
		return data(resp)["token"].(string)
	}

	// 1. customer signs up and registers a car
	resp := c.call(http.MethodPost, "/signup/", "", gin.H{
		"username": "rina", "email": "rina@example.com", "password": "rahasia123",
		"first_name": "Rina", "phone": "08111111111",
	}, http.StatusCreated)
	customerToken := data(resp)["token"].(string)

	resp = c.call(http.MethodPost, "/vehicles/register/", customerToken, gin.H{
		"vin": "JH4KA8260MC000000", "make": "Honda", "model": "Jazz", "year": 2018,
		"license_plate": "D1234AB", "mileage": 30500,
	}, http.StatusCreated)
	vehicleID := id(data(resp)["id"])

	// 2. booking
	resp = c.call(http.MethodGet, "/appointments/create/", customerToken, nil, http.StatusOK)
	assert.NotEmpty(t, data(resp)["service_types"])

	resp = c.call(http.MethodPost, "/appointments/create/", customerToken, gin.H{
		"vehicle_id": json.Number(vehicleID), "service_type_id": service.ID,
		"scheduled_at": testutils.NextWeekdayAt(10), "notes": "engine light on",
	}, http.StatusCreated)
	apptID := id(data(resp)["id"])
	assert.Equal(t, "SCHEDULED", data(resp)["status"])

	// 3. front desk assigns the technician
	secretaryToken := login("sari")
	var technician models.Employee
	require.NoError(t, db.Joins("JOIN accounts ON accounts.id = employees.account_id").
		Where("accounts.role = ?", models.RoleTechnician).First(&technician).Error)
	c.call(http.MethodPatch, "/staff/appointments/"+apptID+"/assign/", secretaryToken,
		gin.H{"technician_id": technician.ID}, http.StatusOK)

	// 4. technician does the work
	technicianToken := login("tono")
	resp = c.call(http.MethodGet, "/dashboard/", technicianToken, nil, http.StatusOK)
	assert.Equal(t, "TECHNICIAN", data(resp)["role"])

	c.call(http.MethodPost, "/api/appointments/"+apptID+"/start/", technicianToken, nil, http.StatusOK)
	resp = c.call(http.MethodPost, "/api/appointments/"+apptID+"/complete/", technicianToken,
		gin.H{"final_cost": 175000, "comment": "oil and filter replaced"}, http.StatusOK)
	assert.Equal(t, "COMPLETED", resp["status"])

	resp = c.call(http.MethodGet, "/vehicles/"+vehicleID+"/", customerToken, nil, http.StatusOK)
	assert.NotNil(t, data(resp)["next_service_date"])

	// 5. the reminder pass asks for a review, the customer leaves one
	stats := services.NewReminderMonitor(db, nil, time.Minute, time.Hour).CheckReminders(context.Background())
	assert.Equal(t, 1, stats.ReviewRequests)

	resp = c.call(http.MethodGet, "/dashboard/notifications/", customerToken, nil, http.StatusOK)
	assert.Equal(t, float64(2), data(resp)["unread_notifications_count"])

	c.call(http.MethodPost, "/reviews/create/"+apptID+"/", customerToken,
		gin.H{"rating": 5, "comment": "quick and honest", "technician_rating": 5}, http.StatusCreated)
	c.call(http.MethodPost, "/reviews/create/"+apptID+"/", customerToken,
		gin.H{"rating": 4, "comment": "again"}, http.StatusConflict)

	// 6. payment at the desk
	resp = c.call(http.MethodPost, "/staff/payments/", secretaryToken,
		gin.H{"appointment_id": json.Number(apptID), "method": "CASH"}, http.StatusCreated)
	assert.Equal(t, "COMPLETED", data(resp)["status"])
	assert.Equal(t, 175000.0, data(resp)["amount"])

	// 7. analytics
	adminToken := login("admin")
	resp = c.call(http.MethodPost, "/admin/analytics/recompute/", adminToken, nil, http.StatusOK)
	assert.Equal(t, 175000.0, data(resp)["total_revenue"])
	assert.Equal(t, 5.0, data(resp)["customer_satisfaction"])

	var events []models.EventLog
	require.NoError(t, db.Order("id ASC").Find(&events).Error)
	var types []models.EventType
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []models.EventType{
		models.EventAppointmentCreated,
		models.EventAppointmentUpdated,
		models.EventAppointmentUpdated,
		models.EventAppointmentCompleted,
		models.EventReviewSubmitted,
		models.EventPaymentRecorded,
	}, types)
}
