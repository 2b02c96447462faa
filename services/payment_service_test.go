package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/testutils"
)

const gatewayKey = "SB-Mid-server-test"

// fakeMidtrans answers charges with a BNI virtual account and status checks with
// transactionStatus.
func fakeMidtrans(t *testing.T, transactionStatus string) *MidtransService {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/charge" {
			w.Write([]byte(`{"status_code":"201","transaction_status":"pending","va_numbers":[{"bank":"bni","va_number":"9880001"}]}`))
			return
		}
		w.Write([]byte(`{"transaction_status":"` + transactionStatus + `"}`))
	}))
	t.Cleanup(server.Close)
	return NewMidtransService(&MidtransConfig{ServerKey: gatewayKey, ClientKey: "client", Bank: "bni", BaseURL: server.URL})
}

func (f *fixture) completedAppointment(t *testing.T) models.Appointment {
	return testutils.CreateAppointment(t, f.db, models.Appointment{
		CustomerID: f.customer.CustomerID, VehicleID: f.vehicle.ID, ServiceTypeID: f.service.ID,
		TechnicianID: &f.technician.EmployeeID, Status: models.StatusCompleted,
		EstimatedCost: 150000, FinalCost: testutils.FloatPtr(175000),
	})
}

func TestRecordCashPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payments := NewPaymentService(f.db, nil, f.pusher, time.Hour)
	appt := f.completedAppointment(t)

	payment, err := payments.RecordPayment(ctx, f.secretary.Account.ID, PaymentInput{AppointmentID: appt.ID, Method: models.PaymentCash})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, payment.Status)
	assert.Equal(t, 175000.0, payment.Amount)
	assert.NotNil(t, payment.PaidAt)
	require.NotNil(t, payment.TransactionID)
	assert.Contains(t, *payment.TransactionID, "APT-")

	pushes := f.pusher.forAccount(f.customer.Account.ID)
	require.Len(t, pushes, 1)
	assert.Equal(t, EventPaymentUpdate, pushes[0].event)

	_, err = payments.RecordPayment(ctx, f.secretary.Account.ID, PaymentInput{AppointmentID: appt.ID, Method: models.PaymentCash})
	assert.ErrorIs(t, err, ErrConflict)

	stored, err := payments.GetPaymentByAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, stored.ID)
}

func TestRecordPaymentRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payments := NewPaymentService(f.db, nil, nil, time.Hour)

	open := testutils.CreateAppointment(t, f.db, models.Appointment{
		CustomerID: f.customer.CustomerID, VehicleID: f.vehicle.ID, ServiceTypeID: f.service.ID,
	})
	_, err := payments.RecordPayment(ctx, 0, PaymentInput{AppointmentID: open.ID, Method: models.PaymentCash})
	assert.ErrorIs(t, err, ErrValidation)

	done := f.completedAppointment(t)
	_, err = payments.RecordPayment(ctx, 0, PaymentInput{AppointmentID: done.ID, Method: "BARTER"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = payments.RecordPayment(ctx, 0, PaymentInput{AppointmentID: done.ID, Method: models.PaymentBankTransfer})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = payments.RecordPayment(ctx, 0, PaymentInput{AppointmentID: done.ID, Method: models.PaymentCash, Amount: testutils.FloatPtr(-5)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = payments.RecordPayment(ctx, 0, PaymentInput{AppointmentID: 9999, Method: models.PaymentCash})
	assert.ErrorIs(t, err, ErrNotFound)

	// the explicit amount wins over the final cost
	payment, err := payments.RecordPayment(ctx, 0, PaymentInput{AppointmentID: done.ID, Method: models.PaymentDebitCard, Amount: testutils.FloatPtr(160000)})
	require.NoError(t, err)
	assert.Equal(t, 160000.0, payment.Amount)
	assert.Nil(t, payment.RecordedByID)
}

func TestBankTransferSettledByCallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	payments := NewPaymentService(f.db, fakeMidtrans(t, "pending"), f.pusher, time.Hour)
	appt := f.completedAppointment(t)

	payment, err := payments.RecordPayment(ctx, f.secretary.Account.ID, PaymentInput{AppointmentID: appt.ID, Method: models.PaymentBankTransfer})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, payment.Status)
	assert.Equal(t, "9880001", payment.VANumber)
	assert.Nil(t, payment.PaidAt)

	orderID := *payment.TransactionID
	forged := MidtransNotification{
		OrderID: orderID, StatusCode: "200", GrossAmount: "175000.00",
		SignatureKey: sign(orderID, "200", "175000.00", "wrong-key"), TransactionStatus: "settlement",
	}
	_, err = payments.HandleNotification(ctx, forged)
	assert.ErrorIs(t, err, ErrForbidden)

	genuine := forged
	genuine.SignatureKey = sign(orderID, "200", "175000.00", gatewayKey)
	settled, err := payments.HandleNotification(ctx, genuine)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, settled.Status)
	assert.NotNil(t, settled.PaidAt)

	// a repeated callback changes nothing
	again, err := payments.HandleNotification(ctx, genuine)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, again.Status)

	// settled payments only move to refunded
	err = payments.UpdatePaymentStatus(ctx, settled, models.PaymentFailed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	require.NoError(t, payments.UpdatePaymentStatus(ctx, settled, models.PaymentRefunded))
}

func TestCallbackWithoutGateway(t *testing.T) {
	f := newFixture(t)
	payments := NewPaymentService(f.db, nil, nil, time.Hour)
	_, err := payments.HandleNotification(context.Background(), MidtransNotification{OrderID: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckExpiredPayments(t *testing.T) {
	for _, tc := range []struct {
		name        string
		remote      string
		wantStatus  models.PaymentStatus
		wantExpired int
	}{
		{name: "still unpaid", remote: "pending", wantStatus: models.PaymentFailed, wantExpired: 1},
		{name: "paid late", remote: "settlement", wantStatus: models.PaymentCompleted, wantExpired: 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			payments := NewPaymentService(f.db, fakeMidtrans(t, tc.remote), nil, time.Hour)
			appt := f.completedAppointment(t)

			payment, err := payments.RecordPayment(ctx, 0, PaymentInput{AppointmentID: appt.ID, Method: models.PaymentBankTransfer})
			require.NoError(t, err)
			assert.Equal(t, 0, payments.CheckExpiredPayments(ctx))

			require.NoError(t, f.db.Model(&models.Payment{}).Where("id = ?", payment.ID).
				UpdateColumn("created_at", time.Now().UTC().Add(-2*time.Hour)).Error)
			assert.Equal(t, tc.wantExpired, payments.CheckExpiredPayments(ctx))

			stored, err := payments.GetPaymentByAppointment(ctx, appt.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, stored.Status)
		})
	}
}
