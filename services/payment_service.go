package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/utils"
	"gorm.io/gorm"
)

type PaymentInput struct {
	AppointmentID uint                 `json:"appointment_id" binding:"required"`
	Method        models.PaymentMethod `json:"method" binding:"required"`
	Amount        *float64             `json:"amount"`
}

// PaymentService records payments for completed appointments.
type PaymentService struct {
	db      *gorm.DB
	gateway *MidtransService
	pusher  Pusher
	timeout time.Duration
}

// NewPaymentService builds the service. gateway may be nil, in which case bank
// transfers are refused.
func NewPaymentService(db *gorm.DB, gateway *MidtransService, pusher Pusher, timeout time.Duration) *PaymentService {
	if timeout <= 0 {
		timeout = 24 * time.Hour
	}
	return &PaymentService{
		db:      db,
		gateway: gateway,
		pusher:  pusher,
		timeout: timeout,
	}
}

// RecordPayment settles a completed appointment. Cash and cards complete at once;
// bank transfers open a Midtrans virtual account and stay PENDING until the callback.
func (s *PaymentService) RecordPayment(ctx context.Context, staffID uint, in PaymentInput) (*models.Payment, error) {
	if !in.Method.Valid() {
		return nil, invalid("unknown payment method %q", in.Method)
	}
	if in.Method == models.PaymentBankTransfer && s.gateway == nil {
		return nil, invalid("bank transfers are not configured")
	}

	var appt models.Appointment
	if err := s.db.WithContext(ctx).Preload("Customer.Account.User").First(&appt, in.AppointmentID).Error; err != nil {
		return nil, notFound(err, "appointment")
	}
	if appt.Status != models.StatusCompleted {
		return nil, invalid("only completed appointments can be paid")
	}
	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Payment{}).Where("appointment_id = ?", appt.ID).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: appointment %d is already paid", ErrConflict, appt.ID)
	}

	amount := appt.EstimatedCost
	if appt.FinalCost != nil {
		amount = *appt.FinalCost
	}
	if in.Amount != nil {
		amount = *in.Amount
	}
	if amount <= 0 {
		return nil, invalid("amount must be positive")
	}

	transactionID := fmt.Sprintf("APT-%d-%s", appt.ID, uuid.NewString()[:8])
	payment := models.Payment{
		AppointmentID: appt.ID,
		Amount:        amount,
		Method:        in.Method,
		Status:        models.PaymentCompleted,
		TransactionID: &transactionID,
		RecordedByID:  optionalID(staffID),
	}

	if in.Method == models.PaymentBankTransfer {
		user := appt.Customer.Account.User
		resp, err := s.gateway.ChargeBankTransfer(ctx, transactionID, amount, user.FullName(), user.Email)
		if err != nil {
			utils.ErrorLogger.Printf("Bank transfer charge for appointment %d failed: %v", appt.ID, err)
			return nil, fmt.Errorf("%w: %v", ErrGateway, err)
		}
		payment.Status = models.PaymentPending
		payment.VANumber = resp.VANumber()
	} else {
		now := time.Now().UTC()
		payment.PaidAt = &now
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Appointment").Create(&payment).Error; err != nil {
			return conflict(err, "payment")
		}
		return recordEvent(tx, models.EventLog{
			Type:          models.EventPaymentRecorded,
			AccountID:     optionalID(staffID),
			AppointmentID: uintPtr(appt.ID),
			Description:   fmt.Sprintf("%s payment of %s", payment.Method, utils.FormatCurrency(amount)),
		}, map[string]interface{}{"transaction_id": transactionID, "status": payment.Status})
	})
	if err != nil {
		return nil, err
	}

	s.push(appt.Customer.AccountID, payment)
	utils.InfoLogger.Printf("Payment %d recorded for appointment %d (%s)", payment.ID, appt.ID, payment.Status)
	return &payment, nil
}

// HandleNotification applies a signed Midtrans callback to the matching payment.
func (s *PaymentService) HandleNotification(ctx context.Context, n MidtransNotification) (*models.Payment, error) {
	if s.gateway == nil {
		return nil, fmt.Errorf("%w: payment gateway", ErrNotFound)
	}
	if !s.gateway.ValidateSignature(n.OrderID, n.StatusCode, n.GrossAmount, n.SignatureKey) {
		return nil, fmt.Errorf("%w: invalid signature", ErrForbidden)
	}
	status, ok := MapTransactionStatus(n.TransactionStatus)
	if !ok {
		return nil, invalid("unknown transaction status %q", n.TransactionStatus)
	}

	var payment models.Payment
	if err := s.db.WithContext(ctx).Preload("Appointment.Customer").Where("transaction_id = ?", n.OrderID).First(&payment).Error; err != nil {
		return nil, notFound(err, "payment")
	}
	if payment.Status == status {
		return &payment, nil
	}
	if err := s.UpdatePaymentStatus(ctx, &payment, status); err != nil {
		return nil, err
	}
	s.push(payment.Appointment.Customer.AccountID, payment)
	return &payment, nil
}

// UpdatePaymentStatus moves a PENDING payment to status. Settled payments only move to
// REFUNDED.
func (s *PaymentService) UpdatePaymentStatus(ctx context.Context, payment *models.Payment, status models.PaymentStatus) error {
	from := payment.Status
	allowed := from == models.PaymentPending ||
		(from == models.PaymentCompleted && status == models.PaymentRefunded)
	if !allowed {
		return fmt.Errorf("%w: payment %s cannot become %s", ErrInvalidTransition, from, status)
	}

	fields := map[string]interface{}{"status": status}
	if status == models.PaymentCompleted {
		now := time.Now().UTC()
		fields["paid_at"] = now
		payment.PaidAt = &now
	}
	result := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", payment.ID, from).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update payment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: payment %d was changed by another request", ErrInvalidTransition, payment.ID)
	}
	payment.Status = status
	utils.InfoLogger.Printf("Payment %d: %s -> %s", payment.ID, from, status)
	return nil
}

func (s *PaymentService) GetPaymentByAppointment(ctx context.Context, appointmentID uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.WithContext(ctx).Where("appointment_id = ?", appointmentID).First(&payment).Error; err != nil {
		return nil, notFound(err, "payment")
	}
	return &payment, nil
}

func (s *PaymentService) push(accountID uint, payment models.Payment) {
	if s.pusher != nil {
		s.pusher.PushToAccount(accountID, EventPaymentUpdate, payment)
	}
}

// CheckExpiredPayments fails PENDING payments older than the timeout, unless the
// gateway reports them settled in the meantime.
func (s *PaymentService) CheckExpiredPayments(ctx context.Context) int {
	var payments []models.Payment
	cutoff := time.Now().UTC().Add(-s.timeout)
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.PaymentPending, cutoff).
		Find(&payments).Error
	if err != nil {
		utils.ErrorLogger.Printf("Error checking expired payments: %v", err)
		return 0
	}

	expired := 0
	for i := range payments {
		payment := &payments[i]
		status := models.PaymentFailed
		if s.gateway != nil && payment.TransactionID != nil {
			remote, err := s.gateway.CheckTransactionStatus(ctx, *payment.TransactionID)
			if err != nil {
				utils.ErrorLogger.Printf("Error checking transaction status for payment %d: %v", payment.ID, err)
			} else if remote == models.PaymentCompleted {
				status = remote
			}
		}
		if err := s.UpdatePaymentStatus(ctx, payment, status); err != nil {
			if !errors.Is(err, ErrInvalidTransition) {
				utils.ErrorLogger.Printf("Error updating expired payment %d: %v", payment.ID, err)
			}
			continue
		}
		if status == models.PaymentFailed {
			expired++
		}
	}
	return expired
}

// StartTimeoutChecker runs CheckExpiredPayments every interval until ctx ends.
func (s *PaymentService) StartTimeoutChecker(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := s.CheckExpiredPayments(ctx); n > 0 {
					utils.InfoLogger.Printf("%d pending payments expired", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	utils.InfoLogger.Println("Payment timeout checker started")
}
