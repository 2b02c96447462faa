package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/auto-service/services"
	"github.com/yeremiapane/auto-service/utils"
)

type PaymentController struct {
	Payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{Payments: payments}
}

// RecordPayment is used by the front desk once an appointment is completed.
func (pc *PaymentController) RecordPayment(c *gin.Context) {
	var input services.PaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	accountID, _ := currentAccount(c)
	payment, err := pc.Payments.RecordPayment(c.Request.Context(), accountID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Payment recorded", payment)
}

// HandleCallback receives Midtrans transaction notifications.
func (pc *PaymentController) HandleCallback(c *gin.Context) {
	var notification services.MidtransNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		utils.ErrorLogger.Printf("Invalid payment callback: %v", err)
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	utils.InfoLogger.Printf("Payment callback for %s: %s", notification.OrderID, notification.TransactionStatus)

	payment, err := pc.Payments.HandleNotification(c.Request.Context(), notification)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification processed", gin.H{
		"payment_id": payment.ID,
		"status":     payment.Status,
	})
}
