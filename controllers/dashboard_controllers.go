package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/services"
	"github.com/yeremiapane/auto-service/utils"
)

type DashboardController struct {
	DashboardSvc    *services.DashboardService
	NotificationSvc *services.NotificationService
	AppointmentSvc  *services.AppointmentService
	MessageSvc      *services.MessageService
	AvailabilitySvc *services.AvailabilityService
}

// Landing is the public front page.
func (dc *DashboardController) Landing(c *gin.Context) {
	landing, err := dc.DashboardSvc.LandingPage(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Welcome", landing)
}

// Dashboard answers with the view matching the caller's role.
func (dc *DashboardController) Dashboard(c *gin.Context) {
	accountID, role := currentAccount(c)
	dash, err := dc.DashboardSvc.ForAccount(c.Request.Context(), accountID, role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard", gin.H{
		"role":      role,
		"dashboard": dash,
	})
}

func (dc *DashboardController) Notifications(c *gin.Context) {
	accountID, _ := currentAccount(c)
	notifications, err := dc.NotificationSvc.List(c.Request.Context(), accountID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	unread, err := dc.NotificationSvc.UnreadCount(c.Request.Context(), accountID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications", gin.H{
		"notifications":              notifications,
		"unread_notifications_count": unread,
	})
}

func (dc *DashboardController) Appointments(c *gin.Context) {
	accountID, role := currentAccount(c)
	filter := services.AppointmentFilter{Status: models.AppointmentStatus(c.Query("status"))}
	appointments, err := dc.AppointmentSvc.ListAppointments(c.Request.Context(), accountID, role, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Appointments", appointments)
}

// Messages is the caller's inbox plus who they can write to.
func (dc *DashboardController) Messages(c *gin.Context) {
	accountID, _ := currentAccount(c)
	inbox, err := dc.MessageSvc.Inbox(c.Request.Context(), accountID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	recipients, err := dc.MessageSvc.Recipients(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Messages", gin.H{
		"messages":   inbox,
		"recipients": recipients,
	})
}

func (dc *DashboardController) SendMessage(c *gin.Context) {
	var input services.MessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	accountID, _ := currentAccount(c)
	message, err := dc.MessageSvc.Send(c.Request.Context(), accountID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Message sent", message)
}

func (dc *DashboardController) MarkMessageRead(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	accountID, _ := currentAccount(c)
	if err := dc.MessageSvc.MarkRead(c.Request.Context(), accountID, id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Message marked as read", nil)
}

// PublishAvailability is the technician's own schedule entry.
func (dc *DashboardController) PublishAvailability(c *gin.Context) {
	var input services.AvailabilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	accountID, _ := currentAccount(c)
	slot, err := dc.AvailabilitySvc.Publish(c.Request.Context(), accountID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Availability published", slot)
}
