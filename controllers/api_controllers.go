package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/auto-service/services"
	"github.com/yeremiapane/auto-service/utils"
)

// APIController serves the small JSON endpoints used by dashboard widgets.
// They answer with {"success": ..} rather than the page envelope.
type APIController struct {
	Facilities    *services.FacilityService
	Availability  *services.AvailabilityService
	Notifications *services.NotificationService
	Appointments  *services.AppointmentService
}

func (ac *APIController) FacilitySchedule(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAPIError(c, http.StatusBadRequest, err)
		return
	}
	schedule, err := ac.Facilities.GetSchedule(c.Request.Context(), id)
	if err != nil {
		respondAPIServiceError(c, err)
		return
	}
	utils.RespondAPI(c, http.StatusOK, gin.H{
		"opening_time":           schedule.OpeningTime,
		"closing_time":           schedule.ClosingTime,
		"is_open_weekends":       schedule.IsOpenWeekends,
		"max_daily_appointments": schedule.MaxDailyAppointments,
	})
}

func (ac *APIController) TechnicianSchedule(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAPIError(c, http.StatusBadRequest, err)
		return
	}
	slots, err := ac.Availability.Upcoming(c.Request.Context(), id)
	if err != nil {
		respondAPIServiceError(c, err)
		return
	}
	utils.RespondAPI(c, http.StatusOK, gin.H{"schedule": slots})
}

func (ac *APIController) MarkNotificationRead(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAPIError(c, http.StatusBadRequest, err)
		return
	}
	accountID, _ := currentAccount(c)
	if err := ac.Notifications.MarkRead(c.Request.Context(), accountID, id); err != nil {
		respondAPIServiceError(c, err)
		return
	}
	utils.RespondAPI(c, http.StatusOK, gin.H{})
}

func (ac *APIController) DismissNotification(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAPIError(c, http.StatusBadRequest, err)
		return
	}
	accountID, _ := currentAccount(c)
	if err := ac.Notifications.Dismiss(c.Request.Context(), accountID, id); err != nil {
		respondAPIServiceError(c, err)
		return
	}
	utils.RespondAPI(c, http.StatusOK, gin.H{})
}

// StartAppointment is called by the assigned technician.
func (ac *APIController) StartAppointment(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAPIError(c, http.StatusBadRequest, err)
		return
	}
	accountID, _ := currentAccount(c)
	appt, err := ac.Appointments.Start(c.Request.Context(), accountID, id)
	if err != nil {
		respondAPIServiceError(c, err)
		return
	}
	utils.RespondAPI(c, http.StatusOK, gin.H{
		"status":            appt.Status,
		"actual_start_time": appt.ActualStartTime,
	})
}

func (ac *APIController) CompleteAppointment(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAPIError(c, http.StatusBadRequest, err)
		return
	}
	var input services.CompleteInput
	// the body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondAPIError(c, http.StatusBadRequest, err)
			return
		}
	}
	accountID, _ := currentAccount(c)
	appt, err := ac.Appointments.Complete(c.Request.Context(), accountID, id, input)
	if err != nil {
		respondAPIServiceError(c, err)
		return
	}
	utils.RespondAPI(c, http.StatusOK, gin.H{
		"status":          appt.Status,
		"actual_end_time": appt.ActualEndTime,
		"final_cost":      appt.FinalCost,
	})
}
