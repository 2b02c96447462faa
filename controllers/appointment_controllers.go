package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/auto-service/services"
	"github.com/yeremiapane/auto-service/utils"
)

type AppointmentController struct {
	Appointments *services.AppointmentService
}

func NewAppointmentController(appointments *services.AppointmentService) *AppointmentController {
	return &AppointmentController{Appointments: appointments}
}

// BookingOptions returns what the booking form offers the caller.
func (ac *AppointmentController) BookingOptions(c *gin.Context) {
	accountID, _ := currentAccount(c)
	options, err := ac.Appointments.BookingOptions(c.Request.Context(), accountID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Booking options", options)
}

func (ac *AppointmentController) CreateAppointment(c *gin.Context) {
	var input services.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	accountID, _ := currentAccount(c)
	appt, err := ac.Appointments.Book(c.Request.Context(), accountID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Appointment booked", appt)
}

func (ac *AppointmentController) GetAppointment(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	accountID, role := currentAccount(c)
	appt, err := ac.Appointments.GetAppointment(c.Request.Context(), accountID, role, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Appointment detail", gin.H{
		"appointment": appt,
		"is_on_time":  appt.IsOnTime(),
	})
}

func (ac *AppointmentController) CancelAppointment(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	accountID, _ := currentAccount(c)
	appt, err := ac.Appointments.Cancel(c.Request.Context(), accountID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Appointment cancelled", appt)
}

// AssignTechnician is used by the front desk.
func (ac *AppointmentController) AssignTechnician(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var input struct {
		TechnicianID uint `json:"technician_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	accountID, _ := currentAccount(c)
	appt, err := ac.Appointments.AssignTechnician(c.Request.Context(), accountID, id, input.TechnicianID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Technician assigned", appt)
}
