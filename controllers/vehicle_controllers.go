package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/auto-service/services"
	"github.com/yeremiapane/auto-service/utils"
)

type VehicleController struct {
	Vehicles *services.VehicleService
}

func NewVehicleController(vehicles *services.VehicleService) *VehicleController {
	return &VehicleController{Vehicles: vehicles}
}

// RegisterPage lists the vehicles the customer already registered.
func (vc *VehicleController) RegisterPage(c *gin.Context) {
	accountID, _ := currentAccount(c)
	vehicles, err := vc.Vehicles.ListVehicles(c.Request.Context(), accountID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Register a vehicle", gin.H{"vehicles": vehicles})
}

func (vc *VehicleController) Register(c *gin.Context) {
	var input services.VehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	accountID, _ := currentAccount(c)
	vehicle, err := vc.Vehicles.Register(c.Request.Context(), accountID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Vehicle registered", vehicle)
}

func (vc *VehicleController) GetVehicle(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	accountID, _ := currentAccount(c)
	detail, err := vc.Vehicles.GetVehicle(c.Request.Context(), accountID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Vehicle detail", detail)
}
