package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/auto-service/services"
	"github.com/yeremiapane/auto-service/utils"
)

type FacilityController struct {
	Facilities *services.FacilityService
	Catalog    *services.CatalogService
}

func NewFacilityController(facilities *services.FacilityService, catalog *services.CatalogService) *FacilityController {
	return &FacilityController{Facilities: facilities, Catalog: catalog}
}

// ListFacilities -> hanya fasilitas aktif
func (fc *FacilityController) ListFacilities(c *gin.Context) {
	facilities, err := fc.Facilities.ListFacilities(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Facilities", facilities)
}

func (fc *FacilityController) GetFacility(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	detail, err := fc.Facilities.GetFacility(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Facility detail", detail)
}

// ListServiceTypes takes an optional facility_id query.
func (fc *FacilityController) ListServiceTypes(c *gin.Context) {
	var facilityID uint64
	if raw := c.Query("facility_id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		facilityID = parsed
	}
	services, err := fc.Catalog.ListServiceTypes(c.Request.Context(), uint(facilityID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Service types", services)
}

func (fc *FacilityController) ManageFacilities(c *gin.Context) {
	facilities, err := fc.Facilities.ListAllFacilities(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All facilities", facilities)
}

func (fc *FacilityController) CreateFacility(c *gin.Context) {
	var input services.FacilityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	accountID, _ := currentAccount(c)
	facility, err := fc.Facilities.CreateFacility(c.Request.Context(), accountID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Facility created", facility)
}

func (fc *FacilityController) UpdateSchedule(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var input services.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	schedule, err := fc.Facilities.UpdateSchedule(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Schedule updated", schedule)
}

func (fc *FacilityController) SetActive(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var input struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	facility, err := fc.Facilities.SetFacilityActive(c.Request.Context(), id, *input.IsActive)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Facility updated", facility)
}

func (fc *FacilityController) AddEquipment(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var input services.EquipmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	equipment, err := fc.Facilities.AddEquipment(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Equipment added", equipment)
}

func (fc *FacilityController) CreateServiceType(c *gin.Context) {
	var input services.ServiceTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	service, err := fc.Catalog.CreateServiceType(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Service type created", service)
}

func (fc *FacilityController) CreateCertification(c *gin.Context) {
	var input services.CertificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	cert, err := fc.Facilities.CreateCertification(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Certification created", cert)
}
