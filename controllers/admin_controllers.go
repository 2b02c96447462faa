package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/services"
	"github.com/yeremiapane/auto-service/utils"
)

type AdminController struct {
	Analytics *services.AnalyticsService
	Accounts  *services.AccountService
	Shops     *services.ShopService
}

func NewAdminController(analytics *services.AnalyticsService, accounts *services.AccountService, shops *services.ShopService) *AdminController {
	return &AdminController{Analytics: analytics, Accounts: accounts, Shops: shops}
}

// GetAnalytics returns the last computed snapshot.
func (ac *AdminController) GetAnalytics(c *gin.Context) {
	report, err := ac.Analytics.Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Analytics", report)
}

func (ac *AdminController) RecomputeAnalytics(c *gin.Context) {
	report, err := ac.Analytics.Recompute(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Analytics recomputed", report)
}

// ExportPDF streams the analytics report as a PDF attachment.
func (ac *AdminController) ExportPDF(c *gin.Context) {
	var buf bytes.Buffer
	if err := ac.Analytics.ExportPDF(c.Request.Context(), &buf); err != nil {
		respondServiceError(c, err)
		return
	}
	filename := fmt.Sprintf("analytics_%s.pdf", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (ac *AdminController) ListUsers(c *gin.Context) {
	filter := services.AccountFilter{
		Role:   models.Role(c.Query("role")),
		Search: c.Query("search"),
	}
	accounts, err := ac.Accounts.ListAccounts(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Users", accounts)
}

func (ac *AdminController) CreateUser(c *gin.Context) {
	var input services.CreateAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	account, err := ac.Accounts.CreateAccount(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "User created", account)
}

func (ac *AdminController) CreateShop(c *gin.Context) {
	var input services.ShopInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	shop, err := ac.Shops.CreateShop(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Repair shop created", shop)
}

// DeleteShop always refuses; the shop record is permanent.
func (ac *AdminController) DeleteShop(c *gin.Context) {
	if err := ac.Shops.DeleteShop(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Repair shop deleted", nil)
}
