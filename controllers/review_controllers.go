package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/auto-service/services"
	"github.com/yeremiapane/auto-service/utils"
)

type ReviewController struct {
	Reviews *services.ReviewService
}

func NewReviewController(reviews *services.ReviewService) *ReviewController {
	return &ReviewController{Reviews: reviews}
}

// ReviewPage shows the appointment being reviewed.
func (rc *ReviewController) ReviewPage(c *gin.Context) {
	id, err := paramID(c, "appointment_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	accountID, _ := currentAccount(c)
	appt, err := rc.Reviews.ReviewTarget(c.Request.Context(), accountID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Review appointment", appt)
}

func (rc *ReviewController) CreateReview(c *gin.Context) {
	id, err := paramID(c, "appointment_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	var input services.ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	accountID, _ := currentAccount(c)
	review, err := rc.Reviews.CreateReview(c.Request.Context(), accountID, id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Thank you for your review", review)
}
