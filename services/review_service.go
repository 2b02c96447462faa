package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yeremiapane/auto-service/models"
	"gorm.io/gorm"
)

type ReviewInput struct {
	Rating            int    `json:"rating" binding:"required"`
	Comment           string `json:"comment" binding:"required"`
	TechnicianRating  *int   `json:"technician_rating"`
	TechnicianComment string `json:"technician_comment"`
}

type ReviewService struct {
	DB *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{DB: db}
}

// reviewable loads an appointment of the calling customer.
func reviewable(tx *gorm.DB, accountID, appointmentID uint) (*models.Appointment, error) {
	customer, err := customerByAccount(tx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: appointment", ErrNotFound)
	}
	var appt models.Appointment
	err = tx.Preload("ServiceType").Preload("Review").
		Where("id = ? AND customer_id = ?", appointmentID, customer.ID).
		First(&appt).Error
	if err != nil {
		return nil, notFound(err, "appointment")
	}
	return &appt, nil
}

// ReviewTarget returns the appointment the review form is about.
func (s *ReviewService) ReviewTarget(ctx context.Context, accountID, appointmentID uint) (*models.Appointment, error) {
	return reviewable(s.DB.WithContext(ctx), accountID, appointmentID)
}

// CreateReview accepts one review per COMPLETED appointment from its customer.
func (s *ReviewService) CreateReview(ctx context.Context, accountID, appointmentID uint, in ReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, invalid("rating must be between 1 and 5")
	}
	if strings.TrimSpace(in.Comment) == "" {
		return nil, invalid("comment is required")
	}
	if in.TechnicianRating != nil && (*in.TechnicianRating < 1 || *in.TechnicianRating > 5) {
		return nil, invalid("technician rating must be between 1 and 5")
	}

	var review models.Review
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appt, err := reviewable(tx, accountID, appointmentID)
		if err != nil {
			return err
		}
		if appt.Status != models.StatusCompleted {
			return invalid("only completed appointments can be reviewed")
		}
		if appt.Review != nil {
			return fmt.Errorf("%w: appointment %d already has a review", ErrConflict, appt.ID)
		}

		review = models.Review{
			AppointmentID:     appt.ID,
			Rating:            in.Rating,
			Comment:           strings.TrimSpace(in.Comment),
			TechnicianRating:  in.TechnicianRating,
			TechnicianComment: in.TechnicianComment,
		}
		if err := tx.Create(&review).Error; err != nil {
			return conflict(err, "review")
		}

		return recordEvent(tx, models.EventLog{
			Type:          models.EventReviewSubmitted,
			AccountID:     uintPtr(accountID),
			FacilityID:    uintPtr(appt.ServiceType.FacilityID),
			AppointmentID: uintPtr(appt.ID),
			Description:   fmt.Sprintf("Rated %d/5", review.Rating),
		}, map[string]interface{}{"rating": review.Rating, "technician_rating": review.TechnicianRating})
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// FeaturedReviews returns the latest reviews rated at least minRating.
func (s *ReviewService) FeaturedReviews(ctx context.Context, minRating, limit int) ([]models.Review, error) {
	var reviews []models.Review
	err := s.DB.WithContext(ctx).
		Where("rating >= ?", minRating).
		Order("created_at DESC").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}
