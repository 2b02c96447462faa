package models

import "time"

type Review struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	AppointmentID     uint      `gorm:"uniqueIndex;not null" json:"appointment_id"`
	Rating            int       `gorm:"not null;check:chk_reviews_rating,rating >= 1 AND rating <= 5" json:"rating"`
	Comment           string    `gorm:"type:text;not null" json:"comment"`
	TechnicianRating  *int      `gorm:"check:chk_reviews_technician_rating,technician_rating IS NULL OR (technician_rating >= 1 AND technician_rating <= 5)" json:"technician_rating,omitempty"`
	TechnicianComment string    `gorm:"type:text" json:"technician_comment"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
