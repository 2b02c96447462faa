package models

import "time"

type NotificationType string

const (
	NotificationMaintenanceDue      NotificationType = "MAINTENANCE_DUE"
	NotificationAppointmentReminder NotificationType = "APPOINTMENT_REMINDER"
	NotificationStatusUpdate        NotificationType = "STATUS_UPDATE"
	NotificationReviewRequest       NotificationType = "REVIEW_REQUEST"
)

type Notification struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	AccountID     uint             `gorm:"not null;index" json:"account_id"`
	Account       Account          `gorm:"foreignKey:AccountID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	AppointmentID *uint            `gorm:"index" json:"appointment_id,omitempty"`
	Type          NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	Title         string           `gorm:"type:varchar(200);not null" json:"title"`
	Message       string           `gorm:"type:text;not null" json:"message"`
	IsRead        bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt     time.Time        `gorm:"not null;index" json:"created_at"`
}

type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SenderID    uint      `gorm:"not null;index" json:"sender_id"`
	Sender      Account   `gorm:"foreignKey:SenderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"sender"`
	RecipientID uint      `gorm:"not null;index" json:"recipient_id"`
	Recipient   Account   `gorm:"foreignKey:RecipientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Subject     string    `gorm:"type:varchar(200);not null" json:"subject"`
	Body        string    `gorm:"type:text;not null" json:"body"`
	IsRead      bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}
