package models

import "time"

type ContactMethod string

const (
	ContactEmail ContactMethod = "EMAIL"
	ContactPhone ContactMethod = "PHONE"
)

type Customer struct {
	ID               uint          `gorm:"primaryKey" json:"id"`
	AccountID        uint          `gorm:"uniqueIndex;not null" json:"account_id"`
	Account          Account       `gorm:"foreignKey:AccountID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"account"`
	PreferredContact ContactMethod `gorm:"type:varchar(10);not null;default:'EMAIL'" json:"preferred_contact"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}
