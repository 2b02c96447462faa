package services

import (
	"context"
	"fmt"

	"github.com/yeremiapane/auto-service/models"
	"gorm.io/gorm"
)

type NotificationService struct {
	DB *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{DB: db}
}

func (s *NotificationService) List(ctx context.Context, accountID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := s.DB.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (s *NotificationService) UnreadCount(ctx context.Context, accountID uint) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("account_id = ? AND is_read = ?", accountID, false).
		Count(&count).Error
	return count, err
}

// MarkRead only touches notifications owned by accountID; anything else is not found.
func (s *NotificationService) MarkRead(ctx context.Context, accountID, notificationID uint) error {
	var n models.Notification
	err := s.DB.WithContext(ctx).
		Where("id = ? AND account_id = ?", notificationID, accountID).
		First(&n).Error
	if err != nil {
		return notFound(err, "notification")
	}
	if n.IsRead {
		return nil
	}
	return s.DB.WithContext(ctx).Model(&n).Update("is_read", true).Error
}

func (s *NotificationService) Dismiss(ctx context.Context, accountID, notificationID uint) error {
	result := s.DB.WithContext(ctx).
		Where("id = ? AND account_id = ?", notificationID, accountID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: notification", ErrNotFound)
	}
	return nil
}
