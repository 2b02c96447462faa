package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/auto-service/models"
	"gorm.io/gorm"
)

// inboxRoles are the accounts that can receive internal messages.
var inboxRoles = []models.Role{
	models.RoleSecretary, models.RoleStaff, models.RoleTechnician, models.RoleAdmin, models.RoleManager,
}

type MessageInput struct {
	RecipientID uint   `json:"recipient_id" binding:"required"`
	Subject     string `json:"subject" binding:"required,max=200"`
	Body        string `json:"body" binding:"required"`
}

type MessageService struct {
	DB *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{DB: db}
}

func (s *MessageService) Send(ctx context.Context, senderID uint, in MessageInput) (*models.Message, error) {
	if strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Body) == "" {
		return nil, invalid("subject and body are required")
	}

	var recipient models.Account
	if err := s.DB.WithContext(ctx).First(&recipient, in.RecipientID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("recipient %d does not exist", in.RecipientID)
		}
		return nil, err
	}
	if !canReceive(recipient.Role) {
		return nil, invalid("%s accounts do not have an inbox", recipient.Role)
	}

	message := models.Message{
		SenderID:    senderID,
		RecipientID: recipient.ID,
		Subject:     strings.TrimSpace(in.Subject),
		Body:        in.Body,
	}
	if err := s.DB.WithContext(ctx).Omit("Sender", "Recipient").Create(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func canReceive(role models.Role) bool {
	for _, r := range inboxRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (s *MessageService) Inbox(ctx context.Context, accountID uint) ([]models.Message, error) {
	var messages []models.Message
	err := s.DB.WithContext(ctx).
		Preload("Sender.User").
		Where("recipient_id = ?", accountID).
		Order("created_at DESC").
		Find(&messages).Error
	return messages, err
}

func (s *MessageService) MarkRead(ctx context.Context, accountID, messageID uint) error {
	result := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND recipient_id = ?", messageID, accountID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: message", ErrNotFound)
	}
	return nil
}

// Recipients lists the accounts a message can be addressed to.
func (s *MessageService) Recipients(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	err := s.DB.WithContext(ctx).Preload("User").
		Where("role IN ?", inboxRoles).
		Order("id ASC").
		Find(&accounts).Error
	return accounts, err
}
