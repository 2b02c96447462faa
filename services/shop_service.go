package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/utils"
	"gorm.io/gorm"
)

type ShopInput struct {
	Name    string `json:"name" binding:"required,max=200"`
	Address string `json:"address"`
	Phone   string `json:"phone" binding:"max=15"`
	Email   string `json:"email"`
	TaxID   string `json:"tax_id" binding:"max=50"`
	OwnerID *uint  `json:"owner_id"`
}

// ShopService owns the single RepairShop row. The row is loaded once and handed to
// callers from memory afterwards.
type ShopService struct {
	DB *gorm.DB

	mu   sync.RWMutex
	shop *models.RepairShop
}

func NewShopService(db *gorm.DB) *ShopService {
	return &ShopService{DB: db}
}

// CreateShop inserts the shop and its Analytics row in one transaction. A second shop
// is rejected by the precheck and, under a race, by the unique index on singleton.
func (s *ShopService) CreateShop(ctx context.Context, in ShopInput) (*models.RepairShop, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("shop name is required")
	}

	shop := models.RepairShop{
		Singleton: true,
		Name:      strings.TrimSpace(in.Name),
		Address:   in.Address,
		Phone:     in.Phone,
		Email:     in.Email,
		TaxID:     in.TaxID,
		OwnerID:   in.OwnerID,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.RepairShop{}).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: a repair shop is already configured", ErrConflict)
		}
		if in.OwnerID != nil {
			var owner models.Account
			if err := tx.First(&owner, *in.OwnerID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return invalid("owner account %d does not exist", *in.OwnerID)
				}
				return err
			}
			if owner.Role != models.RoleOwner {
				return invalid("account %d is not an owner", *in.OwnerID)
			}
		}
		if err := tx.Create(&shop).Error; err != nil {
			return conflict(err, "a repair shop is already configured")
		}
		return tx.Create(&models.Analytics{RepairShopID: shop.ID}).Error
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.shop = &shop
	s.mu.Unlock()
	utils.InfoLogger.Printf("Repair shop %q created (id %d)", shop.Name, shop.ID)
	return &shop, nil
}

// Provision returns the configured shop, creating it from in on first start.
func (s *ShopService) Provision(ctx context.Context, in ShopInput) (*models.RepairShop, error) {
	shop, err := s.GetShop(ctx)
	if err == nil {
		return shop, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	shop, err = s.CreateShop(ctx, in)
	if errors.Is(err, ErrConflict) {
		// another instance won the race
		return s.GetShop(ctx)
	}
	return shop, err
}

func (s *ShopService) GetShop(ctx context.Context) (*models.RepairShop, error) {
	s.mu.RLock()
	cached := s.shop
	s.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	var shop models.RepairShop
	if err := s.DB.WithContext(ctx).First(&shop).Error; err != nil {
		return nil, notFound(err, "repair shop is not configured")
	}
	s.mu.Lock()
	s.shop = &shop
	s.mu.Unlock()
	return &shop, nil
}

// DeleteShop always fails: the shop row has to exist for the whole lifetime of the
// installation.
func (s *ShopService) DeleteShop(ctx context.Context) error {
	if _, err := s.GetShop(ctx); err != nil {
		return err
	}
	return fmt.Errorf("%w: the repair shop cannot be deleted", ErrForbidden)
}
