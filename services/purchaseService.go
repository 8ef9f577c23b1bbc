package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"spareshop-api/metrics"
	"spareshop-api/models"
	"spareshop-api/utils/apperror"
	auditlog "spareshop-api/utils/log"
)

// PurchaseService handles the single-item purchase form. Stock is taken when
// the form is submitted, not at checkout.
type PurchaseService interface {
	Create(ctx context.Context, actor Actor, sparepartID uint, qty int) (*models.Purchase, error)
	Get(ctx context.Context, actor Actor, id uint) (*models.Purchase, error)
	ListByUser(ctx context.Context, actor Actor, userID uint) ([]models.Purchase, error)
	UpdateStatus(ctx context.Context, actor Actor, id uint, status models.PurchaseStatus) (*models.Purchase, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type purchaseService struct {
	db *gorm.DB
}

func NewPurchaseService(db *gorm.DB) PurchaseService {
	return &purchaseService{db: db}
}

func (s *purchaseService) Create(ctx context.Context, actor Actor, sparepartID uint, qty int) (*models.Purchase, error) {
	if qty < 1 {
		return nil, apperror.Validation("jumlah must be at least 1")
	}

	var purchase models.Purchase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sp, err := findSparepart(tx, sparepartID)
		if err != nil {
			return err
		}

		ok, err := takeStock(tx, sp.ID, qty)
		if err != nil {
			return err
		}
		if !ok {
			metrics.RecordStockRejection("purchase")
			return apperror.Stock("stock for %s is not enough (available %d, requested %d)", sp.Name, sp.Stock, qty)
		}

		purchase = models.Purchase{
			UserID:      actor.UserID,
			SparepartID: sp.ID,
			Jumlah:      qty,
			TotalHarga:  sp.Price * int64(qty),
			Status:      models.PurchasePending,
		}
		if err := tx.Omit(clause.Associations).Create(&purchase).Error; err != nil {
			return err
		}

		return auditlog.CreatePurchaseAuditLog(tx, auditlog.Entry{
			Action:      "create",
			EntityID:    purchase.ID,
			UserID:      &actor.UserID,
			IPAddress:   actor.IP,
			Description: fmt.Sprintf("%d x %s purchased", qty, sp.Name),
		}, nil, &purchase)
	})
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (s *purchaseService) Get(ctx context.Context, actor Actor, id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := s.db.WithContext(ctx).
		Preload("Sparepart").
		Preload("User").
		First(&purchase, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("purchase %d not found", id)
		}
		return nil, err
	}
	if err := ensureAccess(actor, purchase.UserID); err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (s *purchaseService) ListByUser(ctx context.Context, actor Actor, userID uint) ([]models.Purchase, error) {
	if err := ensureAccess(actor, userID); err != nil {
		return nil, err
	}

	var purchases []models.Purchase
	err := s.db.WithContext(ctx).
		Preload("Sparepart").
		Preload("User").
		Where("id_user = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&purchases).Error
	return purchases, err
}

// UpdateStatus settles a pending purchase. Cancelling gives the quantity back.
func (s *purchaseService) UpdateStatus(ctx context.Context, actor Actor, id uint, status models.PurchaseStatus) (*models.Purchase, error) {
	if status != models.PurchasePaid && status != models.PurchaseCancelled {
		return nil, apperror.Validation("status must be paid or cancelled")
	}

	var purchase models.Purchase
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.findOwned(tx, actor, id)
		if err != nil {
			return err
		}
		before := *found
		purchase = *found

		if err := s.claim(tx, &purchase, status); err != nil {
			return err
		}
		if status == models.PurchaseCancelled {
			if err := returnStock(tx, purchase.SparepartID, purchase.Jumlah); err != nil {
				return err
			}
		}

		return auditlog.CreatePurchaseAuditLog(tx, auditlog.Entry{
			Action:      string(status),
			EntityID:    purchase.ID,
			UserID:      &actor.UserID,
			IPAddress:   actor.IP,
			Description: fmt.Sprintf("purchase %d %s", purchase.ID, status),
		}, &before, &purchase)
	})
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

// Delete removes a pending purchase and returns its quantity to stock.
func (s *purchaseService) Delete(ctx context.Context, actor Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		purchase, err := s.findOwned(tx, actor, id)
		if err != nil {
			return err
		}
		if purchase.Status != models.PurchasePending {
			return apperror.State("purchase %d is %s, only pending purchases can be deleted", purchase.ID, purchase.Status)
		}

		res := tx.Where("id = ? AND status = ?", purchase.ID, models.PurchasePending).Delete(&models.Purchase{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.State("purchase %d changed status concurrently", purchase.ID)
		}
		if err := returnStock(tx, purchase.SparepartID, purchase.Jumlah); err != nil {
			return err
		}

		return auditlog.CreatePurchaseAuditLog(tx, auditlog.Entry{
			Action:      "delete",
			EntityID:    purchase.ID,
			UserID:      &actor.UserID,
			IPAddress:   actor.IP,
			Description: fmt.Sprintf("purchase %d deleted", purchase.ID),
		}, purchase, nil)
	})
}

// claim moves a pending purchase to status with a conditional update.
func (s *purchaseService) claim(tx *gorm.DB, purchase *models.Purchase, status models.PurchaseStatus) error {
	if purchase.Status != models.PurchasePending {
		return apperror.State("purchase %d is %s, only pending purchases can change status", purchase.ID, purchase.Status)
	}
	res := tx.Model(&models.Purchase{}).
		Where("id = ? AND status = ?", purchase.ID, models.PurchasePending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.State("purchase %d changed status concurrently", purchase.ID)
	}
	purchase.Status = status
	return nil
}

func (s *purchaseService) findOwned(tx *gorm.DB, actor Actor, id uint) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := tx.First(&purchase, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("purchase %d not found", id)
		}
		return nil, err
	}
	if err := ensureAccess(actor, purchase.UserID); err != nil {
		return nil, err
	}
	return &purchase, nil
}
