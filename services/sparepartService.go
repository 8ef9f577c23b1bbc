package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"spareshop-api/dtos"
	"spareshop-api/models"
	"spareshop-api/utils/apperror"
	auditlog "spareshop-api/utils/log"
	"spareshop-api/utils/pagination"
	"spareshop-api/utils/upload"
)

type SparepartService interface {
	List(ctx context.Context, filter dtos.SparepartFilter) ([]models.Sparepart, pagination.Meta, error)
	Get(ctx context.Context, id uint) (*models.Sparepart, error)
	Create(ctx context.Context, actor Actor, input dtos.SparepartInput, image string) (*models.Sparepart, error)
	Update(ctx context.Context, actor Actor, id uint, input dtos.SparepartInput, image string) (*models.Sparepart, error)
	Delete(ctx context.Context, actor Actor, id uint) error
}

type sparepartService struct {
	db     *gorm.DB
	images *upload.ImageStore
}

func NewSparepartService(db *gorm.DB, images *upload.ImageStore) SparepartService {
	return &sparepartService{db: db, images: images}
}

func (s *sparepartService) List(ctx context.Context, filter dtos.SparepartFilter) ([]models.Sparepart, pagination.Meta, error) {
	p := pagination.New(filter.Page, filter.PageSize)

	query := s.db.WithContext(ctx).Model(&models.Sparepart{})
	for _, term := range strings.Fields(strings.ToLower(strings.TrimSpace(filter.Query))) {
		query = query.Where("LOWER(name) LIKE ?", "%"+term+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, err
	}

	var parts []models.Sparepart
	if err := query.
		Order("id ASC").
		Offset(p.Offset).
		Limit(p.PageSize).
		Find(&parts).Error; err != nil {
		return nil, pagination.Meta{}, err
	}

	return parts, pagination.BuildMeta(p.Page, p.PageSize, total), nil
}

func (s *sparepartService) Get(ctx context.Context, id uint) (*models.Sparepart, error) {
	return findSparepart(s.db.WithContext(ctx), id)
}

// Create stores a new sparepart. image is a file already placed in the image
// store; it is removed again if the row cannot be written.
func (s *sparepartService) Create(ctx context.Context, actor Actor, input dtos.SparepartInput, image string) (*models.Sparepart, error) {
	part, err := partFromInput(input)
	if err != nil {
		s.discard(image)
		return nil, err
	}
	part.Image = image

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&part).Error; err != nil {
			return err
		}
		return auditlog.CreateSparepartAuditLog(tx, auditlog.Entry{
			Action:      "create",
			EntityID:    part.ID,
			UserID:      &actor.UserID,
			IPAddress:   actor.IP,
			Description: "sparepart " + part.Name + " created",
		}, nil, &part)
	})
	if err != nil {
		s.discard(image)
		return nil, err
	}
	return &part, nil
}

// Update overwrites name, stock and price. A non-empty image replaces the
// stored one, and the old file is removed once the row is committed.
func (s *sparepartService) Update(ctx context.Context, actor Actor, id uint, input dtos.SparepartInput, image string) (*models.Sparepart, error) {
	changes, err := partFromInput(input)
	if err != nil {
		s.discard(image)
		return nil, err
	}

	var (
		part     models.Sparepart
		oldImage string
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := findSparepart(tx, id)
		if err != nil {
			return err
		}
		before := *found
		part = *found

		part.Name = changes.Name
		part.Stock = changes.Stock
		part.Price = changes.Price
		if image != "" {
			oldImage = part.Image
			part.Image = image
		}

		if err := tx.Save(&part).Error; err != nil {
			return err
		}
		return auditlog.CreateSparepartAuditLog(tx, auditlog.Entry{
			Action:      "update",
			EntityID:    part.ID,
			UserID:      &actor.UserID,
			IPAddress:   actor.IP,
			Description: "sparepart " + part.Name + " updated",
		}, &before, &part)
	})
	if err != nil {
		s.discard(image)
		return nil, err
	}

	s.discard(oldImage)
	return &part, nil
}

// Delete removes a sparepart together with the ledger and purchase rows that
// reference it, then its image.
func (s *sparepartService) Delete(ctx context.Context, actor Actor, id uint) error {
	var part *models.Sparepart
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := findSparepart(tx, id)
		if err != nil {
			return err
		}
		part = found

		if err := tx.Where("id_sparepart = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id_sparepart = ?", id).Delete(&models.Purchase{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Sparepart{}, id).Error; err != nil {
			return err
		}
		return auditlog.CreateSparepartAuditLog(tx, auditlog.Entry{
			Action:      "delete",
			EntityID:    id,
			UserID:      &actor.UserID,
			IPAddress:   actor.IP,
			Description: "sparepart " + part.Name + " deleted",
		}, part, nil)
	})
	if err != nil {
		return err
	}

	s.discard(part.Image)
	return nil
}

func (s *sparepartService) discard(image string) {
	if s.images == nil || image == "" {
		return
	}
	if err := s.images.Remove(image); err != nil {
		zap.L().Warn("failed to remove image", zap.String("image", image), zap.Error(err))
	}
}

func partFromInput(input dtos.SparepartInput) (models.Sparepart, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.Sparepart{}, apperror.Validation("name is required")
	}
	if input.Stock == nil || *input.Stock < 0 {
		return models.Sparepart{}, apperror.Validation("stock must be zero or more")
	}
	if input.Price == nil || *input.Price < 1 {
		return models.Sparepart{}, apperror.Validation("price must be greater than zero")
	}
	return models.Sparepart{Name: name, Stock: *input.Stock, Price: *input.Price}, nil
}

