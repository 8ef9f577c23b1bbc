package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"spareshop-api/models"
	"spareshop-api/utils/apperror"
)

// takeStock lowers stock by qty only when enough is left. It reports false
// when the conditional update matched no row.
func takeStock(tx *gorm.DB, sparepartID uint, qty int) (bool, error) {
	if qty < 1 {
		return false, apperror.Validation("stock change must be at least 1, got %d", qty)
	}
	res := tx.Model(&models.Sparepart{}).
		Where("id = ? AND stock >= ?", sparepartID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func returnStock(tx *gorm.DB, sparepartID uint, qty int) error {
	if qty < 1 {
		return apperror.Validation("stock change must be at least 1, got %d", qty)
	}
	return tx.Model(&models.Sparepart{}).
		Where("id = ?", sparepartID).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}

func findSparepart(tx *gorm.DB, id uint) (*models.Sparepart, error) {
	return loadSparepart(tx, id)
}

// lockSparepart reads the sparepart with a row lock held until the
// surrounding transaction ends. Cart writes for the same part queue on it.
func lockSparepart(tx *gorm.DB, id uint) (*models.Sparepart, error) {
	return loadSparepart(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func loadSparepart(tx *gorm.DB, id uint) (*models.Sparepart, error) {
	var sp models.Sparepart
	if err := tx.First(&sp, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("sparepart %d not found", id)
		}
		return nil, err
	}
	return &sp, nil
}
