package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"spareshop-api/metrics"
	"spareshop-api/models"
	"spareshop-api/utils/apperror"
	auditlog "spareshop-api/utils/log"
)

// OrderService drives ledger rows through cart -> ordered -> paid/cancelled
// and keeps sparepart stock in step with them.
type OrderService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db, now: time.Now}
}

// AddItem puts qty units of a sparepart in the actor's cart, merging with an
// existing cart row for the same sparepart.
func (s *OrderService) AddItem(ctx context.Context, actor Actor, sparepartID uint, qty int) (*models.CartItem, error) {
	if qty < 1 {
		return nil, apperror.Validation("jumlah must be at least 1")
	}

	var item models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sp, err := lockSparepart(tx, sparepartID)
		if err != nil {
			return err
		}

		err = tx.Where("id_user = ? AND id_sparepart = ? AND status = ?", actor.UserID, sparepartID, models.StatusCart).
			First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{
				UserID:      actor.UserID,
				SparepartID: sparepartID,
				Status:      models.StatusCart,
			}
		case err != nil:
			return err
		}

		if qty > sp.Stock-item.Jumlah {
			metrics.RecordStockRejection("add_item")
			return apperror.Stock("stock for %s is not enough (available %d, in cart %d, requested %d)",
				sp.Name, sp.Stock, item.Jumlah, qty)
		}
		item.Jumlah += qty

		return tx.Omit(clause.Associations).Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem sets the quantity of a cart row.
func (s *OrderService) UpdateItem(ctx context.Context, actor Actor, itemID uint, qty int) (*models.CartItem, error) {
	if qty < 1 {
		return nil, apperror.Validation("jumlah must be at least 1")
	}

	var item models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.findOwned(tx, actor, itemID)
		if err != nil {
			return err
		}
		item = *found
		if item.Status != models.StatusCart {
			return apperror.State("only cart items can be edited, item is %s", item.Status)
		}

		sp, err := lockSparepart(tx, item.SparepartID)
		if err != nil {
			return err
		}
		if qty > sp.Stock {
			metrics.RecordStockRejection("update_item")
			return apperror.Stock("stock for %s is not enough (available %d, requested %d)", sp.Name, sp.Stock, qty)
		}

		item.Jumlah = qty
		return tx.Omit(clause.Associations).Save(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveItem deletes a row that is still in the cart.
func (s *OrderService) RemoveItem(ctx context.Context, actor Actor, itemID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.findOwned(tx, actor, itemID)
		if err != nil {
			return err
		}
		if item.Status != models.StatusCart {
			return apperror.State("only cart items can be removed, item is %s", item.Status)
		}

		res := tx.Where("id = ? AND status = ?", item.ID, models.StatusCart).Delete(&models.CartItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.State("item %d is no longer in the cart", item.ID)
		}
		return nil
	})
}

// Checkout turns every cart row of the actor into an order. The whole batch
// runs in one transaction: if any row lacks stock nothing is ordered.
func (s *OrderService) Checkout(ctx context.Context, actor Actor) ([]models.CartItem, error) {
	var ordered []models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Preload("Sparepart").
			Where("id_user = ? AND status = ?", actor.UserID, models.StatusCart).
			Order("id ASC").
			Find(&items).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return apperror.New(apperror.KindEmptyCart, "cart is empty")
		}

		now := s.now()
		for i := range items {
			item := &items[i]
			if item.Sparepart == nil {
				return apperror.NotFound("sparepart %d not found", item.SparepartID)
			}
			before := *item
			before.Sparepart = nil

			res := tx.Model(&models.CartItem{}).
				Where("id = ? AND status = ?", item.ID, models.StatusCart).
				Updates(map[string]any{
					"status":        models.StatusOrdered,
					"tanggal_order": now,
					"total_harga":   item.Sparepart.Price * int64(item.Jumlah),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return apperror.State("item %d is no longer in the cart", item.ID)
			}

			ok, err := takeStock(tx, item.SparepartID, item.Jumlah)
			if err != nil {
				return err
			}
			if !ok {
				metrics.RecordStockRejection("checkout")
				return apperror.Stock("stock for %s is not enough", item.Sparepart.Name)
			}

			item.Status = models.StatusOrdered
			item.TanggalOrder = &now
			item.TotalHarga = item.Sparepart.Price * int64(item.Jumlah)
			item.Sparepart.Stock -= item.Jumlah

			after := *item
			after.Sparepart = nil
			if err := auditlog.CreateOrderAuditLog(tx, auditlog.Entry{
				Action:      "checkout",
				EntityID:    item.ID,
				UserID:      &actor.UserID,
				IPAddress:   actor.IP,
				Description: fmt.Sprintf("%d x %s ordered", item.Jumlah, item.Sparepart.Name),
			}, &before, &after); err != nil {
				return err
			}
		}
		ordered = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(models.StatusOrdered), len(ordered))
	return ordered, nil
}

// Pay marks an ordered row as paid.
func (s *OrderService) Pay(ctx context.Context, actor Actor, orderID uint) (*models.CartItem, error) {
	return s.transition(ctx, actor, orderID, models.StatusPaid, func(tx *gorm.DB, item *models.CartItem, now time.Time) (map[string]any, error) {
		item.TanggalBayar = &now
		return map[string]any{"tanggal_bayar": now}, nil
	})
}

// Cancel marks an ordered row as cancelled and gives its quantity back to stock.
func (s *OrderService) Cancel(ctx context.Context, actor Actor, orderID uint) (*models.CartItem, error) {
	return s.transition(ctx, actor, orderID, models.StatusCancelled, func(tx *gorm.DB, item *models.CartItem, _ time.Time) (map[string]any, error) {
		return nil, returnStock(tx, item.SparepartID, item.Jumlah)
	})
}

// transition moves an ordered row to status. The status column is updated
// conditionally so two racing requests cannot both apply their side effect.
func (s *OrderService) transition(
	ctx context.Context,
	actor Actor,
	orderID uint,
	to models.CartStatus,
	apply func(tx *gorm.DB, item *models.CartItem, now time.Time) (map[string]any, error),
) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.findOwned(tx, actor, orderID)
		if err != nil {
			return err
		}
		item = *found
		from := item.Status
		if !from.CanTransition(to) {
			return apperror.State("order %d is %s, only ordered items can become %s", item.ID, from, to)
		}

		res := tx.Model(&models.CartItem{}).
			Where("id = ? AND status = ?", item.ID, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.State("order %d changed status concurrently", item.ID)
		}

		before := item
		item.Status = to
		extra, err := apply(tx, &item, s.now())
		if err != nil {
			return err
		}
		if len(extra) > 0 {
			if err := tx.Model(&models.CartItem{}).Where("id = ?", item.ID).Updates(extra).Error; err != nil {
				return err
			}
		}

		return auditlog.CreateOrderAuditLog(tx, auditlog.Entry{
			Action:      string(to),
			EntityID:    item.ID,
			UserID:      &actor.UserID,
			IPAddress:   actor.IP,
			Description: fmt.Sprintf("order %d %s", item.ID, to),
		}, &before, &item)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(to), 1)
	return &item, nil
}

// ListCart returns the rows still in the cart of userID.
func (s *OrderService) ListCart(ctx context.Context, actor Actor, userID uint) ([]models.CartItem, error) {
	if err := ensureAccess(actor, userID); err != nil {
		return nil, err
	}

	var items []models.CartItem
	err := s.db.WithContext(ctx).
		Preload("Sparepart").
		Where("id_user = ? AND status = ?", userID, models.StatusCart).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// ListForUser returns the orders of userID, newest first. With no statuses it
// returns every row that has left the cart.
func (s *OrderService) ListForUser(ctx context.Context, actor Actor, userID uint, statuses ...models.CartStatus) ([]models.CartItem, error) {
	if err := ensureAccess(actor, userID); err != nil {
		return nil, err
	}

	if len(statuses) == 0 {
		statuses = []models.CartStatus{models.StatusOrdered, models.StatusPaid, models.StatusCancelled}
	}
	for _, st := range statuses {
		if st == models.StatusCart || !st.Valid() {
			return nil, apperror.Validation("invalid order status %q", st)
		}
	}

	var items []models.CartItem
	err := s.db.WithContext(ctx).
		Preload("Sparepart").
		Where("id_user = ? AND status IN ?", userID, statuses).
		Order("tanggal_order DESC").
		Order("id DESC").
		Find(&items).Error
	return items, err
}

func (s *OrderService) findOwned(tx *gorm.DB, actor Actor, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := tx.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("item %d not found", itemID)
		}
		return nil, err
	}
	if err := ensureAccess(actor, item.UserID); err != nil {
		return nil, err
	}
	return &item, nil
}
