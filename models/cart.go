package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type CartStatus string

const (
	StatusCart      CartStatus = "cart"
	StatusOrdered   CartStatus = "ordered"
	StatusPaid      CartStatus = "paid"
	StatusCancelled CartStatus = "cancelled"
)

var cartNext = map[CartStatus]map[CartStatus]bool{
	StatusCart:      {StatusOrdered: true},
	StatusOrdered:   {StatusPaid: true, StatusCancelled: true},
	StatusPaid:      {},
	StatusCancelled: {},
}

// CanTransition reports whether a ledger row may move from one status to another.
func (s CartStatus) CanTransition(to CartStatus) bool {
	return cartNext[s][to]
}

func (s CartStatus) Valid() bool {
	_, ok := cartNext[s]
	return ok
}

// CartItem is one ledger entry: a sparepart reserved or bought by a user.
// The same row moves from cart through ordered to paid or cancelled.
type CartItem struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"column:id_user;not null;index" json:"id_user"`
	SparepartID  uint       `gorm:"column:id_sparepart;not null;index" json:"id_sparepart"`
	Jumlah       int        `gorm:"not null;default:1" json:"jumlah"`
	Status       CartStatus `gorm:"size:16;not null;default:'cart';index" json:"status"`
	TotalHarga   int64      `gorm:"not null;default:0" json:"total_harga"`
	TanggalOrder *time.Time `json:"tanggal_order,omitempty"`
	TanggalBayar *time.Time `json:"tanggal_bayar,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Sparepart *Sparepart `gorm:"foreignKey:SparepartID" json:"sparepart,omitempty"`
}

func (CartItem) TableName() string {
	return "cart"
}

// BeforeSave keeps total_harga equal to the current price times jumlah.
// Bulk updates through an empty model carry no sparepart id and are skipped.
func (c *CartItem) BeforeSave(tx *gorm.DB) error {
	if c.SparepartID == 0 || c.Jumlah == 0 {
		return nil
	}
	var sp Sparepart
	err := tx.Session(&gorm.Session{NewDB: true}).Select("id", "price").First(&sp, c.SparepartID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("sparepart %d not found", c.SparepartID)
	}
	if err != nil {
		return err
	}
	c.TotalHarga = sp.Price * int64(c.Jumlah)
	return nil
}
