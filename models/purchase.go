package models

import "time"

type PurchaseStatus string

const (
	PurchasePending   PurchaseStatus = "pending"
	PurchasePaid      PurchaseStatus = "paid"
	PurchaseCancelled PurchaseStatus = "cancelled"
)

// Purchase is the older single-item purchase form. Stock is taken when the
// form is created and given back when a pending form is cancelled or deleted.
type Purchase struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"column:id_user;not null;index" json:"id_user"`
	SparepartID uint           `gorm:"column:id_sparepart;not null;index" json:"id_sparepart"`
	Jumlah      int            `gorm:"not null" json:"jumlah"`
	TotalHarga  int64          `gorm:"not null;default:0" json:"total_harga"`
	Status      PurchaseStatus `gorm:"size:16;not null;default:'pending'" json:"status"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Sparepart *Sparepart `gorm:"foreignKey:SparepartID" json:"sparepart,omitempty"`
}

func (Purchase) TableName() string {
	return "form_pembelian"
}
