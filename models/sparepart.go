package models

import "time"

// Sparepart is a catalog entry. Price is stored in minor currency units.
type Sparepart struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:191;not null" json:"name"`
	Stock     int       `gorm:"not null;default:0" json:"stock"`
	Price     int64     `gorm:"not null" json:"price"`
	Image     string    `gorm:"size:255" json:"image"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Sparepart) TableName() string {
	return "spareparts"
}
