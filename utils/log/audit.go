package log

import (
	"encoding/json"

	"gorm.io/gorm"

	"spareshop-api/models"
)

const (
	EntitySparepart = "sparepart"
	EntityOrder     = "order"
	EntityPurchase  = "purchase"
)

// Entry describes one audited change. IPAddress and UserID are optional.
type Entry struct {
	Action      string
	EntityID    uint
	UserID      *uint
	IPAddress   string
	Description string
}

func CreateSparepartAuditLog(db *gorm.DB, e Entry, oldPart, newPart *models.Sparepart) error {
	return create(db, EntitySparepart, e, toJSONString(oldPart), toJSONString(newPart), sparepartChanges(e.Action, oldPart, newPart))
}

func CreateOrderAuditLog(db *gorm.DB, e Entry, oldItem, newItem *models.CartItem) error {
	return create(db, EntityOrder, e, toJSONString(oldItem), toJSONString(newItem), orderChanges(oldItem, newItem))
}

func CreatePurchaseAuditLog(db *gorm.DB, e Entry, oldP, newP *models.Purchase) error {
	var changes *string
	if oldP != nil && newP != nil && oldP.Status != newP.Status {
		changes = marshal(map[string]any{
			"status": map[string]string{"old": string(oldP.Status), "new": string(newP.Status)},
		})
	}
	return create(db, EntityPurchase, e, toJSONString(oldP), toJSONString(newP), changes)
}

func create(db *gorm.DB, entityType string, e Entry, oldValue, newValue, changes *string) error {
	auditLog := models.AuditLog{
		EntityType:  entityType,
		EntityID:    e.EntityID,
		Action:      e.Action,
		UserID:      e.UserID,
		OldValue:    oldValue,
		NewValue:    newValue,
		Changes:     changes,
		Description: e.Description,
	}
	if e.IPAddress != "" {
		ip := e.IPAddress
		auditLog.IPAddress = &ip
	}
	return db.Create(&auditLog).Error
}

// toJSONString returns nil for nil pointers so absent sides stay NULL.
func toJSONString[T any](v *T) *string {
	if v == nil {
		return nil
	}
	return marshal(v)
}

func marshal(v any) *string {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

func sparepartChanges(action string, oldPart, newPart *models.Sparepart) *string {
	if action != "update" || oldPart == nil || newPart == nil {
		return nil
	}

	changes := make(map[string]any)

	if oldPart.Name != newPart.Name {
		changes["name"] = map[string]string{"old": oldPart.Name, "new": newPart.Name}
	}
	if oldPart.Stock != newPart.Stock {
		changes["stock"] = map[string]int{"old": oldPart.Stock, "new": newPart.Stock}
	}
	if oldPart.Price != newPart.Price {
		changes["price"] = map[string]int64{"old": oldPart.Price, "new": newPart.Price}
	}
	if oldPart.Image != newPart.Image {
		changes["image"] = map[string]string{"old": oldPart.Image, "new": newPart.Image}
	}

	if len(changes) == 0 {
		return nil
	}
	return marshal(changes)
}

func orderChanges(oldItem, newItem *models.CartItem) *string {
	if oldItem == nil || newItem == nil {
		return nil
	}

	changes := make(map[string]any)

	if oldItem.Status != newItem.Status {
		changes["status"] = map[string]string{"old": string(oldItem.Status), "new": string(newItem.Status)}
	}
	if oldItem.Jumlah != newItem.Jumlah {
		changes["jumlah"] = map[string]int{"old": oldItem.Jumlah, "new": newItem.Jumlah}
	}
	if oldItem.TotalHarga != newItem.TotalHarga {
		changes["total_harga"] = map[string]int64{"old": oldItem.TotalHarga, "new": newItem.TotalHarga}
	}

	if len(changes) == 0 {
		return nil
	}
	return marshal(changes)
}
