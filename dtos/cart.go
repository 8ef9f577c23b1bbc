package dtos

type AddToCartInput struct {
	SparepartID uint `json:"id_sparepart" binding:"required"`
	Jumlah      int  `json:"jumlah" binding:"required,min=1"`
}

type UpdateCartInput struct {
	Jumlah int `json:"jumlah" binding:"required,min=1"`
}

type CreatePurchaseInput struct {
	SparepartID uint `json:"id_sparepart" binding:"required"`
	Jumlah      int  `json:"jumlah" binding:"required,min=1"`
}

type UpdatePurchaseInput struct {
	Status string `json:"status" binding:"required,oneof=paid cancelled"`
}
