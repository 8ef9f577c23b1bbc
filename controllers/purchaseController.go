package controllers

import (
	"github.com/gin-gonic/gin"

	"spareshop-api/dtos"
	"spareshop-api/models"
	"spareshop-api/services"
	"spareshop-api/utils/response"
)

// PurchaseController exposes the older purchase form under /pembelian.
type PurchaseController struct {
	purchases services.PurchaseService
}

func NewPurchaseController(purchases services.PurchaseService) *PurchaseController {
	return &PurchaseController{purchases: purchases}
}

func (pc *PurchaseController) GetByUser(c *gin.Context) {
	actor, err := actorOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	userID, err := paramID(c, "userId")
	if err != nil {
		response.Error(c, err)
		return
	}

	list, err := pc.purchases.ListByUser(c.Request.Context(), actor, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", list)
}

func (pc *PurchaseController) GetDetail(c *gin.Context) {
	actor, err := actorOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	p, err := pc.purchases.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", p)
}

func (pc *PurchaseController) Create(c *gin.Context) {
	actor, err := actorOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dtos.CreatePurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	p, err := pc.purchases.Create(c.Request.Context(), actor, input.SparepartID, input.Jumlah)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "purchase created", p)
}

func (pc *PurchaseController) UpdateStatus(c *gin.Context) {
	actor, err := actorOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dtos.UpdatePurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	p, err := pc.purchases.UpdateStatus(c.Request.Context(), actor, id, models.PurchaseStatus(input.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "purchase updated", p)
}

func (pc *PurchaseController) Delete(c *gin.Context) {
	actor, err := actorOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := pc.purchases.Delete(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "purchase deleted", nil)
}
