package controllers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"spareshop-api/dtos"
	"spareshop-api/models"
	"spareshop-api/services"
	"spareshop-api/utils/response"
)

// OrderController serves both the cart endpoints and the order endpoints;
// they are views of the same ledger rows.
type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

func (oc *OrderController) GetCart(c *gin.Context) {
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

	items, err := oc.orders.ListCart(c.Request.Context(), actor, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", items)
}

func (oc *OrderController) AddToCart(c *gin.Context) {
	actor, err := actorOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dtos.AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	item, err := oc.orders.AddItem(c.Request.Context(), actor, input.SparepartID, input.Jumlah)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "item added to cart", item)
}

func (oc *OrderController) UpdateCartItem(c *gin.Context) {
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

	var input dtos.UpdateCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, bindError(err))
		return
	}

	item, err := oc.orders.UpdateItem(c.Request.Context(), actor, id, input.Jumlah)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "cart item updated", item)
}

func (oc *OrderController) RemoveCartItem(c *gin.Context) {
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

	if err := oc.orders.RemoveItem(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "cart item removed", nil)
}

func (oc *OrderController) Checkout(c *gin.Context) {
	actor, err := actorOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	items, err := oc.orders.Checkout(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "checkout successful", items)
}

// GetOrders lists orders of a user. ?status=paid,cancelled narrows the result.
func (oc *OrderController) GetOrders(c *gin.Context) {
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

	var statuses []models.CartStatus
	for _, s := range strings.Split(c.Query("status"), ",") {
		if s = strings.TrimSpace(strings.ToLower(s)); s != "" {
			statuses = append(statuses, models.CartStatus(s))
		}
	}

	items, err := oc.orders.ListForUser(c.Request.Context(), actor, userID, statuses...)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", items)
}

func (oc *OrderController) PayOrder(c *gin.Context) {
	oc.transition(c, oc.orders.Pay, "order paid")
}

func (oc *OrderController) CancelOrder(c *gin.Context) {
	oc.transition(c, oc.orders.Cancel, "order cancelled")
}

type orderTransition func(ctx context.Context, actor services.Actor, id uint) (*models.CartItem, error)

func (oc *OrderController) transition(c *gin.Context, fn orderTransition, message string) {
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

	item, err := fn(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, message, item)
}
