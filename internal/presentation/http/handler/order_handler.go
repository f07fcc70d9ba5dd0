package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/venue-pos-api/internal/application/service"
	"github.com/sangkips/venue-pos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/venue-pos-api/internal/presentation/http/dto/response"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create handles sending a new order ticket to a bill
func (h *OrderHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	billID, ok := pathID(c, "id", "bill")
	if !ok {
		return
	}

	var req request.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), billID, req.ToInput(userID))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Order created successfully", order)
}

// Get handles getting a single order
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// AddItems handles appending lines to an order
func (h *OrderHandler) AddItems(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}

	var req request.AddItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.orderService.AddItems(c.Request.Context(), id, req.ToInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Items added successfully", order)
}

// UpdateItem handles changing one line of an order
func (h *OrderHandler) UpdateItem(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id", "item")
	if !ok {
		return
	}

	var req request.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.orderService.UpdateItem(c.Request.Context(), id, itemID, req.ToInput())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item updated successfully", order)
}

// RemoveItem handles deleting one line of an order
func (h *OrderHandler) RemoveItem(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "item_id", "item")
	if !ok {
		return
	}

	order, err := h.orderService.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed successfully", order)
}

// Cancel handles cancelling an order
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order cancelled successfully", order)
}
