package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/venue-pos-api/internal/application/service"
)

// AddonRequest is an extra on an order line.
type AddonRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// OrderItemRequest is one line of an order ticket.
type OrderItemRequest struct {
	Name     string         `json:"name"`
	Price    float64        `json:"price"`
	Quantity int            `json:"quantity"`
	Addons   []AddonRequest `json:"addons"`
}

// CreateOrderRequest is the request body for sending a ticket to a bill.
type CreateOrderRequest struct {
	Note  string             `json:"note"`
	Items []OrderItemRequest `json:"items" binding:"required"`
}

// ToInput builds the service input for the signed-in user.
func (r *CreateOrderRequest) ToInput(userID uuid.UUID) *service.CreateOrderInput {
	return &service.CreateOrderInput{
		UserID: userID,
		Note:   r.Note,
		Items:  orderItems(r.Items),
	}
}

// AddItemsRequest appends lines to an order.
type AddItemsRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required"`
}

// ToInput builds the service input.
func (r *AddItemsRequest) ToInput() *service.AddItemsInput {
	return &service.AddItemsInput{Items: orderItems(r.Items)}
}

// UpdateItemRequest changes one line. Omitted fields stay as they are.
type UpdateItemRequest struct {
	Name     *string         `json:"name"`
	Price    *float64        `json:"price"`
	Quantity *int            `json:"quantity"`
	Addons   *[]AddonRequest `json:"addons"`
}

// ToInput builds the service input.
func (r *UpdateItemRequest) ToInput() *service.UpdateItemInput {
	in := &service.UpdateItemInput{
		Name:     r.Name,
		Price:    r.Price,
		Quantity: r.Quantity,
	}
	if r.Addons != nil {
		addons := addonInputs(*r.Addons)
		in.Addons = &addons
	}
	return in
}

func orderItems(items []OrderItemRequest) []service.OrderItemInput {
	out := make([]service.OrderItemInput, len(items))
	for i, it := range items {
		out[i] = service.OrderItemInput{
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
			Addons:   addonInputs(it.Addons),
		}
	}
	return out
}

func addonInputs(addons []AddonRequest) []service.AddonInput {
	out := make([]service.AddonInput, len(addons))
	for i, a := range addons {
		out[i] = service.AddonInput{Name: a.Name, Price: a.Price}
	}
	return out
}
