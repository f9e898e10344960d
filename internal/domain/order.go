package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusProcessing Status = "Processing"
	StatusUpdating   Status = "Updating order"
	StatusPaid       Status = "PAID"
)

type Customer struct {
	ID       int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Order struct {
	ID            string          `json:"order_id"`
	Customer      Customer        `json:"customer"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	StreetAddress string          `json:"street_address"`
	City          string          `json:"city"`
	State         string          `json:"state"`
	Country       string          `json:"country"`
	PostalCode    string          `json:"postal_code"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []OrderItem     `json:"order_items"`
}

// OrderItem is one product line. ProductName is a snapshot taken when the
// order was created.
type OrderItem struct {
	ID          int64           `json:"order_item_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// ShippingInfo is the recipient block the customer fills in at checkout.
type ShippingInfo struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	PostalCode    string `json:"postal_code"`
}

// NewPreliminaryOrder builds a Processing order for req.CustomerID with no
// shipping details yet.
func NewPreliminaryOrder(id string, req CreateOrderRequest) (*Order, error) {
	if req.CustomerID <= 0 {
		return nil, fmt.Errorf("%w: user_id must be positive", ErrInvalidOrder)
	}
	if req.TotalAmount.IsNegative() {
		return nil, fmt.Errorf("%w: total_amount is negative", ErrInvalidOrder)
	}
	items := make([]OrderItem, 0, len(req.Items))
	for i, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d: quantity must be positive", ErrInvalidOrder, i)
		}
		if it.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: item %d: unit_price is negative", ErrInvalidOrder, i)
		}
		items = append(items, OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return &Order{
		ID:          id,
		Customer:    Customer{ID: req.CustomerID},
		TotalAmount: req.TotalAmount,
		Status:      StatusProcessing,
		Items:       items,
	}, nil
}

// ApplyShipping copies info onto the order and moves it to Updating order.
func (o *Order) ApplyShipping(info ShippingInfo) {
	o.FirstName = info.FirstName
	o.LastName = info.LastName
	o.StreetAddress = info.StreetAddress
	o.City = info.City
	o.State = info.State
	o.Country = info.Country
	o.PostalCode = info.PostalCode
	o.Status = StatusUpdating
}

// MarkPaid moves the order to PAID whatever its current status is.
func (o *Order) MarkPaid() {
	o.Status = StatusPaid
}
