package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderID is an opaque order identifier. On the wire it may arrive as a JSON
// string or a JSON number; both decode to the same text.
type OrderID string

func (id *OrderID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = OrderID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("orderId must be a string or a number: %w", err)
	}
	*id = OrderID(n.String())
	return nil
}

// FinalizeRequest is the payload accepted by POST /finalize-order and by the
// finalize command topic.
type FinalizeRequest struct {
	OrderID OrderID `json:"orderId"`
}

// CreateOrderRequest is the payload of POST /order/create_preliminary_order.
type CreateOrderRequest struct {
	CustomerID  int64             `json:"user_id"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Items       []CreateOrderItem `json:"order_items"`
}

type CreateOrderItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}
