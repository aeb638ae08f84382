package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Request bodies sent to the remote API on create and update. Field names
// follow the remote service's wire format.

type ProductInput struct {
	SKU   string      `json:"sku"`
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
	Stock int64       `json:"stock"`
}

type SupplierInput struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type OrderItemInput struct {
	ProductID string      `json:"productId"`
	Qty       int64       `json:"qty"`
	Price     json.Number `json:"price"`
}

type OrderInput struct {
	SupplierID string           `json:"supplierId"`
	Status     OrderStatus      `json:"status"`
	Items      []OrderItemInput `json:"items"`
}

// Number renders a decimal as an unquoted JSON number.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
