package domain

import (
	"github.com/shopspring/decimal"
)

// Collection names one remote resource collection. The value doubles as the
// REST path segment.
type Collection string

const (
	Products  Collection = "products"
	Suppliers Collection = "suppliers"
	Orders    Collection = "orders"
)

// Collections lists every collection in load order.
var Collections = []Collection{Products, Suppliers, Orders}

// ParseCollection accepts the REST path segment of a collection.
func ParseCollection(s string) (Collection, bool) {
	switch c := Collection(s); c {
	case Products, Suppliers, Orders:
		return c, true
	}
	return "", false
}

// Entity returns the singular display name, e.g. "Product".
func (c Collection) Entity() string {
	switch c {
	case Products:
		return "Product"
	case Suppliers:
		return "Supplier"
	case Orders:
		return "Order"
	}
	return string(c)
}

// Product is a catalog item with its current price and stock.
type Product struct {
	ID    string          `json:"id"`
	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int64           `json:"stock"`
}

// Supplier is a vendor orders are placed with.
type Supplier struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// OrderStatus is an open set of order states; unknown values are kept as-is.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrDefault returns pending for an empty status.
func (s OrderStatus) OrDefault() OrderStatus {
	if s == "" {
		return OrderStatusPending
	}
	return s
}

// OrderItem is one order line. UnitPrice is the price recorded on the order,
// not the product's current price.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineTotal is quantity × unit price.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity))
}

// Order is a purchase order placed with a supplier.
type Order struct {
	ID         string      `json:"id"`
	SupplierID string      `json:"supplier_id"`
	Status     OrderStatus `json:"status"`
	Items      []OrderItem `json:"items"`
}

// Clone returns a copy that does not share the Items backing array.
func (o Order) Clone() Order {
	cp := o
	if o.Items != nil {
		cp.Items = append([]OrderItem(nil), o.Items...)
	}
	return cp
}
