package derive

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"stockdesk/internal/domain"
)

const (
	UnknownSupplier = "Unknown Supplier"
	UnknownProduct  = "Unknown Product"
	NoItems         = "No items"
	NotAvailable    = "N/A"
)

// lowStockThreshold is the first stock level counted as InStock.
const lowStockThreshold = 10

// Catalog is the read side of the entity store.
type Catalog interface {
	FindProduct(id string) (domain.Product, bool)
	FindSupplier(id string) (domain.Supplier, bool)
}

type StockStatus int

const (
	OutOfStock StockStatus = iota
	LowStock
	InStock
)

// ProductStatus classifies a stock level. Negative stock never comes from a
// valid record and is treated as OutOfStock.
func ProductStatus(stock int64) StockStatus {
	switch {
	case stock <= 0:
		return OutOfStock
	case stock < lowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}

func (s StockStatus) Label() string {
	switch s {
	case OutOfStock:
		return "Out of Stock"
	case LowStock:
		return "Low Stock"
	}
	return "In Stock"
}

func (s StockStatus) Class() string {
	switch s {
	case OutOfStock:
		return "status-out-of-stock"
	case LowStock:
		return "status-low-stock"
	}
	return "status-in-stock"
}

func (s StockStatus) String() string { return s.Label() }

func ResolveSupplier(cat Catalog, o domain.Order) (domain.Supplier, bool) {
	if o.SupplierID == "" {
		return domain.Supplier{}, false
	}
	return cat.FindSupplier(o.SupplierID)
}

func ResolveProduct(cat Catalog, it domain.OrderItem) (domain.Product, bool) {
	if it.ProductID == "" {
		return domain.Product{}, false
	}
	return cat.FindProduct(it.ProductID)
}

// SupplierName returns the resolved supplier's name or UnknownSupplier.
func SupplierName(cat Catalog, o domain.Order) string {
	if s, ok := ResolveSupplier(cat, o); ok {
		return s.Name
	}
	return UnknownSupplier
}

// ProductName returns the resolved product's name or UnknownProduct.
func ProductName(cat Catalog, it domain.OrderItem) string {
	if p, ok := ResolveProduct(cat, it); ok {
		return p.Name
	}
	return UnknownProduct
}

// OrderTotal sums the order lines using the price stored on each line. The
// product's current price is never consulted.
func OrderTotal(items []domain.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// ItemsSummary renders "Name (qty)" per line, joined with ", ".
func ItemsSummary(cat Catalog, o domain.Order) string {
	if len(o.Items) == 0 {
		return NoItems
	}
	parts := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		parts = append(parts, ProductName(cat, it)+" ("+strconv.FormatInt(it.Quantity, 10)+")")
	}
	return strings.Join(parts, ", ")
}

// ShortID renders the last eight characters of id, uppercased, behind a "#".
func ShortID(id string) string {
	if id == "" {
		return NotAvailable
	}
	r := []rune(id)
	if len(r) > 8 {
		r = r[len(r)-8:]
	}
	return "#" + strings.ToUpper(string(r))
}

func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// OrderStatusClass is the badge class for an order status.
func OrderStatusClass(s domain.OrderStatus) string {
	return "status-" + string(s.OrDefault())
}
