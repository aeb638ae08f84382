package derive

import (
	"stockdesk/internal/domain"
)

// Row view-models, rebuilt from the store on every render.

type ProductRow struct {
	ID          string `json:"id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Stock       int64  `json:"stock"`
	Status      string `json:"status"`
	StatusClass string `json:"status_class"`
}

type SupplierRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Contact     string `json:"contact"`
	Status      string `json:"status"`
	StatusClass string `json:"status_class"`
}

type OrderRow struct {
	ID          string `json:"id"`
	ShortID     string `json:"short_id"`
	Supplier    string `json:"supplier"`
	Items       string `json:"items"`
	Total       string `json:"total"`
	Status      string `json:"status"`
	StatusClass string `json:"status_class"`
}

// Suppliers carry no state of their own; every row shows the same badge.
const (
	supplierStatus      = "Active"
	supplierStatusClass = "status-in-stock"
)

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

func ProductRows(products []domain.Product) []ProductRow {
	rows := make([]ProductRow, 0, len(products))
	for _, p := range products {
		st := ProductStatus(p.Stock)
		rows = append(rows, ProductRow{
			ID:          p.ID,
			SKU:         orNA(p.SKU),
			Name:        orNA(p.Name),
			Price:       FormatMoney(p.Price),
			Stock:       p.Stock,
			Status:      st.Label(),
			StatusClass: st.Class(),
		})
	}
	return rows
}

func SupplierRows(suppliers []domain.Supplier) []SupplierRow {
	rows := make([]SupplierRow, 0, len(suppliers))
	for _, s := range suppliers {
		rows = append(rows, SupplierRow{
			ID:          s.ID,
			Name:        orNA(s.Name),
			Contact:     orNA(s.Contact),
			Status:      supplierStatus,
			StatusClass: supplierStatusClass,
		})
	}
	return rows
}

func OrderRows(cat Catalog, orders []domain.Order) []OrderRow {
	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		status := o.Status.OrDefault()
		rows = append(rows, OrderRow{
			ID:          o.ID,
			ShortID:     ShortID(o.ID),
			Supplier:    SupplierName(cat, o),
			Items:       ItemsSummary(cat, o),
			Total:       FormatMoney(OrderTotal(o.Items)),
			Status:      string(status),
			StatusClass: OrderStatusClass(status),
		})
	}
	return rows
}

// EmptyMessage is shown in place of an empty table.
func EmptyMessage(c domain.Collection) string {
	switch c {
	case domain.Products:
		return `No products found. Click "Add Product" to get started.`
	case domain.Suppliers:
		return `No suppliers found. Click "Add Supplier" to get started.`
	case domain.Orders:
		return `No orders found. Click "Create Order" to get started.`
	}
	return ""
}
