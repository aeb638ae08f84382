package session

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"stockdesk/internal/derive"
	"stockdesk/internal/domain"
)

// Draft is the editable copy of one entity form. Field values are kept
// exactly as the form surface submitted them and are only parsed by Validate
// and when the request payload is built.
//
// The interface is sealed: only the three drafts below implement it.
type Draft interface {
	Collection() domain.Collection
	Fields() map[string]string
	SetField(name, value string) error
	Validate() *ValidationError

	payload() any
	clone() Draft
}

// Form field names.
const (
	FieldSKU        = "sku"
	FieldName       = "name"
	FieldPrice      = "price"
	FieldStock      = "stock"
	FieldContact    = "contact"
	FieldSupplierID = "supplierId"
	FieldStatus     = "status"
	FieldItems      = "items"
	FieldProductID  = "productId"
	FieldQuantity   = "quantity"
)

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func parsePositive(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

func parseInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil
}

// ProductDraft

type ProductDraft struct {
	SKU   string `json:"sku"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Stock string `json:"stock"`
}

func productDraftFrom(p domain.Product) *ProductDraft {
	d := &ProductDraft{
		SKU:   p.SKU,
		Name:  p.Name,
		Stock: strconv.FormatInt(p.Stock, 10),
	}
	if !p.Price.IsZero() {
		d.Price = p.Price.String()
	}
	return d
}

func (d *ProductDraft) Collection() domain.Collection { return domain.Products }

func (d *ProductDraft) Fields() map[string]string {
	return map[string]string{
		FieldSKU:   d.SKU,
		FieldName:  d.Name,
		FieldPrice: d.Price,
		FieldStock: d.Stock,
	}
}

func (d *ProductDraft) SetField(name, value string) error {
	switch name {
	case FieldSKU:
		d.SKU = value
	case FieldName:
		d.Name = value
	case FieldPrice:
		d.Price = value
	case FieldStock:
		d.Stock = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return nil
}

func (d *ProductDraft) Validate() *ValidationError {
	v := &ValidationError{}
	if blank(d.SKU) {
		v.add(FieldSKU, "SKU is required")
	}
	if blank(d.Name) {
		v.add(FieldName, "Name is required")
	}
	if _, ok := parsePositive(d.Price); !ok {
		v.add(FieldPrice, "Price must be greater than 0")
	}
	if n, ok := parseInt(d.Stock); !ok || n < 0 {
		v.add(FieldStock, "Stock must be 0 or greater")
	}
	return v.orNil()
}

func (d *ProductDraft) payload() any {
	price, _ := parsePositive(d.Price)
	stock, _ := parseInt(d.Stock)
	return domain.ProductInput{
		SKU:   strings.TrimSpace(d.SKU),
		Name:  strings.TrimSpace(d.Name),
		Price: domain.Number(price),
		Stock: stock,
	}
}

func (d *ProductDraft) clone() Draft {
	cp := *d
	return &cp
}

// SupplierDraft

type SupplierDraft struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

func supplierDraftFrom(s domain.Supplier) *SupplierDraft {
	return &SupplierDraft{Name: s.Name, Contact: s.Contact}
}

func (d *SupplierDraft) Collection() domain.Collection { return domain.Suppliers }

func (d *SupplierDraft) Fields() map[string]string {
	return map[string]string{
		FieldName:    d.Name,
		FieldContact: d.Contact,
	}
}

func (d *SupplierDraft) SetField(name, value string) error {
	switch name {
	case FieldName:
		d.Name = value
	case FieldContact:
		d.Contact = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return nil
}

func (d *SupplierDraft) Validate() *ValidationError {
	v := &ValidationError{}
	if blank(d.Name) {
		v.add(FieldName, "Name is required")
	}
	if blank(d.Contact) {
		v.add(FieldContact, "Contact information is required")
	}
	return v.orNil()
}

func (d *SupplierDraft) payload() any {
	return domain.SupplierInput{
		Name:    strings.TrimSpace(d.Name),
		Contact: strings.TrimSpace(d.Contact),
	}
}

func (d *SupplierDraft) clone() Draft {
	cp := *d
	return &cp
}

// OrderDraft

// OrderLine is one editable order line. Any field may be empty.
type OrderLine struct {
	ProductID string `json:"productId"`
	Quantity  string `json:"quantity"`
	Price     string `json:"price"`
}

type OrderDraft struct {
	SupplierID string      `json:"supplierId"`
	Status     string      `json:"status"`
	Items      []OrderLine `json:"items"`
}

func newOrderDraft() *OrderDraft {
	return &OrderDraft{
		Status: string(domain.OrderStatusPending),
		Items:  []OrderLine{{}},
	}
}

// orderDraftFrom copies a stored order. A line without a stored price takes
// the product's current price when the product is known.
func orderDraftFrom(o domain.Order, findProduct func(string) (domain.Product, bool)) *OrderDraft {
	d := &OrderDraft{
		SupplierID: o.SupplierID,
		Status:     string(o.Status.OrDefault()),
	}
	for _, it := range o.Items {
		line := OrderLine{ProductID: it.ProductID}
		if it.Quantity > 0 {
			line.Quantity = strconv.FormatInt(it.Quantity, 10)
		}
		switch p, ok := findProduct(it.ProductID); {
		case !it.UnitPrice.IsZero():
			line.Price = it.UnitPrice.String()
		case ok && !p.Price.IsZero():
			line.Price = p.Price.String()
		}
		d.Items = append(d.Items, line)
	}
	if len(d.Items) == 0 {
		d.Items = []OrderLine{{}}
	}
	return d
}

func (d *OrderDraft) Collection() domain.Collection { return domain.Orders }

// Fields returns the flat order fields plus one entry per line field, keyed
// as items[i].field.
func (d *OrderDraft) Fields() map[string]string {
	out := map[string]string{
		FieldSupplierID: d.SupplierID,
		FieldStatus:     d.Status,
	}
	for i, l := range d.Items {
		out[itemField(i, FieldProductID)] = l.ProductID
		out[itemField(i, FieldQuantity)] = l.Quantity
		out[itemField(i, FieldPrice)] = l.Price
	}
	return out
}

func (d *OrderDraft) SetField(name, value string) error {
	switch name {
	case FieldSupplierID:
		d.SupplierID = value
	case FieldStatus:
		d.Status = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return nil
}

// AddItem appends an empty line.
func (d *OrderDraft) AddItem() {
	d.Items = append(d.Items, OrderLine{})
}

// RemoveItem deletes line i; later lines shift down.
func (d *OrderDraft) RemoveItem(i int) error {
	if i < 0 || i >= len(d.Items) {
		return fmt.Errorf("%w: %d", ErrItemIndex, i)
	}
	d.Items = append(d.Items[:i], d.Items[i+1:]...)
	return nil
}

func (d *OrderDraft) SetItem(i int, field, value string) error {
	if i < 0 || i >= len(d.Items) {
		return fmt.Errorf("%w: %d", ErrItemIndex, i)
	}
	line := &d.Items[i]
	switch field {
	case FieldProductID:
		line.ProductID = value
	case FieldQuantity, "qty":
		line.Quantity = value
	case FieldPrice:
		line.Price = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, itemField(i, field))
	}
	return nil
}

// Total is the running order total over lines that carry both a usable
// quantity and price; incomplete lines count as nothing.
func (d *OrderDraft) Total() decimal.Decimal {
	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, l := range d.Items {
		if blank(l.Quantity) || blank(l.Price) {
			continue
		}
		qty, ok := parseInt(l.Quantity)
		if !ok {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(l.Price))
		if err != nil {
			continue
		}
		items = append(items, domain.OrderItem{Quantity: qty, UnitPrice: price})
	}
	return derive.OrderTotal(items)
}

func (d *OrderDraft) Validate() *ValidationError {
	v := &ValidationError{}
	if blank(d.SupplierID) {
		v.add(FieldSupplierID, "Please select a supplier")
	}
	if len(d.Items) == 0 {
		v.add(FieldItems, "Please add at least one item to the order")
	}
	for i, l := range d.Items {
		n := i + 1
		if blank(l.ProductID) {
			v.add(itemField(i, FieldProductID), fmt.Sprintf("Please select a product for item %d", n))
		}
		if q, ok := parseInt(l.Quantity); !ok || q <= 0 {
			v.add(itemField(i, FieldQuantity), fmt.Sprintf("Please enter a valid quantity for item %d", n))
		}
		if _, ok := parsePositive(l.Price); !ok {
			v.add(itemField(i, FieldPrice), fmt.Sprintf("Please enter a valid price for item %d", n))
		}
	}
	return v.orNil()
}

func (d *OrderDraft) payload() any {
	in := domain.OrderInput{
		SupplierID: strings.TrimSpace(d.SupplierID),
		Status:     domain.OrderStatus(strings.TrimSpace(d.Status)).OrDefault(),
		Items:      make([]domain.OrderItemInput, 0, len(d.Items)),
	}
	for _, l := range d.Items {
		qty, _ := parseInt(l.Quantity)
		price, _ := parsePositive(l.Price)
		in.Items = append(in.Items, domain.OrderItemInput{
			ProductID: strings.TrimSpace(l.ProductID),
			Qty:       qty,
			Price:     domain.Number(price),
		})
	}
	return in
}

func (d *OrderDraft) clone() Draft {
	cp := *d
	cp.Items = append([]OrderLine(nil), d.Items...)
	return &cp
}

func itemField(i int, field string) string {
	return fmt.Sprintf("items[%d].%s", i, field)
}
