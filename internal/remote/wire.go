package remote

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"stockdesk/internal/domain"
)

// The remote service is loose about record shapes: ids come as `_id` or `id`,
// references come bare or populated, quantities as `qty` or `quantity`. The
// wire types below absorb every accepted shape so that records leave this
// package in one canonical domain form.

// ref is an identifier given either bare or as an embedded object.
type ref string

func (r *ref) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = ref(s)
	case '{':
		var obj struct {
			MongoID ref `json:"_id"`
			ID      ref `json:"id"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*r = ref(firstRef(obj.MongoID, obj.ID))
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return errors.Errorf("unsupported reference %s", b)
		}
		*r = ref(n.String())
	}
	return nil
}

func firstRef(refs ...ref) string {
	for _, r := range refs {
		if r != "" {
			return string(r)
		}
	}
	return ""
}

// count is an integer that may arrive as a number, an integral float or a
// numeric string. Fractions and values outside int64 are rejected.
type count struct {
	n   int64
	set bool
}

var (
	minCount = decimal.NewFromInt(math.MinInt64)
	maxCount = decimal.NewFromInt(math.MaxInt64)
)

func (c *count) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	d, err := decimal.NewFromString(num.String())
	if err != nil {
		return errors.Wrapf(err, "count %s", b)
	}
	if !d.IsInteger() {
		return errors.Errorf("count %s is not a whole number", b)
	}
	if d.LessThan(minCount) || d.GreaterThan(maxCount) {
		return errors.Errorf("count %s out of range", b)
	}
	c.n, c.set = d.IntPart(), true
	return nil
}

// amount is a decimal where null or an empty string mean zero.
type amount struct {
	decimal.Decimal
}

func (a *amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		a.Decimal = decimal.Zero
		return nil
	}
	return a.Decimal.UnmarshalJSON(b)
}

type productWire struct {
	MongoID ref    `json:"_id"`
	ID      ref    `json:"id"`
	SKU     string `json:"sku"`
	Name    string `json:"name"`
	Price   amount `json:"price"`
	Stock   count  `json:"stock"`
}

type supplierWire struct {
	MongoID ref    `json:"_id"`
	ID      ref    `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

type orderItemWire struct {
	ProductID ref    `json:"productId"`
	Product   ref    `json:"product"`
	Qty       count  `json:"qty"`
	Quantity  count  `json:"quantity"`
	Price     amount `json:"price"`
}

type orderWire struct {
	MongoID    ref             `json:"_id"`
	ID         ref             `json:"id"`
	SupplierID ref             `json:"supplierId"`
	Supplier   ref             `json:"supplier"`
	Status     string          `json:"status"`
	Items      []orderItemWire `json:"items"`
}

func decodeProduct(raw []byte) (domain.Product, error) {
	var w productWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.Product{}, err
	}
	return domain.Product{
		ID:    firstRef(w.MongoID, w.ID),
		SKU:   w.SKU,
		Name:  w.Name,
		Price: w.Price.Decimal,
		Stock: w.Stock.n,
	}, nil
}

func decodeSupplier(raw []byte) (domain.Supplier, error) {
	var w supplierWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.Supplier{}, err
	}
	return domain.Supplier{
		ID:      firstRef(w.MongoID, w.ID),
		Name:    w.Name,
		Contact: w.Contact,
	}, nil
}

func decodeOrder(raw []byte) (domain.Order, error) {
	var w orderWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.Order{}, err
	}
	o := domain.Order{
		ID:         firstRef(w.MongoID, w.ID),
		SupplierID: firstRef(w.SupplierID, w.Supplier),
		Status:     domain.OrderStatus(w.Status).OrDefault(),
		Items:      make([]domain.OrderItem, 0, len(w.Items)),
	}
	for _, it := range w.Items {
		o.Items = append(o.Items, domain.OrderItem{
			ProductID: firstRef(it.ProductID, it.Product),
			Quantity:  quantity(it.Qty, it.Quantity),
			UnitPrice: it.Price.Decimal,
		})
	}
	return o, nil
}

// quantity prefers qty, then quantity, and falls back to 1 when neither
// carries a positive value.
func quantity(counts ...count) int64 {
	for _, c := range counts {
		if c.set && c.n > 0 {
			return c.n
		}
	}
	return 1
}
