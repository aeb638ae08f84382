package remote

import (
	"context"

	"github.com/pkg/errors"

	"stockdesk/internal/domain"
)

// Gateway groups the three collection resources behind one API.
type Gateway struct {
	Products  *Resource[domain.Product]
	Suppliers *Resource[domain.Supplier]
	Orders    *Resource[domain.Order]
}

func NewGateway(c *Client) *Gateway {
	return &Gateway{
		Products:  Products(c),
		Suppliers: Suppliers(c),
		Orders:    Orders(c),
	}
}

var errUnknownCollection = errors.New("unknown collection")

// Create persists a new record in collection c and returns its id.
func (g *Gateway) Create(ctx context.Context, c domain.Collection, payload any) (string, error) {
	switch c {
	case domain.Products:
		p, err := g.Products.Create(ctx, payload)
		return p.ID, err
	case domain.Suppliers:
		s, err := g.Suppliers.Create(ctx, payload)
		return s.ID, err
	case domain.Orders:
		o, err := g.Orders.Create(ctx, payload)
		return o.ID, err
	}
	return "", errors.Wrap(errUnknownCollection, string(c))
}

// Update replaces record id in collection c.
func (g *Gateway) Update(ctx context.Context, c domain.Collection, id string, payload any) error {
	var err error
	switch c {
	case domain.Products:
		_, err = g.Products.Update(ctx, id, payload)
	case domain.Suppliers:
		_, err = g.Suppliers.Update(ctx, id, payload)
	case domain.Orders:
		_, err = g.Orders.Update(ctx, id, payload)
	default:
		err = errors.Wrap(errUnknownCollection, string(c))
	}
	return err
}

// Delete removes record id from collection c.
func (g *Gateway) Delete(ctx context.Context, c domain.Collection, id string) error {
	switch c {
	case domain.Products:
		return g.Products.Delete(ctx, id)
	case domain.Suppliers:
		return g.Suppliers.Delete(ctx, id)
	case domain.Orders:
		return g.Orders.Delete(ctx, id)
	}
	return errors.Wrap(errUnknownCollection, string(c))
}
