package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"stockdesk/internal/domain"
)

// Resource is the REST client for one collection.
type Resource[T any] struct {
	client *Client
	name   domain.Collection
	decode func([]byte) (T, error)
}

func Products(c *Client) *Resource[domain.Product] {
	return &Resource[domain.Product]{client: c, name: domain.Products, decode: decodeProduct}
}

func Suppliers(c *Client) *Resource[domain.Supplier] {
	return &Resource[domain.Supplier]{client: c, name: domain.Suppliers, decode: decodeSupplier}
}

func Orders(c *Client) *Resource[domain.Order] {
	return &Resource[domain.Order]{client: c, name: domain.Orders, decode: decodeOrder}
}

// Collection returns the collection this resource serves.
func (r *Resource[T]) Collection() domain.Collection { return r.name }

func (r *Resource[T]) collectionPath() string {
	return "/api/" + string(r.name)
}

func (r *Resource[T]) itemPath(id string) string {
	return r.collectionPath() + "/" + url.PathEscape(id)
}

// List fetches the whole collection.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	data, err := r.client.do(ctx, http.MethodGet, r.collectionPath(), nil)
	if err != nil {
		return nil, err
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, &DecodeError{Resource: string(r.name), Err: err}
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		v, err := r.decode(raw)
		if err != nil {
			return nil, &DecodeError{Resource: string(r.name), Err: err}
		}
		out = append(out, v)
	}
	return out, nil
}

// Create posts payload and returns the created record as echoed by the server.
func (r *Resource[T]) Create(ctx context.Context, payload any) (T, error) {
	data, err := r.client.do(ctx, http.MethodPost, r.collectionPath(), payload)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.one(data)
}

// Update replaces the record with the given id.
func (r *Resource[T]) Update(ctx context.Context, id string, payload any) (T, error) {
	data, err := r.client.do(ctx, http.MethodPut, r.itemPath(id), payload)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.one(data)
}

// Delete removes the record with the given id. Any response body is ignored.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.client.do(ctx, http.MethodDelete, r.itemPath(id), nil)
	return err
}

func (r *Resource[T]) one(data []byte) (T, error) {
	v, err := r.decode(data)
	if err != nil {
		var zero T
		return zero, &DecodeError{Resource: string(r.name), Err: err}
	}
	return v, nil
}
