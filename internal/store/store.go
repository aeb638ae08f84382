package store

import (
	"sync"

	"stockdesk/internal/domain"
)

// Store keeps the last successfully loaded snapshot of each collection.
// Snapshots are only ever replaced as a whole; records are never created or
// removed locally.
type Store struct {
	mu        sync.RWMutex
	products  []domain.Product
	suppliers []domain.Supplier
	orders    []domain.Order
	loaded    map[domain.Collection]bool
}

func New() *Store {
	return &Store{loaded: make(map[domain.Collection]bool)}
}

func (s *Store) ReplaceProducts(items []domain.Product) {
	cp := append([]domain.Product(nil), items...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = cp
	s.loaded[domain.Products] = true
}

func (s *Store) ReplaceSuppliers(items []domain.Supplier) {
	cp := append([]domain.Supplier(nil), items...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppliers = cp
	s.loaded[domain.Suppliers] = true
}

func (s *Store) ReplaceOrders(items []domain.Order) {
	cp := make([]domain.Order, len(items))
	for i, o := range items {
		cp[i] = o.Clone()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = cp
	s.loaded[domain.Orders] = true
}

// Loaded reports whether collection c has had at least one successful load.
func (s *Store) Loaded(c domain.Collection) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded[c]
}

func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product(nil), s.products...)
}

func (s *Store) Suppliers() []domain.Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Supplier(nil), s.suppliers...)
}

func (s *Store) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Order, len(s.orders))
	for i, o := range s.orders {
		out[i] = o.Clone()
	}
	return out
}

// Lookups are linear; collections hold tens to low hundreds of records.

func (s *Store) FindProduct(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (s *Store) FindSupplier(id string) (domain.Supplier, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sp := range s.suppliers {
		if sp.ID == id {
			return sp, true
		}
	}
	return domain.Supplier{}, false
}

func (s *Store) FindOrder(id string) (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o.Clone(), true
		}
	}
	return domain.Order{}, false
}
