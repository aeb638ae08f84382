package store

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"stockdesk/internal/domain"
)

// ErrStaleLoad is returned when a load finished after a newer load of the
// same collection had been issued; its result is discarded.
var ErrStaleLoad = errors.New("stale load discarded")

// Source lists one remote collection.
type Source[T any] interface {
	List(ctx context.Context) ([]T, error)
}

// Notifier receives user-visible messages.
type Notifier interface {
	Info(msg string)
	Error(msg string)
}

// Loader refreshes store snapshots from the remote collections. A failed load
// never touches the previous snapshot.
type Loader struct {
	store     *Store
	products  Source[domain.Product]
	suppliers Source[domain.Supplier]
	orders    Source[domain.Order]
	notifier  Notifier
	log       logrus.FieldLogger

	// seqMu guards seq and makes the latest-ticket check atomic with the
	// snapshot swap.
	seqMu sync.Mutex
	seq   map[domain.Collection]uint64
}

func NewLoader(
	s *Store,
	products Source[domain.Product],
	suppliers Source[domain.Supplier],
	orders Source[domain.Order],
	notifier Notifier,
	log logrus.FieldLogger,
) *Loader {
	return &Loader{
		store:     s,
		products:  products,
		suppliers: suppliers,
		orders:    orders,
		notifier:  notifier,
		log:       log,
		seq:       make(map[domain.Collection]uint64),
	}
}

func (l *Loader) begin(c domain.Collection) uint64 {
	l.seqMu.Lock()
	defer l.seqMu.Unlock()
	l.seq[c]++
	return l.seq[c]
}

// settle runs swap only when ticket is still the latest load of c and
// reports whether it was.
func (l *Loader) settle(c domain.Collection, ticket uint64, swap func()) bool {
	l.seqMu.Lock()
	defer l.seqMu.Unlock()
	if l.seq[c] != ticket {
		return false
	}
	if swap != nil {
		swap()
	}
	return true
}

// Load fetches collection c and swaps its snapshot on success. Failures are
// logged, published to the notifier and returned. A response, failed or not,
// that is overtaken by a newer load of c is dropped with ErrStaleLoad.
func (l *Loader) Load(ctx context.Context, c domain.Collection) error {
	var (
		n    int
		err  error
		swap func()
	)
	ticket := l.begin(c)
	switch c {
	case domain.Products:
		var items []domain.Product
		items, err = l.products.List(ctx)
		n, swap = len(items), func() { l.store.ReplaceProducts(items) }
	case domain.Suppliers:
		var items []domain.Supplier
		items, err = l.suppliers.List(ctx)
		n, swap = len(items), func() { l.store.ReplaceSuppliers(items) }
	case domain.Orders:
		var items []domain.Order
		items, err = l.orders.List(ctx)
		n, swap = len(items), func() { l.store.ReplaceOrders(items) }
	default:
		return errors.Errorf("unknown collection %q", c)
	}
	if err != nil {
		swap = nil
	}

	log := l.log.WithField("collection", c)
	if !l.settle(c, ticket, swap) {
		log.WithError(err).Debug("newer load issued, dropping response")
		return ErrStaleLoad
	}
	if err != nil {
		log.WithError(err).Error("load failed")
		l.notifier.Error("Error loading " + string(c) + ": " + err.Error())
		return errors.Wrapf(err, "load %s", c)
	}
	log.WithField("count", n).Info("collection loaded")
	return nil
}

// LoadAll loads every collection concurrently. Each load is isolated: one
// failing does not cancel or roll back the others. The returned map holds
// only the collections that failed.
func (l *Loader) LoadAll(ctx context.Context) map[domain.Collection]error {
	errs := make([]error, len(domain.Collections))

	var g errgroup.Group
	for i, c := range domain.Collections {
		i, c := i, c
		g.Go(func() error {
			errs[i] = l.Load(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	failed := make(map[domain.Collection]error)
	for i, c := range domain.Collections {
		if errs[i] != nil {
			failed[c] = errs[i]
		}
	}
	return failed
}
