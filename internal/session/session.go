package session

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"stockdesk/internal/derive"
	"stockdesk/internal/domain"
)

// Catalog is the read side of the entity store.
type Catalog interface {
	FindProduct(id string) (domain.Product, bool)
	FindSupplier(id string) (domain.Supplier, bool)
	FindOrder(id string) (domain.Order, bool)
}

// Gateway persists drafts and deletions remotely.
type Gateway interface {
	Create(ctx context.Context, c domain.Collection, payload any) (string, error)
	Update(ctx context.Context, c domain.Collection, id string, payload any) error
	Delete(ctx context.Context, c domain.Collection, id string) error
}

// Reloader refreshes one collection after a committed write.
type Reloader interface {
	Load(ctx context.Context, c domain.Collection) error
}

type Notifier interface {
	Info(msg string)
	Error(msg string)
}

type Phase string

const (
	Idle       Phase = "idle"
	Editing    Phase = "editing"
	Submitting Phase = "submitting"
)

// Target identifies what a draft will be written to. An empty ID means create.
type Target struct {
	Collection domain.Collection `json:"collection"`
	ID         string            `json:"id,omitempty"`
}

// State is a snapshot of the coordinator. Draft and Errors are copies.
type State struct {
	Phase  Phase
	Target Target
	Draft  Draft
	Errors *ValidationError
}

// PendingDelete is a delete awaiting explicit confirmation.
type PendingDelete struct {
	Collection domain.Collection `json:"collection"`
	ID         string            `json:"id"`
	Message    string            `json:"message"`
}

// Coordinator owns the single edit session and the delete confirmation flow.
// At most one form, of any entity type, is open at a time.
type Coordinator struct {
	catalog  Catalog
	gateway  Gateway
	reloader Reloader
	notifier Notifier
	log      logrus.FieldLogger

	mu       sync.Mutex
	phase    Phase
	target   Target
	draft    Draft
	errs     *ValidationError
	pending  *PendingDelete
	deleting bool
}

func NewCoordinator(cat Catalog, gw Gateway, rl Reloader, n Notifier, log logrus.FieldLogger) *Coordinator {
	return &Coordinator{
		catalog:  cat,
		gateway:  gw,
		reloader: rl,
		notifier: n,
		log:      log,
		phase:    Idle,
	}
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := State{Phase: c.phase, Target: c.target}
	if c.draft != nil {
		st.Draft = c.draft.clone()
	}
	if c.errs != nil {
		st.Errors = &ValidationError{Errors: append([]FieldError(nil), c.errs.Errors...)}
	}
	return st
}

// Open starts a form for collection col. An empty id opens a create form,
// otherwise the stored entity is copied into the draft.
func (c *Coordinator) Open(col domain.Collection, id string) error {
	switch col {
	case domain.Products:
		return c.OpenProduct(id)
	case domain.Suppliers:
		return c.OpenSupplier(id)
	case domain.Orders:
		return c.OpenOrder(id)
	}
	return errors.Wrapf(ErrNotFound, "collection %q", col)
}

func (c *Coordinator) OpenProduct(id string) error {
	var d Draft = &ProductDraft{}
	if id != "" {
		p, ok := c.catalog.FindProduct(id)
		if !ok {
			return errors.Wrapf(ErrNotFound, "product %s", id)
		}
		d = productDraftFrom(p)
	}
	return c.open(Target{Collection: domain.Products, ID: id}, d)
}

func (c *Coordinator) OpenSupplier(id string) error {
	var d Draft = &SupplierDraft{}
	if id != "" {
		s, ok := c.catalog.FindSupplier(id)
		if !ok {
			return errors.Wrapf(ErrNotFound, "supplier %s", id)
		}
		d = supplierDraftFrom(s)
	}
	return c.open(Target{Collection: domain.Suppliers, ID: id}, d)
}

func (c *Coordinator) OpenOrder(id string) error {
	var d Draft = newOrderDraft()
	if id != "" {
		o, ok := c.catalog.FindOrder(id)
		if !ok {
			return errors.Wrapf(ErrNotFound, "order %s", id)
		}
		d = orderDraftFrom(o, c.catalog.FindProduct)
	}
	return c.open(Target{Collection: domain.Orders, ID: id}, d)
}

func (c *Coordinator) open(t Target, d Draft) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != Idle {
		return ErrSessionActive
	}
	c.phase, c.target, c.draft, c.errs = Editing, t, d, nil
	c.log.WithFields(logrus.Fields{"collection": t.Collection, "id": t.ID}).Debug("form opened")
	return nil
}

// editing runs fn against the open draft.
func (c *Coordinator) editing(fn func(Draft) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.phase {
	case Idle:
		return ErrNoSession
	case Submitting:
		return ErrBusy
	}
	return fn(c.draft)
}

func (c *Coordinator) SetField(name, value string) error {
	return c.editing(func(d Draft) error { return d.SetField(name, value) })
}

func (c *Coordinator) order(fn func(*OrderDraft) error) error {
	return c.editing(func(d Draft) error {
		od, ok := d.(*OrderDraft)
		if !ok {
			return ErrNotOrderForm
		}
		return fn(od)
	})
}

func (c *Coordinator) AddItem() error {
	return c.order(func(d *OrderDraft) error {
		d.AddItem()
		return nil
	})
}

func (c *Coordinator) RemoveItem(i int) error {
	return c.order(func(d *OrderDraft) error { return d.RemoveItem(i) })
}

// SetItem sets one field of order line i. Choosing a product fills the line
// price with that product's current price.
func (c *Coordinator) SetItem(i int, field, value string) error {
	return c.order(func(d *OrderDraft) error {
		if err := d.SetItem(i, field, value); err != nil {
			return err
		}
		if field != FieldProductID {
			return nil
		}
		if p, ok := c.catalog.FindProduct(value); ok {
			d.Items[i].Price = p.Price.String()
		}
		return nil
	})
}

// Total is the running total of the open order draft.
func (c *Coordinator) Total() (decimal.Decimal, error) {
	var total decimal.Decimal
	err := c.order(func(d *OrderDraft) error {
		total = d.Total()
		return nil
	})
	return total, err
}

// Validate checks the open draft and records the result for the form.
func (c *Coordinator) Validate() error {
	return c.editing(func(d Draft) error {
		c.errs = d.Validate()
		if c.errs == nil {
			return nil
		}
		return c.errs
	})
}

// Cancel discards the open draft.
func (c *Coordinator) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.phase {
	case Idle:
		return ErrNoSession
	case Submitting:
		return ErrBusy
	}
	c.reset()
	return nil
}

func (c *Coordinator) reset() {
	c.phase, c.target, c.draft, c.errs = Idle, Target{}, nil, nil
}

// Submit validates the draft, writes it remotely and reloads the collection.
// Invalid drafts never reach the gateway. When the write fails the form stays
// open with the draft untouched.
func (c *Coordinator) Submit(ctx context.Context) error {
	c.mu.Lock()
	switch c.phase {
	case Idle:
		c.mu.Unlock()
		return ErrNoSession
	case Submitting:
		c.mu.Unlock()
		return ErrBusy
	}
	if verr := c.draft.Validate(); verr != nil {
		c.errs = verr
		c.mu.Unlock()
		return verr
	}
	c.errs = nil
	c.phase = Submitting
	target, payload := c.target, c.draft.payload()
	c.mu.Unlock()

	entity := target.Collection.Entity()
	log := c.log.WithFields(logrus.Fields{"collection": target.Collection, "id": target.ID})

	var err error
	if target.ID == "" {
		var id string
		id, err = c.gateway.Create(ctx, target.Collection, payload)
		log = log.WithField("created", id)
	} else {
		err = c.gateway.Update(ctx, target.Collection, target.ID, payload)
	}
	if err != nil {
		c.mu.Lock()
		c.phase = Editing
		c.mu.Unlock()
		log.WithError(err).Warn("save failed")
		c.notifier.Error("Error saving " + strings.ToLower(entity) + ": " + err.Error())
		return errors.Wrapf(err, "save %s", strings.ToLower(entity))
	}

	log.Info("saved")

	// The write is committed; a failed reload is reported by the loader and
	// leaves the previous snapshot on screen.
	if err := c.reloader.Load(ctx, target.Collection); err != nil {
		log.WithError(err).Warn("reload after save failed")
	}
	c.mu.Lock()
	c.reset()
	c.mu.Unlock()
	c.notifier.Info(entity + " saved successfully!")
	return nil
}

// RequestDelete records a delete target and returns the confirmation prompt.
func (c *Coordinator) RequestDelete(col domain.Collection, id string) (PendingDelete, error) {
	msg, err := c.confirmMessage(col, id)
	if err != nil {
		return PendingDelete{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleting {
		return PendingDelete{}, ErrBusy
	}
	c.pending = &PendingDelete{Collection: col, ID: id, Message: msg}
	return *c.pending, nil
}

func (c *Coordinator) confirmMessage(col domain.Collection, id string) (string, error) {
	name := ""
	switch col {
	case domain.Products:
		p, ok := c.catalog.FindProduct(id)
		if !ok {
			return "", errors.Wrapf(ErrNotFound, "product %s", id)
		}
		name = p.Name
	case domain.Suppliers:
		s, ok := c.catalog.FindSupplier(id)
		if !ok {
			return "", errors.Wrapf(ErrNotFound, "supplier %s", id)
		}
		name = s.Name
	case domain.Orders:
		o, ok := c.catalog.FindOrder(id)
		if !ok {
			return "", errors.Wrapf(ErrNotFound, "order %s", id)
		}
		return "Are you sure you want to delete order " + derive.ShortID(o.ID) + "?", nil
	default:
		return "", errors.Wrapf(ErrNotFound, "collection %q", col)
	}
	return `Are you sure you want to delete "` + name + `"?`, nil
}

func (c *Coordinator) PendingDelete() (PendingDelete, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return PendingDelete{}, false
	}
	return *c.pending, true
}

// CancelDelete drops the pending target without any remote call.
func (c *Coordinator) CancelDelete() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleting {
		return ErrBusy
	}
	if c.pending == nil {
		return ErrNoPendingDelete
	}
	c.pending = nil
	return nil
}

// ConfirmDelete deletes the pending target and reloads its collection. On
// failure the target stays pending so the user can retry or cancel.
func (c *Coordinator) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	if c.deleting {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.pending == nil {
		c.mu.Unlock()
		return ErrNoPendingDelete
	}
	p := *c.pending
	c.deleting = true
	c.mu.Unlock()

	log := c.log.WithFields(logrus.Fields{"collection": p.Collection, "id": p.ID})
	err := c.gateway.Delete(ctx, p.Collection, p.ID)

	c.mu.Lock()
	c.deleting = false
	if err == nil {
		c.pending = nil
	}
	c.mu.Unlock()

	if err != nil {
		log.WithError(err).Warn("delete failed")
		c.notifier.Error("Error deleting item: " + err.Error())
		return errors.Wrap(err, "delete")
	}
	log.Info("deleted")
	if err := c.reloader.Load(ctx, p.Collection); err != nil {
		log.WithError(err).Warn("reload after delete failed")
	}
	c.notifier.Info("Item deleted successfully!")
	return nil
}
