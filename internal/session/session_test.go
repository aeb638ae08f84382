package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdesk/internal/domain"
	"stockdesk/internal/remote"
	"stockdesk/internal/store"
)

type call struct {
	op         string
	collection domain.Collection
	id         string
	payload    any
}

type fakeGateway struct {
	calls []call
	err   error
}

func (g *fakeGateway) Create(_ context.Context, c domain.Collection, payload any) (string, error) {
	g.calls = append(g.calls, call{op: "create", collection: c, payload: payload})
	if g.err != nil {
		return "", g.err
	}
	return "new-id", nil
}

func (g *fakeGateway) Update(_ context.Context, c domain.Collection, id string, payload any) error {
	g.calls = append(g.calls, call{op: "update", collection: c, id: id, payload: payload})
	return g.err
}

func (g *fakeGateway) Delete(_ context.Context, c domain.Collection, id string) error {
	g.calls = append(g.calls, call{op: "delete", collection: c, id: id})
	return g.err
}

type fakeReloader struct {
	loads  []domain.Collection
	err    error
	onLoad func()
}

func (r *fakeReloader) Load(_ context.Context, c domain.Collection) error {
	r.loads = append(r.loads, c)
	if r.onLoad != nil {
		r.onLoad()
	}
	return r.err
}

type fakeNotifier struct {
	infos  []string
	errors []string
}

func (n *fakeNotifier) Info(msg string)  { n.infos = append(n.infos, msg) }
func (n *fakeNotifier) Error(msg string) { n.errors = append(n.errors, msg) }

type fixture struct {
	coord    *Coordinator
	gateway  *fakeGateway
	reloader *fakeReloader
	notifier *fakeNotifier
}

func setup(t *testing.T) fixture {
	t.Helper()
	s := store.New()
	s.ReplaceProducts([]domain.Product{
		{ID: "p1", SKU: "W-1", Name: "Widget", Price: decimal.RequireFromString("4.5"), Stock: 3},
	})
	s.ReplaceSuppliers([]domain.Supplier{{ID: "s1", Name: "Acme", Contact: "acme@example.com"}})
	s.ReplaceOrders([]domain.Order{{
		ID:         "64b7f0c1a2b39f8e7d6c",
		SupplierID: "s1",
		Status:     domain.OrderStatusProcessing,
		Items:      []domain.OrderItem{{ProductID: "p1", Quantity: 2}},
	}})

	logger, _ := test.NewNullLogger()
	f := fixture{gateway: &fakeGateway{}, reloader: &fakeReloader{}, notifier: &fakeNotifier{}}
	f.coord = NewCoordinator(s, f.gateway, f.reloader, f.notifier, logger)
	return f
}

func TestProductValidationIsExhaustive(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.coord.OpenProduct(""))
	require.NoError(t, f.coord.SetField(FieldPrice, "0"))
	require.NoError(t, f.coord.SetField(FieldStock, "5"))

	err := f.coord.Submit(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Errors, 3)
	msg, ok := verr.Field(FieldSKU)
	assert.True(t, ok)
	assert.Equal(t, "SKU is required", msg)
	assert.Equal(t, "Name is required", verr.ByField()[FieldName])
	assert.Equal(t, "Price must be greater than 0", verr.ByField()[FieldPrice])

	assert.Empty(t, f.gateway.calls, "invalid drafts must not reach the network")
	st := f.coord.State()
	assert.Equal(t, Editing, st.Phase)
	require.NotNil(t, st.Errors)
}

func TestDraftValidation(t *testing.T) {
	tests := []struct {
		name   string
		draft  Draft
		fields []string
	}{
		{"valid product", &ProductDraft{SKU: "A", Name: "A", Price: "1.5", Stock: "0"}, nil},
		{"negative stock", &ProductDraft{SKU: "A", Name: "A", Price: "1", Stock: "-1"}, []string{FieldStock}},
		{"missing stock", &ProductDraft{SKU: "A", Name: "A", Price: "1"}, []string{FieldStock}},
		{"blank supplier", &SupplierDraft{Name: "  "}, []string{FieldName, FieldContact}},
		{"valid supplier", &SupplierDraft{Name: "Acme", Contact: "x"}, nil},
		{"order without items", &OrderDraft{SupplierID: "s1"}, []string{FieldItems}},
		{"order with empty line", newOrderDraft(), []string{
			FieldSupplierID, "items[0].productId", "items[0].quantity", "items[0].price",
		}},
		{"order line zero quantity", &OrderDraft{SupplierID: "s1", Items: []OrderLine{
			{ProductID: "p1", Quantity: "1", Price: "2"},
			{ProductID: "p1", Quantity: "0", Price: "2"},
		}}, []string{"items[1].quantity"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := tt.draft.Validate()
			if tt.fields == nil {
				assert.Nil(t, verr)
				return
			}
			require.NotNil(t, verr)
			got := make([]string, 0, len(verr.Errors))
			for _, fe := range verr.Errors {
				got = append(got, fe.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestOrderLineMessages(t *testing.T) {
	d := &OrderDraft{SupplierID: "s1", Items: []OrderLine{{}, {}}}
	verr := d.Validate()
	require.NotNil(t, verr)
	assert.Equal(t, "Please select a product for item 2", verr.ByField()["items[1].productId"])
	assert.Equal(t, "Please enter a valid quantity for item 1", verr.ByField()["items[0].quantity"])
	assert.Equal(t, "Please enter a valid price for item 2", verr.ByField()["items[1].price"])
}

func TestSubmitCreate(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.coord.OpenProduct(""))
	for k, v := range map[string]string{FieldSKU: "G-1", FieldName: "Gadget", FieldPrice: "12.00", FieldStock: "7"} {
		require.NoError(t, f.coord.SetField(k, v))
	}

	require.NoError(t, f.coord.Submit(context.Background()))

	require.Len(t, f.gateway.calls, 1)
	c := f.gateway.calls[0]
	assert.Equal(t, "create", c.op)
	assert.Equal(t, domain.ProductInput{SKU: "G-1", Name: "Gadget", Price: json.Number("12"), Stock: 7}, c.payload)
	assert.Equal(t, []domain.Collection{domain.Products}, f.reloader.loads)
	assert.Equal(t, []string{"Product saved successfully!"}, f.notifier.infos)
	assert.Equal(t, Idle, f.coord.State().Phase)
}

func TestSubmitReloadsBeforeClosing(t *testing.T) {
	f := setup(t)
	var during Phase
	f.reloader.onLoad = func() { during = f.coord.State().Phase }

	require.NoError(t, f.coord.OpenSupplier(""))
	require.NoError(t, f.coord.SetField(FieldName, "Acme"))
	require.NoError(t, f.coord.SetField(FieldContact, "x"))
	require.NoError(t, f.coord.Submit(context.Background()))

	assert.Equal(t, Submitting, during)
	assert.Equal(t, Idle, f.coord.State().Phase)
}

func TestSubmitUpdateOpensStoredValues(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.coord.OpenSupplier("s1"))
	st := f.coord.State()
	assert.Equal(t, Target{Collection: domain.Suppliers, ID: "s1"}, st.Target)
	assert.Equal(t, "Acme", st.Draft.Fields()[FieldName])

	require.NoError(t, f.coord.SetField(FieldContact, "sales@acme.test"))
	require.NoError(t, f.coord.Submit(context.Background()))

	require.Len(t, f.gateway.calls, 1)
	assert.Equal(t, "update", f.gateway.calls[0].op)
	assert.Equal(t, "s1", f.gateway.calls[0].id)
	assert.Equal(t, domain.SupplierInput{Name: "Acme", Contact: "sales@acme.test"}, f.gateway.calls[0].payload)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	f := setup(t)
	f.gateway.err = &remote.RemoteError{Status: 500, Body: "boom"}

	require.NoError(t, f.coord.OpenSupplier(""))
	require.NoError(t, f.coord.SetField(FieldName, "Acme"))
	require.NoError(t, f.coord.SetField(FieldContact, "x"))

	err := f.coord.Submit(context.Background())
	var rerr *remote.RemoteError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 500, rerr.Status)

	st := f.coord.State()
	assert.Equal(t, Editing, st.Phase)
	assert.Equal(t, "Acme", st.Draft.Fields()[FieldName])
	assert.Empty(t, f.reloader.loads)
	assert.Equal(t, []string{"Error saving supplier: server error: 500 - boom"}, f.notifier.errors)

	// retry after the remote recovers
	f.gateway.err = nil
	require.NoError(t, f.coord.Submit(context.Background()))
	assert.Equal(t, Idle, f.coord.State().Phase)
}

func TestReloadFailureAfterSaveStillCloses(t *testing.T) {
	f := setup(t)
	f.reloader.err = errors.New("offline")
	require.NoError(t, f.coord.OpenSupplier("s1"))
	require.NoError(t, f.coord.Submit(context.Background()))
	assert.Equal(t, Idle, f.coord.State().Phase)
	assert.Equal(t, []string{"Supplier saved successfully!"}, f.notifier.infos)
}

func TestSingleSession(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.coord.OpenProduct("p1"))
	assert.ErrorIs(t, f.coord.OpenSupplier(""), ErrSessionActive)
	assert.ErrorIs(t, f.coord.OpenOrder(""), ErrSessionActive)

	require.NoError(t, f.coord.Cancel())
	assert.Equal(t, Idle, f.coord.State().Phase)
	assert.Nil(t, f.coord.State().Draft)
	assert.ErrorIs(t, f.coord.Cancel(), ErrNoSession)
	assert.ErrorIs(t, f.coord.SetField(FieldName, "x"), ErrNoSession)
	assert.ErrorIs(t, f.coord.Submit(context.Background()), ErrNoSession)
}

func TestOpenUnknown(t *testing.T) {
	f := setup(t)
	assert.ErrorIs(t, f.coord.OpenProduct("missing"), ErrNotFound)
	assert.ErrorIs(t, f.coord.OpenOrder("missing"), ErrNotFound)
	assert.Equal(t, Idle, f.coord.State().Phase)
}

func TestOrderDraftLines(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.coord.OpenOrder(""))

	st := f.coord.State()
	od, ok := st.Draft.(*OrderDraft)
	require.True(t, ok)
	assert.Len(t, od.Items, 1)
	assert.Equal(t, "pending", od.Status)

	require.NoError(t, f.coord.SetItem(0, FieldProductID, "p1"))
	require.NoError(t, f.coord.SetItem(0, FieldQuantity, "2"))
	require.NoError(t, f.coord.AddItem())
	require.NoError(t, f.coord.SetItem(1, FieldQuantity, "3"))

	total, err := f.coord.Total()
	require.NoError(t, err)
	assert.Equal(t, "9.00", total.StringFixed(2), "incomplete lines are skipped")

	require.NoError(t, f.coord.SetItem(1, FieldPrice, "1.5"))
	total, _ = f.coord.Total()
	assert.Equal(t, "13.50", total.StringFixed(2))

	require.NoError(t, f.coord.RemoveItem(0))
	total, _ = f.coord.Total()
	assert.Equal(t, "4.50", total.StringFixed(2))

	assert.ErrorIs(t, f.coord.RemoveItem(5), ErrItemIndex)
	assert.ErrorIs(t, f.coord.SetItem(0, "colour", "red"), ErrUnknownField)

	require.NoError(t, f.coord.RemoveItem(0))
	require.NoError(t, f.coord.SetField(FieldSupplierID, "s1"))
	var verr *ValidationError
	require.ErrorAs(t, f.coord.Validate(), &verr)
	assert.Equal(t, "Please add at least one item to the order", verr.ByField()[FieldItems])
}

func TestOpenOrderFillsMissingPrice(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.coord.OpenOrder("64b7f0c1a2b39f8e7d6c"))
	od := f.coord.State().Draft.(*OrderDraft)
	assert.Equal(t, "s1", od.SupplierID)
	assert.Equal(t, "processing", od.Status)
	assert.Equal(t, []OrderLine{{ProductID: "p1", Quantity: "2", Price: "4.5"}}, od.Items)
}

func TestItemOpsRequireOrderForm(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.coord.OpenProduct(""))
	assert.ErrorIs(t, f.coord.AddItem(), ErrNotOrderForm)
	_, err := f.coord.Total()
	assert.ErrorIs(t, err, ErrNotOrderForm)
}

func TestDeleteFlow(t *testing.T) {
	t.Run("confirm", func(t *testing.T) {
		f := setup(t)
		p, err := f.coord.RequestDelete(domain.Products, "p1")
		require.NoError(t, err)
		assert.Equal(t, `Are you sure you want to delete "Widget"?`, p.Message)

		require.NoError(t, f.coord.ConfirmDelete(context.Background()))
		require.Len(t, f.gateway.calls, 1)
		assert.Equal(t, call{op: "delete", collection: domain.Products, id: "p1"}, f.gateway.calls[0])
		assert.Equal(t, []domain.Collection{domain.Products}, f.reloader.loads)
		assert.Equal(t, []string{"Item deleted successfully!"}, f.notifier.infos)
		_, pending := f.coord.PendingDelete()
		assert.False(t, pending)
	})

	t.Run("cancel makes no remote call", func(t *testing.T) {
		f := setup(t)
		p, err := f.coord.RequestDelete(domain.Orders, "64b7f0c1a2b39f8e7d6c")
		require.NoError(t, err)
		assert.Equal(t, "Are you sure you want to delete order #9F8E7D6C?", p.Message)

		require.NoError(t, f.coord.CancelDelete())
		assert.Empty(t, f.gateway.calls)
		assert.ErrorIs(t, f.coord.ConfirmDelete(context.Background()), ErrNoPendingDelete)
		assert.ErrorIs(t, f.coord.CancelDelete(), ErrNoPendingDelete)
	})

	t.Run("failure keeps target", func(t *testing.T) {
		f := setup(t)
		f.gateway.err = &remote.RemoteError{Status: 404, Body: "not found"}
		_, err := f.coord.RequestDelete(domain.Suppliers, "s1")
		require.NoError(t, err)

		require.Error(t, f.coord.ConfirmDelete(context.Background()))
		_, pending := f.coord.PendingDelete()
		assert.True(t, pending)
		assert.Equal(t, []string{"Error deleting item: server error: 404 - not found"}, f.notifier.errors)
		assert.Empty(t, f.reloader.loads)
	})

	t.Run("unknown target", func(t *testing.T) {
		f := setup(t)
		_, err := f.coord.RequestDelete(domain.Products, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
