package console_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"

	"stockdesk/internal/app"
	"stockdesk/internal/config"
	"stockdesk/internal/console"
	"stockdesk/internal/stubapi"
)

func init() { gin.SetMode(gin.TestMode) }

type env struct {
	stub    *stubapi.Server
	app     *app.App
	console *console.Server
}

func setupServer(t *testing.T) env {
	t.Helper()
	logger, _ := test.NewNullLogger()
	stub := stubapi.NewServer(stubapi.NewDocuments(), logger)
	remote := httptest.NewServer(stub.Engine())
	t.Cleanup(remote.Close)

	a := app.New(config.Config{APIBaseURL: remote.URL, NotificationTTL: time.Minute}, nil, logger)
	if failed := a.Loader.LoadAll(context.Background()); len(failed) != 0 {
		t.Fatalf("initial load: %v", failed)
	}
	s, err := a.Console("")
	if err != nil {
		t.Fatal(err)
	}
	return env{stub: stub, app: a, console: s}
}

func doJSON(t *testing.T, s *console.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

type view struct {
	Loaded       bool             `json:"loaded"`
	Rows         []map[string]any `json:"rows"`
	EmptyMessage string           `json:"empty_message"`
}

type sessionView struct {
	Phase  string            `json:"phase"`
	Fields map[string]string `json:"fields"`
	Total  string            `json:"total"`
	Errors map[string]string `json:"errors"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func mustCode(t *testing.T, w *httptest.ResponseRecorder, code int) {
	t.Helper()
	if w.Code != code {
		t.Fatalf("code %v, want %v: %s", w.Code, code, w.Body.String())
	}
}

func TestProductFlow(t *testing.T) {
	e := setupServer(t)
	s := e.console

	v := decode[view](t, doJSON(t, s, http.MethodGet, "/api/view/products", nil))
	if !v.Loaded || len(v.Rows) != 0 || v.EmptyMessage != `No products found. Click "Add Product" to get started.` {
		t.Fatalf("empty view %+v", v)
	}

	mustCode(t, doJSON(t, s, http.MethodPost, "/api/session/products", nil), http.StatusOK)
	mustCode(t, doJSON(t, s, http.MethodPost, "/api/session/suppliers", nil), http.StatusConflict)

	// invalid draft: three field errors, nothing sent
	w := doJSON(t, s, http.MethodPatch, "/api/session/fields", map[string]string{"price": "0", "stock": "5"})
	mustCode(t, w, http.StatusOK)
	w = doJSON(t, s, http.MethodPost, "/api/session/submit", nil)
	mustCode(t, w, http.StatusUnprocessableEntity)
	if fields := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, w).Fields; len(fields) != 3 || fields["sku"] != "SKU is required" {
		t.Fatalf("field errors %v", fields)
	}
	if n := len(e.stub.Documents().List("products")); n != 0 {
		t.Fatalf("invalid draft reached the api: %d docs", n)
	}

	w = doJSON(t, s, http.MethodPatch, "/api/session/fields", map[string]string{
		"sku": "W-1", "name": "Widget", "price": "4.50",
	})
	mustCode(t, w, http.StatusOK)
	w = doJSON(t, s, http.MethodPost, "/api/session/submit", nil)
	mustCode(t, w, http.StatusOK)
	if sv := decode[sessionView](t, w); sv.Phase != "idle" {
		t.Fatalf("phase after submit %q", sv.Phase)
	}

	v = decode[view](t, doJSON(t, s, http.MethodGet, "/api/view/products", nil))
	if len(v.Rows) != 1 || v.Rows[0]["price"] != "$4.50" || v.Rows[0]["status"] != "Low Stock" {
		t.Fatalf("rows %+v", v.Rows)
	}

	notes := decode[[]map[string]any](t, doJSON(t, s, http.MethodGet, "/api/notifications", nil))
	if len(notes) == 0 || notes[len(notes)-1]["message"] != "Product saved successfully!" {
		t.Fatalf("notifications %v", notes)
	}

	// delete with confirmation
	id := v.Rows[0]["id"].(string)
	w = doJSON(t, s, http.MethodPost, "/api/delete/products/"+id, nil)
	mustCode(t, w, http.StatusOK)
	if msg := decode[map[string]any](t, w)["message"]; msg != `Are you sure you want to delete "Widget"?` {
		t.Fatalf("confirm message %v", msg)
	}
	mustCode(t, doJSON(t, s, http.MethodPost, "/api/delete/confirm", nil), http.StatusOK)
	v = decode[view](t, doJSON(t, s, http.MethodGet, "/api/view/products", nil))
	if len(v.Rows) != 0 {
		t.Fatalf("rows after delete %+v", v.Rows)
	}
	mustCode(t, doJSON(t, s, http.MethodPost, "/api/delete/confirm", nil), http.StatusConflict)
}

func TestOrderFlow(t *testing.T) {
	e := setupServer(t)
	s := e.console
	e.stub.Documents().Seed("products", stubapi.Document{"_id": "p1", "sku": "W-1", "name": "Widget", "price": 4.5, "stock": 20})
	e.stub.Documents().Seed("suppliers", stubapi.Document{"_id": "s1", "name": "Acme", "contact": "acme@example.com"})
	mustCode(t, doJSON(t, s, http.MethodPost, "/api/view/products/refresh", nil), http.StatusOK)
	mustCode(t, doJSON(t, s, http.MethodPost, "/api/view/suppliers/refresh", nil), http.StatusOK)

	mustCode(t, doJSON(t, s, http.MethodPost, "/api/session/orders", nil), http.StatusOK)
	mustCode(t, doJSON(t, s, http.MethodPatch, "/api/session/fields", map[string]string{"supplierId": "s1"}), http.StatusOK)
	w := doJSON(t, s, http.MethodPatch, "/api/session/items/0", map[string]string{"productId": "p1", "quantity": "3"})
	mustCode(t, w, http.StatusOK)
	if sv := decode[sessionView](t, w); sv.Total != "$13.50" || sv.Fields["items[0].price"] != "4.5" {
		t.Fatalf("draft after product pick %+v", sv)
	}

	mustCode(t, doJSON(t, s, http.MethodPost, "/api/session/items", nil), http.StatusOK)
	mustCode(t, doJSON(t, s, http.MethodDelete, "/api/session/items/1", nil), http.StatusOK)
	mustCode(t, doJSON(t, s, http.MethodDelete, "/api/session/items/7", nil), http.StatusBadRequest)

	mustCode(t, doJSON(t, s, http.MethodPost, "/api/session/submit", nil), http.StatusOK)

	v := decode[view](t, doJSON(t, s, http.MethodGet, "/api/view/orders", nil))
	if len(v.Rows) != 1 {
		t.Fatalf("order rows %+v", v.Rows)
	}
	row := v.Rows[0]
	if row["supplier"] != "Acme" || row["items"] != "Widget (3)" || row["total"] != "$13.50" || row["status"] != "pending" {
		t.Fatalf("order row %+v", row)
	}
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	e := setupServer(t)
	s := e.console

	mustCode(t, doJSON(t, s, http.MethodPost, "/api/session/suppliers", nil), http.StatusOK)
	mustCode(t, doJSON(t, s, http.MethodPatch, "/api/session/fields", map[string]string{
		"name": "Acme", "contact": "acme@example.com",
	}), http.StatusOK)

	e.stub.FailNext(http.StatusInternalServerError, "boom")
	mustCode(t, doJSON(t, s, http.MethodPost, "/api/session/submit", nil), http.StatusBadGateway)

	sv := decode[sessionView](t, doJSON(t, s, http.MethodGet, "/api/session", nil))
	if sv.Phase != "editing" || sv.Fields["name"] != "Acme" {
		t.Fatalf("session after failure %+v", sv)
	}
	notes := decode[[]map[string]any](t, doJSON(t, s, http.MethodGet, "/api/notifications", nil))
	if len(notes) != 1 || notes[0]["message"] != "Error saving supplier: server error: 500 - boom" {
		t.Fatalf("notifications %v", notes)
	}

	mustCode(t, doJSON(t, s, http.MethodPost, "/api/session/submit", nil), http.StatusOK)
	mustCode(t, doJSON(t, s, http.MethodDelete, "/api/session", nil), http.StatusConflict)
}

func TestRefreshFailureKeepsRows(t *testing.T) {
	e := setupServer(t)
	s := e.console
	e.stub.Documents().Seed("suppliers", stubapi.Document{"_id": "s1", "name": "Acme", "contact": "x"})
	mustCode(t, doJSON(t, s, http.MethodPost, "/api/view/suppliers/refresh", nil), http.StatusOK)

	e.stub.FailNext(http.StatusServiceUnavailable, "down")
	mustCode(t, doJSON(t, s, http.MethodPost, "/api/view/suppliers/refresh", nil), http.StatusBadGateway)

	v := decode[view](t, doJSON(t, s, http.MethodGet, "/api/view/suppliers", nil))
	if len(v.Rows) != 1 || v.Rows[0]["status"] != "Active" {
		t.Fatalf("rows after failed refresh %+v", v.Rows)
	}
}

func TestUnknownCollectionAndHealth(t *testing.T) {
	e := setupServer(t)
	mustCode(t, doJSON(t, e.console, http.MethodGet, "/api/view/customers", nil), http.StatusNotFound)
	mustCode(t, doJSON(t, e.console, http.MethodPost, "/api/session/products/missing", nil), http.StatusNotFound)
	mustCode(t, doJSON(t, e.console, http.MethodGet, "/health", nil), http.StatusOK)
}
