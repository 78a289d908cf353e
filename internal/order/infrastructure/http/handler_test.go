package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authapp "github.com/dmehra2102/plasto-orders/internal/auth/application"
	authdomain "github.com/dmehra2102/plasto-orders/internal/auth/domain"
	authhttp "github.com/dmehra2102/plasto-orders/internal/auth/infrastructure/http"
	authmemory "github.com/dmehra2102/plasto-orders/internal/auth/infrastructure/memory"
	"github.com/dmehra2102/plasto-orders/internal/auth/infrastructure/token"
	catalogapp "github.com/dmehra2102/plasto-orders/internal/catalog/application"
	catalogmemory "github.com/dmehra2102/plasto-orders/internal/catalog/infrastructure/memory"
	"github.com/dmehra2102/plasto-orders/internal/order/application"
	"github.com/dmehra2102/plasto-orders/internal/order/domain"
	"github.com/dmehra2102/plasto-orders/internal/order/infrastructure/memory"
	"github.com/dmehra2102/plasto-orders/pkg/clock"
	"github.com/dmehra2102/plasto-orders/pkg/logging"
)

func newTestHandler(t *testing.T, idempotency func(http.Handler) http.Handler) http.Handler {
	t.Helper()
	clk := clock.NewManual(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)).Clock()
	managers := authmemory.NewRepository(
		authdomain.Manager{Username: "alice", Status: authdomain.StatusRegular},
		authdomain.Manager{Username: "bob", Status: authdomain.StatusRegular},
	)
	iss, err := token.NewIssuer("test-secret", "HS256", time.Minute)
	require.NoError(t, err)
	access := authapp.NewService(logging.Discard(), managers, iss, clk)

	repo := memory.NewRepository(domain.Order{
		Ref: domain.Ref{Source: domain.SourceTelegram, ID: 7}, CreatedAt: "01.10.2026", Organization: "Org",
		InvoiceNumber: "T-7", Manager: ptr("alice"), Status: domain.StatusPaid,
	})
	svc := application.NewService(logging.Discard(), repo, catalogapp.NewService(catalogmemory.NewRepository("Widget")), access, clk)
	routes := NewHandler(logging.Discard(), svc, idempotency).Routes()

	// Stand-in for RequireManager: the X-Test-User header names the caller.
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := authdomain.Principal{Username: r.Header.Get("X-Test-User"), Status: authdomain.StatusRegular}
		routes.ServeHTTP(w, r.WithContext(authhttp.WithPrincipal(r.Context(), p)))
	})
}

func ptr[T any](v T) *T { return &v }

func do(h http.Handler, method, target, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("X-Test-User", user)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCreateOrder(t *testing.T) {
	h := newTestHandler(t, nil)

	w := do(h, http.MethodPost, "/", "bob",
		`{"organization":"Acme","invoice_number":"INV-1","manager":"alice","content":[{"product_name":"Widget","quantity":3}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{
		"id": 1000000, "created_at": "2026-10-15", "organization": "Acme", "invoice_number": "INV-1",
		"manager": "alice", "status": "Заказ оплачен", "closed_at": null, "source": "manual",
		"content": [{"product_name": "Widget", "quantity": 3}]
	}`, w.Body.String())

	w = do(h, http.MethodPost, "/", "bob", `{"organization":"Acme","invoiceNumber":"INV-2","manager":"bob","content":[]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"content":null`)
	assert.Contains(t, w.Body.String(), `"invoice_number":"INV-2"`)

	w = do(h, http.MethodPost, "/", "bob", `{"organization":"Acme","invoiceNumber":"INV-3","manager":"bob","content":[{"product_name":"Bolt","quantity":1}]}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"not found: product \"Bolt\" not found"}`, w.Body.String())

	w = do(h, http.MethodPost, "/", "bob", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrder(t *testing.T) {
	h := newTestHandler(t, nil)

	tests := []struct {
		name string
		user string
		path string
		body string
		code int
	}{
		{"non owner", "bob", "/7", `{"status":"Заказ в работе"}`, http.StatusForbidden},
		{"bad id", "alice", "/seven", `{}`, http.StatusBadRequest},
		{"missing", "alice", "/8", `{}`, http.StatusNotFound},
		{"bad status", "alice", "/7", `{"status":"done"}`, http.StatusBadRequest},
		{"zero quantity", "alice", "/7", `{"content":[{"product_name":"Widget","quantity":0}]}`, http.StatusBadRequest},
		{"order_status alias", "alice", "/7", `{"order_status":"Заказ закрыт"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(h, http.MethodPatch, tt.path, tt.user, tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
		})
	}

	w := do(h, http.MethodPatch, "/7", "alice", `{"content":[{"product_name":"Widget","quantity":2}]}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(h, http.MethodPatch, "/7", "alice", `{"content":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"content":[{"product_name":"Widget","quantity":2}]`)

	w = do(h, http.MethodPatch, "/7", "alice", `{"content":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Заказ закрыт"`)
	assert.Contains(t, w.Body.String(), `"closed_at":"2026-10-15"`)
	assert.Contains(t, w.Body.String(), `"content":[{"product_name":"Widget","quantity":2}]`)
}

func TestDeleteOrder(t *testing.T) {
	h := newTestHandler(t, nil)

	assert.Equal(t, http.StatusForbidden, do(h, http.MethodDelete, "/7", "bob", "").Code)

	w := do(h, http.MethodDelete, "/7", "alice", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodDelete, "/7", "alice", "").Code)
	assert.JSONEq(t, `[]`, do(h, http.MethodGet, "/", "alice", "").Body.String())
}

func TestCreateUsesIdempotencyMiddleware(t *testing.T) {
	var calls int
	h := newTestHandler(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			next.ServeHTTP(w, r)
		})
	})

	do(h, http.MethodGet, "/", "alice", "")
	do(h, http.MethodPost, "/", "alice", `{"organization":"A","invoiceNumber":"I","manager":"alice"}`)
	assert.Equal(t, 1, calls)
}
