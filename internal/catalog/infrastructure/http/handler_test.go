package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmehra2102/plasto-orders/internal/catalog/application"
	"github.com/dmehra2102/plasto-orders/internal/catalog/infrastructure/memory"
	"github.com/dmehra2102/plasto-orders/pkg/logging"
)

func TestRoutes(t *testing.T) {
	h := NewHandler(logging.Discard(), application.NewService(memory.NewRepository("Widget", "Gadget"))).Routes()

	tests := []struct {
		name   string
		target string
		code   int
		body   string
	}{
		{"list", "/", http.StatusOK, `[{"id":1,"name":"Widget"},{"id":2,"name":"Gadget"}]`},
		{"search hit", "/search?query=gad", http.StatusOK, `[{"id":2,"name":"Gadget"}]`},
		{"search miss", "/search?query=bolt", http.StatusNotFound, `{"detail":"not found: no products found"}`},
		{"search empty", "/search?query=", http.StatusNotFound, `{"detail":"not found: no products found"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
