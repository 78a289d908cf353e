package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"unauthenticated", fmt.Errorf("%w: bad token", ErrUnauthenticated), http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("%w: not owner", ErrForbidden), http.StatusForbidden},
		{"not found", fmt.Errorf("%w: order 7", ErrNotFound), http.StatusNotFound},
		{"invalid", fmt.Errorf("%w: days", ErrInvalidArgument), http.StatusBadRequest},
		{"double wrapped", fmt.Errorf("update: %w", fmt.Errorf("%w: x", ErrNotFound)), http.StatusNotFound},
		{"store failure", errors.New("conn reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
