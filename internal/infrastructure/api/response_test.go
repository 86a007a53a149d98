package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"shopify-workspace-connector/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"unauthorized", domain.Errorf(domain.ErrUnauthorized, "Unauthorized"), http.StatusUnauthorized, "Unauthorized"},
		{"conflict", domain.Errorf(domain.ErrConflict, "A sync job is already running"), http.StatusBadRequest, "A sync job is already running"},
		{"wrapped validation", fmt.Errorf("init: %w", domain.Errorf(domain.ErrValidation, "bad shop")), http.StatusBadRequest, "bad shop"},
		{"not found", domain.Errorf(domain.ErrNotFound, "Tenant not found"), http.StatusNotFound, "Tenant not found"},
		{"upstream", domain.Errorf(domain.ErrUpstream, "shop unreachable"), http.StatusBadGateway, "shop unreachable"},
		{"bare upstream sentinel", fmt.Errorf("call: %w", domain.ErrUpstream), http.StatusBadGateway, "Bad Gateway"},
		{"decryption", domain.Errorf(domain.ErrDecryption, "key mismatch"), http.StatusInternalServerError, "Internal server error"},
		{"unclassified", errors.New("mongo: connection reset"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.msg, decodeError(t, rec))
		})
	}
}
