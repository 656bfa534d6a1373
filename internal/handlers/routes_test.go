package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"nightmarket/models"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMux(t *testing.T, h Handlers, opts RouteOptions) http.Handler {
	t.Helper()
	r := router.NewRouter(func(w http.ResponseWriter, req *http.Request) (*core.RequestEvent, router.EventCleanupFunc) {
		e := &core.RequestEvent{}
		e.Response = w
		e.Request = req
		return e, nil
	})
	RegisterRoutes(r, h, opts)

	mux, err := r.BuildMux()
	require.NoError(t, err)
	return mux
}

func TestSimulatePaymentRoute(t *testing.T) {
	f := newFixture(t)
	ev := f.activeEvent(t, 10)
	ref := checkout(t, f, ev.ID, 1).Reference
	body := `{"reference":"` + ref + `"}`

	tests := []struct {
		name        string
		development bool
		expected    int
	}{
		{"Anonymous in development", true, http.StatusUnauthorized},
		{"Not registered outside development", false, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newMux(t, f.handlers, RouteOptions{Development: tt.development})

			req := httptest.NewRequest(http.MethodPost, "/api/market/test/simulate-payment", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			assert.Equal(t, tt.expected, rec.Code)
		})
	}

	tk, err := f.tickets.Lookup(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, models.TicketPending, tk.Status)
}

func TestPublicRoutesServeWithoutAuth(t *testing.T) {
	f := newFixture(t)
	f.activeEvent(t, 10)
	mux := newMux(t, f.handlers, RouteOptions{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/market/events", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Night Market Vol. 3")

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/market/admin/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
