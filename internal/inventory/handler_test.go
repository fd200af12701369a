package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Service, *fakeCatalog, chi.Router) {
	t.Helper()
	svc, _, catalog := newTestService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(logger, svc, nil).MountRoutes(r)
	return svc, catalog, r
}

func listMovementsVia(t *testing.T, router chi.Router, query string) []Movement {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movements"+query, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Movements []Movement `json:"movements"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Movements
}

func TestMovementsEndpointHonorsLimit(t *testing.T) {
	svc, catalog, router := newTestHandler(t)
	catalog.addProduct("p1", "SKU-1", "Widget")
	catalog.addWarehouse("w1", "Central")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.AdjustStock(ctx, AdjustmentInput{
			ProductID:      "p1",
			WarehouseID:    "w1",
			QuantityChange: 5,
			Type:           MovementEntry,
			Details:        fmt.Sprintf("restock %d", i),
			Actor:          "ana",
		})
		require.NoError(t, err)
	}

	require.Len(t, listMovementsVia(t, router, ""), 3)
	require.Len(t, listMovementsVia(t, router, "?limit=2"), 2)

	// Malformed or oversized limits fall back to the cap.
	require.Len(t, listMovementsVia(t, router, "?limit=oops"), 3)
	require.Len(t, listMovementsVia(t, router, "?limit=99999"), 3)
}
