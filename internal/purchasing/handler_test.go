package purchasing

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bodega-ims/bodega-ims/internal/shared"
)

func newTestRouter(t *testing.T) (*Service, chi.Router) {
	t.Helper()
	svc, _, _, _ := setup(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	NewHandler(logger, svc).MountRoutes(r)
	return svc, r
}

func TestListOrdersPaginates(t *testing.T) {
	svc, router := newTestRouter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateOrder(ctx, orderInput(), "ana")
		require.NoError(t, err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders?per_page=2&page=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Orders     []json.RawMessage `json:"orders"`
		Pagination shared.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 1)
	require.Equal(t, 3, resp.Pagination.Total)
	require.Equal(t, 2, resp.Pagination.TotalPages)
}

func TestOrderResponseCarriesDerivedTotal(t *testing.T) {
	svc, router := newTestRouter(t)
	ctx := context.Background()

	po, err := svc.CreateOrder(ctx, orderInput(), "ana")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+po.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status POStatus        `json:"status"`
		Total  decimal.Decimal `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, POStatusDraft, resp.Status)
	// 10 x 5 from the catalog price plus 4 x 2 explicit.
	require.True(t, resp.Total.Equal(decimal.NewFromInt(58)), "got total %s", resp.Total)
}
