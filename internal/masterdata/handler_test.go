package masterdata

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/bodega-ims/bodega-ims/internal/shared"
)

func TestListProductsPaginates(t *testing.T) {
	svc := NewService(NewRepository(), newFakeLedger(), nil, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := chi.NewRouter()
	NewHandler(logger, svc).MountRoutes(router)
	ctx := context.Background()

	for _, sku := range []string{"SKU-1", "SKU-2", "SKU-3"} {
		_, err := svc.CreateProduct(ctx, productInput(sku), "ana")
		require.NoError(t, err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products?per_page=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Products   []Product         `json:"products"`
		Pagination shared.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 2)
	require.Equal(t, 3, resp.Pagination.Total)
	require.Equal(t, 2, resp.Pagination.TotalPages)
	require.Equal(t, 1, resp.Pagination.Page)
}
