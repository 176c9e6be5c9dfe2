package transport

import (
	"encoding/json"
	"net/http"
	"testing"

	"affiliate-market/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStoreRouter(catalog *fakeCatalogService) http.Handler {
	r := chi.NewRouter()
	NewStoreHandler(catalog, zap.NewNop(), false).RegisterRoutes(r)
	return r
}

func TestListStores(t *testing.T) {
	router := newStoreRouter(&fakeCatalogService{})

	w := serve(router, http.MethodGet, "/api/stores", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", string(decodeEnvelope(t, w).Data))
}

func TestListStoresFailure(t *testing.T) {
	router := newStoreRouter(&fakeCatalogService{storeErr: errDatabaseDown})

	w := serve(router, http.MethodGet, "/api/stores", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeEnvelope(t, w)
	assert.False(t, body.Success)
	assert.JSONEq(t, "[]", string(body.Data))
}

func TestGetStore(t *testing.T) {
	store := &domain.Store{ID: 4, Name: "Loja Centro", ProductCount: 1, Products: []*domain.Product{sampleProduct(1, true)}}
	router := newStoreRouter(&fakeCatalogService{stores: []*domain.Store{store}})

	w := serve(router, http.MethodGet, "/api/stores/4", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.Store
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &got))
	assert.Equal(t, "Loja Centro", got.Name)
	assert.Len(t, got.Products, 1)

	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/stores/5", "").Code)
	assert.Equal(t, http.StatusBadRequest, serve(router, http.MethodGet, "/api/stores/x", "").Code)
}
