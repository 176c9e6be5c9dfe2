package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"affiliate-market/internal/domain"
	"affiliate-market/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func passthrough(next http.Handler) http.Handler { return next }

func newProductRouter(products *stubProductRepository, clicks *stubClickRepository) http.Handler {
	logger := zap.NewNop()
	catalog := service.NewCatalogService(products, nil, nil)
	clickService := service.NewClickService(products, clicks, logger)

	r := chi.NewRouter()
	NewProductHandler(catalog, clickService, logger, false).RegisterRoutes(r, passthrough)
	return r
}

func sampleProduct(id int64, active bool) *domain.Product {
	return &domain.Product{
		ID:           id,
		Title:        "Fone Bluetooth " + strconv.FormatInt(id, 10),
		Price:        decimal.RequireFromString("199.90"),
		AffiliateURL: "https://loja.example.com/p/" + strconv.FormatInt(id, 10),
		StoreID:      1,
		IsActive:     active,
		Categories:   []domain.CategorySummary{},
	}
}

type envelope struct {
	Success    bool                `json:"success"`
	Data       json.RawMessage     `json:"data"`
	Pagination *service.Pagination `json:"pagination"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func newRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "203.0.113.7:41000"
	req.Header.Set("User-Agent", "catalog-test")
	return req
}

func record(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	return record(h, newRequest(method, target, body))
}

func TestListProductsMergesCategoryParameters(t *testing.T) {
	products := newStubProductRepository()
	products.page = []*domain.Product{sampleProduct(9, true)}
	products.total = 6
	router := newProductRouter(products, &stubClickRepository{})

	w := serve(router, http.MethodGet,
		"/api/products?q=%20fone%20&storeId=abc&categoryIds=1&categoryIds[]=2&categoryIds=3,1,x&page=2&perPage=5", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.True(t, body.Success)
	require.NotNil(t, body.Pagination)
	assert.Equal(t, service.Pagination{CurrentPage: 2, PerPage: 5, TotalItems: 6, TotalPages: 2, HasNext: false, HasPrev: true}, *body.Pagination)

	assert.Equal(t, "fone", products.filter.Query)
	assert.Nil(t, products.filter.StoreID)
	assert.ElementsMatch(t, []int64{1, 2, 3}, products.filter.CategoryIDs)
	assert.Equal(t, 5, products.limit)
	assert.Equal(t, 5, products.offset)
}

func TestListProductsZeroStoreIDStillFilters(t *testing.T) {
	products := newStubProductRepository()
	router := newProductRouter(products, &stubClickRepository{})

	w := serve(router, http.MethodGet, "/api/products?storeId=0&page=9223372036854775807", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, products.filter.StoreID)
	assert.Equal(t, int64(0), *products.filter.StoreID)
	assert.GreaterOrEqual(t, products.offset, 0)
	assert.Equal(t, service.MaxPage, decodeEnvelope(t, w).Pagination.CurrentPage)
}

func TestListProductsEmptyResultIsAnEmptyArray(t *testing.T) {
	router := newProductRouter(newStubProductRepository(), &stubClickRepository{})

	w := serve(router, http.MethodGet, "/api/products?page=-3&perPage=1000", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.JSONEq(t, "[]", string(body.Data))
	assert.Equal(t, 1, body.Pagination.CurrentPage)
	assert.Equal(t, service.DefaultPerPage, body.Pagination.PerPage)
	assert.False(t, body.Pagination.HasPrev)
}

func TestListProductsFailureKeepsDataArray(t *testing.T) {
	products := newStubProductRepository()
	products.listErr = errDatabaseDown
	router := newProductRouter(products, &stubClickRepository{})

	w := serve(router, http.MethodGet, "/api/products", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeEnvelope(t, w)
	assert.False(t, body.Success)
	assert.JSONEq(t, "[]", string(body.Data))
	assert.NotContains(t, w.Body.String(), "connection refused")
}

// Feature: affiliate-catalog, Property 5: Malformed ids never reach the store
func TestProperty_MalformedProductIDsAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("non positive-integer ids answer 400 without a lookup", prop.ForAll(
		func(raw string) bool {
			products := newStubProductRepository(sampleProduct(1, true))
			router := newProductRouter(products, &stubClickRepository{})

			w := serve(router, http.MethodGet, "/api/products/"+raw, "")

			return w.Code == http.StatusBadRequest && products.lookups == 0
		},
		gen.OneGenOf(
			gen.AlphaString().SuchThat(func(s string) bool { return s != "" && s != "categories" }),
			gen.Int64Range(-1000, 0).Map(func(n int64) string { return strconv.FormatInt(n, 10) }),
			gen.Const("1.5"),
			gen.Const("12abc"),
		),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestGetProduct(t *testing.T) {
	products := newStubProductRepository(sampleProduct(1, true), sampleProduct(2, false))
	router := newProductRouter(products, &stubClickRepository{})

	w := serve(router, http.MethodGet, "/api/products/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var product domain.Product
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &product))
	assert.Equal(t, int64(1), product.ID)

	for _, id := range []string{"2", "99"} {
		w = serve(router, http.MethodGet, "/api/products/"+id, "")
		assert.Equal(t, http.StatusNotFound, w.Code, id)
		assert.Equal(t, "NOT_FOUND", decodeEnvelope(t, w).Error.Code)
	}
}

// Feature: affiliate-catalog, Property 7: Each tracked click adds exactly one
func TestProperty_TrackClickCountsEveryCall(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("n calls raise the counter by n and append n audit rows", prop.ForAll(
		func(n int) bool {
			products := newStubProductRepository(sampleProduct(7, true))
			clicks := &stubClickRepository{}
			router := newProductRouter(products, clicks)

			var last domain.ClickResult
			for i := 0; i < n; i++ {
				w := serve(router, http.MethodPost, "/api/products/track-click", `{"productId":7}`)
				if w.Code != http.StatusOK {
					return false
				}
				var body envelope
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					return false
				}
				if err := json.Unmarshal(body.Data, &last); err != nil {
					return false
				}
			}

			return last.TotalClicks == int64(n) &&
				last.AffiliateURL == "https://loja.example.com/p/7" &&
				len(clicks.clicks) == n
		},
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestTrackClickRecordsClient(t *testing.T) {
	products := newStubProductRepository(sampleProduct(7, true))
	clicks := &stubClickRepository{}
	router := newProductRouter(products, clicks)

	w := serve(router, http.MethodPost, "/api/products/track-click", `{"productId":7}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, clicks.clicks, 1)
	assert.Equal(t, "203.0.113.7", clicks.clicks[0].IP)
	require.NotNil(t, clicks.clicks[0].UserAgent)
	assert.Equal(t, "catalog-test", *clicks.clicks[0].UserAgent)
}

func TestTrackClickRejectsBadBodies(t *testing.T) {
	for _, body := range []string{`{}`, `{"productId":0}`, `{"productId":-4}`, `{"productId":"7"}`, `{"productId":7.5}`, `nope`} {
		products := newStubProductRepository(sampleProduct(7, true))
		router := newProductRouter(products, &stubClickRepository{})

		w := serve(router, http.MethodPost, "/api/products/track-click", body)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Zero(t, products.lookups, body)
	}
}

func TestTrackClickUnknownOrInactiveProduct(t *testing.T) {
	inactive := sampleProduct(8, false)
	products := newStubProductRepository(inactive)
	clicks := &stubClickRepository{}
	router := newProductRouter(products, clicks)

	for _, body := range []string{`{"productId":8}`, `{"productId":404}`} {
		w := serve(router, http.MethodPost, "/api/products/track-click", body)
		assert.Equal(t, http.StatusNotFound, w.Code, body)
	}
	assert.Zero(t, inactive.Clicks)
	assert.Empty(t, clicks.clicks)
}
