package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/coop-inventory/internal/config"
	httpsvc "github.com/tuanvumaihuynh/coop-inventory/internal/http"
	"github.com/tuanvumaihuynh/coop-inventory/internal/log"
	"github.com/tuanvumaihuynh/coop-inventory/internal/service"
	"github.com/tuanvumaihuynh/coop-inventory/internal/storage/cache"
	"github.com/tuanvumaihuynh/coop-inventory/internal/storage/memory"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/correlationid"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/keymutex"
)

type apiResponse struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
	Meta map[string]any `json:"meta"`
}

type productData struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	ImageURL string  `json:"imageUrl"`
}

type saleData struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	SaleDate  string `json:"saleDate"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := memory.New()
	locks := keymutex.New()
	logger := log.Discard()

	svc := httpsvc.New(
		config.HTTP{Swagger: true, AllowedOrigins: []string{"http://localhost:3000"}},
		logger,
		service.NewProductService(store, locks),
		service.NewSaleService(store, cache.NewMemoryIdempotencyStore(time.Hour), locks, logger),
		service.NewReportService(store),
		store,
	)

	handler, err := svc.Handler(context.Background())
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, headers ...string) (*http.Response, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var res apiResponse
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(raw, &res), string(raw))
	}
	return resp, res
}

func createProduct(t *testing.T, srv *httptest.Server, body string) productData {
	t.Helper()

	resp, res := do(t, srv, http.MethodPost, "/api/products", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, res.Error)

	var p productData
	require.NoError(t, json.Unmarshal(res.Data, &p))
	return p
}

func TestProducts(t *testing.T) {
	srv := newTestServer(t)

	t.Run("create returns the stored product", func(t *testing.T) {
		p := createProduct(t, srv, `{"name":"Rice (5kg)","category":"Groceries","price":12.5,"stock":20}`)

		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "Rice (5kg)", p.Name)
		assert.InDelta(t, 12.5, p.Price, 0.0001)
		assert.Equal(t, 20, p.Stock)
		assert.NotEmpty(t, p.ImageURL)
	})

	t.Run("create rejects a contract violation", func(t *testing.T) {
		resp, res := do(t, srv, http.MethodPost, "/api/products", `{"name":"Oil","category":"Groceries","price":-1,"stock":3}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", res.Code)
		require.NotEmpty(t, res.Details)
		assert.Equal(t, "price", res.Details[0].Field)
	})

	t.Run("create rejects an empty name", func(t *testing.T) {
		resp, res := do(t, srv, http.MethodPost, "/api/products", `{"name":"","category":"Groceries","price":1,"stock":3}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", res.Code)
		require.NotEmpty(t, res.Details)
		assert.Equal(t, "name", res.Details[0].Field)
	})

	t.Run("create rejects a malformed image url", func(t *testing.T) {
		resp, res := do(t, srv, http.MethodPost, "/api/products", `{"name":"Tea","category":"Groceries","price":1,"stock":3,"imageUrl":"not a url"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", res.Code)
		require.NotEmpty(t, res.Details)
		assert.Equal(t, "ImageURL", res.Details[0].Field)
		assert.Equal(t, "must be a valid URL", res.Details[0].Message)
	})

	t.Run("list, update, add stock and delete", func(t *testing.T) {
		p := createProduct(t, srv, `{"name":"Soap","category":"Household","price":2,"stock":4}`)

		resp, res := do(t, srv, http.MethodPut, "/api/products/"+p.ID, `{"name":"Soap bar","category":"Household","price":2.25,"stock":6}`)
		require.Equal(t, http.StatusOK, resp.StatusCode, res.Error)
		assert.Equal(t, "success", res.Message)

		resp, res = do(t, srv, http.MethodPost, "/api/products/"+p.ID+"/stock", `{"quantity":4}`)
		require.Equal(t, http.StatusOK, resp.StatusCode, res.Error)
		var updated productData
		require.NoError(t, json.Unmarshal(res.Data, &updated))
		assert.Equal(t, "Soap bar", updated.Name)
		assert.Equal(t, 10, updated.Stock)

		resp, res = do(t, srv, http.MethodGet, "/api/products", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var list []productData
		require.NoError(t, json.Unmarshal(res.Data, &list))
		assert.Equal(t, p.ID, list[0].ID)

		resp, res = do(t, srv, http.MethodDelete, "/api/products/"+p.ID, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "deleted", res.Message)

		resp, res = do(t, srv, http.MethodDelete, "/api/products/"+p.ID, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "PRODUCT_NOT_FOUND", res.Code)
		assert.Equal(t, p.ID, res.Meta["id"])
	})

	t.Run("add stock requires a positive quantity", func(t *testing.T) {
		p := createProduct(t, srv, `{"name":"Salt","category":"Groceries","price":1,"stock":1}`)

		resp, res := do(t, srv, http.MethodPost, "/api/products/"+p.ID+"/stock", `{"quantity":0}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", res.Code)
	})

	t.Run("add stock rejects quantities beyond the stock range", func(t *testing.T) {
		p := createProduct(t, srv, `{"name":"Sugar","category":"Groceries","price":1,"stock":5}`)

		resp, res := do(t, srv, http.MethodPost, "/api/products/"+p.ID+"/stock", `{"quantity":3000000000}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", res.Code)
		require.Len(t, res.Details, 1)
		assert.Equal(t, "quantity", res.Details[0].Field)

		resp, res = do(t, srv, http.MethodPost, "/api/products/"+p.ID+"/stock", `{"quantity":2147483643}`)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "STOCK_OUT_OF_RANGE", res.Code)
		assert.Equal(t, p.ID, res.Meta["id"])
	})

	t.Run("create rejects stock and price beyond storage limits", func(t *testing.T) {
		for _, body := range []string{
			`{"name":"Flour","category":"Groceries","price":1,"stock":2147483648}`,
			`{"name":"Flour","category":"Groceries","price":100000000000,"stock":1}`,
		} {
			resp, res := do(t, srv, http.MethodPost, "/api/products", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
			assert.Equal(t, "VALIDATION_FAILED", res.Code, body)
		}
	})
}

func TestRecordSale(t *testing.T) {
	srv := newTestServer(t)
	p := createProduct(t, srv, `{"name":"Eggs (tray)","category":"Fresh","price":6,"stock":5}`)

	t.Run("records the sale and takes the stock", func(t *testing.T) {
		resp, res := do(t, srv, http.MethodPost, "/api/sales", `{"productId":"`+p.ID+`","quantity":2,"saleDate":"2024-03-01"}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode, res.Error)
		assert.Equal(t, "success", res.Message)

		var sale saleData
		require.NoError(t, json.Unmarshal(res.Data, &sale))
		assert.Equal(t, p.ID, sale.ProductID)
		assert.Equal(t, 2, sale.Quantity)
		assert.Equal(t, "2024-03-01", sale.SaleDate)

		resp, res = do(t, srv, http.MethodGet, "/api/products", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var list []productData
		require.NoError(t, json.Unmarshal(res.Data, &list))
		assert.Equal(t, 3, list[0].Stock)
	})

	t.Run("numeric product ids are accepted", func(t *testing.T) {
		resp, res := do(t, srv, http.MethodPost, "/api/sales", `{"productId":`+p.ID+`,"quantity":1}`)
		require.Equal(t, http.StatusCreated, resp.StatusCode, res.Error)
	})

	t.Run("insufficient stock", func(t *testing.T) {
		resp, res := do(t, srv, http.MethodPost, "/api/sales", `{"productId":"`+p.ID+`","quantity":3}`)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Equal(t, "INSUFFICIENT_STOCK", res.Code)
		assert.EqualValues(t, 3, res.Meta["required"])
		assert.EqualValues(t, 2, res.Meta["available"])
	})

	t.Run("unknown product", func(t *testing.T) {
		resp, res := do(t, srv, http.MethodPost, "/api/sales", `{"productId":"999","quantity":1}`)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "PRODUCT_NOT_FOUND", res.Code)
		assert.Equal(t, "999", res.Meta["id"])
	})

	t.Run("invalid calendar date", func(t *testing.T) {
		resp, res := do(t, srv, http.MethodPost, "/api/sales", `{"productId":"`+p.ID+`","quantity":1,"saleDate":"2024-02-30"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", res.Code)
	})

	t.Run("idempotency key is honoured", func(t *testing.T) {
		body := `{"productId":"` + p.ID + `","quantity":1,"saleDate":"2024-03-02"}`

		resp, res := do(t, srv, http.MethodPost, "/api/sales", body, "Idempotency-Key", "till-1-0042")
		require.Equal(t, http.StatusCreated, resp.StatusCode, res.Error)

		resp, res = do(t, srv, http.MethodPost, "/api/sales", body, "Idempotency-Key", "till-1-0042")
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "DUPLICATE_REQUEST", res.Code)

		resp, res = do(t, srv, http.MethodGet, "/api/sales", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var sales []saleData
		require.NoError(t, json.Unmarshal(res.Data, &sales))
		assert.Len(t, sales, 3)
	})
}

func TestReports(t *testing.T) {
	srv := newTestServer(t)
	p := createProduct(t, srv, `{"name":"Milk (1L)","category":"Fresh","price":1.5,"stock":40}`)

	resp, res := do(t, srv, http.MethodPost, "/api/sales", `{"productId":"`+p.ID+`","quantity":4,"saleDate":"2024-03-08"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, res.Error)

	t.Run("dashboard", func(t *testing.T) {
		resp, res := do(t, srv, http.MethodGet, "/api/reports/dashboard", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var dashboard struct {
			TotalRevenue   float64 `json:"totalRevenue"`
			TotalItemsSold int     `json:"totalItemsSold"`
			TotalProducts  int     `json:"totalProducts"`
		}
		require.NoError(t, json.Unmarshal(res.Data, &dashboard))
		assert.InDelta(t, 6.0, dashboard.TotalRevenue, 0.0001)
		assert.Equal(t, 4, dashboard.TotalItemsSold)
		assert.Equal(t, 1, dashboard.TotalProducts)
	})

	t.Run("summary as of a date", func(t *testing.T) {
		resp, res := do(t, srv, http.MethodGet, "/api/reports/summary?asOf=2024-03-10", "")
		require.Equal(t, http.StatusOK, resp.StatusCode, res.Error)

		var rep struct {
			WeeklySales []struct {
				Date  string `json:"date"`
				Sales int    `json:"sales"`
			} `json:"weeklySales"`
		}
		require.NoError(t, json.Unmarshal(res.Data, &rep))
		require.Len(t, rep.WeeklySales, 7)
		assert.Equal(t, "2024-03-10", rep.WeeklySales[6].Date)
		assert.Equal(t, "2024-03-08", rep.WeeklySales[4].Date)
		assert.Equal(t, 4, rep.WeeklySales[4].Sales)
	})

	t.Run("summary rejects a malformed date", func(t *testing.T) {
		resp, res := do(t, srv, http.MethodGet, "/api/reports/summary?asOf=10-03-2024", "")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", res.Code)
		require.NotEmpty(t, res.Details)
		assert.Equal(t, "asOf", res.Details[0].Field)
	})
}

func TestOperationalEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("health", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()

		var body struct {
			Status string `json:"status"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ok", body.Status)
	})

	t.Run("correlation id is echoed", func(t *testing.T) {
		resp, _ := do(t, srv, http.MethodGet, "/api/products", "", correlationid.Header, "req-123")
		assert.Equal(t, "req-123", resp.Header.Get(correlationid.Header))

		resp, _ = do(t, srv, http.MethodGet, "/api/products", "")
		assert.NotEmpty(t, resp.Header.Get(correlationid.Header))
	})

	t.Run("metrics are labelled by route", func(t *testing.T) {
		do(t, srv, http.MethodGet, "/api/products", "")

		resp, err := srv.Client().Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(raw), `coop_http_requests_total{code="200",method="GET",route="/api/products/"}`)
	})

	t.Run("unknown routes are not found", func(t *testing.T) {
		resp, _ := do(t, srv, http.MethodGet, "/api/unknown", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
