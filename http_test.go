package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/catalog"
	"github.com/pr-poehali-dev/souvenir-shop-yurievets-800/evented"
)

type httpClient struct {
	t       *testing.T
	handler http.Handler
}

func newHTTPClient(t *testing.T) *httpClient {
	t.Helper()
	return &httpClient{t: t, handler: newHTTPHandler(newTestServer(t))}
}

func newCatalogHTTPClient(t *testing.T, srv *server) *httpClient {
	t.Helper()
	return &httpClient{t: t, handler: newHTTPHandler(srv)}
}

func (c *httpClient) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (c *httpClient) openSession() string {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/sessions", "")
	require.Equal(c.t, http.StatusCreated, rec.Code)
	return decode[cartView](c.t, rec).SessionID
}

func TestHTTP_healthz(t *testing.T) {
	c := newHTTPClient(t)

	rec := c.do(http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHTTP_listProducts(t *testing.T) {
	c := newHTTPClient(t)

	rec := c.do(http.MethodGet, "/products", "")

	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[productsView](t, rec)
	require.Len(t, view.Products, 6)
	assert.Equal(t, "Деревянная шкатулка", view.Products[4].Name)
	assert.Equal(t, int64(2500), view.Products[4].Price)
}

func TestHTTP_cartFlow(t *testing.T) {
	c := newHTTPClient(t)
	id := c.openSession()
	base := "/sessions/" + id

	rec := c.do(http.MethodPost, base+"/items", `{"product_id": 1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[outcomeView](t, rec)
	require.Len(t, out.Notifications, 1)
	assert.Equal(t, `Матрёшка "Юрьевецкая"`, out.Notifications[0].ProductName)

	c.do(http.MethodPost, base+"/items", `{"product_id": 3}`)
	rec = c.do(http.MethodPost, base+"/items/3/increment", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPut, base+"/items/1", `{"quantity": 4}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out = decode[outcomeView](t, rec)
	assert.Equal(t, int64(4*1200+2*250), out.Cart.Total)
	assert.Equal(t, int64(6), out.Cart.ItemCount)
	assert.Equal(t, []string{"QuantityUpdated"}, out.Events)

	rec = c.do(http.MethodPost, base+"/items/1/decrement", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = c.do(http.MethodDelete, base+"/items/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out = decode[outcomeView](t, rec)
	require.Len(t, out.Cart.Items, 1)
	assert.Equal(t, int64(3), out.Cart.Items[0].ID)
	assert.Equal(t, int64(500), out.Cart.Items[0].Subtotal)

	rec = c.do(http.MethodGet, base+"/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decode[cartView](t, rec)
	assert.Equal(t, int64(500), cart.Total)
	assert.Equal(t, 1, cart.Lines)

	rec = c.do(http.MethodDelete, base+"/items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out = decode[outcomeView](t, rec)
	assert.Empty(t, out.Cart.Items)
	require.Len(t, out.Notifications, 1)
	assert.Equal(t, "Корзина очищена", out.Notifications[0].Title)
}

func TestHTTP_largeProductIDsKeepIdentity(t *testing.T) {
	c := newCatalogHTTPClient(t, newCatalogServer(t, bigIDCatalog(t)))
	id := c.openSession()
	base := "/sessions/" + id

	rec := c.do(http.MethodPost, base+"/items", `{"product_id": 9007199254740993}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = c.do(http.MethodPost, base+"/items/9007199254740993/increment", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = c.do(http.MethodPost, base+"/items", `{"product_id": 9007199254740992}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	out := decode[outcomeView](t, rec)
	require.Len(t, out.Cart.Items, 2)
	assert.Equal(t, int64(1<<53+1), out.Cart.Items[0].ID)
	assert.Equal(t, int32(2), out.Cart.Items[0].Quantity)
	assert.Equal(t, int64(1<<53), out.Cart.Items[1].ID)
	assert.Equal(t, int32(1), out.Cart.Items[1].Quantity)
	assert.Equal(t, int64(750), out.Cart.Total)
	assert.Contains(t, rec.Body.String(), `"id":9007199254740993`)
}

func TestHTTP_totalOverflowIsRejected(t *testing.T) {
	cat, err := catalog.New([]catalog.Product{{ID: 1, Name: "Самовар", Price: math.MaxInt64/2 + 1}})
	require.NoError(t, err)
	c := newCatalogHTTPClient(t, newCatalogServer(t, cat))
	id := c.openSession()
	base := "/sessions/" + id

	rec := c.do(http.MethodPost, base+"/items", `{"product_id": 1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = c.do(http.MethodPost, base+"/items/1/increment", "")
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code, rec.Body.String())
	assert.Equal(t, "FAILED_PRECONDITION", decode[errorView](t, rec).Code)

	rec = c.do(http.MethodGet, base+"/cart", "")
	cart := decode[cartView](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int32(1), cart.Items[0].Quantity)
}

func TestHTTP_cartViewFields(t *testing.T) {
	c := newHTTPClient(t)
	rec := c.do(http.MethodPost, "/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	opened := decode[cartView](t, rec)
	assert.True(t, opened.Empty)
	assert.False(t, opened.CreatedAt.IsZero())

	rec = c.do(http.MethodPost, "/sessions/"+opened.SessionID+"/items", `{"product_id": 6}`)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[outcomeView](t, rec)
	assert.False(t, out.Cart.Empty)
	assert.True(t, out.Cart.CreatedAt.Equal(opened.CreatedAt))
}

func TestHTTP_history(t *testing.T) {
	c := newHTTPClient(t)
	id := c.openSession()
	base := "/sessions/" + id
	c.do(http.MethodPost, base+"/items", `{"product_id": 2}`)
	c.do(http.MethodPut, base+"/items/2", `{"quantity": 3}`)

	rec := c.do(http.MethodGet, base+"/history", "")

	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[historyView](t, rec)
	assert.Equal(t, id, view.SessionID)
	require.Len(t, view.Pages, 2)
	assert.Equal(t, "ItemAdded", view.Pages[0].Event)
	assert.Equal(t, uint32(1), view.Pages[1].Sequence)
	assert.Equal(t, "QuantityUpdated", view.Pages[1].Event)
	assert.Equal(t, float64(3), view.Pages[1].Payload["new_quantity"])
	assert.Equal(t, int64(3*800), view.Replayed.Total)
	assert.Equal(t, int64(3), view.Replayed.ItemCount)
}

func TestHTTP_errors(t *testing.T) {
	c := newHTTPClient(t)
	id := c.openSession()
	base := "/sessions/" + id
	c.do(http.MethodPost, base+"/items", `{"product_id": 2}`)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown session", http.MethodGet, "/sessions/missing/cart", "", http.StatusNotFound, "NOT_FOUND"},
		{"unknown product", http.MethodPost, base + "/items", `{"product_id": 77}`, http.StatusNotFound, "NOT_FOUND"},
		{"malformed body", http.MethodPost, base + "/items", `[1,2]`, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"missing product id", http.MethodPost, base + "/items", `{}`, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"bad path id", http.MethodDelete, base + "/items/abc", "", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"quantity below one", http.MethodPut, base + "/items/2", `{"quantity": 0}`, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"fractional quantity", http.MethodPut, base + "/items/2", `{"quantity": 1.5}`, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"quantity past int64", http.MethodPut, base + "/items/2", `{"quantity": 99999999999999999999}`, http.StatusBadRequest, "INVALID_ARGUMENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := c.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode[errorView](t, rec).Code)
		})
	}
}

func TestHTTP_removeAbsentItemIsNoop(t *testing.T) {
	c := newHTTPClient(t)
	id := c.openSession()

	rec := c.do(http.MethodDelete, "/sessions/"+id+"/items/5", "")

	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[outcomeView](t, rec)
	assert.Empty(t, out.Events)
	assert.Empty(t, out.Cart.Items)
}

func TestHTTP_closeSession(t *testing.T) {
	c := newHTTPClient(t)
	id := c.openSession()

	rec := c.do(http.MethodDelete, "/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = c.do(http.MethodGet, "/sessions/"+id+"/cart", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{evented.NewInvalidArgument("bad"), http.StatusBadRequest},
		{fmt.Errorf("add: %w", evented.NewFailedPrecondition("too large")), http.StatusPreconditionFailed},
		{evented.NewNotFoundf("Product %d not found", 9), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, httpStatus(tt.err), tt.err.Error())
	}
}
