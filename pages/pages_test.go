package pages

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"orderdesk/catalog"
	"orderdesk/globals"
	"orderdesk/models"
	"orderdesk/session"
	"orderdesk/summary"
)

type fixture struct {
	srv   *Server
	store *session.MemoryStore
	logs  *observer.ObservedLogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat, err := catalog.New([]models.Product{
		{ID: "P1", Name: "Tonic", Category: "Health", Points: decimal.NewFromInt(10), Price: decimal.NewFromInt(500)},
		{ID: "P2", Name: "Green Tea", Category: "Drinks", Points: decimal.NewFromInt(1), Price: decimal.NewFromInt(100)},
		{ID: "007", Name: "Royal Jelly", Category: "Health", Points: decimal.RequireFromString("120.5"), Price: decimal.RequireFromString("2760.25")},
	})
	require.NoError(t, err)

	store := session.NewMemoryStore()
	day := time.Date(2026, 10, 17, 14, 5, 0, 0, time.UTC)
	m := session.NewManager(store, cat, func() time.Time { return day }, nil, nil)
	core, logs := observer.New(zap.WarnLevel)
	srv, err := NewServer(m, summary.New(summary.Labels{}), Options{}, zap.New(core))
	require.NoError(t, err)
	return &fixture{srv: srv, store: store, logs: logs}
}

type request struct {
	method  string
	target  string
	form    url.Values
	json    string
	cookies []*http.Cookie
}

func (f *fixture) do(t *testing.T, h httprouter.Handle, req request, ps ...httprouter.Param) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	switch {
	case req.form != nil:
		body = strings.NewReader(req.form.Encode())
	case req.json != "":
		body = strings.NewReader(req.json)
	}
	r := httptest.NewRequest(req.method, req.target, body)
	switch {
	case req.form != nil:
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	case req.json != "":
		r.Header.Set("Content-Type", "application/json")
		r.Header.Set("Accept", "application/json")
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}
	r = r.WithContext(globals.WithSessionID(r.Context(), "sess-1"))
	rec := httptest.NewRecorder()
	h(rec, r, ps)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestPage_ListsAndFiltersProducts(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, f.srv.Page, request{method: http.MethodGet, target: "/"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Showing 3 products")
	assert.Contains(t, body, "Royal Jelly")
	assert.Contains(t, body, "NT$ 2,760.25 / 121 SV")
	assert.Contains(t, body, "Your cart is empty")
	assert.NotContains(t, body, `id="copy"`)

	rec = f.do(t, f.srv.Page, request{method: http.MethodGet, target: "/?q=TEA&category=Drinks"})
	body = rec.Body.String()
	assert.Contains(t, body, "Showing 1 products")
	assert.Contains(t, body, "Green Tea")
	assert.NotContains(t, body, "Tonic")

	rec = f.do(t, f.srv.Page, request{method: http.MethodGet, target: "/?category=Nope"})
	assert.Contains(t, rec.Body.String(), "Showing 0 products")
}

func TestAddItem_FormRedirectsWithFlash(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, f.srv.AddItem, request{
		method: http.MethodPost,
		target: "/cart/items",
		form:   url.Values{"product_id": {"P1"}, "quantity": {"3"}, "q": {"ton"}, "category": {"All"}},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?q=ton", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	rec = f.do(t, f.srv.Page, request{method: http.MethodGet, target: "/?q=ton", cookies: cookies})
	body := rec.Body.String()
	assert.Contains(t, body, "Added 3 x Tonic")
	assert.Contains(t, body, "Qty 3 | NT$ 1,500 | 30 SV")
	assert.Contains(t, body, `id="copy"`)
	assert.Contains(t, body, "20261017-001")
}

func TestAddItem_DefaultsToOne(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, f.srv.AddItem, request{
		method: http.MethodPost,
		target: "/cart/items",
		form:   url.Values{"product_id": {"P2"}},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	st, err := f.store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Cart.Quantity("P2"))
}

func TestAddItem_JSON(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, f.srv.AddItem, request{method: http.MethodPost, target: "/cart/items", json: `{"product_id":"P1","quantity":3}`})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "item_added", out["change"].(map[string]any)["kind"])
	totals := out["cart"].(map[string]any)["totals"].(map[string]any)
	assert.Equal(t, "1500", totals["amount"])
	assert.Equal(t, "30", totals["points"])

	rec = f.do(t, f.srv.AddItem, request{method: http.MethodPost, target: "/cart/items", json: `{"product_id":"P1","quantity":"2"}`})
	require.Equal(t, http.StatusOK, rec.Code)
	st, err := f.store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 5, st.Cart.Quantity("P1"))
}

func TestAddItem_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"zero quantity", `{"product_id":"P1","quantity":0}`, http.StatusUnprocessableEntity},
		{"negative quantity", `{"product_id":"P1","quantity":-2}`, http.StatusUnprocessableEntity},
		{"fractional quantity", `{"product_id":"P1","quantity":1.5}`, http.StatusUnprocessableEntity},
		{"unknown product", `{"product_id":"P9","quantity":1}`, http.StatusNotFound},
		{"missing product", `{"quantity":1}`, http.StatusBadRequest},
		{"malformed body", `{"product_id":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			rec := f.do(t, f.srv.AddItem, request{method: http.MethodPost, target: "/cart/items", json: tt.body})
			assert.Equal(t, tt.code, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])

			st, err := f.store.Get(context.Background(), "sess-1")
			require.NoError(t, err)
			assert.True(t, st.Cart.IsEmpty())
		})
	}
}

func TestAddItem_FormErrorFlashes(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, f.srv.AddItem, request{
		method: http.MethodPost,
		target: "/cart/items",
		form:   url.Values{"product_id": {"P1"}, "quantity": {"0"}},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = f.do(t, f.srv.Page, request{method: http.MethodGet, target: "/", cookies: rec.Result().Cookies()})
	body := rec.Body.String()
	assert.Contains(t, body, "flash-error")
	assert.Contains(t, body, "invalid quantity")
}

func TestRemoveClearAdvanceCustomer(t *testing.T) {
	f := newFixture(t)
	add := func(id string) {
		rec := f.do(t, f.srv.AddItem, request{method: http.MethodPost, target: "/cart/items", json: `{"product_id":"` + id + `","quantity":1}`})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	add("P1")
	add("P2")

	rec := f.do(t, f.srv.RemoveItem, request{method: http.MethodPost, target: "/cart/remove", json: `{"product_id":"P1"}`})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "item_removed", decode(t, rec)["change"].(map[string]any)["kind"])

	rec = f.do(t, f.srv.RemoveItem, request{method: http.MethodPost, target: "/cart/remove", json: `{"product_id":"P1"}`})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["change"])

	rec = f.do(t, f.srv.RemoveItem, request{method: http.MethodPost, target: "/cart/remove", json: `{}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, f.srv.ClearCart, request{method: http.MethodPost, target: "/cart/clear", json: "{}"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["cart"].(map[string]any)["empty"])

	rec = f.do(t, f.srv.AdvanceOrder, request{method: http.MethodPost, target: "/order/advance", json: "{}"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "20261017-002", decode(t, rec)["cart"].(map[string]any)["orderId"])

	rec = f.do(t, f.srv.SetCustomer, request{method: http.MethodPost, target: "/order/customer", form: url.Values{"customer": {" 王小明 "}}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = f.do(t, f.srv.Cart, request{method: http.MethodGet, target: "/api/cart"})
	out := decode(t, rec)
	assert.Equal(t, "王小明", out["customer"])
	assert.Equal(t, "20261017-002", out["orderId"])
}

func TestSummaryEndpoints(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, f.srv.AddItem, request{method: http.MethodPost, target: "/cart/items", json: `{"product_id":"007","quantity":2}`})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, f.srv.SummaryText, request{method: http.MethodGet, target: "/order/summary.txt"})
	require.Equal(t, http.StatusOK, rec.Code)
	text := rec.Body.String()
	assert.True(t, strings.HasPrefix(text, "📦 【Product Order Form】\n"))
	assert.Contains(t, text, "👤 Customer: (not provided)")
	assert.Contains(t, text, "🆔 Order No.: 20261017-001")
	assert.Contains(t, text, "• Royal Jelly x 2\n  (NT$ 5,520.5 / 241 SV)")
	assert.True(t, strings.HasSuffix(text, "⭐ Total Points: 241 SV"))

	rec = f.do(t, f.srv.ReceiptPDF, request{method: http.MethodGet, target: "/order/receipt.pdf"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))

	rec = f.do(t, f.srv.SummaryQR, request{method: http.MethodGet, target: "/order/qr.png"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "\x89PNG", rec.Body.String()[:4])
}

func TestReceiptPDF_SummaryTooLongForQR(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, f.srv.AddItem, request{method: http.MethodPost, target: "/cart/items", json: `{"product_id":"P1","quantity":1}`})
	require.Equal(t, http.StatusOK, rec.Code)
	name, err := json.Marshal(map[string]string{"name": strings.Repeat("王", 2000)})
	require.NoError(t, err)
	rec = f.do(t, f.srv.SetCustomer, request{method: http.MethodPost, target: "/order/customer", json: string(name)})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, f.srv.SummaryQR, request{method: http.MethodGet, target: "/order/qr.png"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = f.do(t, f.srv.ReceiptPDF, request{method: http.MethodGet, target: "/order/receipt.pdf"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
	warned := f.logs.FilterMessage("receipt without qr code").All()
	require.Len(t, warned, 1)
	assert.Equal(t, "20261017-001", warned[0].ContextMap()["order_id"])
}

func TestOrphanedLine(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Update(context.Background(), "sess-1", func(st *session.State) error {
		_, err := st.Cart.Add("GONE", 1)
		return err
	}))

	rec := f.do(t, f.srv.SummaryText, request{method: http.MethodGet, target: "/order/summary.txt", json: "{}"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "GONE", decode(t, rec)["productId"])

	rec = f.do(t, f.srv.Page, request{method: http.MethodGet, target: "/"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "no longer in the catalog")
	assert.Contains(t, body, "Remove GONE")
	assert.Contains(t, body, `<input type="hidden" name="product_id" value="GONE">`)
	assert.NotContains(t, body, `id="summary"`)

	rec = f.do(t, f.srv.Cart, request{method: http.MethodGet, target: "/api/cart"})
	assert.Equal(t, []any{"GONE"}, decode(t, rec)["orphans"])
}

func TestCatalogAPI(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, f.srv.Catalog, request{method: http.MethodGet, target: "/api/catalog?category=Health"})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.EqualValues(t, 2, out["count"])

	rec = f.do(t, f.srv.Categories, request{method: http.MethodGet, target: "/api/categories"})
	var cats []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	assert.Equal(t, []string{"All", "Drinks", "Health"}, cats)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
	assert.Equal(t, http.StatusConflict, statusFor(session.ErrConflict))
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil), nil)
	assert.Equal(t, "200", rec.Body.String())
}
