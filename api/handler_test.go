package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pos_ledger/internal/metrics"
	"pos_ledger/internal/sales"
)

type testServer struct {
	router *gin.Engine
	store  *sales.LocalStorage
	svc    *sales.Service
	cookie *http.Cookie
}

// appendFailingStore rejects row appends below the header.
type appendFailingStore struct{ *sales.LocalStorage }

func (s appendFailingStore) AppendValues(ctx context.Context, id, rng string, rows [][]any) error {
	if strings.HasSuffix(rng, "!A2") {
		return errors.New("backend unavailable")
	}
	return s.LocalStorage.AppendValues(ctx, id, rng, rows)
}

func newTestServer(t *testing.T, wrap func(*sales.LocalStorage) sales.Store) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := sales.NewLocalStorage()
	require.NoError(t, st.Put("reference", "Menu!E8", [][]any{{"Spring", "Autumn"}}))
	require.NoError(t, st.Put("reference", "Menu!C9", [][]any{{"A1"}, {"B2"}, {"COUPON"}}))
	require.NoError(t, st.Put("reference", "Menu!E9", [][]any{{500, 800}, {300, 350}, {-100, -100}}))

	var store sales.Store = st
	if wrap != nil {
		store = wrap(st)
	}
	logger := zaptest.NewLogger(t)
	m := metrics.NewManager()
	prices := sales.NewPriceResolver(store, "reference", sales.DefaultLayout("Menu"))
	svc := sales.NewService(metrics.InstrumentStore(store, m), "ledger", prices, logger, sales.WithObserver(m))

	router := gin.New()
	InitRoutes(router, Dependencies{Service: svc, Metrics: m, Logger: logger})
	return &testServer{router: router, store: st, svc: svc}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case url.Values:
		req = httptest.NewRequest(method, path, strings.NewReader(b.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "pos_session" {
			s.cookie = c
		}
	}
	return w
}

func (s *testServer) selectEvents(t *testing.T) {
	t.Helper()
	w := s.do(t, http.MethodPut, "/session/ledger-event", map[string]string{"event_name": "Spring Fair"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPut, "/session/pricing-event", map[string]string{"price_event": "Spring"})
	require.Equal(t, http.StatusOK, w.Code)
}

func saleForm(items, quantities string) url.Values {
	return url.Values{
		"sales":          {items},
		"quantities":     {quantities},
		"gender":         {"female"},
		"age_group":      {"20s"},
		"features":       {"hat"},
		"payment_method": {"cash"},
	}
}

func TestSalesHappyPath_FullFlow(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("GET_Overview_Unset", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/events", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var ov sales.Overview
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ov))
		assert.Equal(t, []string{"Spring", "Autumn"}, ov.PricingEvents)
		assert.Empty(t, ov.LedgerEvent)
		assert.Equal(t, 1, ov.NextCustomerNumber)
		require.NotNil(t, s.cookie, "session cookie issued")
	})

	s.selectEvents(t)

	t.Run("POST_RecordSale", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/sales", saleForm("A1,A1", "2,1"))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var receipt sales.Receipt
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &receipt))
		assert.Equal(t, sales.Receipt{CustomerID: 1, Total: 1500, Rows: 3}, receipt)

		rows, err := s.store.GetValues(context.Background(), "ledger", "'Spring Fair'!A1:G10")
		require.NoError(t, err)
		assert.Len(t, rows, 4)
	})

	t.Run("POST_RecordSale_JSON", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/sales", map[string]string{
			"sales": "B2", "quantities": "2", "gender": "male", "age_group": "40s", "payment_method": "card",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.JSONEq(t, `{"customer_id":2,"total":600,"rows":2}`, w.Body.String())
	})

	t.Run("GET_Overview_Selected", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/events", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var ov sales.Overview
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ov))
		assert.Equal(t, "Spring Fair", ov.LedgerEvent)
		assert.Equal(t, "Spring", ov.PricingEvent)
		assert.Equal(t, 3, ov.NextCustomerNumber)
	})

	t.Run("POST_Reset", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/session/reset", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"selection":{"ledger_event":"","pricing_event":""},"next_customer_number":1}`, w.Body.String())
	})
}

func TestRecordSale_DiscountItem(t *testing.T) {
	s := newTestServer(t, nil)
	s.selectEvents(t)

	w := s.do(t, http.MethodPost, "/sales", saleForm("COUPON", "1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"customer_id":1,"total":-100,"rows":1}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/metrics", nil)
	assert.Contains(t, w.Body.String(), "pos_ledger_sales_amount -100")
}

func TestRecordSale_Errors(t *testing.T) {
	t.Run("no selection", func(t *testing.T) {
		s := newTestServer(t, nil)
		w := s.do(t, http.MethodPost, "/sales", saleForm("A1", "1"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, s.svc.Sequence().Current())
	})

	t.Run("non-integer quantity", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.selectEvents(t)
		w := s.do(t, http.MethodPost, "/sales", saleForm("A1,B2", "x,2"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "not an integer")
		assert.Equal(t, 0, s.svc.Sequence().Current())
	})

	t.Run("unknown item", func(t *testing.T) {
		s := newTestServer(t, nil)
		s.selectEvents(t)
		w := s.do(t, http.MethodPost, "/sales", saleForm("A1,Q7", "1,1"))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "Q7")
		assert.Equal(t, 0, s.svc.Sequence().Current())
	})

	t.Run("append failure", func(t *testing.T) {
		s := newTestServer(t, func(st *sales.LocalStorage) sales.Store { return appendFailingStore{st} })
		s.selectEvents(t)
		w := s.do(t, http.MethodPost, "/sales", saleForm("A1", "1"))
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.JSONEq(t, `{"error":"failed to write to the ledger","customer_id":1}`, w.Body.String())
		assert.Equal(t, 1, s.svc.Sequence().Current())
	})

	t.Run("malformed JSON", func(t *testing.T) {
		s := newTestServer(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSessionsAreIndependent(t *testing.T) {
	s := newTestServer(t, nil)
	s.selectEvents(t)

	other := &testServer{router: s.router}
	w := other.do(t, http.MethodGet, "/events", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var ov sales.Overview
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ov))
	assert.Empty(t, ov.LedgerEvent)
	assert.Empty(t, ov.PricingEvent)
}

func TestPingAndMetrics(t *testing.T) {
	s := newTestServer(t, nil)
	s.selectEvents(t)
	s.do(t, http.MethodPost, "/sales", saleForm("A1", "1"))

	w := s.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pos_ledger_sales_recorded_total 1")
	assert.Contains(t, w.Body.String(), `pos_ledger_store_calls_total{op="append_values",outcome="ok"}`)
}
