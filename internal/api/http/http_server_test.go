package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-settlement/internal/adapter/in_memory"
	"stock-settlement/internal/api/dto"
	"stock-settlement/internal/core"
	"stock-settlement/internal/worker"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router *gin.Engine
	repo   *in_memory.MemoryRepo
}

func newSyncFixture(t *testing.T) *fixture {
	t.Helper()
	repo := in_memory.NewMemoryRepo()
	quotes := in_memory.NewQuoteSource()
	quotes.SetPrice("AAPL", decimal.NewFromFloat(221.15))
	engine := core.NewSettlementEngine(repo, nil)
	intake := core.NewIntake(repo, quotes, nil, core.NewSyncExecutor(engine))
	server := NewHTTPServer(intake, quotes, nil)
	return &fixture{router: server.Router(), repo: repo}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) placeOrder(t *testing.T, id, symbol, side string, qty int64) *httptest.ResponseRecorder {
	t.Helper()
	return f.do(t, http.MethodPost, "/orders", dto.PlaceOrderRequest{
		OrderID: id, Symbol: symbol, Side: side, Quantity: qty,
	})
}

func (f *fixture) portfolio(t *testing.T) dto.GetPortfolioResponse {
	t.Helper()
	rec := f.do(t, http.MethodGet, "/portfolio", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.GetPortfolioResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestPlaceOrderEndToEndSyncScenario(t *testing.T) {
	f := newSyncFixture(t)

	// Buy 10 AAPL: executed inline, portfolio shows AAPL:10.
	rec := f.placeOrder(t, "o1", "AAPL", "BUY", 10)
	require.Equal(t, http.StatusOK, rec.Code)
	var placed dto.PlaceOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
	assert.Equal(t, "o1", placed.OrderID)
	assert.Equal(t, "EXECUTED", placed.Status)

	p := f.portfolio(t)
	require.Len(t, p.Holdings, 1)
	assert.Equal(t, dto.Holding{Symbol: "AAPL", Quantity: 10}, p.Holdings[0])

	// Sell 15: rejected, portfolio unchanged.
	rec = f.placeOrder(t, "o2", "AAPL", "SELL", 15)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
	assert.Equal(t, "REJECTED", placed.Status)

	p = f.portfolio(t)
	require.Len(t, p.Holdings, 1)
	assert.Equal(t, dto.Holding{Symbol: "AAPL", Quantity: 10}, p.Holdings[0])

	// Sell 10: executed, AAPL drained to zero.
	rec = f.placeOrder(t, "o3", "AAPL", "SELL", 10)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
	assert.Equal(t, "EXECUTED", placed.Status)

	p = f.portfolio(t)
	require.Len(t, p.Holdings, 1)
	assert.Equal(t, dto.Holding{Symbol: "AAPL", Quantity: 0}, p.Holdings[0])
}

func TestPlaceOrderHTTPErrorMapping(t *testing.T) {
	f := newSyncFixture(t)

	tests := []struct {
		name     string
		req      dto.PlaceOrderRequest
		wantCode int
	}{
		{"blank order id", dto.PlaceOrderRequest{Symbol: "AAPL", Side: "BUY", Quantity: 1}, http.StatusBadRequest},
		{"blank symbol", dto.PlaceOrderRequest{OrderID: "x1", Side: "BUY", Quantity: 1}, http.StatusBadRequest},
		{"zero quantity", dto.PlaceOrderRequest{OrderID: "x1", Symbol: "AAPL", Side: "BUY"}, http.StatusBadRequest},
		{"bad side", dto.PlaceOrderRequest{OrderID: "x1", Symbol: "AAPL", Side: "HOLD", Quantity: 1}, http.StatusBadRequest},
		{"unknown symbol", dto.PlaceOrderRequest{OrderID: "x1", Symbol: "TSLA", Side: "BUY", Quantity: 1}, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/orders", tc.req)
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

func TestPlaceOrderDuplicateConflicts(t *testing.T) {
	f := newSyncFixture(t)

	rec := f.placeOrder(t, "o1", "AAPL", "BUY", 10)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.placeOrder(t, "o1", "AAPL", "BUY", 10)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var errResp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "AlreadyExists", errResp.Code)
}

func TestGetOrderEndpoint(t *testing.T) {
	f := newSyncFixture(t)

	rec := f.do(t, http.MethodGet, "/orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusOK, f.placeOrder(t, "o1", "AAPL", "BUY", 3).Code)

	rec = f.do(t, http.MethodGet, "/orders/o1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.GetOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "o1", resp.Order.OrderID)
	assert.Equal(t, "EXECUTED", resp.Order.Status)
	assert.Equal(t, int64(3), resp.Order.Quantity)
}

func TestGetQuoteEndpoint(t *testing.T) {
	f := newSyncFixture(t)

	rec := f.do(t, http.MethodGet, "/quotes/AAPL", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.GetQuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "AAPL", resp.Symbol)
	assert.True(t, resp.Price.Equal(decimal.NewFromFloat(221.15)))

	rec = f.do(t, http.MethodGet, "/quotes/TSLA", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlaceOrderAsyncModeSettlesOutOfBand(t *testing.T) {
	repo := in_memory.NewMemoryRepo()
	quotes := in_memory.NewQuoteSource()
	quotes.SetPrice("AAPL", decimal.NewFromFloat(221.15))
	eventLog := in_memory.NewEventLog(2)
	engine := core.NewSettlementEngine(repo, nil)
	intake := core.NewIntake(repo, quotes, nil, core.NewAsyncExecutor(eventLog))
	f := &fixture{router: NewHTTPServer(intake, quotes, nil).Router(), repo: repo}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := worker.New(repo, engine, eventLog)
	go func() { _ = w.Run(ctx) }()

	rec := f.placeOrder(t, "o1", "AAPL", "BUY", 10)
	require.Equal(t, http.StatusOK, rec.Code)
	var placed dto.PlaceOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &placed))
	assert.Equal(t, "ACCEPTED", placed.Status)

	// The caller observes settlement by polling the read surface.
	require.Eventually(t, func() bool {
		rec := f.do(t, http.MethodGet, "/orders/o1", nil)
		if rec.Code != http.StatusOK {
			return false
		}
		var resp dto.GetOrderResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			return false
		}
		return resp.Order.Status == "EXECUTED"
	}, 2*time.Second, 10*time.Millisecond)

	p := f.portfolio(t)
	require.Len(t, p.Holdings, 1)
	assert.Equal(t, dto.Holding{Symbol: "AAPL", Quantity: 10}, p.Holdings[0])
}
