package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"OrderRelay/internal/config"
	"OrderRelay/internal/logging"
	"OrderRelay/internal/metrics"
	"OrderRelay/internal/model"
	"OrderRelay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey   = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testEOA   = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testProxy = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

type stubDirectory struct {
	records []model.RawMarketRecord
	err     error
}

func (s *stubDirectory) MarketsBySlug(ctx context.Context, slug string) ([]model.RawMarketRecord, error) {
	return s.records, s.err
}

type stubTrading struct {
	openErr error
}

func (s *stubTrading) SubmitOrder(ctx context.Context, req *model.SubmitRequest) (*model.SubmitResult, error) {
	return &model.SubmitResult{OrderID: "0xorder", Raw: json.RawMessage(`{"orderID":"0xorder"}`)}, nil
}

func (s *stubTrading) GetOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	return json.RawMessage(`{"id":"` + orderID + `"}`), nil
}

func (s *stubTrading) OpenOrders(ctx context.Context) (json.RawMessage, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return json.RawMessage(`[{"id":"0x1"}]`), nil
}

func (s *stubTrading) CancelOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	return json.RawMessage(`{"canceled":["` + orderID + `"]}`), nil
}

type stubREST struct{}

func (stubREST) Order(ctx context.Context, orderID string) (json.RawMessage, error) {
	return nil, model.NewUpstreamError("clob order returned 404", 404, "not found", nil)
}

func (stubREST) OpenOrders(ctx context.Context, address string) (json.RawMessage, error) {
	return nil, model.NewUpstreamError("clob orders returned 503", 503, "unavailable", nil)
}

func (stubREST) Trades(ctx context.Context, address string, limit int) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{CORSOrigins: []string{"*"}},
		Trading: config.TradingConfig{
			ClobHost:      "https://clob.polymarket.com",
			ChainID:       137,
			SignatureType: 2,
			DryRun:        true,
		},
	}
}

func newTestRouter(cfg *config.Config, dir *stubDirectory, trading *stubTrading) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logging.Discard()
	m := metrics.New()
	resolver := service.NewMarketResolver(dir, logger)
	return NewRouter(Deps{
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Gateway:  service.NewOrderGateway(cfg.Trading, resolver, trading, m, logger),
		Tracking: service.NewTrackingService(cfg.Trading, trading, stubREST{}, m, logger),
		Resolver: resolver,
	})
}

func do(r http.Handler, method, target, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestPlaceOrder_DryRun(t *testing.T) {
	r := newTestRouter(testConfig(), &stubDirectory{}, &stubTrading{})

	w, body := do(r, http.MethodPost, "/place_order",
		`{"token_id":"abc","side":"buy","price_cents":34.5,"size":10,"client_tag":"row-7"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, true, body["dry_run"])

	normalized := body["normalized"].(map[string]any)
	assert.Equal(t, "BUY", normalized["side"])
	assert.Equal(t, 0.34, normalized["price_prob"])
	assert.Equal(t, 10.0, normalized["size"])
	assert.Equal(t, "row-7", normalized["client_tag"])
	assert.NotEmpty(t, w.Header().Get(headerRequestID))
}

func TestPlaceOrder_ValidationErrors(t *testing.T) {
	r := newTestRouter(testConfig(), &stubDirectory{}, &stubTrading{})

	w, body := do(r, http.MethodPost, "/place_order", `{not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, string(model.KindValidation), body["kind"])

	w, body = do(r, http.MethodPost, "/place_order", `{"token_id":"abc","side":"BUY","price_cents":120,"size":10}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "price out of range", body["error"])

	w, _ = do(r, http.MethodPost, "/place_order", `{"slug":"rain","side":"BUY","price_cents":50,"size":10}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSharedSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Server.SharedSecret = "s3cret"
	r := newTestRouter(cfg, &stubDirectory{}, &stubTrading{})
	order := `{"token_id":"abc","side":"BUY","price_cents":50,"size":10}`

	w, body := do(r, http.MethodPost, "/place_order", order, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized (x-api-key mismatch)", body["error"])

	w, _ = do(r, http.MethodPost, "/place_order", order, map[string]string{"x-api-key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(r, http.MethodPost, "/place_order", order, map[string]string{"x-api-key": "s3cret"})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(r, http.MethodGet, "/orders_open", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 无需鉴权的接口
	w, _ = do(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSharedSecretUnsetAllowsAll(t *testing.T) {
	r := newTestRouter(testConfig(), &stubDirectory{}, &stubTrading{})
	w, body := do(r, http.MethodGet, "/orders_open", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["orders"], 1)
}

func TestErrorMapping(t *testing.T) {
	cfg := testConfig()
	cfg.Trading.ProxyAddress = testProxy
	r := newTestRouter(cfg, &stubDirectory{}, &stubTrading{openErr: model.NewUpstreamError("l2 down", 500, "", nil)})

	w, body := do(r, http.MethodGet, "/orders_open", "", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, string(model.KindUpstream), body["kind"])
	assert.Contains(t, body["error"], "orders_open failed")
	assert.Equal(t, 503.0, body["upstream_status"])
	assert.Equal(t, "unavailable", body["upstream_body"])

	w, _ = do(r, http.MethodGet, "/gamma_preview?slug=nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(r, http.MethodGet, "/gamma_preview", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(r, http.MethodGet, "/fills?limit=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(r, http.MethodGet, "/fills?limit=501", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body = do(r, http.MethodGet, "/fills", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, body["fills"])

	// 未配置私钥时撤单为配置错误
	w, body = do(r, http.MethodGet, "/cancel_order?order_id=0x1", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, string(model.KindConfiguration), body["kind"])

	w, _ = do(r, http.MethodGet, "/order_status", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolutionErrorCarriesAvailable(t *testing.T) {
	var recs []model.RawMarketRecord
	require.NoError(t, json.Unmarshal([]byte(`[{"outcomes":["Yes","No"],"clobTokenIds":["1","2"]}]`), &recs))
	cfg := testConfig()
	cfg.Trading.DryRunResolve = true
	r := newTestRouter(cfg, &stubDirectory{records: recs}, &stubTrading{})

	w, body := do(r, http.MethodPost, "/place_order", `{"slug":"rain","outcome":"Maybe","side":"BUY","price_cents":50,"size":10}`, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []any{"Yes", "No"}, body["available"])
}

func TestHealthConfigWhoAmI(t *testing.T) {
	cfg := testConfig()
	cfg.Trading.PrivateKey = testKey
	cfg.Trading.ProxyAddress = testProxy
	cfg.Trading.APIKey = "key-1234567890"
	r := newTestRouter(cfg, &stubDirectory{}, &stubTrading{})

	_, body := do(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, map[string]any{"ok": true, "service": "polymarket-order-service", "dry_run": true}, body)

	_, body = do(r, http.MethodGet, "/config", "", nil)
	assert.Equal(t, true, body["has_proxy"])
	assert.Equal(t, strings.Repeat("*", 36)+"dc79C8", body["proxy_masked"])
	assert.Equal(t, false, body["auth_required"])
	assert.Equal(t, 137.0, body["chain_id"])
	assert.NotContains(t, rawGet(r, "/config"), testKey)

	_, body = do(r, http.MethodGet, "/whoami", "", nil)
	assert.Equal(t, testEOA, body["eoa_address"])
	assert.Equal(t, testProxy, body["proxy_address"])
	assert.Equal(t, true, body["using_proxy"])
	assert.Equal(t, "********567890", body["api_key_masked"])
	assert.NotContains(t, rawGet(r, "/whoami"), "key-1234567890")
}

func TestWhoAmIWithoutKey(t *testing.T) {
	r := newTestRouter(testConfig(), &stubDirectory{}, &stubTrading{})
	_, body := do(r, http.MethodGet, "/whoami", "", nil)
	assert.Nil(t, body["eoa_address"])
	assert.Nil(t, body["proxy_address"])
	assert.Nil(t, body["api_key_masked"])
	assert.Equal(t, false, body["using_proxy"])
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(testConfig(), &stubDirectory{}, &stubTrading{})
	do(r, http.MethodGet, "/health", "", nil)
	body := rawGet(r, "/metrics")
	assert.Contains(t, body, `orderrelay_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestWithCORS(t *testing.T) {
	r := newTestRouter(testConfig(), &stubDirectory{}, &stubTrading{})
	h := WithCORS([]string{"https://docs.google.com"}, r)

	req := httptest.NewRequest(http.MethodOptions, "/place_order", nil)
	req.Header.Set("Origin", "https://docs.google.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "x-api-key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://docs.google.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

// rawGet 返回 GET 响应体原文
func rawGet(r http.Handler, target string) string {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec.Body.String()
}
