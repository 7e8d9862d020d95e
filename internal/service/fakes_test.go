package service

import (
	"context"
	"encoding/json"
	"sync"

	"OrderRelay/internal/config"
	"OrderRelay/internal/model"
)

const (
	testKey   = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testEOA   = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	testProxy = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func readyTrading() config.TradingConfig {
	return config.TradingConfig{
		PrivateKey:    testKey,
		ProxyAddress:  testProxy,
		SignatureType: 2,
		ChainID:       137,
	}
}

type fakeDirectory struct {
	records []model.RawMarketRecord
	err     error
	calls   int
}

func (f *fakeDirectory) MarketsBySlug(ctx context.Context, slug string) ([]model.RawMarketRecord, error) {
	f.calls++
	return f.records, f.err
}

type fakeTrading struct {
	mu sync.Mutex

	submitted []*model.SubmitRequest
	submitErr error

	order    json.RawMessage
	orderErr error

	open    json.RawMessage
	openErr error

	cancelled  []string
	cancelErrs map[string]error
}

func (f *fakeTrading) SubmitOrder(ctx context.Context, req *model.SubmitRequest) (*model.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, req)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &model.SubmitResult{OrderID: "0xorder", Raw: json.RawMessage(`{"orderID":"0xorder","success":true}`)}, nil
}

func (f *fakeTrading) GetOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	return f.order, f.orderErr
}

func (f *fakeTrading) OpenOrders(ctx context.Context) (json.RawMessage, error) {
	return f.open, f.openErr
}

func (f *fakeTrading) CancelOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.cancelErrs[orderID]; err != nil {
		return nil, err
	}
	f.cancelled = append(f.cancelled, orderID)
	return json.RawMessage(`{"canceled":["` + orderID + `"]}`), nil
}

type fakeREST struct {
	order      json.RawMessage
	orderErr   error
	open       json.RawMessage
	openErr    error
	openAddr   string
	trades     json.RawMessage
	tradesAddr string
	tradesN    int
}

func (f *fakeREST) Order(ctx context.Context, orderID string) (json.RawMessage, error) {
	return f.order, f.orderErr
}

func (f *fakeREST) OpenOrders(ctx context.Context, address string) (json.RawMessage, error) {
	f.openAddr = address
	return f.open, f.openErr
}

func (f *fakeREST) Trades(ctx context.Context, address string, limit int) (json.RawMessage, error) {
	f.tradesAddr, f.tradesN = address, limit
	return f.trades, nil
}

func ptr(v float64) *float64 { return &v }
