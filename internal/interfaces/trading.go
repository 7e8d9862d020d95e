package interfaces

import (
	"context"
	"encoding/json"

	"OrderRelay/internal/model"
)

// TradingClient 已认证的 CLOB 交易客户端（签名下单、查询、撤单）
type TradingClient interface {
	// SubmitOrder 签名并提交 GTC 限价单
	SubmitOrder(ctx context.Context, req *model.SubmitRequest) (*model.SubmitResult, error)
	// GetOrder 单笔订单，原样返回上游 JSON
	GetOrder(ctx context.Context, orderID string) (json.RawMessage, error)
	// OpenOrders 当前账户全部挂单（已翻页合并）
	OpenOrders(ctx context.Context) (json.RawMessage, error)
	// CancelOrder 撤销单笔订单
	CancelOrder(ctx context.Context, orderID string) (json.RawMessage, error)
}

// VenueREST CLOB 公共 REST（x-api-key），用于兜底查询与成交记录
type VenueREST interface {
	Order(ctx context.Context, orderID string) (json.RawMessage, error)
	OpenOrders(ctx context.Context, address string) (json.RawMessage, error)
	Trades(ctx context.Context, address string, limit int) (json.RawMessage, error)
}
