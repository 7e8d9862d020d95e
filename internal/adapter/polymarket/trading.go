package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"OrderRelay/internal/config"
	"OrderRelay/internal/interfaces"
	"OrderRelay/internal/model"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/clobtypes"
	"github.com/sirupsen/logrus"
)

// Ensure TradingAdapter implements interfaces.TradingClient
var _ interfaces.TradingClient = (*TradingAdapter)(nil)

// TradingAdapter Polymarket 交易客户端，下单、查询与撤单均经由 ClobSession
type TradingAdapter struct {
	cfg    *config.Config
	logger *logrus.Logger

	mu      sync.Mutex
	session *ClobSession
}

// NewTradingAdapter 创建交易适配器；私钥与凭证在首次使用时初始化
func NewTradingAdapter(cfg *config.Config, logger *logrus.Logger) *TradingAdapter {
	return &TradingAdapter{cfg: cfg, logger: logger}
}

// Session 延迟初始化 CLOB 会话
func (t *TradingAdapter) Session() (*ClobSession, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session != nil {
		return t.session, nil
	}
	s, err := NewClobSession(t.cfg, t.logger)
	if err != nil {
		return nil, err
	}
	t.session = s
	return s, nil
}

// orderReceipt POST /order 回执，id 字段在不同版本中为 orderID 或 id
type orderReceipt struct {
	Success  *bool  `json:"success"`
	OrderID  string `json:"orderID"`
	ID       string `json:"id"`
	Status   string `json:"status"`
	ErrorMsg string `json:"errorMsg"`
}

// SubmitOrder 构建、签名并提交 GTC 限价单；maker 与签名类型取会话默认值
func (t *TradingAdapter) SubmitOrder(ctx context.Context, req *model.SubmitRequest) (*model.SubmitResult, error) {
	if req == nil {
		return nil, fmt.Errorf("SubmitRequest is nil")
	}
	s, err := t.Session()
	if err != nil {
		return nil, err
	}
	client, err := s.Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取 CLOB API 凭证失败: %w", err)
	}

	// TODO: negRisk 市场需走 neg-risk exchange 合约签名，SDK 目前固定使用主 exchange
	if req.NegRisk {
		t.logger.WithField("token_id", req.TokenID).Warn("negRisk 市场按普通市场下单")
	}
	order, err := clob.NewOrderBuilder(client, s.Signer()).
		TokenID(req.TokenID).
		Side(string(req.Side)).
		Price(req.Price).
		Size(req.Size).
		TickSize(req.TickSize).
		OrderType(clobtypes.OrderTypeGTC).
		BuildSignableWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("构建订单失败: %w", err)
	}

	raw, err := s.PostOrder(ctx, order)
	if err != nil {
		return nil, err
	}
	var receipt orderReceipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		t.logger.WithError(err).WithField("body", string(raw)).Warn("Polymarket 下单回执无法解析")
	}
	if receipt.Success != nil && !*receipt.Success {
		return nil, fmt.Errorf("Polymarket 拒绝订单: %s", receipt.ErrorMsg)
	}
	orderID := receipt.OrderID
	if orderID == "" {
		orderID = receipt.ID
	}

	fields := logrus.Fields{
		"order_id": orderID,
		"token_id": req.TokenID,
		"side":     req.Side,
		"price":    req.Price,
		"size":     req.Size,
		"maker":    order.Order.Maker.Hex(),
	}
	if orderID == "" {
		t.logger.WithFields(fields).Warn("Polymarket 已接受订单但回执中无 order id")
	} else {
		t.logger.WithFields(fields).Info("Polymarket 下单成功")
	}
	return &model.SubmitResult{OrderID: orderID, Status: receipt.Status, Raw: raw}, nil
}

// GetOrder 单笔订单（L2）
func (t *TradingAdapter) GetOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	s, err := t.Session()
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

// OpenOrders 全部挂单（L2）
func (t *TradingAdapter) OpenOrders(ctx context.Context) (json.RawMessage, error) {
	s, err := t.Session()
	if err != nil {
		return nil, err
	}
	return s.OpenOrders(ctx)
}

// CancelOrder 撤单（L2）
func (t *TradingAdapter) CancelOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	s, err := t.Session()
	if err != nil {
		return nil, err
	}
	return s.CancelOrder(ctx, orderID)
}
