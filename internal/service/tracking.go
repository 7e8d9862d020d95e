package service

import (
	"context"
	"encoding/json"
	"strings"

	"OrderRelay/internal/config"
	"OrderRelay/internal/interfaces"
	"OrderRelay/internal/metrics"
	"OrderRelay/internal/model"

	"github.com/sirupsen/logrus"
)

const (
	DefaultFillsLimit = 50
	MaxFillsLimit     = 500
)

// TrackingService 订单状态、挂单、成交、撤单
type TrackingService struct {
	cfg     config.TradingConfig
	trading interfaces.TradingClient
	rest    interfaces.VenueREST
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

func NewTrackingService(cfg config.TradingConfig, trading interfaces.TradingClient, rest interfaces.VenueREST, m *metrics.Metrics, logger *logrus.Logger) *TrackingService {
	return &TrackingService{cfg: cfg, trading: trading, rest: rest, metrics: m, logger: logger}
}

func (s *TrackingService) observe(operation, source string, err error) {
	if s.metrics != nil {
		s.metrics.TrackingCalls.WithLabelValues(operation, source, metrics.Result(err)).Inc()
	}
}

func (s *TrackingService) onFallback(operation string) func(error) {
	return func(err error) {
		s.logger.WithError(err).WithField("operation", operation).Warn("主路径失败，改用 REST 兜底")
		if s.metrics != nil {
			s.metrics.FallbacksTotal.WithLabelValues(operation).Inc()
		}
	}
}

// OrderStatus 交易客户端查询，失败走 REST /data/order/{id}
func (s *TrackingService) OrderStatus(ctx context.Context, orderID string) (json.RawMessage, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, model.NewValidationError("order_id is required")
	}
	strategy := FallbackStrategy[json.RawMessage]{
		Name: "order_status",
		Primary: func(ctx context.Context) (json.RawMessage, error) {
			out, err := s.trading.GetOrder(ctx, orderID)
			s.observe("order_status", "primary", err)
			return out, err
		},
		Secondary: func(ctx context.Context) (json.RawMessage, error) {
			out, err := s.rest.Order(ctx, orderID)
			s.observe("order_status", "fallback", err)
			return out, err
		},
		OnFallback: s.onFallback("order_status"),
	}
	return strategy.Run(ctx)
}

// OpenOrders 交易客户端查询，失败按地址走 REST /orders?status=OPEN
func (s *TrackingService) OpenOrders(ctx context.Context) (json.RawMessage, error) {
	strategy := FallbackStrategy[json.RawMessage]{
		Name: "orders_open",
		Primary: func(ctx context.Context) (json.RawMessage, error) {
			out, err := s.trading.OpenOrders(ctx)
			s.observe("orders_open", "primary", err)
			return out, err
		},
		Secondary: func(ctx context.Context) (json.RawMessage, error) {
			addr, err := TradeAddress(s.cfg)
			if err != nil {
				return nil, err
			}
			out, err := s.rest.OpenOrders(ctx, addr)
			s.observe("orders_open", "fallback", err)
			return out, err
		},
		OnFallback: s.onFallback("orders_open"),
	}
	return strategy.Run(ctx)
}

// Fills 成交记录，仅 REST，无兜底
func (s *TrackingService) Fills(ctx context.Context, limit int) (json.RawMessage, error) {
	if limit < 1 || limit > MaxFillsLimit {
		return nil, model.NewValidationError("limit must be between 1 and 500")
	}
	addr, err := TradeAddress(s.cfg)
	if err != nil {
		return nil, err
	}
	out, err := s.rest.Trades(ctx, addr, limit)
	s.observe("fills", "rest", err)
	return out, err
}

// CancelOrder 需要实盘配置就绪；不兜底、不重试
func (s *TrackingService) CancelOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, model.NewValidationError("order_id is required")
	}
	if err := CheckTradingReady(s.cfg); err != nil {
		return nil, err
	}
	out, err := s.trading.CancelOrder(ctx, orderID)
	s.observe("cancel_order", "primary", err)
	if err != nil {
		if model.KindOf(err) == "" {
			return nil, model.NewUpstreamError("cancel_order failed", 0, "", err)
		}
		return nil, err
	}
	s.logger.WithField("order_id", orderID).Info("撤单成功")
	return out, nil
}
