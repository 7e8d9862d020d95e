package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"OrderRelay/internal/interfaces"
	"OrderRelay/internal/metrics"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// SweepResult 单轮撤单统计
type SweepResult struct {
	Found     int
	Cancelled int
	Failed    int
}

// CancelSweeper 拉取全部挂单并逐笔撤销；单笔失败不影响其它订单
type CancelSweeper struct {
	trading interfaces.TradingClient
	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

// NewCancelSweeper ratePerSec <= 0 时不限速
func NewCancelSweeper(trading interfaces.TradingClient, ratePerSec float64, m *metrics.Metrics, logger *logrus.Logger) *CancelSweeper {
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}
	return &CancelSweeper{
		trading: trading,
		limiter: rate.NewLimiter(limit, 1),
		metrics: m,
		logger:  logger,
	}
}

// SweepOnce 一轮：拉取挂单，逐笔撤销
func (s *CancelSweeper) SweepOnce(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	raw, err := s.trading.OpenOrders(ctx)
	if err != nil {
		return res, fmt.Errorf("拉取挂单失败: %w", err)
	}
	ids, err := extractOrderIDs(raw)
	if err != nil {
		return res, err
	}
	res.Found = len(ids)

	for _, id := range ids {
		if err := s.limiter.Wait(ctx); err != nil {
			return res, err
		}
		if _, err := s.trading.CancelOrder(ctx, id); err != nil {
			res.Failed++
			s.count("error")
			s.logger.WithError(err).WithField("order_id", id).Warn("撤单失败，继续处理其它订单")
			continue
		}
		res.Cancelled++
		s.count("ok")
		s.logger.WithField("order_id", id).Info("已撤单")
	}
	return res, nil
}

func (s *CancelSweeper) count(result string) {
	if s.metrics != nil {
		s.metrics.SweepCancels.WithLabelValues(result).Inc()
	}
}

// Run 立即执行一轮，之后按固定间隔执行，直到 ctx 取消；每轮错误只记录
func (s *CancelSweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		res, err := s.SweepOnce(ctx)
		if err != nil && ctx.Err() == nil {
			s.logger.WithError(err).Error("本轮撤单失败，等待下一轮")
		} else if err == nil {
			s.logger.WithFields(logrus.Fields{
				"found":     res.Found,
				"cancelled": res.Cancelled,
				"failed":    res.Failed,
			}).Info("本轮撤单完成")
		}
		select {
		case <-ctx.Done():
			s.logger.Info("撤单循环退出")
			return
		case <-ticker.C:
		}
	}
}

// extractOrderIDs 兼容数组或 {"data": [...]}，订单 id 字段为 id / orderID / order_id
func extractOrderIDs(raw json.RawMessage) ([]string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	var items []map[string]any
	if raw[0] == '{' {
		var page struct {
			Data []map[string]any `json:"data"`
		}
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("解析挂单列表失败: %w", err)
		}
		items = page.Data
	} else if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("解析挂单列表失败: %w", err)
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		for _, key := range []string{"id", "orderID", "order_id"} {
			if v, ok := it[key].(string); ok && v != "" {
				ids = append(ids, v)
				break
			}
		}
	}
	return ids, nil
}
