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

// TokenResolver slug + outcome -> token id
type TokenResolver interface {
	Resolve(ctx context.Context, slug, outcomeName string) (*model.MarketInfo, error)
}

// OrderGateway 下单入口：dry-run 仅归一化，live 解析 token 后签名提交
type OrderGateway struct {
	cfg      config.TradingConfig
	resolver TokenResolver
	trading  interfaces.TradingClient
	metrics  *metrics.Metrics
	logger   *logrus.Logger
}

func NewOrderGateway(cfg config.TradingConfig, resolver TokenResolver, trading interfaces.TradingClient, m *metrics.Metrics, logger *logrus.Logger) *OrderGateway {
	return &OrderGateway{cfg: cfg, resolver: resolver, trading: trading, metrics: m, logger: logger}
}

// PlaceOrder dryRun 为 true 时不访问交易客户端；默认也不访问目录服务
func (g *OrderGateway) PlaceOrder(ctx context.Context, req *model.OrderRequest, dryRun bool) (result *model.PlaceOrderResult, err error) {
	mode := "live"
	if dryRun {
		mode = "dry_run"
	}
	defer func() {
		if g.metrics != nil && req != nil {
			side, _ := model.ParseSide(req.Side)
			g.metrics.OrdersTotal.WithLabelValues(mode, string(side), metrics.Result(err)).Inc()
		}
	}()

	if req == nil {
		return nil, model.NewValidationError("request body is required")
	}
	if !req.HasToken() && !req.HasSlugOutcome() {
		return nil, model.NewValidationError("provide either token_id or slug + outcome")
	}
	if dryRun {
		return g.dryRun(ctx, req)
	}
	return g.live(ctx, req)
}

func (g *OrderGateway) dryRun(ctx context.Context, req *model.OrderRequest) (*model.PlaceOrderResult, error) {
	norm, err := normalizeRequest(req)
	if err != nil {
		return nil, err
	}
	norm.TokenID = strings.TrimSpace(req.TokenID)
	norm.Slug = req.Slug
	norm.Outcome = req.Outcome

	skipped := !req.HasToken()
	if skipped && g.cfg.DryRunResolve {
		info, err := g.resolver.Resolve(ctx, req.Slug, req.Outcome)
		if err != nil {
			return nil, err
		}
		norm.TokenID, norm.Slug, norm.Outcome = info.TokenID, info.MarketSlug, info.OutcomeName
		skipped = false
	}

	below := BelowMinNotional(norm)
	if below {
		g.logger.WithFields(logrus.Fields{"notional": norm.Notional, "client_tag": req.ClientTag}).Info("dry-run 订单低于最小名义金额，实盘将被拒绝")
	}
	return &model.PlaceOrderResult{
		DryRun:            true,
		Normalized:        norm,
		TokenID:           norm.TokenID,
		Slug:              norm.Slug,
		Outcome:           norm.Outcome,
		PriceProb:         norm.PriceProb,
		Size:              norm.Size,
		ResolutionSkipped: skipped,
		BelowMinNotional:  below,
	}, nil
}

func (g *OrderGateway) live(ctx context.Context, req *model.OrderRequest) (*model.PlaceOrderResult, error) {
	if err := CheckTradingReady(g.cfg); err != nil {
		return nil, err
	}

	tokenID := strings.TrimSpace(req.TokenID)
	slug, outcome := req.Slug, req.Outcome
	var info *model.MarketInfo
	if tokenID == "" {
		var err error
		info, err = g.resolver.Resolve(ctx, req.Slug, req.Outcome)
		if err != nil {
			return nil, err
		}
		tokenID, slug, outcome = info.TokenID, info.MarketSlug, info.OutcomeName
	}

	norm, err := normalizeRequest(req)
	if err != nil {
		return nil, err
	}
	if err := CheckMinNotional(norm); err != nil {
		return nil, err
	}
	norm.TokenID, norm.Slug, norm.Outcome = tokenID, slug, outcome

	submit := &model.SubmitRequest{
		TokenID:   tokenID,
		Side:      norm.Side,
		Price:     norm.PriceProb,
		Size:      norm.Size,
		TickSize:  TickSizeString,
		ClientTag: req.ClientTag,
	}
	if info != nil {
		submit.NegRisk = info.NegRisk
	}
	res, err := g.trading.SubmitOrder(ctx, submit)
	if err != nil {
		g.logger.WithError(err).WithFields(logrus.Fields{"token_id": tokenID, "side": norm.Side}).Error("实盘下单失败")
		return nil, model.NewSubmissionError(err)
	}

	return &model.PlaceOrderResult{
		DryRun:     false,
		Normalized: norm,
		Result:     submitPayload(res),
		TokenID:    tokenID,
		Slug:       slug,
		Outcome:    outcome,
		PriceProb:  norm.PriceProb,
		Size:       norm.Size,
	}, nil
}

// submitPayload 优先返回上游原始回执
func submitPayload(res *model.SubmitResult) json.RawMessage {
	if len(res.Raw) > 0 {
		return res.Raw
	}
	b, _ := json.Marshal(res)
	return b
}

// normalizeRequest 缺失 price_cents / size 视为校验错误
func normalizeRequest(req *model.OrderRequest) (*model.NormalizedOrder, error) {
	if req.PriceCents == nil {
		return nil, model.NewValidationError("price_cents is required")
	}
	if req.Size == nil {
		return nil, model.NewValidationError("size is required")
	}
	norm, err := Normalize(*req.PriceCents, req.Side, *req.Size)
	if err != nil {
		return nil, err
	}
	norm.ClientTag = req.ClientTag
	return norm, nil
}
