package polymarket

import (
	"bytes"
	"context"
	"encoding/json"

	"OrderRelay/internal/config"
	"OrderRelay/internal/interfaces"
	"OrderRelay/internal/model"
	"OrderRelay/internal/utils/httpclient"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

var _ interfaces.MarketDirectory = (*GammaClient)(nil)

// GammaClient Gamma 市场目录客户端，只读
type GammaClient struct {
	http   *resty.Client
	logger *logrus.Logger
}

// NewGammaClient 创建 Gamma 客户端
func NewGammaClient(cfg *config.Config, logger *logrus.Logger) *GammaClient {
	return &GammaClient{
		http:   httpclient.NewRESTClient(cfg.HTTP, cfg.Trading.GammaHost, logger),
		logger: logger,
	}
}

// MarketsBySlug GET /markets?slug=<slug>
// 非 2xx 返回 Upstream 错误；响应为空、非数组或无法解析时返回空切片
func (g *GammaClient) MarketsBySlug(ctx context.Context, slug string) ([]model.RawMarketRecord, error) {
	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParam("slug", slug).
		Get("/markets")
	if err := httpclient.CheckResponse("gamma markets", resp, err); err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 || body[0] != '[' {
		g.logger.WithField("slug", slug).Warn("Gamma 返回非数组响应")
		return []model.RawMarketRecord{}, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		g.logger.WithError(err).WithField("slug", slug).Warn("解析 Gamma 响应失败")
		return []model.RawMarketRecord{}, nil
	}

	records := make([]model.RawMarketRecord, 0, len(items))
	for i, it := range items {
		var rec model.RawMarketRecord
		if err := json.Unmarshal(it, &rec); err != nil {
			// 单条字段类型异常不影响其它记录
			g.logger.WithError(err).WithFields(logrus.Fields{"slug": slug, "index": i}).Debug("跳过无法解析的市场记录")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
