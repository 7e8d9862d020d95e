package interfaces

import (
	"context"

	"OrderRelay/internal/model"
)

// MarketDirectory 市场元数据目录（Gamma）
type MarketDirectory interface {
	// MarketsBySlug 按 slug 精确查询；空结果返回空切片
	MarketsBySlug(ctx context.Context, slug string) ([]model.RawMarketRecord, error)
}
