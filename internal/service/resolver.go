package service

import (
	"context"
	"strings"

	"OrderRelay/internal/interfaces"
	"OrderRelay/internal/model"

	"github.com/sirupsen/logrus"
)

var defaultOutcomes = []string{"Yes", "No"}

// MarketResolver slug + outcome 名称 -> token id
type MarketResolver struct {
	directory interfaces.MarketDirectory
	logger    *logrus.Logger
}

func NewMarketResolver(directory interfaces.MarketDirectory, logger *logrus.Logger) *MarketResolver {
	return &MarketResolver{directory: directory, logger: logger}
}

// Resolve 取第一条带 token id 的记录，按 outcome 名称（忽略大小写）精确匹配
func (r *MarketResolver) Resolve(ctx context.Context, slug, outcomeName string) (*model.MarketInfo, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, model.NewValidationError("slug is required when token_id is not provided")
	}
	records, err := r.directory.MarketsBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, model.NewResolutionError("not found", nil)
	}

	var chosen *model.RawMarketRecord
	for i := range records {
		if len(records[i].ClobTokenIds) > 0 {
			chosen = &records[i]
			break
		}
	}
	if chosen == nil {
		return nil, model.NewResolutionError("no token ids", nil)
	}

	names := chosen.OutcomeList()
	if len(names) == 0 {
		names = defaultOutcomes
	}
	target := strings.ToLower(strings.TrimSpace(outcomeName))
	idx := -1
	for i, n := range names {
		if strings.ToLower(strings.TrimSpace(n)) == target {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, model.NewResolutionError("outcome not found", names)
	}
	if idx >= len(chosen.ClobTokenIds) || chosen.ClobTokenIds[idx] == "" {
		return nil, model.NewResolutionError("no token ids", nil)
	}

	info := &model.MarketInfo{
		TokenID:      chosen.ClobTokenIds[idx],
		MarketSlug:   chosen.Slug,
		Question:     chosen.DisplayTitle(),
		OutcomeIndex: idx,
		OutcomeName:  names[idx],
		Outcomes:     names,
		TickSize:     chosen.OrderPriceMinTickSize,
		NegRisk:      chosen.NegRisk,
	}
	r.logger.WithFields(logrus.Fields{
		"slug":     slug,
		"outcome":  info.OutcomeName,
		"token_id": info.TokenID,
		"index":    idx,
	}).Debug("解析 token_id 成功")
	return info, nil
}

// Preview /gamma_preview：列出 slug 对应的全部市场
func (r *MarketResolver) Preview(ctx context.Context, slug string) ([]model.MarketPreview, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, model.NewValidationError("slug is required")
	}
	records, err := r.directory.MarketsBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	rows := make([]model.MarketPreview, 0, len(records))
	for _, m := range records {
		question := m.Question
		if question == "" {
			question = m.Title
		}
		rows = append(rows, model.MarketPreview{
			Slug:          m.Slug,
			Question:      question,
			Outcomes:      m.OutcomeList(),
			ClobTokenIds:  orEmpty(m.ClobTokenIds),
			OutcomePrices: orEmpty(m.OutcomePrices),
		})
	}
	if len(rows) == 0 {
		return nil, model.NewResolutionError("not found", nil)
	}
	return rows, nil
}

func orEmpty(l model.FlexStrings) []string {
	if l == nil {
		return []string{}
	}
	return l
}
