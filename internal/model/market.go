package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexStrings 兼容 Gamma 返回的多种列表形态：原生数组、JSON 编码的数组字符串、逗号分隔字符串
type FlexStrings []string

func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	*f = DecodeFlexList(data)
	return nil
}

// DecodeFlexList 将任意 JSON 值解码为字符串列表，无法识别的形态返回空列表，不报错
func DecodeFlexList(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []string{}
	}
	switch raw[0] {
	case '[':
		return decodeArray(raw)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return []string{}
		}
		return decodeStringList(s)
	}
	return []string{}
}

// decodeStringList 字符串内容若是 JSON 则只接受数组；否则按逗号切分
func decodeStringList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		if _, ok := v.([]any); ok {
			return decodeArray([]byte(s))
		}
		return []string{}
	}
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// decodeArray 元素统一转字符串；null 记为空串以保持下标对齐
func decodeArray(raw []byte) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, scalarString(it))
	}
	return out
}

func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return strings.TrimSpace(s)
		}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return strconv.FormatBool(b)
		}
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err == nil {
			return n.String()
		}
	}
	return string(raw)
}

// RawMarketRecord Gamma /markets 单条记录，仅解码用到的字段
type RawMarketRecord struct {
	Slug                  string      `json:"slug"`
	Question              string      `json:"question"`
	Title                 string      `json:"title"`
	Outcomes              FlexStrings `json:"outcomes"`
	OutcomeNames          FlexStrings `json:"outcomeNames"`
	ShortOutcomes         FlexStrings `json:"shortOutcomes"`
	ClobTokenIds          FlexStrings `json:"clobTokenIds"`
	OutcomePrices         FlexStrings `json:"outcomePrices"`
	OrderPriceMinTickSize float64     `json:"orderPriceMinTickSize"`
	NegRisk               bool        `json:"negRisk"`
}

// OutcomeList 取 outcomes、outcomeNames、shortOutcomes 中第一个非空的
func (m *RawMarketRecord) OutcomeList() []string {
	for _, l := range [][]string{m.Outcomes, m.OutcomeNames, m.ShortOutcomes} {
		if len(l) > 0 {
			return l
		}
	}
	return []string{}
}

// DisplayTitle question 优先，其次 title
func (m *RawMarketRecord) DisplayTitle() string {
	if m.Question != "" {
		return m.Question
	}
	if m.Title != "" {
		return m.Title
	}
	return "(no title)"
}

// MarketInfo slug+outcome 解析结果
type MarketInfo struct {
	TokenID      string   `json:"token_id"`
	MarketSlug   string   `json:"market_slug"`
	Question     string   `json:"question"`
	OutcomeIndex int      `json:"outcome_index"`
	OutcomeName  string   `json:"outcome_name"`
	Outcomes     []string `json:"outcomes"`
	TickSize     float64  `json:"tick_size,omitempty"`
	NegRisk      bool     `json:"neg_risk"`
}

// MarketPreview /gamma_preview 返回项
type MarketPreview struct {
	Slug          string   `json:"slug"`
	Question      string   `json:"question"`
	Outcomes      []string `json:"outcomes"`
	ClobTokenIds  []string `json:"clobTokenIds"`
	OutcomePrices []string `json:"outcomePrices"`
}
