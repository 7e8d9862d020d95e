package model

import (
	"encoding/json"
	"strings"
)

// Side 订单方向
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide 忽略大小写与首尾空白
func ParseSide(s string) (Side, bool) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case SideBuy:
		return SideBuy, true
	case SideSell:
		return SideSell, true
	}
	return "", false
}

// OrderRequest POST /place_order 请求体
// price_cents / size 为指针，用于区分缺失与 0
type OrderRequest struct {
	TokenID    string   `json:"token_id,omitempty"`
	Slug       string   `json:"slug,omitempty"`
	Outcome    string   `json:"outcome,omitempty"`
	Side       string   `json:"side"`
	PriceCents *float64 `json:"price_cents"`
	Size       *float64 `json:"size"`
	ClientTag  string   `json:"client_tag,omitempty"`
}

// HasToken token_id 非空
func (r *OrderRequest) HasToken() bool {
	return strings.TrimSpace(r.TokenID) != ""
}

// HasSlugOutcome slug 与 outcome 均非空
func (r *OrderRequest) HasSlugOutcome() bool {
	return strings.TrimSpace(r.Slug) != "" && strings.TrimSpace(r.Outcome) != ""
}

// NormalizedOrder 校验、量化后的订单
type NormalizedOrder struct {
	Side      Side    `json:"side"`
	TokenID   string  `json:"token_id,omitempty"`
	Slug      string  `json:"slug,omitempty"`
	Outcome   string  `json:"outcome,omitempty"`
	PriceProb float64 `json:"price_prob"`
	Size      float64 `json:"size"`
	Notional  float64 `json:"notional"`
	ClientTag string  `json:"client_tag,omitempty"`
}

// PlaceOrderResult 下单结果；Result 为上游原始响应（仅 live）
type PlaceOrderResult struct {
	DryRun            bool             `json:"dry_run"`
	Normalized        *NormalizedOrder `json:"normalized,omitempty"`
	Result            json.RawMessage  `json:"result,omitempty"`
	TokenID           string           `json:"token_id,omitempty"`
	Slug              string           `json:"slug,omitempty"`
	Outcome           string           `json:"outcome,omitempty"`
	PriceProb         float64          `json:"price_prob"`
	Size              float64          `json:"size"`
	ResolutionSkipped bool             `json:"resolution_skipped,omitempty"`
	BelowMinNotional  bool             `json:"below_min_notional,omitempty"`
}

// SubmitRequest 交给交易客户端的已解析订单
type SubmitRequest struct {
	TokenID   string
	Side      Side
	Price     float64
	Size      float64
	TickSize  string
	NegRisk   bool
	ClientTag string
}

// SubmitResult 交易客户端的下单回执
type SubmitResult struct {
	OrderID string          `json:"orderID"`
	Status  string          `json:"status,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// APICredentials CLOB L2 凭证，仅驻留内存
type APICredentials struct {
	Key        string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// Complete 三项均非空
func (c APICredentials) Complete() bool {
	return c.Key != "" && c.Secret != "" && c.Passphrase != ""
}
