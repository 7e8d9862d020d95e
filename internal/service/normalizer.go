package service

import (
	"math"
	"strconv"

	"OrderRelay/internal/model"

	"github.com/shopspring/decimal"
)

const (
	// TickSizeString 价格最小变动单位，同时传给 SDK 作为 tick size
	TickSizeString = "0.01"

	MinPriceCents = 0.5
	MaxPriceCents = 99.5

	// MinNotional 实盘下单的最小名义金额（USDC）
	MinNotional = 1.0
)

var (
	tickSize    = decimal.RequireFromString(TickSizeString)
	tickPlaces  = -tickSize.Exponent()
	minNotional = decimal.NewFromFloat(MinNotional)
	hundred     = decimal.NewFromInt(100)
)

// Normalize 校验 price_cents/side/size，输出按 tick 量化后的订单（不含 token 信息）
// 纯函数；最小名义金额检查由 CheckMinNotional 单独执行
func Normalize(priceCents float64, side string, size float64) (*model.NormalizedOrder, error) {
	if math.IsNaN(priceCents) || priceCents < MinPriceCents || priceCents > MaxPriceCents {
		return nil, model.NewValidationError("price out of range")
	}
	if math.IsNaN(size) || math.IsInf(size, 0) || size <= 0 {
		return nil, model.NewValidationError("size must be positive")
	}
	s, ok := model.ParseSide(side)
	if !ok {
		return nil, model.NewValidationError("invalid side")
	}

	price := QuantizePrice(priceCents)
	return &model.NormalizedOrder{
		Side:      s,
		PriceProb: price.InexactFloat64(),
		Size:      size,
		Notional:  Notional(s, price, size).InexactFloat64(),
	}, nil
}

// QuantizePrice 美分转概率，对 float64 商的精确二进制值做银行家舍入，限制在 [tick, 1-tick]
// 与 round(price_cents/100, 2) 一致：34.5 -> 0.34，1.5 -> 0.01，12.5 -> 0.12
func QuantizePrice(priceCents float64) decimal.Decimal {
	exact := decimal.RequireFromString(strconv.FormatFloat(priceCents/100, 'f', 80, 64))
	p := exact.RoundBank(tickPlaces)
	upper := decimal.NewFromInt(1).Sub(tickSize)
	if p.LessThan(tickSize) {
		return tickSize
	}
	if p.GreaterThan(upper) {
		return upper
	}
	return p
}

// Notional BUY 为 p*size，SELL 为 (1-p)*size
func Notional(side model.Side, price decimal.Decimal, size float64) decimal.Decimal {
	sz := decimal.NewFromFloat(size)
	if side == model.SideSell {
		return decimal.NewFromInt(1).Sub(price).Mul(sz)
	}
	return price.Mul(sz)
}

// BelowMinNotional 名义金额小于 1.0
func BelowMinNotional(o *model.NormalizedOrder) bool {
	return decimal.NewFromFloat(o.Notional).LessThan(minNotional)
}

// CheckMinNotional 仅实盘路径调用
func CheckMinNotional(o *model.NormalizedOrder) error {
	if BelowMinNotional(o) {
		return model.NewValidationError("below minimum notional")
	}
	return nil
}
