package service

import (
	"context"
	"errors"
	"testing"

	"OrderRelay/internal/config"
	"OrderRelay/internal/logging"
	"OrderRelay/internal/metrics"
	"OrderRelay/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway(cfg config.TradingConfig, dir *fakeDirectory, trading *fakeTrading) (*OrderGateway, *metrics.Metrics) {
	m := metrics.New()
	return NewOrderGateway(cfg, NewMarketResolver(dir, logging.Discard()), trading, m, logging.Discard()), m
}

func TestPlaceOrder_DryRunEchoesNormalized(t *testing.T) {
	dir, trading := &fakeDirectory{}, &fakeTrading{}
	g, m := newGateway(config.TradingConfig{}, dir, trading)

	res, err := g.PlaceOrder(context.Background(), &model.OrderRequest{
		TokenID: "abc", Side: "buy", PriceCents: ptr(34.5), Size: ptr(10), ClientTag: "sheet-1",
	}, true)
	require.NoError(t, err)

	assert.True(t, res.DryRun)
	require.NotNil(t, res.Normalized)
	assert.Equal(t, model.SideBuy, res.Normalized.Side)
	assert.Equal(t, 0.34, res.Normalized.PriceProb)
	assert.Equal(t, 10.0, res.Normalized.Size)
	assert.Equal(t, "abc", res.Normalized.TokenID)
	assert.Equal(t, "sheet-1", res.Normalized.ClientTag)
	assert.False(t, res.ResolutionSkipped)
	assert.Empty(t, trading.submitted)
	assert.Zero(t, dir.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersTotal.WithLabelValues("dry_run", "BUY", "ok")))
}

func TestPlaceOrder_NotionalAsymmetry(t *testing.T) {
	req := &model.OrderRequest{TokenID: "abc", Side: "BUY", PriceCents: ptr(10), Size: ptr(5)}

	dry, _ := newGateway(readyTrading(), &fakeDirectory{}, &fakeTrading{})
	res, err := dry.PlaceOrder(context.Background(), req, true)
	require.NoError(t, err)
	assert.True(t, res.BelowMinNotional)
	assert.Equal(t, 0.5, res.Normalized.Notional)

	trading := &fakeTrading{}
	live, _ := newGateway(readyTrading(), &fakeDirectory{}, trading)
	_, err = live.PlaceOrder(context.Background(), req, false)
	assert.True(t, model.IsKind(err, model.KindValidation))
	assert.EqualError(t, err, "below minimum notional")
	assert.Empty(t, trading.submitted)
}

func TestPlaceOrder_DryRunSkipsResolution(t *testing.T) {
	dir := &fakeDirectory{}
	g, _ := newGateway(config.TradingConfig{}, dir, &fakeTrading{})

	res, err := g.PlaceOrder(context.Background(), &model.OrderRequest{
		Slug: "bogus", Outcome: "Yes", Side: "SELL", PriceCents: ptr(40), Size: ptr(10),
	}, true)
	require.NoError(t, err)
	assert.True(t, res.ResolutionSkipped)
	assert.Equal(t, "bogus", res.Slug)
	assert.Empty(t, res.TokenID)
	assert.Zero(t, dir.calls)
}

func TestPlaceOrder_DryRunResolveEnabled(t *testing.T) {
	dir := &fakeDirectory{records: records(t, `[{"slug":"rain","outcomes":["Yes","No"],"clobTokenIds":["111","222"]}]`)}
	cfg := config.TradingConfig{DryRunResolve: true}
	g, _ := newGateway(cfg, dir, &fakeTrading{})

	res, err := g.PlaceOrder(context.Background(), &model.OrderRequest{
		Slug: "rain", Outcome: "no", Side: "BUY", PriceCents: ptr(40), Size: ptr(10),
	}, true)
	require.NoError(t, err)
	assert.False(t, res.ResolutionSkipped)
	assert.Equal(t, "222", res.TokenID)
	assert.Equal(t, "No", res.Outcome)

	_, err = g.PlaceOrder(context.Background(), &model.OrderRequest{
		Slug: "rain", Outcome: "maybe", Side: "BUY", PriceCents: ptr(40), Size: ptr(10),
	}, true)
	assert.True(t, model.IsKind(err, model.KindResolution))
}

func TestPlaceOrder_RequiresTokenOrSlugOutcome(t *testing.T) {
	g, _ := newGateway(readyTrading(), &fakeDirectory{}, &fakeTrading{})
	for _, dry := range []bool{true, false} {
		_, err := g.PlaceOrder(context.Background(), &model.OrderRequest{Slug: "only-slug", Side: "BUY", PriceCents: ptr(50), Size: ptr(10)}, dry)
		assert.True(t, model.IsKind(err, model.KindValidation))
	}
}

func TestPlaceOrder_MissingNumbers(t *testing.T) {
	g, _ := newGateway(config.TradingConfig{}, &fakeDirectory{}, &fakeTrading{})
	_, err := g.PlaceOrder(context.Background(), &model.OrderRequest{TokenID: "abc", Side: "BUY", Size: ptr(10)}, true)
	assert.EqualError(t, err, "price_cents is required")
	_, err = g.PlaceOrder(context.Background(), &model.OrderRequest{TokenID: "abc", Side: "BUY", PriceCents: ptr(10)}, true)
	assert.EqualError(t, err, "size is required")
}

func TestPlaceOrder_LiveRequiresReadiness(t *testing.T) {
	cases := map[string]func(c *config.TradingConfig){
		"missing key":   func(c *config.TradingConfig) { c.PrivateKey = "" },
		"short key":     func(c *config.TradingConfig) { c.PrivateKey = "0x1234" },
		"bad chain":     func(c *config.TradingConfig) { c.ChainID = 1 },
		"missing proxy": func(c *config.TradingConfig) { c.ProxyAddress = "" },
		"bad proxy":     func(c *config.TradingConfig) { c.ProxyAddress = "0x123" },
		"bad sig type":  func(c *config.TradingConfig) { c.SignatureType = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := readyTrading()
			mutate(&cfg)
			dir, trading := &fakeDirectory{}, &fakeTrading{}
			g, _ := newGateway(cfg, dir, trading)
			_, err := g.PlaceOrder(context.Background(), &model.OrderRequest{
				Slug: "rain", Outcome: "Yes", Side: "BUY", PriceCents: ptr(50), Size: ptr(10),
			}, false)
			assert.True(t, model.IsKind(err, model.KindConfiguration))
			assert.Zero(t, dir.calls)
			assert.Empty(t, trading.submitted)
		})
	}
}

func TestPlaceOrder_LiveResolvesAndSubmits(t *testing.T) {
	dir := &fakeDirectory{records: records(t, `[{"slug":"rain","outcomes":"[\"Yes\",\"No\"]","clobTokenIds":"[\"111\",\"222\"]","negRisk":true}]`)}
	trading := &fakeTrading{}
	g, _ := newGateway(readyTrading(), dir, trading)

	res, err := g.PlaceOrder(context.Background(), &model.OrderRequest{
		Slug: "rain", Outcome: "yes", Side: "sell", PriceCents: ptr(62.3), Size: ptr(20),
	}, false)
	require.NoError(t, err)

	require.Len(t, trading.submitted, 1)
	sub := trading.submitted[0]
	assert.Equal(t, "111", sub.TokenID)
	assert.Equal(t, model.SideSell, sub.Side)
	assert.Equal(t, 0.62, sub.Price)
	assert.Equal(t, 20.0, sub.Size)
	assert.Equal(t, TickSizeString, sub.TickSize)
	assert.True(t, sub.NegRisk)

	assert.False(t, res.DryRun)
	assert.Equal(t, "111", res.TokenID)
	assert.Equal(t, "rain", res.Slug)
	assert.Equal(t, "Yes", res.Outcome)
	assert.JSONEq(t, `{"orderID":"0xorder","success":true}`, string(res.Result))
}

func TestPlaceOrder_SubmissionErrorWrapped(t *testing.T) {
	cause := errors.New("not enough balance / allowance")
	trading := &fakeTrading{submitErr: cause}
	g, m := newGateway(readyTrading(), &fakeDirectory{}, trading)

	_, err := g.PlaceOrder(context.Background(), &model.OrderRequest{TokenID: "abc", Side: "BUY", PriceCents: ptr(50), Size: ptr(10)}, false)
	assert.True(t, model.IsKind(err, model.KindSubmission))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersTotal.WithLabelValues("live", "BUY", "error")))
}
