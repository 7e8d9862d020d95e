package polymarket

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"OrderRelay/internal/config"
	"OrderRelay/internal/interfaces"
	"OrderRelay/internal/utils/httpclient"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

var _ interfaces.VenueREST = (*RESTClient)(nil)

// RESTClient CLOB 公共 REST，带 x-api-key（API_KEY 为空时不带）
type RESTClient struct {
	http   *resty.Client
	apiKey string
}

func NewRESTClient(cfg *config.Config, logger *logrus.Logger) *RESTClient {
	return &RESTClient{
		http:   httpclient.NewRESTClient(cfg.HTTP, cfg.Trading.ClobHost, logger),
		apiKey: cfg.Trading.APIKey,
	}
}

func (c *RESTClient) get(ctx context.Context, what, path string, query map[string]string) (json.RawMessage, error) {
	req := c.http.R().SetContext(ctx)
	if c.apiKey != "" {
		req.SetHeader("x-api-key", c.apiKey)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	resp, err := req.Get(path)
	if err := httpclient.CheckResponse(what, resp, err); err != nil {
		return nil, err
	}
	return rawJSON(resp.Body()), nil
}

// Order GET /data/order/{id}
func (c *RESTClient) Order(ctx context.Context, orderID string) (json.RawMessage, error) {
	return c.get(ctx, "clob rest order", pathOrder+url.PathEscape(orderID), nil)
}

// OpenOrders GET /orders?address=&status=OPEN
func (c *RESTClient) OpenOrders(ctx context.Context, address string) (json.RawMessage, error) {
	return c.get(ctx, "clob rest open orders", "/orders", map[string]string{"address": address, "status": "OPEN"})
}

// Trades GET /trades?address=&limit=
func (c *RESTClient) Trades(ctx context.Context, address string, limit int) (json.RawMessage, error) {
	return c.get(ctx, "clob rest trades", "/trades", map[string]string{"address": address, "limit": strconv.Itoa(limit)})
}
