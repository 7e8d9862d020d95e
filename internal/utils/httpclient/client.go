package httpclient

import (
	"fmt"
	"net/http"
	"time"

	"OrderRelay/internal/config"
	"OrderRelay/internal/model"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// NewRESTClient 通用 REST 客户端（代理、超时、不重试）
func NewRESTClient(cfg config.HTTPConfig, baseURL string, logger *logrus.Logger) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout()).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "order-relay/1.0")

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	client.SetTransport(transport)

	// 配置代理
	if cfg.Proxy != "" {
		client.SetProxy(cfg.Proxy)
		if logger != nil {
			logger.WithField("proxy", cfg.Proxy).Info("HTTP客户端已配置代理")
		}
	}
	return client
}

// CheckResponse 网络错误或非 2xx 统一转为 Upstream 错误，body 截断保留
func CheckResponse(what string, resp *resty.Response, err error) error {
	if err != nil {
		return model.NewUpstreamError(what+" request failed", 0, "", err)
	}
	if !resp.IsSuccess() {
		return model.NewUpstreamError(fmt.Sprintf("%s returned %d", what, resp.StatusCode()), resp.StatusCode(), string(resp.Body()), nil)
	}
	return nil
}
