package polymarket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"OrderRelay/internal/chain"
	"OrderRelay/internal/config"
	"OrderRelay/internal/model"
	"OrderRelay/internal/utils/httpclient"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/auth"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/clob/clobtypes"
	"github.com/GoPolymarket/polymarket-go-sdk/pkg/transport"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

const (
	pathOrder = "/data/order/"
	maxPages  = 100
)

// ClobSession CLOB 私有接口会话，签名与鉴权头均由 SDK 生成
type ClobSession struct {
	base    clob.Client // 未带 L2 凭证，L1 派生凭证也走它
	signer  auth.Signer
	address string
	logger  *logrus.Logger

	mu     sync.Mutex
	creds  *model.APICredentials
	authed clob.Client
}

// NewClobSession 私钥、链 id 或签名类型无效时返回 Configuration 错误
func NewClobSession(cfg *config.Config, logger *logrus.Logger) (*ClobSession, error) {
	if _, err := chain.ParsePrivateKey(cfg.Trading.PrivateKey); err != nil {
		return nil, &model.Error{Kind: model.KindConfiguration, Message: "PRIVATE_KEY is missing or invalid", Err: err}
	}
	signer, err := newSigner(cfg.Trading.PrivateKey, cfg.Trading.ChainID)
	if err != nil {
		return nil, &model.Error{Kind: model.KindConfiguration, Message: "Polymarket 签名器初始化失败", Err: err}
	}
	sigType, err := signatureType(cfg.Trading.SignatureType)
	if err != nil {
		return nil, &model.Error{Kind: model.KindConfiguration, Message: "SIGNATURE_TYPE is invalid", Err: err}
	}

	// 复用出站 HTTP 配置（超时、代理）
	doer := recordingDoer{next: httpclient.NewRESTClient(cfg.HTTP, cfg.Trading.ClobHost, logger).GetClient()}
	tp := transport.NewClient(doer, cfg.Trading.ClobHost)
	tp.SetUserAgent("order-relay/1.0")

	// maker 为代理钱包：SIGNATURE_TYPE=1 为 Polymarket 代理，2 为 Gnosis Safe
	base := clob.NewClient(tp).WithSignatureType(sigType)
	if proxy := cfg.Trading.ProxyAddress; proxy != "" && sigType != auth.SignatureEOA {
		base = base.WithFunder(common.HexToAddress(proxy))
	}

	s := &ClobSession{
		base:    base.WithAuth(signer, nil),
		signer:  signer,
		address: signer.Address().Hex(),
		logger:  logger,
	}
	if preset := cfg.Trading.L2Credentials(); preset.Complete() {
		s.useCredentials(preset)
	}
	return s, nil
}

// newSigner 仅支持 Polygon 主网与测试网
func newSigner(pk string, chainID int64) (auth.Signer, error) {
	pk = strings.TrimPrefix(strings.TrimSpace(pk), "0x")
	switch chainID {
	case 137, 80001, 80002:
		return auth.NewPrivateKeySigner(pk, chainID)
	}
	return nil, fmt.Errorf("unsupported chain id %d", chainID)
}

func signatureType(v int) (auth.SignatureType, error) {
	switch auth.SignatureType(v) {
	case auth.SignatureEOA, auth.SignatureProxy, auth.SignatureGnosisSafe:
		return auth.SignatureType(v), nil
	}
	return 0, fmt.Errorf("unsupported signature type %d", v)
}

// Address 签名 EOA 地址
func (s *ClobSession) Address() string { return s.address }

// Signer 下单签名器
func (s *ClobSession) Signer() auth.Signer { return s.signer }

// useCredentials 调用方持有 s.mu 或处于构造阶段
func (s *ClobSession) useCredentials(creds model.APICredentials) {
	s.creds = &creds
	s.authed = s.base.WithAuth(s.signer, &auth.APIKey{Key: creds.Key, Secret: creds.Secret, Passphrase: creds.Passphrase})
}

// Credentials 返回 L2 凭证；未配置时通过 L1 创建或派生（进程内只做一次）
func (s *ClobSession) Credentials(ctx context.Context) (model.APICredentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.creds != nil {
		return *s.creds, nil
	}
	creds, err := s.CreateOrDerive(ctx)
	if err != nil {
		return model.APICredentials{}, err
	}
	s.useCredentials(creds)
	return creds, nil
}

// Client 带 L2 凭证的 SDK 客户端
func (s *ClobSession) Client(ctx context.Context) (clob.Client, error) {
	if _, err := s.Credentials(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authed, nil
}

// CreateOrDerive 先 create，失败再 derive 已有 key
func (s *ClobSession) CreateOrDerive(ctx context.Context) (model.APICredentials, error) {
	creds, err := s.l1(ctx, "clob POST /auth/api-key", s.base.CreateAPIKey)
	if err == nil {
		return creds, nil
	}
	s.logger.WithError(err).Info("create API key 失败，尝试 derive 已有 key")
	creds, derr := s.l1(ctx, "clob GET /auth/derive-api-key", s.base.DeriveAPIKey)
	if derr != nil {
		return model.APICredentials{}, fmt.Errorf("create: %v; derive: %w", err, derr)
	}
	return creds, nil
}

func (s *ClobSession) l1(ctx context.Context, what string, call func(context.Context) (clobtypes.APIKeyResponse, error)) (model.APICredentials, error) {
	cctx, ex := beginExchange(ctx)
	resp, err := call(cctx)
	if _, err := ex.result(what, err); err != nil {
		return model.APICredentials{}, err
	}
	creds := model.APICredentials{Key: resp.APIKey, Secret: resp.Secret, Passphrase: resp.Passphrase}
	if !creds.Complete() {
		return model.APICredentials{}, model.NewUpstreamError(what+" returned incomplete credentials", ex.status, string(ex.body), nil)
	}
	return creds, nil
}

// GetOrder GET /data/order/{id}，原样返回上游 JSON
func (s *ClobSession) GetOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	client, err := s.Client(ctx)
	if err != nil {
		return nil, err
	}
	cctx, ex := beginExchange(ctx)
	_, err = client.Order(cctx, url.PathEscape(orderID))
	return ex.result("clob GET "+pathOrder, err)
}

type ordersPage struct {
	Data       []json.RawMessage `json:"data"`
	NextCursor string            `json:"next_cursor"`
}

// OpenOrders GET /data/orders，按 next_cursor 翻页直到 LTE=，合并各页原始订单
func (s *ClobSession) OpenOrders(ctx context.Context) (json.RawMessage, error) {
	client, err := s.Client(ctx)
	if err != nil {
		return nil, err
	}
	all := make([]json.RawMessage, 0)
	cursor := clobtypes.InitialCursor
	for page := 0; page < maxPages; page++ {
		cctx, ex := beginExchange(ctx)
		_, err := client.Orders(cctx, &clobtypes.OrdersRequest{NextCursor: cursor})
		body, err := ex.result("clob GET /data/orders", err)
		if err != nil {
			return nil, err
		}
		// 旧版接口直接返回数组
		if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
			return body, nil
		}
		var p ordersPage
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, model.NewUpstreamError("clob open orders: unexpected response", ex.status, string(body), err)
		}
		all = append(all, p.Data...)
		if p.NextCursor == "" || p.NextCursor == clobtypes.EndCursor || p.NextCursor == cursor {
			break
		}
		cursor = p.NextCursor
	}
	out, err := json.Marshal(all)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CancelOrder DELETE /order
func (s *ClobSession) CancelOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	client, err := s.Client(ctx)
	if err != nil {
		return nil, err
	}
	cctx, ex := beginExchange(ctx)
	_, err = client.CancelOrder(cctx, &clobtypes.CancelOrderRequest{OrderID: orderID})
	return ex.result("clob DELETE /order", err)
}

// PostOrder 签名并提交，返回上游原始回执
func (s *ClobSession) PostOrder(ctx context.Context, order *clobtypes.SignableOrder) (json.RawMessage, error) {
	client, err := s.Client(ctx)
	if err != nil {
		return nil, err
	}
	cctx, ex := beginExchange(ctx)
	_, err = client.CreateOrderFromSignable(cctx, order)
	return ex.result("clob POST /order", err)
}
