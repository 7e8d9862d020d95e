package polymarket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"OrderRelay/internal/model"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/transport"
)

var errSecondAttempt = errors.New("only one round trip per call")

type exchangeKey struct{}

// exchange 一次 SDK 调用对应的 HTTP 往返，保存原始响应
type exchange struct {
	cancel context.CancelFunc

	mu     sync.Mutex
	sent   bool
	status int
	body   []byte
	err    error
}

// beginExchange 返回的 ctx 只放行一次往返，往返结束即取消，SDK 的自动重试在退避处直接返回
func beginExchange(ctx context.Context) (context.Context, *exchange) {
	ctx, cancel := context.WithCancel(ctx)
	ex := &exchange{cancel: cancel}
	return context.WithValue(ctx, exchangeKey{}, ex), ex
}

func (e *exchange) claim() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sent {
		return false
	}
	e.sent = true
	return true
}

func (e *exchange) record(status int, body []byte, err error) {
	e.mu.Lock()
	e.status, e.body, e.err = status, body, err
	e.mu.Unlock()
	e.cancel()
}

// result 以记录的往返为准：非 2xx 与网络错误转为 Upstream 错误；2xx 时忽略 SDK 的解码错误，返回原始响应体
func (e *exchange) result(what string, sdkErr error) (json.RawMessage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancel()
	switch {
	case !e.sent:
		// 请求未发出（签名、参数校验失败）
		if sdkErr == nil {
			return json.RawMessage("null"), nil
		}
		return nil, fmt.Errorf("%s: %w", what, sdkErr)
	case e.err != nil:
		return nil, model.NewUpstreamError(what+" request failed", 0, "", e.err)
	case e.status < 200 || e.status >= 300:
		return nil, model.NewUpstreamError(fmt.Sprintf("%s returned %d", what, e.status), e.status, string(e.body), sdkErr)
	}
	return rawJSON(e.body), nil
}

// recordingDoer 包装 SDK 的 HTTP 客户端；不在 exchange 内的请求原样透传
type recordingDoer struct {
	next transport.Doer
}

func (d recordingDoer) Do(req *http.Request) (*http.Response, error) {
	ex, _ := req.Context().Value(exchangeKey{}).(*exchange)
	if ex == nil {
		return d.next.Do(req)
	}
	if !ex.claim() {
		return nil, errSecondAttempt
	}
	resp, err := d.next.Do(req)
	if err != nil {
		ex.record(0, nil, err)
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		ex.record(0, nil, err)
		return nil, err
	}
	ex.record(resp.StatusCode, body, nil)
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp, nil
}

// rawJSON 空响应记为 null，非 JSON 响应包装为字符串
func rawJSON(b []byte) json.RawMessage {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0:
		return json.RawMessage("null")
	case !json.Valid(b):
		quoted, _ := json.Marshal(string(b))
		return quoted
	}
	return json.RawMessage(b)
}
