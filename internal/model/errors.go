package model

import (
	"errors"
	"fmt"
)

// ErrorKind 错误分类，决定 HTTP 状态码
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindAuthorization ErrorKind = "authorization"
	KindConfiguration ErrorKind = "configuration"
	KindResolution    ErrorKind = "resolution"
	KindUpstream      ErrorKind = "upstream"
	KindSubmission    ErrorKind = "submission"
)

// MaxUpstreamBody 上游响应体在错误中保留的最大字符数
const MaxUpstreamBody = 300

// Error 统一错误类型
type Error struct {
	Kind           ErrorKind
	Message        string
	UpstreamStatus int      // 仅 Upstream
	UpstreamBody   string   // 仅 Upstream，已截断
	Available      []string // 仅 Resolution（outcome not found）
	Err            error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.UpstreamStatus != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.UpstreamStatus)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NewAuthorizationError(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func NewConfigurationError(msg string) *Error {
	return &Error{Kind: KindConfiguration, Message: msg}
}

func NewResolutionError(msg string, available []string) *Error {
	return &Error{Kind: KindResolution, Message: msg, Available: available}
}

// NewUpstreamError status 为 0 表示网络层失败
func NewUpstreamError(msg string, status int, body string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, UpstreamStatus: status, UpstreamBody: Truncate(body, MaxUpstreamBody), Err: err}
}

func NewSubmissionError(err error) *Error {
	return &Error{Kind: KindSubmission, Message: "order submission failed", Err: err}
}

// KindOf 返回错误链上第一个 *Error 的分类，非 *Error 返回空串
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// Truncate 按 rune 截断
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
