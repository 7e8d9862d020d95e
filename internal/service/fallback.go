package service

import (
	"context"
	"errors"

	"OrderRelay/internal/model"
)

// FallbackStrategy 主路径失败且属于"上游不可用"类时改走备用路径
type FallbackStrategy[T any] struct {
	Name      string
	Primary   func(ctx context.Context) (T, error)
	Secondary func(ctx context.Context) (T, error) // nil 表示无备用路径

	// ShouldFallback 为 nil 时使用 UpstreamUnavailable
	ShouldFallback func(err error) bool
	// OnFallback 切换到备用路径前回调（日志、计数）
	OnFallback func(primaryErr error)
}

// UpstreamUnavailable 上游错误或主路径能力未配置
// 调用方 ctx 已取消时 Run 不会走备用路径
func UpstreamUnavailable(err error) bool {
	return model.IsKind(err, model.KindUpstream) || model.IsKind(err, model.KindConfiguration)
}

func (f FallbackStrategy[T]) Run(ctx context.Context) (T, error) {
	out, perr := f.Primary(ctx)
	if perr == nil {
		return out, nil
	}
	should := f.ShouldFallback
	if should == nil {
		should = UpstreamUnavailable
	}
	if f.Secondary == nil || !should(perr) || ctx.Err() != nil {
		return out, perr
	}
	if f.OnFallback != nil {
		f.OnFallback(perr)
	}
	out, serr := f.Secondary(ctx)
	if serr == nil {
		return out, nil
	}
	combined := &model.Error{
		Kind:    model.KindUpstream,
		Message: f.Name + " failed",
		Err:     &bothFailed{primary: perr, secondary: serr},
	}
	var se *model.Error
	if errors.As(serr, &se) {
		switch se.Kind {
		case model.KindUpstream:
			combined.UpstreamStatus = se.UpstreamStatus
			combined.UpstreamBody = se.UpstreamBody
		case model.KindConfiguration:
			// 备用路径也缺配置，按配置错误返回
			combined.Kind = model.KindConfiguration
		}
	}
	return out, combined
}

type bothFailed struct {
	primary, secondary error
}

func (b *bothFailed) Error() string {
	return b.primary.Error() + " | fallback: " + b.secondary.Error()
}

func (b *bothFailed) Unwrap() []error {
	return []error{b.primary, b.secondary}
}
