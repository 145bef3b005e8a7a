package logger

import (
	"context"

	"go.uber.org/zap"

	"mailtriage/pkg/trace"
)

// NewLogger 构造 zap logger。development 为 true 时使用控制台友好的开发配置。
// 实例通过注入传递，不保留包级全局。
func NewLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// WithTrace 从 context 中提取 trace_id 并附加到 logger
func WithTrace(ctx context.Context, logger *zap.Logger) *zap.Logger {
	traceID := trace.FromContext(ctx)
	if traceID != "" {
		return logger.With(zap.String("trace_id", traceID))
	}
	return logger
}
