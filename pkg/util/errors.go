package util

import (
	"context"
	"errors"
	"net"
	"strings"
)

// ClassifyError 归类一次外部调用错误，返回指标与日志用的错误类型标签。
// 核心内部的错误都是类型化哨兵，这里只服务应答器边界。
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "timeout"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "timeout"
		}
		return "network_error"
	}

	if strings.Contains(err.Error(), "timeout") {
		return "timeout"
	}
	return "error"
}
