package utils

import (
	"context"
	"errors"
	"strings"
	"syscall"
)

// 远端存储客户端常把取消错误格式化成字符串再返回
const canceledSuffix = "context canceled"

// IsContextDone 错误是否来自取消或超时
func IsContextDone(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.HasSuffix(err.Error(), canceledSuffix)
}

// IsClientDisconnect 客户端中途断开：请求被取消或连接已被对端关闭
func IsClientDisconnect(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || strings.HasSuffix(err.Error(), canceledSuffix) {
		return true
	}
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET)
}
