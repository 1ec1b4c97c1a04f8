package util

import "errors"

var (
	ErrValidation       = errors.New("validation error")
	ErrConflict         = errors.New("conflict")
	ErrNotFound         = errors.New("not found")
	ErrQuotaExceeded    = errors.New("daily free question limit exceeded")
	ErrPermissionDenied = errors.New("permission denied")

	// ErrConfiguration 内容配置错误，重试无意义
	ErrConfiguration = errors.New("configuration error")
)
