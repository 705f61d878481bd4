package config

import "errors"

var (
	// ErrNilConfig 配置为空
	ErrNilConfig = errors.New("config: nil config")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("config: invalid config")

	// ErrInvalidEnv 环境变量取值无效
	ErrInvalidEnv = errors.New("config: invalid environment override")
)
