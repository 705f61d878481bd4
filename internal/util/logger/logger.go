// Package logger 为各子系统提供 log/slog 日志实例
//
// 每个包持有一个包级实例:
//
//	var log = logger.Logger("router")
//
//	log.Debug("应答已匹配", "txid", txid, "from", from)
//
// 级别与格式来自环境变量:
//
//	RELOAD_LOG_LEVEL=router=debug,link=warn,info
//	RELOAD_LOG_FORMAT=json
//	RELOAD_LOG_ADD_SOURCE=1
//
// 输出目标与级别可以在运行时修改，已创建的实例随之生效。
package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// 环境变量名
const (
	EnvLevel     = "RELOAD_LOG_LEVEL"
	EnvFormat    = "RELOAD_LOG_FORMAT"
	EnvAddSource = "RELOAD_LOG_ADD_SOURCE"
)

// subsystem 子系统的日志实例与级别
type subsystem struct {
	level  *slog.LevelVar
	logger *slog.Logger
}

var (
	mu         sync.Mutex
	subsystems = make(map[string]*subsystem)
	settings   *Settings
	out        = &switchWriter{w: os.Stderr}
)

// Logger 返回子系统的日志实例，同名子系统共用一个实例
func Logger(name string) *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return lookup(name).logger
}

func lookup(name string) *subsystem {
	if s, ok := subsystems[name]; ok {
		return s
	}
	st := currentSettings()
	lv := new(slog.LevelVar)
	lv.Set(st.Levels.For(name))
	s := &subsystem{
		level:  lv,
		logger: slog.New(newHandler(out, lv, st)).With("subsystem", name),
	}
	subsystems[name] = s
	return s
}

func currentSettings() *Settings {
	if settings == nil {
		settings = SettingsFromEnv(os.Getenv)
	}
	return settings
}

// SetLevel 修改子系统级别，With 派生的实例同样生效
func SetLevel(name string, level slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	lookup(name).level.Set(level)
}

// ApplyLevels 按级别描述串修改默认级别与各子系统级别
//
// 描述串格式同 RELOAD_LOG_LEVEL。解析失败时不做任何修改。
func ApplyLevels(desc string) error {
	levels, err := ParseLevels(desc)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	st := currentSettings()
	st.Levels = st.Levels.Merge(levels)
	for name, s := range subsystems {
		s.level.Set(st.Levels.For(name))
	}
	return nil
}

// SetOutput 切换所有实例的输出目标
func SetOutput(w io.Writer) {
	out.set(w)
}

// Discard 返回丢弃所有记录的实例，用于测试
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// Info 以子系统实例记录 Info 日志
func Info(name, msg string, args ...any) {
	Logger(name).Info(msg, args...)
}

// Warn 以子系统实例记录 Warn 日志
func Warn(name, msg string, args ...any) {
	Logger(name).Warn(msg, args...)
}

// reset 清空子系统与设置，仅用于测试
func reset(st *Settings) {
	mu.Lock()
	defer mu.Unlock()
	subsystems = make(map[string]*subsystem)
	settings = st
}
