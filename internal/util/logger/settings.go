package logger

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrInvalidLevel 级别描述无法解析
var ErrInvalidLevel = errors.New("logger: invalid level")

// Format 输出格式
type Format int

const (
	// FormatText logfmt 风格文本
	FormatText Format = iota
	// FormatJSON 每行一个 JSON 对象
	FormatJSON
)

// Levels 默认级别加按子系统覆盖的级别
type Levels struct {
	Default   slog.Level
	Overrides map[string]slog.Level
}

// For 返回子系统的生效级别
func (l Levels) For(name string) slog.Level {
	if lv, ok := l.Overrides[name]; ok {
		return lv
	}
	return l.Default
}

// Merge 返回以 other 覆盖后的级别
//
// other 的默认级别总是生效，子系统级别逐项覆盖。
func (l Levels) Merge(other Levels) Levels {
	merged := Levels{Default: other.Default, Overrides: make(map[string]slog.Level, len(l.Overrides)+len(other.Overrides))}
	for k, v := range l.Overrides {
		merged.Overrides[k] = v
	}
	for k, v := range other.Overrides {
		merged.Overrides[k] = v
	}
	return merged
}

// ParseLevels 解析 "router=debug,link=warn,info" 形式的级别描述
//
// 不带子系统的项设置默认级别，未给出时默认 info。空项被忽略。
func ParseLevels(desc string) (Levels, error) {
	levels := Levels{Default: slog.LevelInfo, Overrides: make(map[string]slog.Level)}
	for _, item := range strings.Split(desc, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, value, scoped := strings.Cut(item, "=")
		if !scoped {
			value = name
		}
		lv, err := parseLevel(strings.TrimSpace(value))
		if err != nil {
			return Levels{}, err
		}
		if !scoped {
			levels.Default = lv
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return Levels{}, fmt.Errorf("%w: empty subsystem in %q", ErrInvalidLevel, item)
		}
		levels.Overrides[name] = lv
	}
	return levels, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}

// Settings 日志设置
type Settings struct {
	Levels    Levels
	Format    Format
	AddSource bool
}

// SettingsFromEnv 从环境变量读取设置
//
// RELOAD_LOG_LEVEL 无法解析时整体回退到 info，并经 slog 默认实例记录警告。
func SettingsFromEnv(getenv func(string) string) *Settings {
	st := &Settings{Levels: Levels{Default: slog.LevelInfo}}
	if desc := getenv(EnvLevel); desc != "" {
		if levels, err := ParseLevels(desc); err == nil {
			st.Levels = levels
		} else {
			slog.Warn("忽略无效的日志级别配置", "env", EnvLevel, "err", err)
		}
	}
	if strings.EqualFold(getenv(EnvFormat), "json") {
		st.Format = FormatJSON
	}
	switch strings.ToLower(getenv(EnvAddSource)) {
	case "1", "true", "yes":
		st.AddSource = true
	}
	return st
}
