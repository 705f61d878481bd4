package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture 重置全局状态并把输出写入缓冲区
func capture(t *testing.T, st *Settings) *bytes.Buffer {
	t.Helper()
	if st == nil {
		st = &Settings{Levels: Levels{Default: slog.LevelInfo}}
	}
	reset(st)
	buf := &bytes.Buffer{}
	SetOutput(buf)
	t.Cleanup(func() {
		reset(nil)
		SetOutput(nopWriter{})
	})
	return buf
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestLogger_Output(t *testing.T) {
	t.Run("文本格式", func(t *testing.T) {
		buf := capture(t, nil)
		Logger("router").Info("请求已发送", "txid", 7)

		out := buf.String()
		assert.Contains(t, out, "请求已发送")
		assert.Contains(t, out, "txid=7")
		assert.Contains(t, out, "subsystem=router")
		assert.Contains(t, out, "level=info")
		assert.Contains(t, out, "ts=")
	})

	t.Run("JSON 格式", func(t *testing.T) {
		buf := capture(t, &Settings{Format: FormatJSON})
		Logger("link").Warn("帧格式错误")
		assert.Contains(t, buf.String(), `"subsystem":"link"`)
		assert.Contains(t, buf.String(), `"level":"warn"`)
	})

	t.Run("同名子系统共用实例", func(t *testing.T) {
		capture(t, nil)
		assert.Same(t, Logger("host"), Logger("host"))
	})

	t.Run("切换输出目标", func(t *testing.T) {
		capture(t, nil)
		log := Logger("dispatcher")
		buf := &bytes.Buffer{}
		SetOutput(buf)
		log.Info("切换之后")
		assert.Contains(t, buf.String(), "切换之后")
	})
}

func TestSetLevel(t *testing.T) {
	buf := capture(t, nil)
	derived := Logger("router").With("txid", 7)

	SetLevel("router", slog.LevelError)
	derived.Warn("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	SetLevel("router", slog.LevelDebug)
	derived.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "txid=7")
}

func TestApplyLevels(t *testing.T) {
	buf := capture(t, nil)
	router, link := Logger("router"), Logger("link")

	require.NoError(t, ApplyLevels("router=debug,error"))
	router.Debug("router-debug")
	link.Warn("link-warn")
	assert.Contains(t, buf.String(), "router-debug")
	assert.NotContains(t, buf.String(), "link-warn")

	assert.ErrorIs(t, ApplyLevels("router=loud"), ErrInvalidLevel)
	router.Debug("still-debug")
	assert.Contains(t, buf.String(), "still-debug", "解析失败不修改级别")
}

func TestParseLevels(t *testing.T) {
	levels, err := ParseLevels("router=debug, link=warn ,error,,")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, levels.For("router"))
	assert.Equal(t, slog.LevelWarn, levels.For("link"))
	assert.Equal(t, slog.LevelError, levels.For("dispatcher"))

	empty, err := ParseLevels("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, empty.For("router"))

	for _, bad := range []string{"router=loud", "=debug", "verbose"} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParseLevels(bad)
			assert.ErrorIs(t, err, ErrInvalidLevel)
		})
	}
}

func TestSettingsFromEnv(t *testing.T) {
	env := map[string]string{
		EnvLevel:     "router=debug,warn",
		EnvFormat:    "JSON",
		EnvAddSource: "true",
	}
	st := SettingsFromEnv(func(k string) string { return env[k] })
	assert.Equal(t, FormatJSON, st.Format)
	assert.True(t, st.AddSource)
	assert.Equal(t, slog.LevelWarn, st.Levels.Default)
	assert.Equal(t, slog.LevelDebug, st.Levels.For("router"))

	env[EnvLevel] = "router=loud"
	st = SettingsFromEnv(func(k string) string { return env[k] })
	assert.Equal(t, slog.LevelInfo, st.Levels.For("router"), "无效配置回退到 info")
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
	assert.Equal(t, "debug", levelName(slog.LevelDebug-4))
}
