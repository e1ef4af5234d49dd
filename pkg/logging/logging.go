// Package logging 根据命令行参数构造 slog.Logger
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config 日志配置
type Config struct {
	Level  string    // debug、info、warn、error，默认 info
	Format string    // text 或 json，默认 text
	Writer io.Writer // 默认 os.Stderr
}

// New 创建 Logger
func New(cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q, expected text or json", cfg.Format)
	}

	return slog.New(h), nil
}

// ParseLevel 解析日志级别，空串为 info
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
