package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/apple-clash/internal/config"
)

var (
	mu      sync.RWMutex
	output  io.Writer = os.Stdout
	logFile *rotatingWriter
)

// Init 根据配置初始化全局 zerolog 日志
func Init(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	var out io.Writer = os.Stdout
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05.000"}
	}

	var file *rotatingWriter
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		w, err := newRotatingWriter(cfg.File, cfg.MaxMB)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		file = w
		out = zerolog.MultiLevelWriter(out, w)
	}

	mu.Lock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file
	output = out
	mu.Unlock()

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(out).With().Timestamp().Logger()

	log.Info().Str("level", level.String()).Str("file", cfg.File).Msg("📝 日志初始化完成")
	return nil
}

// Writer 返回当前日志输出，供 HTTP 请求日志复用
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

// Close 关闭日志文件
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	output = os.Stdout
}

// LogPanic 记录 panic 及调用栈
func LogPanic(r any) {
	log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("💥 捕获 panic")
}
