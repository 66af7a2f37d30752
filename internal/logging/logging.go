// Package logging は charmbracelet/log を使ったロガーを作ります。
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"go-json-todo/internal/config"
)

// New は設定からロガーを作成します。出力先は標準エラーです。
func New(cfg config.LogConfig, prefix string) *log.Logger {
	return NewWithWriter(os.Stderr, cfg, prefix)
}

// NewWithWriter は出力先を指定してロガーを作成します。
func NewWithWriter(w io.Writer, cfg config.LogConfig, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(cfg.Level),
		Formatter:       ParseFormatter(cfg.Format),
		ReportTimestamp: cfg.Timestamps,
		Prefix:          prefix,
	})
}

// Discard は何も出力しないロガーを返します。テストやクライアントの既定値に使います。
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// ParseLevel は文字列のログレベルを変換します。不明な値は info です。
func ParseLevel(level string) log.Level {
	switch strings.ToLower(level) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// ParseFormatter はフォーマッタ名を変換します。不明な値は text です。
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
