// Package logger はプロセス全体の slog ロガーを設定します。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup は標準出力に書き込む既定のロガーを設定します。
// level は debug|info|warn|error（既定 info）、format は json|text（既定 json）。
func Setup(level, format string) *slog.Logger {
	return SetupWriter(os.Stdout, level, format)
}

// SetupWriter は出力先を指定できる Setup です。
func SetupWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler
	if strings.EqualFold(format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	l := slog.New(h)
	slog.SetDefault(l)
	return l
}

func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
