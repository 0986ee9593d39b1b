// Package logger は構造化ログのセットアップを提供する。
package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// Setup は指定フォーマットのslog.Loggerを生成して返す。
// formatが"text"の場合はtintによる開発向けの色付きテキスト出力、
// それ以外はJSON構造化ログ出力となる。
func Setup(w io.Writer, format string) *slog.Logger {
	var handler slog.Handler
	switch format {
	case "text":
		handler = tint.NewHandler(w, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		})
	default:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return slog.New(handler)
}

// SetupDefault は指定フォーマットのロガーをグローバルロガーとして設定する。
// writerがnilの場合はos.Stdoutに出力する。本番ではJSONを想定している。
func SetupDefault(w io.Writer, format string) {
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(Setup(w, format))
}
