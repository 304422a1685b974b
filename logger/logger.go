// Package logger 是 log/slog 的薄封装，供编排器与命令行共用。
package logger

import (
	"io"
	"log/slog"
	"os"
)

// Logger 是编排器与命令行依赖的日志接口，参数按 slog 的 key/value 交替传入。
// 编排器在 Debug 级别记录每次适配的容器与逐行结果，在 Warn 级别记录被跳过的容器。
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options 描述日志的输出目标、最低级别与格式。
type Options struct {
	// Buffer 为 nil 时写到标准错误。
	Buffer io.Writer
	Level  Level
	// Type 选择 text 或 JSON handler，未知值按 text 处理。
	Type Type
}

var (
	DefaultLogger = New(Options{os.Stderr, DefaultLevel, TypeText})
	// Discard 丢弃所有日志，是未配置 Logger 时的默认值。
	Discard = New(Options{io.Discard, ErrorLevel, TypeText})
)

type logger struct {
	*slog.Logger
}

// New 按 opts 构造一个基于 slog 的 Logger。
func New(opts Options) Logger {
	if opts.Buffer == nil {
		opts.Buffer = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{Level: levels[opts.Level]}
	var handler slog.Handler
	switch opts.Type {
	case TypeJSON:
		handler = slog.NewJSONHandler(opts.Buffer, handlerOpts)
	case TypeText:
		fallthrough
	default:
		handler = slog.NewTextHandler(opts.Buffer, handlerOpts)
	}
	return &logger{Logger: slog.New(handler)}
}
