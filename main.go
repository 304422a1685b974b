package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ByLCY/conformist/config"
	"github.com/ByLCY/conformist/layout"
	"github.com/ByLCY/conformist/logger"
	"github.com/ByLCY/conformist/renderer"
	canvasrenderer "github.com/ByLCY/conformist/renderer/canvas"
	textrenderer "github.com/ByLCY/conformist/renderer/text"
)

var (
	verboseFlag bool

	rootCmd = &cobra.Command{
		Use:           "conformist",
		Short:         "Conformist - 让容器中的每一行文字恰好铺满容器宽度",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "输出逐行适配的调试日志")
	rootCmd.AddCommand(newFitCmd(), newHTMLCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(1)
	}
}

func newLogger() logger.Logger {
	level := logger.InfoLevel
	if verboseFlag {
		level = logger.DebugLevel
	}
	return logger.New(logger.Options{Buffer: os.Stderr, Level: level, Type: logger.TypeText})
}

// loadOptions 依次叠加默认值与配置文件，返回配置与配置文件内容（未指定时为 nil）。
func loadOptions(path string, log logger.Logger) (layout.Options, *config.File, error) {
	opts := layout.DefaultOptions()
	opts.Logger = log
	if path == "" {
		return opts, nil, nil
	}
	f, err := config.Load(path)
	if err != nil {
		return opts, nil, err
	}
	return f.Apply(opts), f, nil
}

// newBackend 按名称创建测量后端，baseDir 用于解析相对字体路径。
func newBackend(measure, baseDir string) (renderer.Backend, error) {
	switch measure {
	case "", "canvas":
		return canvasrenderer.NewRenderer(baseDir), nil
	case "text":
		return textrenderer.New(false), nil
	case "text-quantized":
		return textrenderer.New(true), nil
	default:
		return nil, fmt.Errorf("未知的测量后端: %s（可选 canvas、text、text-quantized）", measure)
	}
}

// writeOutput 写入文件；path 为 "-" 时写到标准输出。
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}
