package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/conformist/dsl"
	"github.com/ByLCY/conformist/htmldoc"
	"github.com/ByLCY/conformist/layout"
	"github.com/ByLCY/conformist/logger"
	canvasrenderer "github.com/ByLCY/conformist/renderer/canvas"
	textrenderer "github.com/ByLCY/conformist/renderer/text"
)

type fitOptions struct {
	input   string
	data    string
	config  string
	css     string
	pdf     string
	report  string
	debug   string
	measure string
	minify  bool
}

func newFitCmd() *cobra.Command {
	var o fitOptions
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "读取 .conform 文档，计算每行的字号与词间距并输出 CSS",
		Long: `读取 .conform 文档，计算每行的字号与词间距。

配置按以下顺序叠加：默认值、--config 指定的配置文件、文档中的 config 段。
未指定任何输出时，CSS 写到标准输出。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("measure") {
				o.measure = ""
			}
			return runFit(o, newLogger())
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.input, "in", "examples/poster.conform", "DSL 文件路径")
	f.StringVar(&o.data, "data", "", "绑定到 DSL 的 JSON 数据，以 @ 开头时读取文件")
	f.StringVar(&o.config, "config", "", "配置文件（.yaml/.yml/.json/.jsonc）")
	f.StringVar(&o.css, "css", "", "CSS 输出路径（- 表示标准输出）")
	f.StringVar(&o.pdf, "pdf", "", "PDF 预览输出路径")
	f.StringVar(&o.report, "report", "", "文本报告输出路径（- 表示标准输出）")
	f.StringVar(&o.debug, "debug", "", "适配调试 JSON 输出路径")
	f.StringVar(&o.measure, "measure", "canvas", "测量后端：canvas、text、text-quantized")
	f.BoolVar(&o.minify, "minify", false, "压缩输出的 CSS")
	return cmd
}

// runFit 串联解析、构建、适配与输出。
func runFit(o fitOptions, log logger.Logger) error {
	opts, cfg, err := loadOptions(o.config, log)
	if err != nil {
		return err
	}
	measure := o.measure
	if measure == "" && cfg != nil && cfg.Measure != nil {
		measure = *cfg.Measure
	}

	data, err := loadData(o.data)
	if err != nil {
		return err
	}

	file, err := os.Open(o.input)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", o.input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}
	result, err := layout.Build(doc, data, opts)
	if err != nil {
		return fmt.Errorf("构建容器失败: %w", err)
	}

	baseDir := filepath.Dir(o.input)
	backend, err := newBackend(measure, baseDir)
	if err != nil {
		return err
	}
	if err := result.Conform(backend); err != nil {
		return fmt.Errorf("适配失败: %w", err)
	}
	log.Info("适配完成", "containers", len(result.Containers), "measure", measure)

	if o.debug != "" {
		if err := os.MkdirAll(filepath.Dir(o.debug), 0o755); err != nil {
			return fmt.Errorf("创建调试目录失败: %w", err)
		}
		if err := layout.WriteDebugJSON(result, o.debug); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}
	if o.pdf != "" {
		// 预览总是用字形轮廓绘制
		pdfBytes, err := canvasrenderer.NewRenderer(baseDir).Render(result)
		if err != nil {
			return fmt.Errorf("渲染 PDF 失败: %w", err)
		}
		if err := writeOutput(o.pdf, pdfBytes); err != nil {
			return err
		}
	}
	if o.report != "" {
		report, err := textrenderer.New(false).Render(result)
		if err != nil {
			return fmt.Errorf("生成报告失败: %w", err)
		}
		if err := writeOutput(o.report, report); err != nil {
			return err
		}
	}

	css := o.css
	if css == "" && o.pdf == "" && o.report == "" && o.debug == "" {
		css = "-"
	}
	if css == "" {
		return nil
	}
	text := result.CSS()
	if o.minify {
		if text, err = htmldoc.MinifyCSS(text); err != nil {
			return fmt.Errorf("压缩 CSS 失败: %w", err)
		}
	}
	return writeOutput(css, []byte(text))
}

// loadData 解析 --data：JSON 文本，或以 @ 开头的 JSON 文件路径。
func loadData(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	blob := []byte(raw)
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取 data 文件失败: %w", err)
		}
		blob = b
	}
	var data any
	if err := json.Unmarshal(blob, &data); err != nil {
		return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
	}
	return data, nil
}
