package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ByLCY/conformist/fonts"
	"github.com/ByLCY/conformist/htmldoc"
	"github.com/ByLCY/conformist/layout"
	"github.com/ByLCY/conformist/logger"
)

type htmlOptions struct {
	input   string
	output  string
	config  string
	font    string
	measure string
}

func newHTMLCmd() *cobra.Command {
	var o htmlOptions
	cmd := &cobra.Command{
		Use:   "html",
		Short: "适配 HTML 页面中的 .conform 容器，把 id、行序号与样式块写回页面",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("font") {
				o.font = ""
			}
			if !cmd.Flags().Changed("measure") {
				o.measure = ""
			}
			return runHTML(o, newLogger())
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.input, "in", "", "HTML 输入路径")
	f.StringVar(&o.output, "out", "-", "HTML 输出路径（- 表示标准输出）")
	f.StringVar(&o.config, "config", "", "配置文件（.yaml/.yml/.json/.jsonc）")
	f.StringVar(&o.font, "font", "builtin:"+fonts.Default, "测量使用的字体 src（builtin:<name>、embed:<name> 或文件路径）")
	f.StringVar(&o.measure, "measure", "canvas", "测量后端：canvas、text、text-quantized")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func runHTML(o htmlOptions, log logger.Logger) error {
	opts, cfg, err := loadOptions(o.config, log)
	if err != nil {
		return err
	}
	font, measure := o.font, o.measure
	if cfg != nil {
		if font == "" && cfg.Font != nil {
			font = *cfg.Font
		}
		if measure == "" && cfg.Measure != nil {
			measure = *cfg.Measure
		}
	}
	if font == "" {
		font = "builtin:" + fonts.Default
	}

	raw, err := os.ReadFile(o.input)
	if err != nil {
		return fmt.Errorf("无法打开 HTML 文件 %s: %w", o.input, err)
	}
	doc, err := htmldoc.Parse(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	boxes, err := doc.Containers(opts, layout.FontResource{Name: "Body", Family: "Body", Src: font})
	if err != nil {
		return err
	}
	if len(boxes) == 0 {
		log.Warn("页面中没有匹配的容器", "selector", opts.ContainerSelector)
	}

	backend, err := newBackend(measure, filepath.Dir(o.input))
	if err != nil {
		return err
	}
	c := layout.New(backend, opts)
	c.Reserve(doc.IDs()...)
	sheets, err := c.Conform(boxes...)
	if err != nil {
		return fmt.Errorf("适配失败: %w", err)
	}
	if err := doc.Apply(boxes, sheets, c.Options()); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return fmt.Errorf("输出 HTML 失败: %w", err)
	}
	return writeOutput(o.output, buf.Bytes())
}
