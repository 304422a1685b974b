// Package config 读取适配配置文件（YAML 或带注释的 JSON），覆盖到 layout.Options 上。
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/conformist/layout"
)

// File 是配置文件的内容。字段为 nil 表示未设置，保留原有值；
// 显式写 0 的字号上下限表示关闭该约束。
type File struct {
	MinFontSizePx     *float64 `yaml:"minFontSizePx" json:"minFontSizePx"`
	MaxFontSizePx     *float64 `yaml:"maxFontSizePx" json:"maxFontSizePx"`
	MaxShrinkSteps    *int     `yaml:"maxShrinkSteps" json:"maxShrinkSteps"`
	ChildSelector     *string  `yaml:"childSelector" json:"childSelector"`
	ContainerSelector *string  `yaml:"containerSelector" json:"containerSelector"`
	ExemptClass       *string  `yaml:"exemptClass" json:"exemptClass"`
	StyleIDPrefix     *string  `yaml:"styleIdPrefix" json:"styleIdPrefix"`
	ContainerIDPrefix *string  `yaml:"containerIdPrefix" json:"containerIdPrefix"`
	LineAttr          *string  `yaml:"lineAttr" json:"lineAttr"`

	// Font 是 html 子命令测量时使用的字体 src，例如 builtin:goregular。
	Font *string `yaml:"font" json:"font"`
	// Measure 选择测量后端：canvas、text 或 text-quantized。
	Measure *string `yaml:"measure" json:"measure"`
}

// Load 按扩展名读取配置：.yaml/.yml 使用 YAML，.json/.jsonc 允许注释与尾逗号。未知字段视为错误。
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
		}
	case ".json", ".jsonc":
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("不支持的配置文件格式: %s", ext)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("配置文件 %s: %w", path, err)
	}
	return &f, nil
}

// Validate 检查取值范围。
func (f *File) Validate() error {
	if f.MaxShrinkSteps != nil && *f.MaxShrinkSteps < 0 {
		return fmt.Errorf("maxShrinkSteps 不能为负数: %d", *f.MaxShrinkSteps)
	}
	if f.MinFontSizePx != nil && f.MaxFontSizePx != nil &&
		*f.MinFontSizePx > 0 && *f.MaxFontSizePx > 0 && *f.MinFontSizePx > *f.MaxFontSizePx {
		return fmt.Errorf("minFontSizePx (%g) 大于 maxFontSizePx (%g)", *f.MinFontSizePx, *f.MaxFontSizePx)
	}
	if f.Measure != nil {
		switch *f.Measure {
		case "canvas", "text", "text-quantized":
		default:
			return fmt.Errorf("未知的测量后端: %s", *f.Measure)
		}
	}
	return nil
}

// Apply 把已设置的字段覆盖到 opts 上。f 为 nil 时原样返回。
func (f *File) Apply(opts layout.Options) layout.Options {
	if f == nil {
		return opts
	}
	setFloat(&opts.MinFontSizePx, f.MinFontSizePx)
	setFloat(&opts.MaxFontSizePx, f.MaxFontSizePx)
	if f.MaxShrinkSteps != nil {
		opts.MaxShrinkSteps = *f.MaxShrinkSteps
	}
	setString(&opts.ChildSelector, f.ChildSelector)
	setString(&opts.ContainerSelector, f.ContainerSelector)
	setString(&opts.ExemptClass, f.ExemptClass)
	setString(&opts.StyleIDPrefix, f.StyleIDPrefix)
	setString(&opts.ContainerIDPrefix, f.ContainerIDPrefix)
	setString(&opts.LineAttr, f.LineAttr)
	return opts
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
