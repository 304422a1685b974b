package layout

import (
	"github.com/ByLCY/conformist/fit"
	"github.com/ByLCY/conformist/logger"
)

// 默认配置值。
const (
	DefaultMinFontSizePx     = 10
	DefaultMaxFontSizePx     = 528
	DefaultExemptClass       = "nonconformist"
	DefaultStyleIDPrefix     = "conformist-style"
	DefaultContainerIDPrefix = "conformist-box"
	DefaultLineAttr          = "data-conformist-line"
	DefaultContainerClass    = "conform"
	DefaultBaseFontSizePx    = 16
)

// DefaultChildSelector 选出容器的直接子元素作为行，排除非文本类元素。
const DefaultChildSelector = `./*[not(self::br or self::script or self::canvas or self::del or self::embed or self::figure or self::hr or self::img or self::object)]`

// DefaultContainerSelector 选出 class 含 conform 的容器。
const DefaultContainerSelector = `//*[contains(concat(' ', normalize-space(@class), ' '), ' conform ')]`

// Options 是一次适配使用的配置，显式传入，不依赖全局状态。
type Options struct {
	// MinFontSizePx <= 0 时关闭字号下限。
	MinFontSizePx float64 `json:"minFontSizePx"`
	// MaxFontSizePx <= 0 时关闭字号上限。
	MaxFontSizePx  float64 `json:"maxFontSizePx"`
	MaxShrinkSteps int     `json:"maxShrinkSteps"`

	ChildSelector     string `json:"childSelector"`
	ContainerSelector string `json:"containerSelector"`
	ExemptClass       string `json:"exemptClass"`
	StyleIDPrefix     string `json:"styleIdPrefix"`
	ContainerIDPrefix string `json:"containerIdPrefix"`
	LineAttr          string `json:"lineAttr"`

	// OnConformed 在一次 Conform 的全部样式表安装完成后调用一次。
	OnConformed func(sheets []Stylesheet) `json:"-"`
	Logger      logger.Logger             `json:"-"`
}

// DefaultOptions 返回带默认值的配置。
func DefaultOptions() Options {
	return Options{
		MinFontSizePx:     DefaultMinFontSizePx,
		MaxFontSizePx:     DefaultMaxFontSizePx,
		MaxShrinkSteps:    fit.DefaultMaxShrinkSteps,
		ChildSelector:     DefaultChildSelector,
		ContainerSelector: DefaultContainerSelector,
		ExemptClass:       DefaultExemptClass,
		StyleIDPrefix:     DefaultStyleIDPrefix,
		ContainerIDPrefix: DefaultContainerIDPrefix,
		LineAttr:          DefaultLineAttr,
	}
}

// Bounds 返回传给适配引擎的字号约束。
func (o Options) Bounds() fit.Bounds {
	return fit.Bounds{
		MinFontSizePx:  o.MinFontSizePx,
		MaxFontSizePx:  o.MaxFontSizePx,
		MaxShrinkSteps: o.MaxShrinkSteps,
	}
}

// withDefaults 为空字符串类配置补默认值；数值配置保持原样（0 有含义）。
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ChildSelector == "" {
		o.ChildSelector = d.ChildSelector
	}
	if o.ContainerSelector == "" {
		o.ContainerSelector = d.ContainerSelector
	}
	if o.ExemptClass == "" {
		o.ExemptClass = d.ExemptClass
	}
	if o.StyleIDPrefix == "" {
		o.StyleIDPrefix = d.StyleIDPrefix
	}
	if o.ContainerIDPrefix == "" {
		o.ContainerIDPrefix = d.ContainerIDPrefix
	}
	if o.LineAttr == "" {
		o.LineAttr = d.LineAttr
	}
	if o.Logger == nil {
		o.Logger = logger.Discard
	}
	return o
}

// Typesetter 是测量后端：为容器构建一个离屏、宽度不受约束的副本，用于读取各行的自然宽度。
type Typesetter interface {
	Clone(c Container) (Clone, error)
}

// Clone 是容器的离屏副本，只在一次容器适配内有效，用完必须 Remove。
type Clone interface {
	Line(index int) fit.Surface
	Remove()
}
