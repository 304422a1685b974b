package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ByLCY/conformist/fit"
)

// Stylesheet 是一个容器的一次适配产物，以容器 id 为键，整体生成、整体替换。
type Stylesheet struct {
	ID          string `json:"id"`
	ContainerID string `json:"containerId"`
	Rules       []Rule `json:"rules"`
	lineAttr    string
}

// Rule 对应容器中的一行。字段为空表示不输出该声明。
type Rule struct {
	Line          int      `json:"line"`
	WhiteSpace    string   `json:"whiteSpace,omitempty"`
	FontSizeEm    *float64 `json:"fontSizeEm,omitempty"`
	WordSpacingPx *float64 `json:"wordSpacingPx,omitempty"`
}

// StyleID 返回容器对应的样式块 id。
func StyleID(opts Options, containerID string) string {
	prefix := opts.StyleIDPrefix
	if prefix == "" {
		prefix = DefaultStyleIDPrefix
	}
	return prefix + "-" + containerID
}

func ruleFor(index int, res fit.Result) Rule {
	r := Rule{Line: index}
	if res.Exempt || res.Wrap {
		r.WhiteSpace = "normal"
	}
	if res.FontSize != nil && usable(*res.FontSize) {
		v := *res.FontSize
		r.FontSizeEm = &v
	}
	if res.WordSpacing != nil && usable(*res.WordSpacing) {
		v := *res.WordSpacing
		r.WordSpacingPx = &v
	}
	return r
}

// usable 过滤 0 与非有限值：它们不会写进样式表。
func usable(v float64) bool {
	return v != 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Selector 返回某一行的 CSS 选择器。
func (s Stylesheet) Selector(line int) string {
	attr := s.lineAttr
	if attr == "" {
		attr = DefaultLineAttr
	}
	return fmt.Sprintf(`#%s [%s="%d"]`, s.ContainerID, attr, line)
}

// WithLineAttr 返回使用指定行属性名生成选择器的副本。
func (s Stylesheet) WithLineAttr(attr string) Stylesheet {
	s.lineAttr = attr
	return s
}

// CSS 生成样式块内容，每行一条规则。
func (s Stylesheet) CSS() string {
	var b strings.Builder
	for i, r := range s.Rules {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s.Selector(r.Line))
		b.WriteString(" {")
		if r.WhiteSpace != "" {
			b.WriteString(" white-space: " + r.WhiteSpace + ";")
		}
		if r.FontSizeEm != nil {
			b.WriteString(" font-size: " + formatNumber(*r.FontSizeEm) + "em;")
		}
		if r.WordSpacingPx != nil {
			b.WriteString(" word-spacing: " + formatNumber(*r.WordSpacingPx) + "px;")
		}
		b.WriteString(" }")
	}
	return b.String()
}

// GlobalStyleID 返回全局样式块的 id。
func GlobalStyleID(opts Options) string { return StyleID(opts, "global") }

// GlobalCSS 返回所有容器共用的基础样式：行内不换行、子元素独占一行、豁免行恢复换行。
func GlobalCSS(opts Options) string {
	exempt := opts.ExemptClass
	if exempt == "" {
		exempt = DefaultExemptClass
	}
	return strings.Join([]string{
		"." + DefaultContainerClass + " * { white-space: nowrap; }",
		"." + DefaultContainerClass + " > * { display: block; }",
		"." + DefaultContainerClass + " ." + exempt + " { white-space: normal; }",
	}, "\n")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}
