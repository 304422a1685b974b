package layout

import "github.com/ByLCY/conformist/fit"

// 该文件定义适配过程的数据模型与结果，供编排、渲染与调试 JSON 共用。

// Result 保存一次构建（DSL → 容器）后的全部信息；Conform 之后各行带有适配结果。
type Result struct {
	Containers  []*Container `json:"containers"`
	Stylesheets []Stylesheet `json:"stylesheets,omitempty"`
	Resources   ResourceSet  `json:"resources"`
	Meta        DocumentMeta `json:"meta"`
	Options     Options      `json:"options"`
}

// ResourceSet 记录解析出的字体与样式定义。
type ResourceSet struct {
	Fonts  map[string]FontResource `json:"fonts"`
	Styles map[string]Style        `json:"styles"`
}

// FontResource 描述字体资源，src 可以是文件路径、builtin:<name> 或 embed:<name>。
type FontResource struct {
	Name     string `json:"name"`
	Src      string `json:"src"`
	Style    string `json:"style"`
	Family   string `json:"family"` // 渲染器使用的 Family 名称
	Fallback string `json:"fallback,omitempty"`
}

// Container 是需要让子行铺满宽度的盒子。
// Width 为目标宽度（px），必须在任何修改发生前取得，整个适配过程中不变。
type Container struct {
	ID            string       `json:"id"`
	Width         float64      `json:"width"`
	FontSize      float64      `json:"fontSize"` // 基准字号（px），即 1em
	Font          FontResource `json:"font"`
	WordSpacing   float64      `json:"wordSpacing,omitempty"`
	TextTransform string       `json:"textTransform,omitempty"`
	Lines         []Line       `json:"lines"`
}

// Line 是容器中的一行。Index 为行在容器内的序号，每次适配时重新编号。
type Line struct {
	Index   int        `json:"index"`
	Content string     `json:"content"`
	Classes []string   `json:"classes,omitempty"`
	Exempt  bool       `json:"exempt,omitempty"`
	Result  fit.Result `json:"result"`
}

// HasClass 判断该行是否带有指定的 class。
func (l Line) HasClass(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range l.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// FontSizePx 返回适配后的字号（px）；没有覆盖时为容器基准字号。
func (c *Container) FontSizePx(l Line) float64 {
	if l.Result.FontSize == nil {
		return c.FontSize
	}
	return *l.Result.FontSize * c.FontSize
}

// WordSpacingPx 返回适配后的词间距（px）；没有覆盖时为容器词间距。
func (c *Container) WordSpacingPx(l Line) float64 {
	if l.Result.WordSpacing == nil {
		return c.WordSpacing
	}
	return *l.Result.WordSpacing
}

// Wraps 表示该行最终采用 white-space: normal。
func (l Line) Wraps() bool { return l.Result.Exempt || l.Result.Wrap }

// Style 用于描述可继承的容器样式。
type Style struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// DocumentMeta 保存文档元信息（PDF 预览也会写入）。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
