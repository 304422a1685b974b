// Package htmldoc 把 HTML 页面作为宿主：从页面中选出容器与行，适配后把 id、行序号与样式块写回页面。
package htmldoc

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/ByLCY/conformist/layout"
)

// WidthAttr 显式声明容器目标宽度的属性，优先于 style 中的 width。
const WidthAttr = "data-conform-width"

// Document 是解析后的 HTML 页面，记录容器与页面节点的对应关系。
type Document struct {
	root  *html.Node
	bound map[*layout.Container]*binding
}

type binding struct {
	node  *html.Node
	lines []*html.Node
}

// Parse 解析 HTML 页面。
func Parse(r io.Reader) (*Document, error) {
	root, err := htmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析 HTML 失败: %w", err)
	}
	return &Document{root: root, bound: map[*layout.Container]*binding{}}, nil
}

// Containers 按 opts.ContainerSelector 选出容器，按 opts.ChildSelector 选出各容器的行。
// 宽度取自 data-conform-width 或内联 width，基准字号取自内联 font-size（默认 16px）。
// 所有行使用同一个字体资源 font 测量。
func (d *Document) Containers(opts layout.Options, font layout.FontResource) ([]*layout.Container, error) {
	opts = withSelectors(opts)
	nodes, err := htmlquery.QueryAll(d.root, opts.ContainerSelector)
	if err != nil {
		return nil, fmt.Errorf("容器选择器无效 %q: %w", opts.ContainerSelector, err)
	}

	boxes := make([]*layout.Container, 0, len(nodes))
	for _, node := range nodes {
		style := inlineStyle(htmlquery.SelectAttr(node, "style"))
		em := layout.ParsePX(style["font-size"], layout.DefaultBaseFontSizePx, 0, layout.DefaultBaseFontSizePx)
		if em <= 0 {
			em = layout.DefaultBaseFontSizePx
		}
		width := htmlquery.SelectAttr(node, WidthAttr)
		if width == "" {
			width = style["width"]
		}

		box := &layout.Container{
			ID:            htmlquery.SelectAttr(node, "id"),
			Width:         layout.ParsePX(width, em, 0, 0),
			FontSize:      em,
			Font:          font,
			WordSpacing:   layout.ParsePX(style["word-spacing"], em, 0, 0),
			TextTransform: style["text-transform"],
		}

		children, err := htmlquery.QueryAll(node, opts.ChildSelector)
		if err != nil {
			return nil, fmt.Errorf("行选择器无效 %q: %w", opts.ChildSelector, err)
		}
		b := &binding{node: node}
		for _, child := range children {
			box.Lines = append(box.Lines, layout.Line{
				Content: layout.CollapseSpace(htmlquery.InnerText(child)),
				Classes: strings.Fields(htmlquery.SelectAttr(child, "class")),
			})
			b.lines = append(b.lines, child)
		}
		d.bound[box] = b
		boxes = append(boxes, box)
	}
	return boxes, nil
}

// IDs 返回页面中已存在的全部 id，用于让自动分配的容器 id 避开它们。
func (d *Document) IDs() []string {
	var ids []string
	for _, n := range htmlquery.Find(d.root, "//*[@id]") {
		ids = append(ids, htmlquery.SelectAttr(n, "id"))
	}
	return ids
}

// Apply 把适配结果写回页面：容器 id、行序号属性、全局样式块（只插入一次）与各容器的样式块。
// 同 id 的旧样式块会被替换，重复执行不会累积。
func (d *Document) Apply(boxes []*layout.Container, sheets []layout.Stylesheet, opts layout.Options) error {
	opts = withSelectors(opts)
	head := htmlquery.FindOne(d.root, "//head")
	if head == nil {
		return fmt.Errorf("页面缺少 head 元素")
	}

	if global := layout.GlobalStyleID(opts); d.byID(global) == nil {
		head.AppendChild(styleNode(global, layout.GlobalCSS(opts)))
	}

	for _, box := range boxes {
		b, ok := d.bound[box]
		if !ok {
			continue
		}
		setAttr(b.node, "id", box.ID)
		for i, node := range b.lines {
			if i >= len(box.Lines) {
				break
			}
			setAttr(node, opts.LineAttr, strconv.Itoa(box.Lines[i].Index))
		}
	}

	for _, s := range sheets {
		if old := d.byID(s.ID); old != nil && old.Parent != nil {
			old.Parent.RemoveChild(old)
		}
		head.AppendChild(styleNode(s.ID, s.WithLineAttr(opts.LineAttr).CSS()))
	}
	return nil
}

// Render 输出页面 HTML。
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *Document) byID(id string) *html.Node {
	for _, n := range htmlquery.Find(d.root, "//*[@id]") {
		if htmlquery.SelectAttr(n, "id") == id {
			return n
		}
	}
	return nil
}

func withSelectors(opts layout.Options) layout.Options {
	d := layout.DefaultOptions()
	if opts.ContainerSelector == "" {
		opts.ContainerSelector = d.ContainerSelector
	}
	if opts.ChildSelector == "" {
		opts.ChildSelector = d.ChildSelector
	}
	if opts.LineAttr == "" {
		opts.LineAttr = d.LineAttr
	}
	return opts
}

func styleNode(id, css string) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     "style",
		DataAtom: atom.Style,
		Attr:     []html.Attribute{{Key: "id", Val: id}},
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: css})
	return n
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
