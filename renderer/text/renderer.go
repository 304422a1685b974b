// Package textrenderer 提供基于字符格宽度的测量后端与纯文本报告。
// 每个字符的宽度为 runewidth 格数 × CellEm × 字号，适合没有字体文件的环境和确定性测试。
package textrenderer

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/ByLCY/conformist/fit"
	"github.com/ByLCY/conformist/layout"
	"github.com/ByLCY/conformist/renderer"
)

// DefaultCellEm 是单个字符格相对字号的宽度，接近常见等宽字体。
const DefaultCellEm = 0.6

// ContentColumn 是报告中内容列的最大显示宽度（字符格）。
const ContentColumn = 48

// Renderer 以字符格宽度测量文本。
type Renderer struct {
	// CellEm 为 0 时使用 DefaultCellEm。
	CellEm float64
	// Quantize 让字号按整像素取整，模拟只支持整数字号的排版引擎。
	Quantize bool
}

var _ renderer.Backend = (*Renderer)(nil)

// New 创建文本测量后端。
func New(quantize bool) *Renderer {
	return &Renderer{CellEm: DefaultCellEm, Quantize: quantize}
}

func (r *Renderer) cellEm() float64 {
	if r.CellEm > 0 {
		return r.CellEm
	}
	return DefaultCellEm
}

// Clone 实现 layout.Typesetter。
func (r *Renderer) Clone(c layout.Container) (layout.Clone, error) {
	cl := &clone{r: r, em: c.FontSize, spacing: c.WordSpacing}
	for _, ln := range c.Lines {
		cl.lines = append(cl.lines, layout.TransformText(ln.Content, c.TextTransform))
	}
	return cl, nil
}

type clone struct {
	r       *Renderer
	em      float64
	spacing float64
	lines   []string
	removed bool
}

func (c *clone) Line(index int) fit.Surface {
	if c.removed || index < 0 || index >= len(c.lines) {
		return nil
	}
	content := c.lines[index]
	return &surface{
		r:       c.r,
		em:      c.em,
		cells:   runewidth.StringWidth(content),
		spaces:  layout.CountSpaces(content),
		fontEm:  1,
		spacing: c.spacing,
	}
}

func (c *clone) Remove() { c.removed = true }

type surface struct {
	r       *Renderer
	em      float64
	cells   int
	spaces  int
	fontEm  float64
	spacing float64
}

func (s *surface) EmSize() float64 { return s.em }

// FontSize 返回实际生效的字号（px），Quantize 时向下取整。
func (s *surface) FontSize() float64 {
	px := s.fontEm * s.em
	if s.r.Quantize {
		px = math.Floor(px)
	}
	return px
}

func (s *surface) WordSpacing() float64 { return s.spacing }

func (s *surface) Width() float64 {
	return float64(s.cells)*s.r.cellEm()*s.FontSize() + float64(s.spaces)*s.spacing
}

func (s *surface) SetFontSize(em float64)    { s.fontEm = em }
func (s *surface) SetWordSpacing(px float64) { s.spacing = px }

// Render 输出适配结果的文本报告：每个容器一段，每行一条记录。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	var b strings.Builder
	if result.Meta.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", result.Meta.Title)
	}
	for i, box := range result.Containers {
		if box == nil {
			continue
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%s] width=%spx font=%s base=%spx\n",
			box.ID, num(box.Width), box.Font.Name, num(box.FontSize))
		for _, ln := range box.Lines {
			content := runewidth.Truncate(layout.TransformText(ln.Content, box.TextTransform), ContentColumn, "…")
			fmt.Fprintf(&b, "  %3d  %s  %10s  %10s  %s\n",
				ln.Index,
				runewidth.FillRight(content, ContentColumn),
				num(box.FontSizePx(ln))+"px",
				num(box.WordSpacingPx(ln))+"px",
				status(ln))
		}
	}
	return []byte(b.String()), nil
}

func status(ln layout.Line) string {
	switch {
	case ln.Result.Exempt:
		return "exempt"
	case ln.Result.Wrap:
		return "wrap"
	case ln.Result.FontSize == nil:
		return "unfitted"
	default:
		return "fit"
	}
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
