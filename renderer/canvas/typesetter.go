package canvasrenderer

import (
	"fmt"
	"math"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/conformist/fit"
	"github.com/ByLCY/conformist/layout"
)

// Clone 实现 layout.Typesetter：为容器建立离屏副本，各行宽度由真实字形轮廓测得。
// 副本不受容器宽度约束，所有行都按单行（nowrap）测量。
func (r *Renderer) Clone(c layout.Container) (layout.Clone, error) {
	family, style, err := r.ensureFontFamily(c.Font)
	if err != nil {
		return nil, fmt.Errorf("容器 %s: %w", c.ID, err)
	}
	cl := &clone{
		r:       r,
		family:  family,
		style:   style,
		em:      c.FontSize,
		spacing: c.WordSpacing,
		faces:   map[float64]*canvas.FontFace{},
	}
	for _, ln := range c.Lines {
		cl.lines = append(cl.lines, layout.TransformText(ln.Content, c.TextTransform))
	}
	return cl, nil
}

type clone struct {
	r       *Renderer
	family  *canvas.FontFamily
	style   canvas.FontStyle
	em      float64
	spacing float64
	lines   []string
	faces   map[float64]*canvas.FontFace
	removed bool
}

// Line 返回第 index 行的测量面；越界时返回 nil。
func (c *clone) Line(index int) fit.Surface {
	if c.removed || index < 0 || index >= len(c.lines) {
		return nil
	}
	return &lineSurface{
		clone:   c,
		content: c.lines[index],
		spaces:  layout.CountSpaces(c.lines[index]),
		fontEm:  1,
		spacing: c.spacing,
	}
}

// Remove 释放副本持有的字体面缓存。
func (c *clone) Remove() {
	c.removed = true
	c.faces = nil
}

// face 按字号（px）缓存字体面；同一行在迭代中会反复测量相同字号。
func (c *clone) face(sizePx float64) *canvas.FontFace {
	if c.faces == nil {
		c.faces = map[float64]*canvas.FontFace{}
	}
	if f, ok := c.faces[sizePx]; ok {
		return f
	}
	f := c.r.fontFace(c.family, c.style, sizePx)
	c.faces[sizePx] = f
	return f
}

// lineSurface 是单行的可变样式：字号（em，相对容器基准字号）与词间距（px）。
type lineSurface struct {
	clone   *clone
	content string
	spaces  int
	fontEm  float64
	spacing float64
}

func (s *lineSurface) EmSize() float64      { return s.clone.em }
func (s *lineSurface) FontSize() float64    { return s.fontEm * s.clone.em }
func (s *lineSurface) WordSpacing() float64 { return s.spacing }

// Width 返回该行在当前样式下的渲染宽度（px）。
func (s *lineSurface) Width() float64 {
	px := s.FontSize()
	if !(px > 0) || math.IsInf(px, 0) {
		return 0
	}
	w := s.clone.face(px).TextWidth(s.content) * layout.MmToPx
	return w + float64(s.spaces)*s.spacing
}

func (s *lineSurface) SetFontSize(em float64)    { s.fontEm = em }
func (s *lineSurface) SetWordSpacing(px float64) { s.spacing = px }
