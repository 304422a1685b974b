package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/conformist/layout"
)

// PageMargin 是预览页四周的留白（px）。
const PageMargin = 24.0

// Render 把适配结果画成 PDF：每个容器一页，页宽为容器宽度加留白。
// 不换行的行逐词绘制，词间距按适配结果加宽；换行的行按容器宽度贪心折行。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	pages := make([]*page, 0, len(result.Containers))
	for _, box := range result.Containers {
		if box == nil || box.Width <= 0 {
			continue
		}
		p, err := r.layoutPage(box)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的容器")
	}

	var buf bytes.Buffer
	writer := pdf.New(&buf, pages[0].width, pages[0].height, nil)
	applyMeta(writer, result.Meta)
	for i, p := range pages {
		if i > 0 {
			writer.NewPage(p.width, p.height)
		}
		c := canvas.New(p.width, p.height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
		p.draw(ctx)
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	keywords := strings.Join(meta.Keywords, ", ")
	writer.SetInfo(meta.Title, meta.Subject, keywords, meta.Author, meta.Creator)
}

// page 保存一页的排版结果，坐标与尺寸均为 mm。
type page struct {
	width, height float64
	frame         float64 // 容器宽度
	runs          []run
}

// run 是一段定位好的文本。
type run struct {
	x, y float64
	text *canvas.Text
}

func (p *page) draw(ctx *canvas.Context) {
	margin := PageMargin * layout.PxToMm
	ctx.SetStrokeColor(canvas.Hex("#cccccc"))
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeWidth(0.2)
	ctx.DrawPath(margin, margin, canvas.Rectangle(p.frame, p.height-2*margin))
	for _, r := range p.runs {
		ctx.DrawText(r.x, r.y, r.text)
	}
}

func (r *Renderer) layoutPage(box *layout.Container) (*page, error) {
	family, style, err := r.ensureFontFamily(box.Font)
	if err != nil {
		return nil, fmt.Errorf("容器 %s: %w", box.ID, err)
	}
	margin := PageMargin * layout.PxToMm
	frame := box.Width * layout.PxToMm
	p := &page{width: frame + 2*margin, frame: frame}

	cursorY := margin
	for _, ln := range box.Lines {
		face := r.fontFace(family, style, box.FontSizePx(ln))
		metrics := face.Metrics()
		content := layout.TransformText(ln.Content, box.TextTransform)
		spacing := box.WordSpacingPx(ln) * layout.PxToMm

		rows := []string{content}
		if ln.Wraps() {
			rows = wrapWords(content, frame, spacing, face)
		}
		for _, row := range rows {
			baseline := cursorY + metrics.Ascent
			p.runs = append(p.runs, wordRuns(row, margin, baseline, spacing, face)...)
			cursorY += metrics.LineHeight
		}
	}
	p.height = cursorY + margin
	return p, nil
}

// wordRuns 把一行拆成单词逐个定位，使每个空格额外加宽 spacing（mm）。
func wordRuns(row string, x, baseline, spacing float64, face *canvas.FontFace) []run {
	if spacing == 0 {
		return []run{{x: x, y: baseline, text: canvas.NewTextLine(face, row, canvas.Left)}}
	}
	space := face.TextWidth(" ")
	var runs []run
	for i, word := range splitWords(row) {
		if i > 0 {
			x += space + spacing
		}
		if word != "" {
			runs = append(runs, run{x: x, y: baseline, text: canvas.NewTextLine(face, word, canvas.Left)})
			x += face.TextWidth(word)
		}
	}
	return runs
}

// splitWords 按普通空格与不换行空格切分，保留空词以维持连续空格的宽度。
func splitWords(s string) []string {
	var (
		words []string
		start int
	)
	for i, r := range s {
		if r == ' ' || r == '\u00a0' {
			words = append(words, s[start:i])
			start = i + len(string(r))
		}
	}
	return append(words, s[start:])
}

// wrapWords 以贪心策略把一行折成多行，宽度按词宽加上词间距累计（mm）。
// 单个超宽的词独占一行。
func wrapWords(content string, limit, spacing float64, face *canvas.FontFace) []string {
	if limit <= 0 {
		limit = math.MaxFloat64
	}
	words := strings.Fields(content)
	if len(words) == 0 {
		return []string{""}
	}
	space := face.TextWidth(" ") + spacing
	var (
		rows    []string
		current []string
		width   float64
	)
	for _, word := range words {
		w := face.TextWidth(word)
		if len(current) > 0 && width+space+w > limit {
			rows = append(rows, strings.Join(current, " "))
			current, width = nil, 0
		}
		if len(current) > 0 {
			width += space
		}
		current = append(current, word)
		width += w
	}
	return append(rows, strings.Join(current, " "))
}
