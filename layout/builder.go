package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/conformist/binding"
	"github.com/ByLCY/conformist/dsl"
)

const defaultFontName = "Body"

// Build 根据 DSL AST 生成容器与资源。opts 为基础配置，文档中的 config 段覆盖同名项。
// 返回的容器尚未适配，调用 Result.Conform 执行适配。
func Build(doc *dsl.Document, data any, opts Options) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}

	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	opts, err = applyConfig(doc, opts)
	if err != nil {
		return nil, err
	}

	var boxes []*Container
	for _, section := range doc.Sections {
		if section.Box == nil {
			continue
		}
		box, err := buildContainer(section.Box, res, data)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, box)
	}
	if len(boxes) == 0 {
		return nil, fmt.Errorf("文档中缺少 box 段落")
	}

	return &Result{
		Containers: boxes,
		Resources:  res,
		Meta:       collectMeta(doc),
		Options:    opts,
	}, nil
}

// Conform 用给定的测量后端适配全部容器，并记录生成的样式表。
func (r *Result) Conform(ts Typesetter) error {
	c := New(ts, r.Options)
	sheets, err := c.Conform(r.Containers...)
	r.Stylesheets = sheets
	return err
}

// CSS 拼接全部样式表，每块前标注样式块 id。
func (r *Result) CSS() string {
	var b strings.Builder
	b.WriteString("/* " + GlobalStyleID(r.Options) + " */\n")
	b.WriteString(GlobalCSS(r.Options))
	for _, s := range r.Stylesheets {
		b.WriteString("\n\n/* " + s.ID + " */\n")
		b.WriteString(s.CSS())
	}
	b.WriteByte('\n')
	return b.String()
}

func buildContainer(section *dsl.BoxSection, res ResourceSet, data any) (*Container, error) {
	attrs := parseArgs(section.Params)
	attrs = mergeStyleAttributes(attrs["style"], attrs, res.Styles)

	fontSize := ParsePX(attrs["size"], DefaultBaseFontSizePx, 0, DefaultBaseFontSizePx)
	if fontSize <= 0 {
		return nil, fmt.Errorf("box %s 的字号无效: %s", attrs["id"], attrs["size"])
	}
	font, err := resolveFontResource(attrs["font"], res)
	if err != nil {
		return nil, err
	}

	box := &Container{
		ID:            attrs["id"],
		Width:         ParsePX(attrs["width"], fontSize, 0, 0),
		FontSize:      fontSize,
		Font:          font,
		WordSpacing:   ParsePX(attrs["spacing"], fontSize, 0, 0),
		TextTransform: attrs["transform"],
	}
	if section.Block == nil {
		return box, nil
	}
	for _, stmt := range section.Block.Statements {
		switch {
		case stmt.Text != nil:
			box.Lines = append(box.Lines, Line{
				Content: CollapseSpace(binding.Interpolate(string(stmt.Text.Value), data)),
			})
		case stmt.Command != nil && stmt.Command.Name == "line":
			classes := make([]string, 0, len(stmt.Command.Args))
			for _, arg := range stmt.Command.Args {
				classes = append(classes, arg.Value)
			}
			box.Lines = append(box.Lines, Line{
				Content: CollapseSpace(binding.Interpolate(extractText(stmt.Command.Block), data)),
				Classes: classes,
			})
		}
	}
	return box, nil
}

// applyConfig 把文档中的 config 段覆盖到 opts 上。
func applyConfig(doc *dsl.Document, opts Options) (Options, error) {
	for _, section := range doc.Sections {
		if section.Config == nil || section.Config.Block == nil {
			continue
		}
		for _, stmt := range section.Config.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			key := strings.ToLower(stmt.Assignment.Key)
			val := valueToString(stmt.Assignment.Value)
			switch key {
			case "min-font-size", "max-font-size":
				l, ok := ParseLength(val)
				if !ok {
					return opts, fmt.Errorf("config %s 的取值无效: %s", key, val)
				}
				px := l.ToPX(DefaultBaseFontSizePx, 0)
				if key == "min-font-size" {
					opts.MinFontSizePx = px
				} else {
					opts.MaxFontSizePx = px
				}
			case "max-shrink-steps":
				n, err := strconv.Atoi(val)
				if err != nil {
					return opts, fmt.Errorf("config %s 的取值无效: %w", key, err)
				}
				opts.MaxShrinkSteps = n
			case "child-selector":
				opts.ChildSelector = val
			case "container-selector":
				opts.ContainerSelector = val
			case "exempt-class":
				opts.ExemptClass = val
			case "style-id-prefix":
				opts.StyleIDPrefix = val
			case "container-id-prefix":
				opts.ContainerIDPrefix = val
			case "line-attr":
				opts.LineAttr = val
			default:
				return opts, fmt.Errorf("未知的 config 项: %s", key)
			}
		}
	}
	return opts, nil
}

func collectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Styles: map[string]Style{},
	}
	rawStyles := map[string]Style{}

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			if stmt.Command == nil {
				continue
			}
			switch stmt.Command.Name {
			case "font":
				font := parseFontResource(stmt.Command)
				if font.Name != "" {
					res.Fonts[font.Name] = font
				}
			case "style":
				style := parseStyleResource(stmt.Command)
				if style.Name != "" {
					rawStyles[style.Name] = style
				}
			}
		}
	}

	if len(res.Fonts) == 0 {
		res.Fonts[defaultFontName] = FontResource{
			Name:   defaultFontName,
			Src:    "builtin:goregular",
			Family: defaultFontName,
		}
	}

	resolved, err := resolveStyles(rawStyles)
	if err != nil {
		return res, err
	}
	res.Styles = resolved
	return res, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{Creator: "Conformist"}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			if stmt.Assignment == nil {
				continue
			}
			switch strings.ToLower(stmt.Assignment.Key) {
			case "title":
				meta.Title = valueToString(stmt.Assignment.Value)
			case "author":
				meta.Author = valueToString(stmt.Assignment.Value)
			case "subject":
				meta.Subject = valueToString(stmt.Assignment.Value)
			case "creator":
				meta.Creator = valueToString(stmt.Assignment.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(stmt.Assignment.Value)
			}
		}
	}
	return meta
}

func parseFontResource(cmd *dsl.Command) FontResource {
	if len(cmd.Args) == 0 {
		return FontResource{}
	}
	font := FontResource{
		Name:   cmd.Args[0].Value,
		Family: cmd.Args[0].Value,
	}
	if cmd.Block == nil {
		return font
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil || stmt.Assignment.Value.String == nil {
			continue
		}
		val := string(*stmt.Assignment.Value.String)
		switch stmt.Assignment.Key {
		case "src":
			font.Src = val
		case "style":
			font.Style = val
		case "fallback":
			font.Fallback = val
		}
	}
	return font
}

func parseStyleResource(cmd *dsl.Command) Style {
	if len(cmd.Args) == 0 {
		return Style{}
	}
	style := Style{
		Name:  cmd.Args[0].Value,
		Props: map[string]string{},
	}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		style.Extends = cmd.Args[2].Value
	}
	if cmd.Block == nil {
		return style
	}
	for _, stmt := range cmd.Block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		if val := valueToString(stmt.Assignment.Value); val != "" {
			style.Props[stmt.Assignment.Key] = val
		}
	}
	return style
}

// resolveStyles 展开 extends 继承链，检测未定义与循环继承。
func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var dfs func(name string) (Style, error)
	dfs = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := dfs(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		delete(visiting, name)
		return style, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// parseArgs 把 key value 成对的参数转成 map，末尾落单的 key 被忽略。
func parseArgs(args []*dsl.Lexeme) map[string]string {
	result := map[string]string{}
	for i := 0; i+1 < len(args); i += 2 {
		result[strings.ToLower(args[i].Value)] = args[i+1].Value
	}
	return result
}

// mergeStyleAttributes 以样式属性为底，内联属性覆盖其上。
func mergeStyleAttributes(style string, inline map[string]string, styles map[string]Style) map[string]string {
	out := make(map[string]string)
	if style != "" {
		if s, ok := styles[style]; ok {
			for k, v := range s.Props {
				out[k] = v
			}
		}
	}
	for k, v := range inline {
		out[k] = v
	}
	return out
}

func extractText(block *dsl.Block) string {
	if block == nil {
		return ""
	}
	var builder strings.Builder
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			builder.WriteString(string(stmt.Text.Value))
		}
	}
	return builder.String()
}

func resolveFontResource(name string, res ResourceSet) (FontResource, error) {
	if font, ok := res.Fonts[name]; ok {
		return font, nil
	}
	if name != "" {
		return FontResource{}, fmt.Errorf("字体 %s 未定义", name)
	}
	if font, ok := res.Fonts[defaultFontName]; ok {
		return font, nil
	}
	for _, font := range res.Fonts {
		return font, nil
	}
	return FontResource{}, fmt.Errorf("没有可用的默认字体")
}

func valueToString(val *dsl.Value) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return string(*val.String)
	case val.Number != nil:
		return *val.Number
	case val.Expr != nil:
		var builder strings.Builder
		for _, part := range val.Expr.Parts {
			builder.WriteString(part.Value)
		}
		return builder.String()
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val); s != "" {
		return []string{s}
	}
	return nil
}
