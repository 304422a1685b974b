package htmldoc

import (
	"strings"

	"github.com/tdewolff/minify/v2"
	mincss "github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// inlineStyle 解析 style 属性，返回小写属性名到取值的映射；同名属性后者覆盖前者。
func inlineStyle(style string) map[string]string {
	out := map[string]string{}
	if strings.TrimSpace(style) == "" {
		return out
	}
	p := css.NewParser(parse.NewInputString(style), true)
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			// io.EOF 或语法错误：出错之前已解析的声明仍然保留
			return out
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			var b strings.Builder
			for _, v := range p.Values() {
				b.Write(v.Data)
			}
			out[strings.ToLower(string(data))] = strings.TrimSpace(b.String())
		}
	}
}

// MinifyCSS 压缩生成的样式表文本。
func MinifyCSS(s string) (string, error) {
	m := minify.New()
	m.AddFunc("text/css", mincss.Minify)
	return m.String("text/css", s)
}
