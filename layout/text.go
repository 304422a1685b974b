package layout

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TransformText 按 text-transform 语义转换文本：uppercase / lowercase / capitalize，其余原样返回。
func TransformText(s, transform string) string {
	switch strings.ToLower(strings.TrimSpace(transform)) {
	case "uppercase":
		return cases.Upper(language.Und).String(s)
	case "lowercase":
		return cases.Lower(language.Und).String(s)
	case "capitalize":
		return cases.Title(language.Und, cases.NoLower).String(s)
	default:
		return s
	}
}

// CollapseSpace 按 white-space: nowrap 的规则折叠连续的 ASCII 空白，不换行空格保持不变。
func CollapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, isCollapsible), " ")
}

func isCollapsible(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

// CountSpaces 返回词间距会作用到的空格数（普通空格与不换行空格）。
func CountSpaces(s string) int {
	return strings.Count(s, " ") + strings.Count(s, "\u00a0")
}
