package layout

import (
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/conformist/fit"
)

func ptr(v float64) *float64 { return &v }

func TestStylesheetCSS(t *testing.T) {
	sheet := Stylesheet{
		ID:          "conformist-style-a",
		ContainerID: "a",
		Rules: []Rule{
			ruleFor(0, fit.Result{FontSize: ptr(2.5), WordSpacing: ptr(1.2345678)}),
			ruleFor(1, fit.Result{Exempt: true}),
			ruleFor(2, fit.Result{FontSize: ptr(0.625), WordSpacing: ptr(0), Wrap: true}),
		},
	}
	want := strings.Join([]string{
		`#a [data-conformist-line="0"] { font-size: 2.5em; word-spacing: 1.234568px; }`,
		`#a [data-conformist-line="1"] { white-space: normal; }`,
		`#a [data-conformist-line="2"] { white-space: normal; font-size: 0.625em; }`,
	}, "\n")
	if got := sheet.CSS(); got != want {
		t.Fatalf("unexpected css:\n%s\nwant:\n%s", got, want)
	}
}

func TestRuleDropsUnusableValues(t *testing.T) {
	r := ruleFor(3, fit.Result{FontSize: ptr(math.NaN()), WordSpacing: ptr(math.Inf(1))})
	if r.FontSizeEm != nil || r.WordSpacingPx != nil || r.WhiteSpace != "" {
		t.Fatalf("expected empty rule, got %+v", r)
	}
	if r.Line != 3 {
		t.Fatalf("expected line 3, got %d", r.Line)
	}
}

func TestSelectorUsesLineAttr(t *testing.T) {
	sheet := Stylesheet{ContainerID: "box"}.WithLineAttr("data-row")
	if got := sheet.Selector(4); got != `#box [data-row="4"]` {
		t.Fatalf("unexpected selector: %s", got)
	}
}

func TestStyleIDAndGlobalCSS(t *testing.T) {
	opts := DefaultOptions()
	if got := StyleID(opts, "x"); got != "conformist-style-x" {
		t.Fatalf("unexpected style id: %s", got)
	}
	if got := GlobalStyleID(opts); got != "conformist-style-global" {
		t.Fatalf("unexpected global id: %s", got)
	}
	opts.ExemptClass = "free"
	css := GlobalCSS(opts)
	for _, want := range []string{
		".conform * { white-space: nowrap; }",
		".conform > * { display: block; }",
		".conform .free { white-space: normal; }",
	} {
		if !strings.Contains(css, want) {
			t.Fatalf("global css missing %q:\n%s", want, css)
		}
	}
}
