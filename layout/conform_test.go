package layout

import (
	"errors"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/conformist/fit"
)

// stubTypesetter 以线性模型模拟测量：每个字符宽 0.5em，空格额外加词间距。
// 仅用于测试，避免 layout 依赖具体渲染器。
type stubTypesetter struct {
	clones  int
	removed int
	touched map[int]bool
	err     error
}

func (s *stubTypesetter) Clone(c Container) (Clone, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.clones++
	if s.touched == nil {
		s.touched = map[int]bool{}
	}
	return &stubClone{owner: s, box: c}, nil
}

type stubClone struct {
	owner *stubTypesetter
	box   Container
}

func (c *stubClone) Line(index int) fit.Surface {
	c.owner.touched[index] = true
	content := c.box.Lines[index].Content
	return &stubSurface{
		em:      c.box.FontSize,
		runes:   utf8.RuneCountInString(content),
		spaces:  CountSpaces(content),
		fontEm:  1,
		spacing: c.box.WordSpacing,
	}
}

func (c *stubClone) Remove() { c.owner.removed++ }

type stubSurface struct {
	em      float64
	runes   int
	spaces  int
	fontEm  float64
	spacing float64
}

func (s *stubSurface) EmSize() float64      { return s.em }
func (s *stubSurface) FontSize() float64    { return s.fontEm * s.em }
func (s *stubSurface) WordSpacing() float64 { return s.spacing }
func (s *stubSurface) Width() float64 {
	return 0.5*s.FontSize()*float64(s.runes) + float64(s.spaces)*s.spacing
}
func (s *stubSurface) SetFontSize(em float64)    { s.fontEm = em }
func (s *stubSurface) SetWordSpacing(px float64) { s.spacing = px }

func newBox(id string, width float64, lines ...string) *Container {
	box := &Container{ID: id, Width: width, FontSize: 16}
	for _, l := range lines {
		box.Lines = append(box.Lines, Line{Content: l})
	}
	return box
}

func TestConformFitsEveryLine(t *testing.T) {
	ts := &stubTypesetter{}
	c := New(ts, DefaultOptions())
	box := newBox("headline", 300, "abcdefghij", "a few words here")

	sheets, err := c.Conform(box)
	require.NoError(t, err)
	require.Len(t, sheets, 1)

	sheet := sheets[0]
	assert.Equal(t, "conformist-style-headline", sheet.ID)
	assert.Equal(t, "headline", sheet.ContainerID)
	require.Len(t, sheet.Rules, 2)
	for i, ln := range box.Lines {
		assert.Equal(t, i, ln.Index)
		require.NotNil(t, ln.Result.FontSize, "line %d", i)
		assert.False(t, ln.Wraps())
		width := 0.5 * box.FontSizePx(ln) * float64(utf8.RuneCountInString(ln.Content))
		width += float64(CountSpaces(ln.Content)) * box.WordSpacingPx(ln)
		assert.LessOrEqual(t, width, box.Width+1e-6, "line %d overflows", i)
		assert.Greater(t, width, box.Width*0.95, "line %d is too narrow", i)
	}
	assert.Equal(t, 1, ts.clones)
	assert.Equal(t, 1, ts.removed)
}

func TestConformAssignsIDsAroundReserved(t *testing.T) {
	c := New(&stubTypesetter{}, DefaultOptions())
	c.Reserve("conformist-box-0", "")

	first := newBox("", 200, "one")
	second := newBox("", 200, "two")
	_, err := c.Conform(first, second)
	require.NoError(t, err)

	assert.Equal(t, "conformist-box-1", first.ID)
	assert.Equal(t, "conformist-box-2", second.ID)

	_, ok := c.Stylesheet("conformist-box-1")
	assert.True(t, ok)
}

func TestConformReplacesPreviousStylesheet(t *testing.T) {
	c := New(&stubTypesetter{}, DefaultOptions())
	box := newBox("poem", 240, "first line", "second line")

	_, err := c.Conform(box)
	require.NoError(t, err)

	box.Lines = []Line{box.Lines[0], {Content: "inserted"}, box.Lines[1]}
	_, err = c.Conform(box)
	require.NoError(t, err)

	sheets := c.Stylesheets()
	require.Len(t, sheets, 1)
	require.Len(t, sheets[0].Rules, 3)
	for i, r := range sheets[0].Rules {
		assert.Equal(t, i, r.Line)
	}
	assert.Equal(t, 2, box.Lines[2].Index)
}

func TestConformExemptLines(t *testing.T) {
	ts := &stubTypesetter{}
	c := New(ts, DefaultOptions())
	box := newBox("b", 300, "fitted", "free text", "flagged")
	box.Lines[1].Classes = []string{"lead", "nonconformist"}
	box.Lines[2].Exempt = true

	sheets, err := c.Conform(box)
	require.NoError(t, err)

	assert.True(t, ts.touched[0])
	assert.False(t, ts.touched[1])
	assert.False(t, ts.touched[2])

	rules := sheets[0].Rules
	for _, i := range []int{1, 2} {
		assert.True(t, box.Lines[i].Result.Exempt)
		assert.Equal(t, "normal", rules[i].WhiteSpace)
		assert.Nil(t, rules[i].FontSizeEm)
		assert.Nil(t, rules[i].WordSpacingPx)
	}
}

func TestConformSkipsZeroWidthAndEmptyBoxes(t *testing.T) {
	ts := &stubTypesetter{}
	c := New(ts, DefaultOptions())

	hidden := newBox("hidden", 0, "invisible")
	empty := newBox("empty", 300)
	sheets, err := c.Conform(hidden, empty)
	require.NoError(t, err)
	require.Len(t, sheets, 2)

	for _, s := range sheets {
		assert.Empty(t, s.Rules)
		assert.Empty(t, s.CSS())
	}
	assert.Nil(t, hidden.Lines[0].Result.FontSize)
	assert.Zero(t, ts.clones)
}

func TestConformFloorWrapsLongLine(t *testing.T) {
	c := New(&stubTypesetter{}, DefaultOptions())
	box := newBox("narrow", 50, "this line is far too long to fit a tiny box")

	sheets, err := c.Conform(box)
	require.NoError(t, err)

	ln := box.Lines[0]
	require.NotNil(t, ln.Result.FontSize)
	assert.True(t, ln.Result.Wrap)
	assert.InDelta(t, 10, box.FontSizePx(ln), 1e-9)
	assert.Equal(t, "normal", sheets[0].Rules[0].WhiteSpace)
}

func TestConformCallsOnConformedOnce(t *testing.T) {
	var calls [][]Stylesheet
	opts := DefaultOptions()
	opts.OnConformed = func(sheets []Stylesheet) { calls = append(calls, sheets) }

	c := New(&stubTypesetter{}, opts)
	_, err := c.Conform(newBox("a", 100, "x"), nil, newBox("b", 100, "y"))
	require.NoError(t, err)

	require.Len(t, calls, 1)
	require.Len(t, calls[0], 2)
	assert.Equal(t, "a", calls[0][0].ContainerID)
	assert.Equal(t, "b", calls[0][1].ContainerID)
}

func TestConformErrors(t *testing.T) {
	_, err := New(nil, DefaultOptions()).Conform(newBox("a", 100, "x"))
	require.Error(t, err)

	boom := errors.New("boom")
	_, err = New(&stubTypesetter{err: boom}, DefaultOptions()).Conform(newBox("a", 100, "x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "a")
}

func TestNewFillsStringDefaults(t *testing.T) {
	c := New(&stubTypesetter{}, Options{MinFontSizePx: 0})
	opts := c.Options()
	assert.Equal(t, DefaultContainerIDPrefix, opts.ContainerIDPrefix)
	assert.Equal(t, DefaultLineAttr, opts.LineAttr)
	assert.Equal(t, DefaultExemptClass, opts.ExemptClass)
	assert.NotNil(t, opts.Logger)
	assert.Zero(t, opts.MinFontSizePx)
}

func TestConformPartialOptionsKeepExemptClass(t *testing.T) {
	ts := &stubTypesetter{}
	c := New(ts, Options{MaxFontSizePx: DefaultMaxFontSizePx})
	box := newBox("b", 300, "fitted", "left alone")
	box.Lines[1].Classes = []string{DefaultExemptClass}

	sheets, err := c.Conform(box)
	require.NoError(t, err)

	assert.False(t, ts.touched[1])
	assert.True(t, box.Lines[1].Result.Exempt)
	assert.Nil(t, box.Lines[1].Result.FontSize)
	assert.Equal(t, "normal", sheets[0].Rules[1].WhiteSpace)
	require.NotNil(t, box.Lines[0].Result.FontSize)
}
