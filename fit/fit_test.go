package fit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSurface 以线性模型模拟渲染：宽度 = advance × 字号(px) + 空格数 × 词间距。
type fakeSurface struct {
	em       float64
	advance  float64
	spaces   int
	fontEm   float64
	spacing  float64
	quantize bool
	calls    int
}

func newFake(em, naturalWidth float64, spaces int) *fakeSurface {
	return &fakeSurface{em: em, advance: naturalWidth / em, spaces: spaces, fontEm: 1}
}

func (f *fakeSurface) px() float64 {
	px := f.fontEm * f.em
	if f.quantize {
		px = math.Floor(px)
	}
	return px
}

func (f *fakeSurface) EmSize() float64      { f.calls++; return f.em }
func (f *fakeSurface) FontSize() float64    { f.calls++; return f.px() }
func (f *fakeSurface) WordSpacing() float64 { f.calls++; return f.spacing }
func (f *fakeSurface) Width() float64 {
	f.calls++
	return f.advance*f.px() + float64(f.spaces)*f.spacing
}
func (f *fakeSurface) SetFontSize(em float64)    { f.calls++; f.fontEm = em }
func (f *fakeSurface) SetWordSpacing(px float64) { f.calls++; f.spacing = px }

// constSurface 的宽度不随字号变化，用来触发溢出修正的步数上限。
type constSurface struct {
	fakeSurface
	width float64
	sets  int
}

func (c *constSurface) Width() float64 { return c.width }
func (c *constSurface) SetFontSize(em float64) {
	c.sets++
	c.fakeSurface.SetFontSize(em)
}

var defaultBounds = Bounds{MinFontSizePx: 10, MaxFontSizePx: 528}

func TestFitExemptSkipsMeasurement(t *testing.T) {
	s := newFake(16, 600, 3)
	res := Fit(Line{Exempt: true, Surface: s}, 300, defaultBounds)

	assert.True(t, res.Exempt)
	assert.Nil(t, res.FontSize)
	assert.Nil(t, res.WordSpacing)
	assert.False(t, res.Wrap)
	assert.Zero(t, s.calls, "豁免行不应触发任何测量")
}

func TestFitConvergesWithoutOverflow(t *testing.T) {
	s := newFake(32, 600, 3)
	res := Fit(Line{Surface: s}, 300, defaultBounds)

	require.NotNil(t, res.FontSize)
	require.NotNil(t, res.WordSpacing)
	assert.False(t, res.Exempt)
	assert.False(t, res.Wrap)
	assert.InDelta(t, 0.5, *res.FontSize, 0.01)
	assert.LessOrEqual(t, s.Width(), 300.0)
	assert.Greater(t, s.Width(), 300*0.99)
	// Surface 停留在结果对应的样式上
	assert.Equal(t, *res.FontSize, s.fontEm)
	assert.Equal(t, *res.WordSpacing, s.spacing)
}

func TestFitClampsToFloorAndWraps(t *testing.T) {
	// 16px 下自然宽度 600px，目标 225px -> 候选字号约 6px
	s := newFake(16, 600, 3)
	res := Fit(Line{Surface: s}, 225, defaultBounds)

	require.NotNil(t, res.FontSize)
	assert.True(t, res.Wrap)
	assert.InDelta(t, 10.0/16, *res.FontSize, 1e-12)
	assert.Equal(t, *res.FontSize, s.fontEm)
}

func TestFitFloorDisabled(t *testing.T) {
	s := newFake(16, 600, 3)
	res := Fit(Line{Surface: s}, 225, Bounds{MaxFontSizePx: 528})

	require.NotNil(t, res.FontSize)
	assert.False(t, res.Wrap)
	assert.Less(t, *res.FontSize*16, 10.0)
	assert.LessOrEqual(t, s.Width(), 225.0)
}

func TestFitClampsToCeiling(t *testing.T) {
	s := newFake(16, 60, 0)
	res := Fit(Line{Surface: s}, 100000, defaultBounds)

	require.NotNil(t, res.FontSize)
	assert.False(t, res.Wrap)
	assert.InDelta(t, 528.0/16, *res.FontSize, 1e-12)
}

func TestFitFontSizeWithinBounds(t *testing.T) {
	for _, target := range []float64{50, 120, 300, 640, 2000, 50000} {
		for _, natural := range []float64{40, 333, 900} {
			s := newFake(16, natural, 2)
			res := Fit(Line{Surface: s}, target, defaultBounds)
			require.NotNil(t, res.FontSize)
			px := *res.FontSize * 16
			assert.GreaterOrEqual(t, px, 10.0-1e-9, "target=%g natural=%g", target, natural)
			assert.LessOrEqual(t, px, 528.0+1e-9, "target=%g natural=%g", target, natural)
			if !res.Wrap {
				assert.LessOrEqual(t, s.Width(), target, "target=%g natural=%g", target, natural)
			}
		}
	}
}

func TestFitWordSpacingFillsQuantizedGap(t *testing.T) {
	// 字号按整数 px 取整时，字号阶段会留下空隙，由词间距补足。
	s := newFake(16, 160, 4)
	s.quantize = true
	res := Fit(Line{Surface: s}, 305, defaultBounds)

	require.NotNil(t, res.WordSpacing)
	assert.Greater(t, *res.WordSpacing, 0.0)
	assert.LessOrEqual(t, s.Width(), 305.0)
	assert.Greater(t, s.Width(), 300.0)
}

func TestFitZeroSpacingSensitivityKeepsSpacing(t *testing.T) {
	// 没有空格时词间距不影响宽度，分母为 0，应保持原词间距。
	s := newFake(16, 600, 0)
	s.spacing = 2
	res := Fit(Line{Surface: s}, 300, defaultBounds)

	require.NotNil(t, res.WordSpacing)
	assert.Equal(t, 2.0, *res.WordSpacing)
	assert.False(t, math.IsNaN(*res.FontSize))
}

func TestFitDegenerateInputs(t *testing.T) {
	cases := map[string]struct {
		surface Surface
		target  float64
	}{
		"zero width":    {newFake(16, 0, 0), 300},
		"zero target":   {newFake(16, 600, 2), 0},
		"neg target":    {newFake(16, 600, 2), -5},
		"zero em":       {&fakeSurface{em: 0, advance: 1, fontEm: 1}, 300},
		"nil surface":   {nil, 300},
		"NaN target":    {newFake(16, 600, 2), math.NaN()},
		"infinite size": {newFake(16, math.Inf(1), 2), 300},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			res := Fit(Line{Surface: tc.surface}, tc.target, defaultBounds)
			assert.False(t, res.Exempt)
			assert.Nil(t, res.FontSize)
			assert.Nil(t, res.WordSpacing)
		})
	}
}

func TestFitShrinkLoopIsBounded(t *testing.T) {
	s := &constSurface{fakeSurface: fakeSurface{em: 16, fontEm: 1}, width: 1000}
	res := Fit(Line{Surface: s}, 300, Bounds{MaxShrinkSteps: 5})

	require.NotNil(t, res.FontSize)
	assert.False(t, res.Wrap)
	// 3 次主迭代 + 5 次缩小 + 1 次最终写入
	assert.Equal(t, Iterations+5+1, s.sets)
	assert.Greater(t, *res.FontSize, 0.0)
	assert.False(t, math.IsInf(*res.FontSize, 0))
	require.NotNil(t, res.WordSpacing)
	assert.Zero(t, *res.WordSpacing)
}

func TestFitIdempotentWhenAlreadyFitted(t *testing.T) {
	s := newFake(16, 300, 3)
	res := Fit(Line{Surface: s}, 300, defaultBounds)

	require.NotNil(t, res.FontSize)
	require.NotNil(t, res.WordSpacing)
	assert.InDelta(t, 1.0, *res.FontSize, 0.01)
	assert.InDelta(t, 0.0, *res.WordSpacing, 0.6)
	assert.InDelta(t, 300.0, s.Width(), 300*0.01)

	// 在已适配的结果上再跑一次，变化应很小
	first := *res.FontSize
	again := Fit(Line{Surface: s}, 300, defaultBounds)
	require.NotNil(t, again.FontSize)
	assert.InDelta(t, first, *again.FontSize, 0.01)
}

func TestFitLinesShareTargetWithDifferentSizes(t *testing.T) {
	short := newFake(32, 200, 2)
	long := newFake(32, 700, 6)
	rs := Fit(Line{Index: 0, Surface: short}, 400, defaultBounds)
	rl := Fit(Line{Index: 1, Surface: long}, 400, defaultBounds)

	require.NotNil(t, rs.FontSize)
	require.NotNil(t, rl.FontSize)
	assert.Greater(t, *rs.FontSize, *rl.FontSize)
	for _, s := range []*fakeSurface{short, long} {
		assert.LessOrEqual(t, s.Width(), 400.0)
		assert.Greater(t, s.Width(), 400*0.99)
	}
}

func TestProbeRestoresSpacing(t *testing.T) {
	s := newFake(16, 100, 2)
	s.spacing = 1.5
	w := Probe(s, 6.5)

	assert.Equal(t, 100.0+2*6.5, w)
	assert.Equal(t, 1.5, s.spacing)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 0.001667, roundTo(1.0/600, 6))
	assert.Equal(t, 0.5, roundTo(0.5, 6))
}
