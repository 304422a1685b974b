// Package fit 实现单行文本的宽度适配：先迭代收敛字号，再用词间距补足剩余空隙。
//
// 引擎本身不持有状态，所有测量都经由 Surface 完成；Surface 的实现决定宽度如何得到
// （真实字体轮廓、等宽字符格等）。
package fit

import "math"

const (
	// Iterations 是字号收敛的主迭代次数。
	Iterations = 3
	// SafetyFactor 让收敛略微偏小，避免测量取整造成溢出。
	SafetyFactor = 0.995
	// ShrinkFactor 是溢出修正时每一步的缩放比例（每步缩小 1%）。
	ShrinkFactor = 0.99
	// DefaultMaxShrinkSteps 限制溢出修正循环的最大步数。
	DefaultMaxShrinkSteps = 20
	// RatioPrecision 是字号/宽度比值保留的小数位数。
	RatioPrecision = 6
	// SpacingProbe 是估算词间距灵敏度时使用的试探增量（px）。
	SpacingProbe = 5.0
	// SpacingDivisor 把估算步长缩小，使逐步搜索保守收敛。
	SpacingDivisor = 3.0
)

// Surface 是测量后端为单行提供的能力：读写样式并读取渲染后的宽度。
// 所有长度均为 px；SetFontSize 接收相对 EmSize 的 em 值。
type Surface interface {
	EmSize() float64
	FontSize() float64
	WordSpacing() float64
	Width() float64
	SetFontSize(em float64)
	SetWordSpacing(px float64)
}

// Line 描述一次适配的输入。
type Line struct {
	Index   int
	Exempt  bool
	Surface Surface
}

// Bounds 是全局字号上下限。MinFontSizePx <= 0 关闭下限，MaxFontSizePx <= 0 关闭上限。
type Bounds struct {
	MinFontSizePx  float64
	MaxFontSizePx  float64
	MaxShrinkSteps int
}

// Result 是单行适配的输出。FontSize 单位为 em，WordSpacing 单位为 px。
// 两者为 nil 表示不覆盖默认样式；Wrap 表示字号触底，该行改用 white-space: normal。
type Result struct {
	FontSize    *float64 `json:"fontSize"`
	WordSpacing *float64 `json:"wordSpacing"`
	Exempt      bool     `json:"exempt"`
	Wrap        bool     `json:"wrap,omitempty"`
}

// Fit 计算让该行尽量铺满 target 宽度（px）且不溢出的字号与词间距。
// Surface 上的样式在返回时保持为结果所对应的值。
func Fit(line Line, target float64, b Bounds) Result {
	if line.Exempt {
		return Result{Exempt: true}
	}
	s := line.Surface
	if s == nil || !positive(target) {
		return Result{}
	}
	em := s.EmSize()
	if !positive(em) {
		return Result{}
	}

	size, ok := convergeFontSize(s, em, target, b.MaxShrinkSteps)
	if !ok {
		return Result{}
	}

	res := Result{}
	size, res.Wrap = clampFontSize(size, em, b)
	s.SetFontSize(size)
	res.FontSize = &size

	spacing := fineTuneWordSpacing(s, target)
	res.WordSpacing = &spacing
	return res
}

// convergeFontSize 以不动点迭代逼近目标宽度，随后按 1% 步长修正残余溢出。
// 返回 false 表示该行宽度不可测（零宽或非有限值），无法改进。
func convergeFontSize(s Surface, em, target float64, maxSteps int) (float64, bool) {
	var size float64
	for k := 0; k < Iterations; k++ {
		current := s.FontSize() / em
		width := s.Width()
		if !positive(width) || !finite(current) {
			if k == 0 {
				return 0, false
			}
			break
		}
		ratio := roundTo(current/width, RatioPrecision)
		size = target * ratio * SafetyFactor
		s.SetFontSize(size)
	}

	if maxSteps <= 0 {
		maxSteps = DefaultMaxShrinkSteps
	}
	for i := 0; i < maxSteps && s.Width() > target; i++ {
		size *= ShrinkFactor
		s.SetFontSize(size)
	}
	return size, true
}

// clampFontSize 按像素上下限裁剪候选字号（em）。触及下限时第二个返回值为 true。
func clampFontSize(size, em float64, b Bounds) (float64, bool) {
	px := size * em
	switch {
	case b.MaxFontSizePx > 0 && px > b.MaxFontSizePx:
		return b.MaxFontSizePx / em, false
	case b.MinFontSizePx > 0 && px < b.MinFontSizePx:
		return b.MinFontSizePx / em, true
	default:
		return size, false
	}
}

// fineTuneWordSpacing 用线性估算的步长逐步加大词间距，保留最后一个不溢出的值。
func fineTuneWordSpacing(s Surface, target float64) float64 {
	spacing := s.WordSpacing()
	if !finite(spacing) {
		spacing = 0
		s.SetWordSpacing(spacing)
	}
	base := s.Width()
	probed := Probe(s, spacing+SpacingProbe)
	denom := probed - base
	if !positive(denom) || !finite(base) {
		s.SetWordSpacing(spacing)
		return spacing
	}
	step := (target - base) * (SpacingProbe / denom) / SpacingDivisor
	if !finite(step) {
		s.SetWordSpacing(spacing)
		return spacing
	}

	last := spacing
	for i := 0; i <= Iterations; i++ {
		if s.Width() > target {
			break
		}
		last = spacing
		spacing += step
		s.SetWordSpacing(spacing)
	}
	s.SetWordSpacing(last)
	return last
}

// Probe 在给定词间距下测量宽度，然后恢复原词间距。
func Probe(s Surface, spacing float64) float64 {
	prev := s.WordSpacing()
	s.SetWordSpacing(spacing)
	w := s.Width()
	s.SetWordSpacing(prev)
	return w
}

func roundTo(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func positive(v float64) bool { return finite(v) && v > 0 }
