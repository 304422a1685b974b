package layout

import (
	"fmt"

	"github.com/ByLCY/conformist/fit"
)

// Conformist 负责容器级的适配流程：分配 id、离屏测量、逐行调用适配引擎并生成样式表。
// 它持有已安装的样式表（按容器 id 索引），重复适配同一容器会整体替换旧样式表。
type Conformist struct {
	ts     Typesetter
	opts   Options
	nextID int
	taken  map[string]bool
	sheets map[string]Stylesheet
	order  []string
}

// New 创建编排器。opts 中未设置的字符串类配置使用默认值。
func New(ts Typesetter, opts Options) *Conformist {
	return &Conformist{
		ts:     ts,
		opts:   opts.withDefaults(),
		taken:  map[string]bool{},
		sheets: map[string]Stylesheet{},
	}
}

// Options 返回编排器实际使用的配置。
func (c *Conformist) Options() Options { return c.opts }

// Conform 依次适配给定容器，返回本次生成的样式表。
// 全部样式表安装后调用一次 Options.OnConformed。
func (c *Conformist) Conform(boxes ...*Container) ([]Stylesheet, error) {
	if c.ts == nil {
		return nil, fmt.Errorf("layout: 缺少测量后端 Typesetter")
	}
	out := make([]Stylesheet, 0, len(boxes))
	for _, box := range boxes {
		if box == nil {
			continue
		}
		sheet, err := c.conformBox(box)
		if err != nil {
			return out, err
		}
		out = append(out, sheet)
	}
	if c.opts.OnConformed != nil {
		c.opts.OnConformed(out)
	}
	return out, nil
}

func (c *Conformist) conformBox(box *Container) (Stylesheet, error) {
	// 目标宽度在任何修改之前取得
	target := box.Width
	if box.ID == "" {
		box.ID = c.newID()
	}
	c.taken[box.ID] = true
	c.clear(box.ID)
	renumber(box.Lines)

	log := c.opts.Logger
	sheet := Stylesheet{ID: StyleID(c.opts, box.ID), ContainerID: box.ID, lineAttr: c.opts.LineAttr}
	if target <= 0 || len(box.Lines) == 0 {
		log.Warn("跳过容器", "id", box.ID, "width", target, "lines", len(box.Lines))
		for i := range box.Lines {
			box.Lines[i].Result = fit.Result{}
		}
		c.install(sheet)
		return sheet, nil
	}

	clone, err := c.ts.Clone(*box)
	if err != nil {
		return sheet, fmt.Errorf("容器 %s 构建离屏副本失败: %w", box.ID, err)
	}
	defer clone.Remove()

	bounds := c.opts.Bounds()
	log.Debug("开始适配", "id", box.ID, "width", target, "lines", len(box.Lines))
	for i := range box.Lines {
		ln := &box.Lines[i]
		exempt := ln.Exempt || ln.HasClass(c.opts.ExemptClass)
		var surface fit.Surface
		if !exempt {
			surface = clone.Line(i)
		}
		ln.Result = fit.Fit(fit.Line{Index: ln.Index, Exempt: exempt, Surface: surface}, target, bounds)
		sheet.Rules = append(sheet.Rules, ruleFor(ln.Index, ln.Result))
		log.Debug("行适配完成", "id", box.ID, "line", ln.Index,
			"fontSize", deref(ln.Result.FontSize), "wordSpacing", deref(ln.Result.WordSpacing),
			"exempt", ln.Result.Exempt, "wrap", ln.Result.Wrap)
	}

	c.install(sheet)
	return sheet, nil
}

// Reserve 登记宿主中已存在的 id，自动分配的容器 id 会避开它们。
func (c *Conformist) Reserve(ids ...string) {
	for _, id := range ids {
		if id != "" {
			c.taken[id] = true
		}
	}
}

// Stylesheets 按安装顺序返回当前全部样式表。
func (c *Conformist) Stylesheets() []Stylesheet {
	out := make([]Stylesheet, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.sheets[id])
	}
	return out
}

// Stylesheet 返回容器 id 对应的样式表。
func (c *Conformist) Stylesheet(containerID string) (Stylesheet, bool) {
	s, ok := c.sheets[containerID]
	return s, ok
}

func (c *Conformist) newID() string {
	for {
		id := fmt.Sprintf("%s-%d", c.opts.ContainerIDPrefix, c.nextID)
		c.nextID++
		if !c.taken[id] {
			return id
		}
	}
}

func (c *Conformist) clear(containerID string) {
	if _, ok := c.sheets[containerID]; !ok {
		return
	}
	delete(c.sheets, containerID)
	for i, id := range c.order {
		if id == containerID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Conformist) install(sheet Stylesheet) {
	c.clear(sheet.ContainerID)
	c.sheets[sheet.ContainerID] = sheet
	c.order = append(c.order, sheet.ContainerID)
}

// renumber 让行序号与当前内容顺序一致（行可能在两次适配之间增删）。
func renumber(lines []Line) {
	for i := range lines {
		lines[i].Index = i
	}
}

func deref(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
