package layout

import (
	"encoding/json"
	"os"
)

// DebugLine 是单行适配结果的像素视图，便于直接与目标宽度对照。
type DebugLine struct {
	Index         int     `json:"index"`
	Content       string  `json:"content"`
	FontSizePx    float64 `json:"fontSizePx"`
	WordSpacingPx float64 `json:"wordSpacingPx"`
	Exempt        bool    `json:"exempt,omitempty"`
	Wrap          bool    `json:"wrap,omitempty"`
}

// DebugBox 汇总一个容器的适配情况。
type DebugBox struct {
	ID     string      `json:"id"`
	Width  float64     `json:"width"`
	Font   string      `json:"font"`
	Lines  []DebugLine `json:"lines"`
	Styles string      `json:"css"`
}

// DebugReport 是 --debug 输出的完整内容：原始结果加上逐行的像素值。
type DebugReport struct {
	Result *Result    `json:"result"`
	Boxes  []DebugBox `json:"boxes"`
}

// NewDebugReport 根据适配后的结果生成调试报告。
func NewDebugReport(res *Result) DebugReport {
	report := DebugReport{Result: res}
	if res == nil {
		return report
	}
	sheets := map[string]Stylesheet{}
	for _, s := range res.Stylesheets {
		sheets[s.ContainerID] = s
	}
	for _, box := range res.Containers {
		db := DebugBox{ID: box.ID, Width: box.Width, Font: box.Font.Name}
		if s, ok := sheets[box.ID]; ok {
			db.Styles = s.WithLineAttr(res.Options.LineAttr).CSS()
		}
		for _, ln := range box.Lines {
			db.Lines = append(db.Lines, DebugLine{
				Index:         ln.Index,
				Content:       ln.Content,
				FontSizePx:    box.FontSizePx(ln),
				WordSpacingPx: box.WordSpacingPx(ln),
				Exempt:        ln.Result.Exempt,
				Wrap:          ln.Result.Wrap,
			})
		}
		report.Boxes = append(report.Boxes, db)
	}
	return report
}

// WriteDebugJSON 将调试报告输出为 JSON，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(NewDebugReport(res), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
