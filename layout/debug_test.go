package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteDebugJSON(t *testing.T) {
	res, err := buildDSL(t, posterDSL, nil)
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	if err := res.Conform(&stubTypesetter{}); err != nil {
		t.Fatalf("适配失败: %v", err)
	}

	path := filepath.Join(t.TempDir(), "debug.json")
	if err := WriteDebugJSON(res, path); err != nil {
		t.Fatalf("写入失败: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var report DebugReport
	if err := json.Unmarshal(raw, &report); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(report.Boxes) != 2 || report.Boxes[0].ID != "headline" {
		t.Fatalf("unexpected boxes: %+v", report.Boxes)
	}
	first := report.Boxes[0].Lines[0]
	if first.FontSizePx <= 0 || first.FontSizePx > 192 {
		t.Fatalf("unexpected fitted size: %v", first.FontSizePx)
	}
	if !report.Boxes[0].Lines[1].Exempt {
		t.Fatalf("expected exempt line in report")
	}
	if report.Boxes[0].Styles == "" {
		t.Fatalf("expected css in report")
	}
}

func TestWriteDebugJSONNil(t *testing.T) {
	if err := WriteDebugJSON(nil, filepath.Join(t.TempDir(), "x.json")); err != nil {
		t.Fatalf("nil result should be a no-op: %v", err)
	}
}
