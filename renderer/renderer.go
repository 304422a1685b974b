package renderer

import "github.com/ByLCY/conformist/layout"

// Renderer 将适配后的结果输出为预览文件，例如 PDF 或文本报告。
// Render 返回生成的数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Backend 同时提供测量（适配前）与预览输出（适配后）。
type Backend interface {
	Renderer
	layout.Typesetter
}
