package layout

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// WriteDebugJSON 将排版结果输出为 JSON，便于排查折行与溢出。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
