package cmd

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// loadValues 读取字段值文件。JSON 是 YAML 的子集，两种格式都能解析。
// 非字符串的标量（数字、日期）按其原文保留。
func loadValues(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字段文件失败: %w", err)
	}
	return parseValues(data)
}

func parseValues(data []byte) (map[string]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析字段文件失败: %w", err)
	}
	values := map[string]string{}
	if len(doc.Content) == 0 {
		return values, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("字段文件顶层必须是映射，第 %d 行", root.Line)
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("字段 %s 必须是字符串，第 %d 行", key.Value, val.Line)
		}
		if val.Tag == "!!null" {
			values[key.Value] = ""
			continue
		}
		values[key.Value] = val.Value
	}
	return values, nil
}

// parseAssignments 解析命令行上的 key=value 参数。
func parseAssignments(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("参数 %q 应为 key=value 形式", arg)
		}
		values[key] = value
	}
	return values, nil
}
