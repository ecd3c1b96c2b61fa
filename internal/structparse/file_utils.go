package structparse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// findGoFiles 查找目录中的 Go 文件（不递归，不包含测试文件）
func findGoFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

// containsStruct 检查文件是否可能包含指定的结构体
// 分组声明里的结构体没有 type 关键字，所以只匹配 "Name struct"
func containsStruct(filename, structName string) bool {
	content, err := os.ReadFile(filename)
	if err != nil {
		return false
	}
	return strings.Contains(string(content), fmt.Sprintf("%s struct", structName))
}
