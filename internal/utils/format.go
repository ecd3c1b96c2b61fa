// Package utils 生成文件的格式化、写入与比较
package utils

import (
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/tools/imports"
)

// Format 使用 goimports 格式化源码，会补齐缺失的 import 并删除未使用的 import
// path 用于解析同目录下的包，文件不必存在
func Format(path string, src []byte) ([]byte, error) {
	formatted, err := imports.Process(path, src, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("格式化 %s 失败: %w", path, err)
	}
	return formatted, nil
}

// WriteFormat 格式化后写入文件
// 格式化失败时写入 path.error 便于排查
func WriteFormat(path string, src []byte) error {
	formatted, err := Format(path, src)
	if err != nil {
		_ = os.WriteFile(path+".error", src, 0o644)
		return err
	}
	return os.WriteFile(path, formatted, 0o644)
}

// Diff 返回 old 到 new 的 unified diff
func Diff(path string, old, new []byte) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(old)),
		B:        difflib.SplitLines(string(new)),
		FromFile: path,
		ToFile:   path + " (generated)",
		Context:  3,
	})
}
