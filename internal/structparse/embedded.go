package structparse

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	gormschema "gorm.io/gorm/schema"
)

// knownEmbedded 可以直接展开的跨包结构体，key: 导入路径.类型名
var knownEmbedded = map[string][]FieldInfo{
	"gorm.io/gorm.Model": {
		{Name: "ID", Type: "uint", Tag: `gorm:"primarykey"`},
		{Name: "CreatedAt", Type: "time.Time"},
		{Name: "UpdatedAt", Type: "time.Time"},
		{Name: "DeletedAt", Type: "gorm.DeletedAt", Tag: `gorm:"index"`},
	},
}

// parseGormEmbeddedTag 解析 gorm 标签中的 embedded 和 embeddedPrefix
// 返回: (是否embedded, embeddedPrefix值)
func parseGormEmbeddedTag(tag string) (bool, string) {
	gormTag, ok := reflect.StructTag(tag).Lookup("gorm")
	if !ok {
		return false, ""
	}
	settings := gormschema.ParseTagSetting(gormTag, ";")
	_, isEmbedded := settings["EMBEDDED"]
	return isEmbedded, settings["EMBEDDEDPREFIX"]
}

// shouldExpandEmbeddedField 判断是否应该展开嵌入字段
func shouldExpandEmbeddedField(fieldType string) bool {
	fieldType = strings.TrimPrefix(fieldType, "*")
	switch fieldType {
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"float32", "float64", "string", "bool", "byte", "rune", "error",
		"time.Time", "time.Duration":
		return false
	}
	// 跳过切片、映射等复合类型
	for _, prefix := range []string{"[]", "map[", "chan ", "func(", "struct{", "interface{"} {
		if strings.HasPrefix(fieldType, prefix) {
			return false
		}
	}
	return true
}

// splitQualified 拆分 pkg.Name，同包类型返回空包名
func splitQualified(typeName string) (string, string) {
	if pkg, name, ok := strings.Cut(typeName, "."); ok {
		return pkg, name
	}
	return "", typeName
}

// expandEmbedded 展开嵌入的结构体，stack 用于避免循环引用
func expandEmbedded(typeName string, info *StructInfo, stack map[string]bool) ([]FieldInfo, error) {
	pkg, name := splitQualified(typeName)
	if !shouldExpandEmbeddedField(typeName) {
		return []FieldInfo{{Name: name, Type: typeName}}, nil
	}

	if pkg != "" {
		known, ok := knownEmbedded[info.Imports[pkg]+"."+name]
		if !ok {
			return []FieldInfo{{Name: name, Type: typeName, SourceType: typeName, External: true}}, nil
		}
		fields := make([]FieldInfo, len(known))
		for i, f := range known {
			f.SourceType = typeName
			fields[i] = f
		}
		return fields, nil
	}

	if len(stack) >= maxEmbeddingDepth {
		return nil, fmt.Errorf("嵌入字段深度超过限制 %d: %s", maxEmbeddingDepth, typeName)
	}
	if stack[typeName] {
		return nil, nil
	}
	stack[typeName] = true
	defer delete(stack, typeName)

	// 同包内的结构体，在原始文件所在目录查找
	dir := filepath.Dir(info.FilePath)
	files, err := findGoFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("查找目录 %s 中的Go文件失败: %w", dir, err)
	}

	for _, file := range files {
		if !containsStruct(file, name) {
			continue
		}
		sub, err := parseStruct(file, name, stack)
		if errors.Is(err, ErrStructNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("解析嵌入结构体 %s 失败: %w", typeName, err)
		}
		fields := make([]FieldInfo, len(sub.Fields))
		for i, f := range sub.Fields {
			// 保留更深一层的来源标记
			if f.SourceType == "" {
				f.SourceType = typeName
			}
			fields[i] = f
		}
		return fields, nil
	}
	return nil, fmt.Errorf("未在包目录 %s 中找到结构体 %s", dir, name)
}
