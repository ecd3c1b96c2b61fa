package structparse

import (
	"go/ast"
	"go/types"
	"strconv"
	"strings"
)

// parseFields 解析字段列表，展开匿名嵌入和 gorm embedded 字段
func parseFields(fieldList []*ast.Field, info *StructInfo, stack map[string]bool) ([]FieldInfo, error) {
	var fields []FieldInfo

	for _, field := range fieldList {
		fieldType := types.ExprString(field.Type)

		var fieldTag string
		if field.Tag != nil {
			if tag, err := strconv.Unquote(field.Tag.Value); err == nil {
				fieldTag = tag
			}
		}

		if len(field.Names) == 0 {
			// 匿名字段 (嵌入字段)
			embedded, err := expandEmbedded(strings.TrimPrefix(fieldType, "*"), info, stack)
			if err != nil {
				return nil, err
			}
			fields = append(fields, embedded...)
			continue
		}

		isEmbedded, embeddedPrefix := parseGormEmbeddedTag(fieldTag)
		for _, name := range field.Names {
			if !isEmbedded || !shouldExpandEmbeddedField(fieldType) {
				fields = append(fields, FieldInfo{
					Name: name.Name,
					Type: fieldType,
					Tag:  fieldTag,
				})
				continue
			}

			embedded, err := expandEmbedded(strings.TrimPrefix(fieldType, "*"), info, stack)
			if err != nil {
				return nil, err
			}
			// 累加 prefix（支持多层嵌套）
			for i := range embedded {
				embedded[i].EmbeddedPrefix = embeddedPrefix + embedded[i].EmbeddedPrefix
			}
			fields = append(fields, embedded...)
		}
	}

	return fields, nil
}
