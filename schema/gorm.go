package schema

import (
	"fmt"
	"sync"

	gormschema "gorm.io/gorm/schema"
)

var schemaCache sync.Map

// ColumnsOf 通过 gorm 解析模型，返回所有映射到数据库的字段
// namer 为 nil 时使用 gorm 默认的命名策略
func ColumnsOf(model any, namer gormschema.Namer) ([]Column, error) {
	cache := &schemaCache
	if namer == nil {
		namer = gormschema.NamingStrategy{}
	} else {
		// 自定义命名策略不共享缓存
		cache = &sync.Map{}
	}
	s, err := gormschema.Parse(model, cache, namer)
	if err != nil {
		return nil, fmt.Errorf("解析模型 %T 失败: %w", model, err)
	}

	columns := make([]Column, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.DBName == "" {
			continue
		}
		columns = append(columns, Column{
			Name: f.DBName,
			Type: f.FieldType.String(),
		})
	}
	return columns, nil
}
