package structparse

// FieldInfo 表示结构体字段信息
type FieldInfo struct {
	Name           string // 字段名
	Type           string // 字段类型，保持源码写法，如 *time.Time
	Tag            string // 字段标签，不含反引号
	SourceType     string // 字段来源类型，为空表示来自结构体本身，否则表示来自嵌入的结构体
	EmbeddedPrefix string // gorm embedded 字段的 prefix，用于列名生成
	External       bool   // 无法展开的跨包嵌入结构体
}

// StructInfo 表示结构体信息
type StructInfo struct {
	Name        string            // 结构体名称
	PackageName string            // 包名
	FilePath    string            // 结构体所在文件路径
	Fields      []FieldInfo       // 字段列表
	Imports     map[string]string // 包名或别名 -> 导入路径
}

// maxEmbeddingDepth 最大嵌套深度限制
const maxEmbeddingDepth = 10
