// Package gormparse 按 gorm 的规则把结构体字段映射为数据库列
package gormparse

import (
	"go/ast"
	"go/parser"
	"go/token"
	"reflect"
	"strings"

	gormschema "gorm.io/gorm/schema"

	"github.com/donutnomad/autofield/internal/structparse"
	"github.com/donutnomad/autofield/schema"
)

// defaultNamer 与 gorm 默认配置一致
var defaultNamer gormschema.Namer = gormschema.NamingStrategy{}

// GormFieldInfo GORM字段信息
type GormFieldInfo struct {
	Name           string // 字段名
	Type           string // 字段类型
	ColumnName     string // 数据库列名
	SQLType        string // gorm type 标签中的 SQL 类型，小写且不含精度
	SourceType     string // 字段来源类型,为空表示来自结构体本身,否则表示来自嵌入的结构体
	Tag            string // 字段标签
	EmbeddedPrefix string // gorm embedded 字段的 prefix
}

// GormModelInfo GORM模型信息
type GormModelInfo struct {
	Name        string          // 结构体名称
	PackageName string          // 包名
	FilePath    string          // 结构体所在文件
	TableName   string          // 表名
	Fields      []GormFieldInfo // 字段列表
	Skipped     []string        // 无法展开的嵌入类型
}

// Columns 转换为绑定用的列描述
func (m *GormModelInfo) Columns() []schema.Column {
	columns := make([]schema.Column, 0, len(m.Fields))
	for _, f := range m.Fields {
		columns = append(columns, schema.Column{Name: f.ColumnName, Type: f.Type})
	}
	return columns
}

// Field 按列名查找字段
func (m *GormModelInfo) Field(column string) (GormFieldInfo, bool) {
	for _, f := range m.Fields {
		if f.ColumnName == column {
			return f, true
		}
	}
	return GormFieldInfo{}, false
}

// gormSettings 解析字段标签中的 gorm 部分，key 为大写
func gormSettings(fieldTag string) map[string]string {
	tag, ok := reflect.StructTag(fieldTag).Lookup("gorm")
	if !ok {
		return map[string]string{}
	}
	return gormschema.ParseTagSetting(tag, ";")
}

// ignored gorm:"-" 与 gorm:"-:all" 的字段不参与读写
func ignored(settings map[string]string) bool {
	v, ok := settings["-"]
	return ok && (v == "-" || strings.EqualFold(v, "all"))
}

// ExtractColumnName 提取列名(从gorm标签或使用默认规则)
func ExtractColumnName(fieldName, fieldTag string) string {
	return ExtractColumnNameWithPrefix(defaultNamer, fieldName, fieldTag, "")
}

// ExtractColumnNameWithPrefix 提取列名，支持 embeddedPrefix
func ExtractColumnNameWithPrefix(namer gormschema.Namer, fieldName, fieldTag, embeddedPrefix string) string {
	columnName := gormSettings(fieldTag)["COLUMN"]
	if columnName == "" {
		columnName = namer.ColumnName("", fieldName)
	}
	return embeddedPrefix + columnName
}

// ExtractSQLType 从 gorm 标签提取 SQL 类型，如 datetime(3) -> datetime
func ExtractSQLType(fieldTag string) string {
	sqlType := strings.TrimSpace(gormSettings(fieldTag)["TYPE"])
	if i := strings.IndexAny(sqlType, "( "); i >= 0 {
		sqlType = sqlType[:i]
	}
	return strings.ToLower(sqlType)
}

// ParseGormModel 解析GORM模型，namer 为空时使用 gorm 默认命名规则
// 未导出字段、gorm:"-" 字段和无法展开的跨包嵌入不产生列
func ParseGormModel(structInfo *structparse.StructInfo, namer gormschema.Namer) (*GormModelInfo, error) {
	if namer == nil {
		namer = defaultNamer
	}

	tableName, err := InferTableName(namer, structInfo.FilePath, structInfo.Name)
	if err != nil {
		return nil, err
	}

	model := &GormModelInfo{
		Name:        structInfo.Name,
		PackageName: structInfo.PackageName,
		FilePath:    structInfo.FilePath,
		TableName:   tableName,
	}

	for _, field := range structInfo.Fields {
		if field.External {
			model.Skipped = append(model.Skipped, field.Type)
			continue
		}
		if !ast.IsExported(field.Name) || ignored(gormSettings(field.Tag)) {
			continue
		}
		model.Fields = append(model.Fields, GormFieldInfo{
			Name:           field.Name,
			Type:           canonicalType(field.Type, structInfo.Imports),
			ColumnName:     ExtractColumnNameWithPrefix(namer, field.Name, field.Tag, field.EmbeddedPrefix),
			SQLType:        ExtractSQLType(field.Tag),
			SourceType:     field.SourceType,
			Tag:            field.Tag,
			EmbeddedPrefix: field.EmbeddedPrefix,
		})
	}

	return model, nil
}

// canonicalType 把导入别名换成包的真实名称，sf.ID -> snowflake.ID
func canonicalType(typ string, imports map[string]string) string {
	stars := len(typ) - len(strings.TrimLeft(typ, "*"))
	alias, name, ok := strings.Cut(typ[stars:], ".")
	if !ok {
		return typ
	}
	path, ok := imports[alias]
	if !ok {
		return typ
	}
	return typ[:stars] + packageName(path) + "." + name
}

// packageName 导入路径的默认包名，忽略 /vN 后缀
func packageName(path string) string {
	parts := strings.Split(path, "/")
	last := parts[len(parts)-1]
	if len(parts) > 1 && len(last) > 1 && last[0] == 'v' && strings.Trim(last[1:], "0123456789") == "" {
		last = parts[len(parts)-2]
	}
	return last
}

// InferTableName 推导表名
// 首先尝试从 TableName() 方法中提取表名，没有找到时使用 namer 的规则
func InferTableName(namer gormschema.Namer, filename, structName string) (string, error) {
	if namer == nil {
		namer = defaultNamer
	}
	tableName, err := ExtractTableNameFromMethod(filename, structName)
	if err == nil && tableName != "" {
		return tableName, nil
	}
	return namer.TableName(structName), nil
}

// ExtractTableNameFromMethod 从 TableName() 方法中提取表名
// 解析 AST 查找指定结构体的 TableName 方法，并提取其返回的字符串字面量
func ExtractTableNameFromMethod(filename, structName string) (string, error) {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, filename, nil, 0)
	if err != nil {
		return "", err
	}

	for _, decl := range node.Decls {
		funcDecl, ok := decl.(*ast.FuncDecl)
		if !ok || funcDecl.Name.Name != "TableName" || funcDecl.Body == nil {
			continue
		}
		if funcDecl.Recv == nil || len(funcDecl.Recv.List) == 0 {
			continue
		}
		if receiverName(funcDecl.Recv.List[0].Type) != structName {
			continue
		}

		for _, stmt := range funcDecl.Body.List {
			retStmt, ok := stmt.(*ast.ReturnStmt)
			if !ok || len(retStmt.Results) == 0 {
				continue
			}
			lit, ok := retStmt.Results[0].(*ast.BasicLit)
			if !ok || lit.Kind != token.STRING {
				continue
			}
			return strings.Trim(lit.Value, "\"`"), nil
		}
	}
	return "", nil
}

func receiverName(expr ast.Expr) string {
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}
