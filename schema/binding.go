package schema

import (
	"github.com/donutnomad/autofield/feature"
)

// Column 实体声明的一个字段
type Column struct {
	Name string // 列名
	Type string // Go 类型名，未知时为空
}

// Field 角色的绑定结果
type Field struct {
	Role    Role
	Present bool
	Column  string
	Type    string
	Kind    Kind
}

// Binding 角色到实体字段的绑定，构建后只读
type Binding struct {
	fields   [roleCount]Field
	relevant [roleCount]bool
}

// Bind 按固定列名绑定全部角色
// 绑定本身不会失败，缺失和类型问题由校验阶段报告
func Bind(cfg feature.Config, columns []Column) Binding {
	var b Binding
	for _, r := range Roles() {
		b.fields[r] = Field{Role: r, Column: r.Column()}
		b.relevant[r] = cfg.Enabled(r.Feature())
	}

	for _, col := range columns {
		r, ok := RoleOf(col.Name)
		if !ok || b.fields[r].Present {
			// 重名的字段以第一个为准
			continue
		}
		b.fields[r].Present = true
		b.fields[r].Type = col.Type
		b.fields[r].Kind = KindOf(col.Type)
	}
	return b
}

// Field 返回角色的绑定结果
func (b Binding) Field(r Role) Field {
	if !r.valid() {
		return Field{Role: r}
	}
	return b.fields[r]
}

// Has 角色对应的字段是否存在
func (b Binding) Has(r Role) bool {
	return b.Field(r).Present
}

// Relevant 角色所属的特性是否开启
func (b Binding) Relevant(r Role) bool {
	return r.valid() && b.relevant[r]
}

// Fields 按角色顺序返回全部绑定结果
func (b Binding) Fields() []Field {
	return b.fields[:]
}
