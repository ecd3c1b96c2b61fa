// Package query 生成读查询的谓词描述
package query

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/spf13/cast"
	"gorm.io/gorm/clause"

	"github.com/donutnomad/autofield/feature"
	"github.com/donutnomad/autofield/rule"
	"github.com/donutnomad/autofield/schema"
)

// 查询扩展名称
const (
	NameNotDeleted   = "find_not_deleted"
	NameByTenantID   = "find_by_tenant_id"
	NameByTenantName = "find_by_tenant_name"
	NameByCreatorID  = "find_by_creator_id"
)

// Op 比较操作
type Op int

const (
	OpEq Op = iota + 1
	OpIn
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpIn:
		return "IN"
	default:
		return "?"
	}
}

// Predicate 查询谓词，只描述条件不执行查询
type Predicate struct {
	Name   string
	Column string
	Op     Op
	Value  any
}

func (p Predicate) String() string {
	return fmt.Sprintf("%s %s %v", p.Column, p.Op, p.Value)
}

// Expression 转为 gorm 的查询条件
func (p Predicate) Expression() clause.Expression {
	col := clause.Column{Name: p.Column}
	if p.Op == OpIn {
		return clause.IN{Column: col, Values: toValues(p.Value)}
	}
	return clause.Eq{Column: col, Value: p.Value}
}

// Match 在内存中判断记录是否满足条件
func (p Predicate) Match(rec rule.Record) bool {
	v, ok := rec.Get(p.Column)
	if !ok {
		return false
	}
	switch p.Op {
	case OpEq:
		return equal(v, p.Value)
	case OpIn:
		for _, want := range toValues(p.Value) {
			if equal(v, want) {
				return true
			}
		}
	}
	return false
}

func equal(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	sa, errA := cast.ToStringE(a)
	sb, errB := cast.ToStringE(b)
	return errA == nil && errB == nil && sa == sb
}

func toValues(v any) []any {
	if vs, ok := v.([]any); ok {
		return vs
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	result := make([]any, rv.Len())
	for i := range result {
		result[i] = rv.Index(i).Interface()
	}
	return result
}

// Eq 创建等值谓词
func Eq(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpEq, Value: value}
}

// In 创建 IN 谓词
func In(column string, values ...any) Predicate {
	return Predicate{Column: column, Op: OpIn, Value: values}
}

// Extensions 实体的查询扩展
type Extensions struct {
	notDeleted *schema.Field
	tenantID   *schema.Field
	tenantName *schema.Field
	creatorID  *schema.Field
}

// Build 只为开启的特性且字段存在时生成查询扩展
func Build(cfg feature.Config, b schema.Binding) Extensions {
	field := func(enabled bool, role schema.Role) *schema.Field {
		if !enabled || !b.Has(role) {
			return nil
		}
		f := b.Field(role)
		return &f
	}
	return Extensions{
		notDeleted: field(cfg.SoftDelete, schema.RoleDeleteFlag),
		tenantID:   field(cfg.Tenant, schema.RoleTenantID),
		tenantName: field(cfg.Tenant, schema.RoleTenantName),
		creatorID:  field(cfg.Audit, schema.RoleCreateBy),
	}
}

func eqOf(name string, f *schema.Field, value any) (Predicate, bool) {
	if f == nil {
		return Predicate{}, false
	}
	return Predicate{
		Name:   name,
		Column: f.Column,
		Op:     OpEq,
		Value:  schema.Coerce(f.Kind, value),
	}, true
}

// NotDeleted delete_flag = 0
func (e Extensions) NotDeleted() (Predicate, bool) {
	return eqOf(NameNotDeleted, e.notDeleted, 0)
}

// ByTenantID tenant_id = id
func (e Extensions) ByTenantID(id any) (Predicate, bool) {
	return eqOf(NameByTenantID, e.tenantID, id)
}

// ByTenantName tenant_name = name
func (e Extensions) ByTenantName(name string) (Predicate, bool) {
	return eqOf(NameByTenantName, e.tenantName, name)
}

// ByCreatorID create_by = id
func (e Extensions) ByCreatorID(id any) (Predicate, bool) {
	return eqOf(NameByCreatorID, e.creatorID, id)
}

// Names 已生成的查询扩展名称
func (e Extensions) Names() []string {
	var names []string
	if e.notDeleted != nil {
		names = append(names, NameNotDeleted)
	}
	if e.tenantID != nil {
		names = append(names, NameByTenantID)
	}
	if e.tenantName != nil {
		names = append(names, NameByTenantName)
	}
	if e.creatorID != nil {
		names = append(names, NameByCreatorID)
	}
	return names
}

// Has 是否生成了指定名称的查询扩展
func (e Extensions) Has(name string) bool {
	return slices.Contains(e.Names(), name)
}
