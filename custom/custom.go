// Package custom 生成软删除和批量操作的描述
package custom

import (
	"errors"
	"fmt"

	"github.com/donutnomad/autofield/feature"
	"github.com/donutnomad/autofield/query"
	"github.com/donutnomad/autofield/rule"
	"github.com/donutnomad/autofield/schema"
)

var (
	ErrSoftDeleteDisabled = errors.New("autofield: 实体未开启软删除")
	ErrEmptyAssignments   = errors.New("autofield: 批量更新没有任何赋值")
	ErrMissingFilter      = errors.New("autofield: 批量更新缺少过滤条件")
)

// ReservedColumnError 批量更新试图修改自动维护的字段
type ReservedColumnError struct {
	Column string
}

func (e *ReservedColumnError) Error() string {
	return fmt.Sprintf("autofield: 字段 %s 由自动规则维护，不能在批量更新中赋值", e.Column)
}

// DeletedFlag 软删除后 delete_flag 的值
const DeletedFlag = 1

// Operations 实体的定制操作
type Operations struct {
	softDelete *SoftDelete
	create     rule.RuleSet
	reserved   map[string]bool
}

// Build 根据配置生成定制操作
func Build(cfg feature.Config, b schema.Binding, create, update rule.RuleSet) Operations {
	ops := Operations{
		create:   create,
		reserved: make(map[string]bool),
	}

	for _, rs := range []rule.RuleSet{create, update} {
		for _, r := range rs {
			if r.Role == schema.RoleState || r.Role == schema.RoleStateName {
				continue
			}
			ops.reserved[r.Column] = true
		}
	}

	if cfg.SoftDelete && b.Has(schema.RoleDeleteFlag) {
		flag := b.Field(schema.RoleDeleteFlag)
		key := schema.RoleID.Column()
		ops.softDelete = &SoftDelete{
			KeyColumn:  key,
			FlagColumn: flag.Column,
			FlagValue:  schema.Coerce(flag.Kind, DeletedFlag),
			update:     update,
		}
	}
	return ops
}

// SoftDelete 返回软删除描述，未开启时返回 ErrSoftDeleteDisabled
func (o Operations) SoftDelete() (SoftDelete, error) {
	if o.softDelete == nil {
		return SoftDelete{}, ErrSoftDeleteDisabled
	}
	return *o.softDelete, nil
}

// HasSoftDelete 是否开启软删除
func (o Operations) HasSoftDelete() bool {
	return o.softDelete != nil
}

// Reserved 列是否由自动规则维护
func (o Operations) Reserved(column string) bool {
	return o.reserved[column]
}

// BatchInsertMany 对每条记录独立执行创建规则，每行生成各自的 ID
func (o Operations) BatchInsertMany(records []rule.Record, env rule.Env) {
	for _, rec := range records {
		o.create.Apply(rec, env)
	}
}

// BatchUpdate 创建批量更新构造器
func (o Operations) BatchUpdate() *BatchUpdateBuilder {
	return &BatchUpdateBuilder{reserved: o.reserved}
}

// SoftDelete 软删除描述
// 把删除标记置为 1，并按更新规则刷新更新时间、更新人和版本号
type SoftDelete struct {
	KeyColumn  string
	FlagColumn string
	FlagValue  any

	update rule.RuleSet
}

// Apply 对内存中的记录执行软删除
func (s SoftDelete) Apply(rec rule.Record, env rule.Env) {
	rec.Set(s.FlagColumn, s.FlagValue)
	s.update.Apply(rec, env)
}

// Assignments 软删除要写入的字段，其余字段由更新规则补齐
func (s SoftDelete) Assignments() map[string]any {
	return map[string]any{s.FlagColumn: s.FlagValue}
}

// One 单行软删除
func (s SoftDelete) One(key any) SoftDeleteSpec {
	return SoftDeleteSpec{SoftDelete: s, Keys: []any{key}}
}

// Many 多行软删除，由调用方在一个事务中执行
func (s SoftDelete) Many(keys ...any) SoftDeleteSpec {
	return SoftDeleteSpec{SoftDelete: s, Keys: keys}
}

// SoftDeleteSpec 针对一组主键的软删除
type SoftDeleteSpec struct {
	SoftDelete
	Keys []any
}

// Filter 主键过滤条件
func (s SoftDeleteSpec) Filter() query.Predicate {
	if len(s.Keys) == 1 {
		return query.Eq(s.KeyColumn, s.Keys[0])
	}
	return query.In(s.KeyColumn, s.Keys...)
}

// BatchUpdateBuilder 批量更新构造器
type BatchUpdateBuilder struct {
	reserved    map[string]bool
	assignments map[string]any
	filters     []query.Predicate
	err         error
}

// Set 添加赋值，自动维护的字段会导致 Build 失败
func (b *BatchUpdateBuilder) Set(column string, value any) *BatchUpdateBuilder {
	if b.err != nil {
		return b
	}
	if b.reserved[column] {
		b.err = &ReservedColumnError{Column: column}
		return b
	}
	if b.assignments == nil {
		b.assignments = make(map[string]any)
	}
	b.assignments[column] = value
	return b
}

// Where 添加过滤条件
func (b *BatchUpdateBuilder) Where(preds ...query.Predicate) *BatchUpdateBuilder {
	b.filters = append(b.filters, preds...)
	return b
}

// Build 生成批量更新描述
func (b *BatchUpdateBuilder) Build() (BatchUpdateSpec, error) {
	if b.err != nil {
		return BatchUpdateSpec{}, b.err
	}
	if len(b.assignments) == 0 {
		return BatchUpdateSpec{}, ErrEmptyAssignments
	}
	if len(b.filters) == 0 {
		return BatchUpdateSpec{}, ErrMissingFilter
	}
	return BatchUpdateSpec{
		Assignments: b.assignments,
		Filters:     b.filters,
	}, nil
}

// BatchUpdateSpec 批量更新描述
type BatchUpdateSpec struct {
	Assignments map[string]any
	Filters     []query.Predicate
}
