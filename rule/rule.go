// Package rule 生成并执行创建/更新前的字段填充规则
package rule

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/donutnomad/autofield/schema"
)

//go:generate mockgen -destination=../internal/mocks/mock_rule.go -package=mocks . IDGenerator

// IDGenerator 唯一 ID 生成器，必须并发安全
type IDGenerator interface {
	NextID() string
}

// Env 执行规则时的环境值，由调用方显式传入
// 空字符串表示该值不存在，对应的规则会被跳过
type Env struct {
	Now        time.Time
	ActorID    string
	TenantID   string
	TenantName string
	IDs        IDGenerator
}

func (e Env) now() time.Time {
	if e.Now.IsZero() {
		return time.Now()
	}
	return e.Now
}

// Action 规则动作
type Action int

const (
	SetIfUnset      Action = iota + 1 // 未赋值时写入
	AlwaysSet                         // 总是覆盖
	IncrementOrInit                   // 已有值加一，否则写入初始值
)

func (a Action) String() string {
	switch a {
	case SetIfUnset:
		return "SetIfUnset"
	case AlwaysSet:
		return "AlwaysSet"
	case IncrementOrInit:
		return "IncrementOrInit"
	default:
		return "Unknown"
	}
}

// Source 值的来源
type Source int

const (
	SourceConst Source = iota + 1
	SourceNow
	SourceNextID
	SourceActor
	SourceTenantID
	SourceTenantName
)

func (s Source) String() string {
	switch s {
	case SourceConst:
		return "const"
	case SourceNow:
		return "now"
	case SourceNextID:
		return "next_id"
	case SourceActor:
		return "actor"
	case SourceTenantID:
		return "tenant_id"
	case SourceTenantName:
		return "tenant_name"
	default:
		return "unknown"
	}
}

// FieldRule 单个字段的填充规则
type FieldRule struct {
	Role   schema.Role
	Column string
	Kind   schema.Kind
	Action Action
	Source Source
	Const  any // Source 为 SourceConst 时的值，以及 IncrementOrInit 的初始值
}

func (r FieldRule) String() string {
	from := r.Source.String()
	if r.Source == SourceConst {
		from = fmt.Sprintf("%v", r.Const)
	}
	return fmt.Sprintf("%s <- %s(%s)", r.Column, r.Action, from)
}

// produce 计算规则的值，ok 为 false 表示环境中没有该值
func (r FieldRule) produce(env Env) (any, bool) {
	var v any
	switch r.Source {
	case SourceConst:
		v = r.Const
	case SourceNow:
		v = env.now()
	case SourceNextID:
		if env.IDs == nil {
			return nil, false
		}
		v = env.IDs.NextID()
	case SourceActor:
		v = env.ActorID
	case SourceTenantID:
		v = env.TenantID
	case SourceTenantName:
		v = env.TenantName
	default:
		return nil, false
	}
	if s, isString := v.(string); isString && s == "" && r.Source != SourceConst {
		return nil, false
	}
	return schema.Coerce(r.Kind, v), true
}

// Apply 对记录执行规则，不会失败
func (r FieldRule) Apply(rec Record, env Env) {
	switch r.Action {
	case SetIfUnset:
		if rec.IsSet(r.Column) {
			return
		}
		if v, ok := r.produce(env); ok {
			rec.compute(r.Column, v)
		}
	case AlwaysSet:
		if v, ok := r.produce(env); ok {
			rec.compute(r.Column, v)
		}
	case IncrementOrInit:
		if current, ok := rec.Get(r.Column); ok {
			if n, err := cast.ToInt64E(current); err == nil {
				rec.compute(r.Column, schema.Coerce(r.Kind, n+1))
				return
			}
		}
		rec.compute(r.Column, schema.Coerce(r.Kind, r.Const))
	}
}

// RuleSet 一个阶段的有序规则
type RuleSet []FieldRule

// Apply 按顺序执行全部规则
func (rs RuleSet) Apply(rec Record, env Env) {
	for _, r := range rs {
		r.Apply(rec, env)
	}
}

// Columns 规则涉及的列，按规则顺序
func (rs RuleSet) Columns() []string {
	columns := make([]string, 0, len(rs))
	for _, r := range rs {
		columns = append(columns, r.Column)
	}
	return columns
}

// Rule 查找角色对应的规则
func (rs RuleSet) Rule(role schema.Role) (FieldRule, bool) {
	for _, r := range rs {
		if r.Role == role {
			return r, true
		}
	}
	return FieldRule{}, false
}

func (rs RuleSet) String() string {
	parts := make([]string, 0, len(rs))
	for _, r := range rs {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, "; ")
}
