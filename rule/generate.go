package rule

import (
	"github.com/donutnomad/autofield/feature"
	"github.com/donutnomad/autofield/schema"
)

// Phase 规则执行阶段
type Phase int

const (
	PhaseCreate Phase = iota + 1
	PhaseUpdate
)

func (p Phase) String() string {
	switch p {
	case PhaseCreate:
		return "create"
	case PhaseUpdate:
		return "update"
	default:
		return "unknown"
	}
}

type builder struct {
	cfg   feature.Config
	b     schema.Binding
	rules RuleSet
}

// add 只为开启的特性和存在的字段生成规则
func (bd *builder) add(role schema.Role, action Action, source Source, konst any) {
	if !bd.cfg.Enabled(role.Feature()) || !bd.b.Has(role) {
		return
	}
	f := bd.b.Field(role)
	bd.rules = append(bd.rules, FieldRule{
		Role:   role,
		Column: f.Column,
		Kind:   f.Kind,
		Action: action,
		Source: source,
		Const:  konst,
	})
}

// BuildCreate 生成创建前的规则，顺序固定
func BuildCreate(cfg feature.Config, b schema.Binding) RuleSet {
	bd := &builder{cfg: cfg, b: b}
	bd.add(schema.RoleID, SetIfUnset, SourceNextID, nil)
	bd.add(schema.RoleCreateTime, SetIfUnset, SourceNow, nil)
	bd.add(schema.RoleUpdateTime, SetIfUnset, SourceNow, nil)
	bd.add(schema.RoleCreateBy, SetIfUnset, SourceActor, nil)
	bd.add(schema.RoleUpdateBy, SetIfUnset, SourceActor, nil)
	bd.add(schema.RoleTenantID, SetIfUnset, SourceTenantID, nil)
	bd.add(schema.RoleTenantName, SetIfUnset, SourceTenantName, nil)
	bd.add(schema.RoleVersion, SetIfUnset, SourceConst, 1)
	bd.add(schema.RoleDeleteFlag, SetIfUnset, SourceConst, 0)
	bd.add(schema.RoleState, SetIfUnset, SourceConst, cfg.DefaultState)
	bd.add(schema.RoleStateName, SetIfUnset, SourceConst, cfg.DefaultStateName)
	return bd.rules
}

// BuildUpdate 生成更新前的规则
// 租户、状态和删除标记不会被更新规则修改
func BuildUpdate(cfg feature.Config, b schema.Binding) RuleSet {
	bd := &builder{cfg: cfg, b: b}
	bd.add(schema.RoleUpdateTime, AlwaysSet, SourceNow, nil)
	bd.add(schema.RoleUpdateBy, AlwaysSet, SourceActor, nil)
	bd.add(schema.RoleVersion, IncrementOrInit, SourceConst, 1)
	return bd.rules
}

// Build 按阶段生成规则
func Build(phase Phase, cfg feature.Config, b schema.Binding) RuleSet {
	switch phase {
	case PhaseCreate:
		return BuildCreate(cfg, b)
	case PhaseUpdate:
		return BuildUpdate(cfg, b)
	}
	return nil
}
