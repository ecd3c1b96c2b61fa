// Package validate 检查特性配置与实体字段是否一致
package validate

import (
	"github.com/donutnomad/autofield/feature"
	"github.com/donutnomad/autofield/schema"
)

// dependency 特性之间的依赖
type dependency struct {
	feature  string
	requires string
}

var dependencies = []dependency{
	{feature: feature.OptAudit, requires: feature.OptTimestamps},
}

// Validate 收集全部违规项，合法时返回 nil，否则返回 Errors
// 顺序: 特性依赖，然后按特性顺序逐个角色检查字段存在性和类型
func Validate(cfg feature.Config, b schema.Binding) error {
	var errs Errors

	for _, dep := range dependencies {
		if cfg.Enabled(dep.feature) && !cfg.Enabled(dep.requires) {
			errs = append(errs, &MissingDependencyError{Feature: dep.feature, Requires: dep.requires})
		}
	}

	for _, name := range cfg.EnabledFeatures() {
		for _, role := range schema.RolesOf(name) {
			f := b.Field(role)
			if !f.Present {
				errs = append(errs, &MissingFieldError{Feature: name, Role: role})
				continue
			}
			if !role.Accept(f.Kind) {
				errs = append(errs, &IncompatibleTypeError{
					Role:         role,
					DeclaredType: f.Type,
					Expected:     role.Accepts(),
				})
				continue
			}
			if opt, value, ok := defaultOf(cfg, role); ok {
				if _, err := schema.CoerceE(f.Kind, value); err != nil {
					errs = append(errs, &InvalidDefaultError{
						Option:       opt,
						Value:        value,
						Role:         role,
						DeclaredType: f.Type,
					})
				}
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// defaultOf 角色在创建时写入的配置默认值
func defaultOf(cfg feature.Config, role schema.Role) (option, value string, ok bool) {
	switch role {
	case schema.RoleState:
		return feature.OptDefaultState, cfg.DefaultState, true
	case schema.RoleStateName:
		return feature.OptDefaultStateName, cfg.DefaultStateName, true
	}
	return "", "", false
}
