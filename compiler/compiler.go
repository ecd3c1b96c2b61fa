// Package compiler 把实体的特性配置编译为字段规则、查询扩展和定制操作
package compiler

import (
	"fmt"
	"reflect"

	"github.com/donutnomad/autofield/custom"
	"github.com/donutnomad/autofield/feature"
	"github.com/donutnomad/autofield/query"
	"github.com/donutnomad/autofield/rule"
	"github.com/donutnomad/autofield/schema"
	"github.com/donutnomad/autofield/validate"
)

// Artifacts 一个实体的编译结果，创建后只读，可在多个 goroutine 间共享
type Artifacts struct {
	Entity  string
	Model   reflect.Type // 通过模型注册时为结构体类型，否则为 nil
	Config  feature.Config
	Binding schema.Binding
	Create  rule.RuleSet
	Update  rule.RuleSet
	Query   query.Extensions
	Custom  custom.Operations
}

// Compile 绑定字段、校验配置并生成全部产物
// 校验失败时返回的错误包含 validate.Errors
func Compile(entity string, cfg feature.Config, columns []schema.Column) (*Artifacts, error) {
	b := schema.Bind(cfg, columns)
	if err := validate.Validate(cfg, b); err != nil {
		return nil, fmt.Errorf("实体 %s: %w", entity, err)
	}

	create := rule.BuildCreate(cfg, b)
	update := rule.BuildUpdate(cfg, b)
	return &Artifacts{
		Entity:  entity,
		Config:  cfg,
		Binding: b,
		Create:  create,
		Update:  update,
		Query:   query.Build(cfg, b),
		Custom:  custom.Build(cfg, b, create, update),
	}, nil
}

// CompileAnnotation 从注解文本解析配置后编译
func CompileAnnotation(entity, text string, columns []schema.Column) (*Artifacts, error) {
	cfg, err := feature.ParseAnnotation(text)
	if err != nil {
		return nil, fmt.Errorf("实体 %s: %w", entity, err)
	}
	return Compile(entity, cfg, columns)
}

// CompileModel 通过 gorm 解析模型的字段后编译
func CompileModel(model any, cfg feature.Config) (*Artifacts, error) {
	typ := modelType(model)
	if typ == nil {
		return nil, fmt.Errorf("模型必须是结构体或结构体指针, 得到: %T", model)
	}
	columns, err := schema.ColumnsOf(model, nil)
	if err != nil {
		return nil, err
	}
	a, err := Compile(typ.Name(), cfg, columns)
	if err != nil {
		return nil, err
	}
	a.Model = typ
	return a, nil
}

// Phase 返回指定阶段的规则
func (a *Artifacts) Phase(p rule.Phase) rule.RuleSet {
	switch p {
	case rule.PhaseCreate:
		return a.Create
	case rule.PhaseUpdate:
		return a.Update
	}
	return nil
}

// NewModel 创建模型的新实例指针，未绑定模型时返回 nil
func (a *Artifacts) NewModel() any {
	if a.Model == nil {
		return nil
	}
	return reflect.New(a.Model).Interface()
}

func modelType(model any) reflect.Type {
	if model == nil {
		return nil
	}
	typ := reflect.TypeOf(model)
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}
	return typ
}
