package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/donutnomad/autofield/schema"
)

// ErrInvalidConfig 所有校验错误都满足 errors.Is(err, ErrInvalidConfig)
var ErrInvalidConfig = errors.New("autofield: 配置校验失败")

// MissingDependencyError 特性依赖的另一个特性未开启
type MissingDependencyError struct {
	Feature  string
	Requires string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("特性 %s 依赖 %s，但 %s 未开启", e.Feature, e.Requires, e.Requires)
}

func (e *MissingDependencyError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// MissingFieldError 开启的特性缺少对应字段
type MissingFieldError struct {
	Feature string
	Role    schema.Role
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("特性 %s 需要字段 %s (%s)，实体中未声明", e.Feature, e.Role.Column(), e.Role)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// IncompatibleTypeError 字段类型与角色不兼容
type IncompatibleTypeError struct {
	Role         schema.Role
	DeclaredType string
	Expected     []schema.Kind
}

func (e *IncompatibleTypeError) Error() string {
	expected := lo.Map(e.Expected, func(k schema.Kind, _ int) string { return k.String() })
	return fmt.Sprintf("字段 %s 的类型 %s 不兼容，需要 %s", e.Role.Column(), e.DeclaredType, strings.Join(expected, "|"))
}

func (e *IncompatibleTypeError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// InvalidDefaultError 配置的默认值无法转换为字段类型
type InvalidDefaultError struct {
	Option       string
	Value        string
	Role         schema.Role
	DeclaredType string
}

func (e *InvalidDefaultError) Error() string {
	return fmt.Sprintf("%s=%q 无法写入字段 %s (%s)", e.Option, e.Value, e.Role.Column(), e.DeclaredType)
}

func (e *InvalidDefaultError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Errors 一次校验得到的全部错误，顺序固定
type Errors []error

func (e Errors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d 个配置错误:", len(e))
	for _, err := range e {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

func (e Errors) Unwrap() []error {
	return e
}

func (e Errors) Is(target error) bool {
	return target == ErrInvalidConfig
}
