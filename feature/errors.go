package feature

import (
	"errors"
	"fmt"
)

// ErrInvalidOption 所有配置解析错误都满足 errors.Is(err, ErrInvalidOption)
var ErrInvalidOption = errors.New("autofield: 无效的配置")

// UnknownOptionError 未知的配置项
type UnknownOptionError struct {
	Name string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("autofield: 未知的配置项 %q", e.Name)
}

func (e *UnknownOptionError) Is(target error) bool {
	return target == ErrInvalidOption
}

// TypeMismatchError 配置项的值类型不匹配
type TypeMismatchError struct {
	Name     string
	Expected LitKind
	Actual   LitKind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("autofield: 配置项 %q 需要 %s 类型的值，实际为 %s", e.Name, e.Expected, e.Actual)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrInvalidOption
}

// SyntaxError 注解参数文本无法切分为 token
type SyntaxError struct {
	Text string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("autofield: 语法错误 %q: %s", e.Text, e.Msg)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrInvalidOption
}
