package feature

import (
	"strconv"
)

// LitKind 字面量类型
type LitKind int

const (
	LitNone   LitKind = iota // 无值，标识符简写
	LitBool                  // true / false
	LitString                // "..." 或 `...`
	LitInt                   // 数字，仅用于报错
	LitIdent                 // 裸标识符，仅用于报错
)

func (k LitKind) String() string {
	switch k {
	case LitNone:
		return "none"
	case LitBool:
		return "bool"
	case LitString:
		return "string"
	case LitInt:
		return "int"
	case LitIdent:
		return "identifier"
	default:
		return "unknown"
	}
}

// Literal 配置项的值
type Literal struct {
	Kind LitKind
	Bool bool
	Text string // 字符串内容，或数字/标识符的原始文本
}

func BoolLit(v bool) Literal {
	return Literal{Kind: LitBool, Bool: v}
}

func StringLit(v string) Literal {
	return Literal{Kind: LitString, Text: v}
}

func (l Literal) String() string {
	switch l.Kind {
	case LitBool:
		return strconv.FormatBool(l.Bool)
	case LitString:
		return strconv.Quote(l.Text)
	default:
		return l.Text
	}
}

// Token 一个配置项
// Value.Kind 为 LitNone 时表示简写 `name`，等价于 `name = true`
type Token struct {
	Name  string
	Value Literal
}

// Flag 创建简写形式的 token
func Flag(name string) Token {
	return Token{Name: name}
}

// Pair 创建 `name = value` 形式的 token
func Pair(name string, value Literal) Token {
	return Token{Name: name, Value: value}
}

// IsFlag 是否为简写形式
func (t Token) IsFlag() bool {
	return t.Value.Kind == LitNone
}

func (t Token) String() string {
	if t.IsFlag() {
		return t.Name
	}
	return t.Name + "=" + t.Value.String()
}
