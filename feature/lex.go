package feature

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// AnnotationName 注解名称
const AnnotationName = "AutoField"

// ErrNoAnnotation 文本中没有 @AutoField
var ErrNoAnnotation = errors.New("autofield: 未找到 @AutoField 注解")

var (
	identRegex  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	numberRegex = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
)

// Lex 把注解参数文本切分为 token
// 支持:
//   - name            (简写，等价于 name=true)
//   - name=true/false
//   - name="value"    (双引号，支持转义)
//   - name=`value`    (反引号)
func Lex(params string) ([]Token, error) {
	parts, err := splitOptions(params)
	if err != nil {
		return nil, err
	}

	tokens := make([]Token, 0, len(parts))
	for _, part := range parts {
		tok, err := lexOption(part)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// ParseArgs 解析注解括号内的参数文本
// 空文本表示无参数形式，开启全部特性
func ParseArgs(args string) (Config, error) {
	if strings.TrimSpace(args) == "" {
		return EnableAll(), nil
	}
	tokens, err := Lex(args)
	if err != nil {
		return Config{}, err
	}
	return Parse(tokens)
}

// ParseAnnotation 从注释文本中找到 @AutoField 并解析其参数
func ParseAnnotation(text string) (Config, error) {
	args, found, err := FindAnnotation(text)
	if err != nil {
		return Config{}, err
	}
	if !found {
		return Config{}, ErrNoAnnotation
	}
	return ParseArgs(args)
}

// FindAnnotation 查找第一个 @AutoField，返回括号内的原始文本
func FindAnnotation(text string) (args string, found bool, err error) {
	marker := "@" + AnnotationName
	from := 0
	for {
		i := strings.Index(text[from:], marker)
		if i < 0 {
			return "", false, nil
		}
		end := from + i + len(marker)
		if end < len(text) && isIdentByte(text[end]) {
			// @AutoFieldXxx 是别的注解
			from = end
			continue
		}
		if end >= len(text) || text[end] != '(' {
			return "", true, nil
		}
		inner, ok := scanParens(text[end:])
		if !ok {
			return "", true, &SyntaxError{Text: text[end:], Msg: "括号未闭合"}
		}
		return inner, true, nil
	}
}

// scanParens s 以 '(' 开头，返回匹配的 ')' 之间的内容，引号内的括号不计
func scanParens(s string) (string, bool) {
	var quote byte
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' && quote == '"' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '`':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return s[1:i], true
			}
		}
	}
	return "", false
}

// splitOptions 按引号外的逗号切分
func splitOptions(s string) ([]string, error) {
	var parts []string
	var current strings.Builder
	var quote byte

	flush := func() {
		if part := strings.TrimSpace(current.String()); part != "" {
			parts = append(parts, part)
		}
		current.Reset()
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			current.WriteByte(c)
			if c == '\\' && quote == '"' && i+1 < len(s) {
				i++
				current.WriteByte(s[i])
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '`':
			quote = c
			current.WriteByte(c)
		case c == ',':
			flush()
		default:
			current.WriteByte(c)
		}
	}
	if quote != 0 {
		return nil, &SyntaxError{Text: s, Msg: "引号未闭合"}
	}
	flush()
	return parts, nil
}

func lexOption(part string) (Token, error) {
	name, raw, hasValue := strings.Cut(part, "=")
	name = strings.TrimSpace(name)
	if !identRegex.MatchString(name) {
		return Token{}, &SyntaxError{Text: part, Msg: "非法的配置项名称"}
	}
	if !hasValue {
		return Flag(name), nil
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Token{}, &SyntaxError{Text: part, Msg: "缺少配置值"}
	}
	lit, err := lexLiteral(raw)
	if err != nil {
		return Token{}, err
	}
	return Pair(name, lit), nil
}

func lexLiteral(raw string) (Literal, error) {
	switch {
	case raw[0] == '"':
		s, err := strconv.Unquote(raw)
		if err != nil {
			return Literal{}, &SyntaxError{Text: raw, Msg: "非法的字符串"}
		}
		return StringLit(s), nil
	case raw[0] == '`':
		if len(raw) < 2 || raw[len(raw)-1] != '`' || strings.Count(raw, "`") != 2 {
			return Literal{}, &SyntaxError{Text: raw, Msg: "非法的字符串"}
		}
		return StringLit(raw[1 : len(raw)-1]), nil
	case raw == "true":
		return BoolLit(true), nil
	case raw == "false":
		return BoolLit(false), nil
	case numberRegex.MatchString(raw):
		return Literal{Kind: LitInt, Text: raw}, nil
	case identRegex.MatchString(raw):
		return Literal{Kind: LitIdent, Text: raw}, nil
	}
	return Literal{}, &SyntaxError{Text: raw, Msg: "无法识别的值"}
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
