package plugin

import (
	"regexp"
	"strings"
)

// annotationRegex 匹配注解名 @Name，括号部分另行扫描
var annotationRegex = regexp.MustCompile(`@(\w+)`)

// ParseAnnotations 从注释文本中解析所有注解
// 参数可以跨行书写，引号内的括号和逗号不影响匹配
func ParseAnnotations(comment string) []*Annotation {
	text := stripCommentMarkers(comment)

	var annotations []*Annotation
	for _, loc := range annotationRegex.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		ann := &Annotation{
			Name: text[loc[2]:loc[3]],
			Raw:  text[start:end],
		}
		if end < len(text) && text[end] == '(' {
			if inner, n, ok := scanArgs(text[end:]); ok {
				ann.Args = strings.TrimSpace(inner)
				ann.HasArgs = true
				ann.Raw = text[start : end+n]
			}
		}
		annotations = append(annotations, ann)
	}
	return annotations
}

// stripCommentMarkers 去除每行的注释前缀
func stripCommentMarkers(comment string) string {
	lines := strings.Split(comment, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "//")
		line = strings.TrimPrefix(line, "/*")
		line = strings.TrimSuffix(line, "*/")
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}

// scanArgs s 以 '(' 开头，返回括号内文本以及包含右括号在内的长度
func scanArgs(s string) (string, int, bool) {
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
				return s[1:i], i + 1, true
			}
		}
	}
	return "", 0, false
}

// FilterByNames 过滤指定名称的注解
func FilterByNames(annotations []*Annotation, names ...string) []*Annotation {
	if len(names) == 0 {
		return annotations
	}

	nameSet := make(map[string]bool, len(names))
	for _, n := range names {
		nameSet[n] = true
	}

	var result []*Annotation
	for _, ann := range annotations {
		if nameSet[ann.Name] {
			result = append(result, ann)
		}
	}
	return result
}

// HasAnnotation 检查是否包含指定注解
func HasAnnotation(annotations []*Annotation, name string) bool {
	return GetAnnotation(annotations, name) != nil
}

// GetAnnotation 获取指定名称的注解
func GetAnnotation(annotations []*Annotation, name string) *Annotation {
	for _, ann := range annotations {
		if ann.Name == name {
			return ann
		}
	}
	return nil
}

// Text 还原为 @Name(args) 形式
func (a *Annotation) Text() string {
	if !a.HasArgs {
		return "@" + a.Name
	}
	return "@" + a.Name + "(" + a.Args + ")"
}
