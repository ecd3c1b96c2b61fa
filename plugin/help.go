package plugin

import (
	"fmt"
	"strings"
)

// FormatHelpText 为所有注册的生成器生成帮助文本
func FormatHelpText(registry *Registry) string {
	generators := registry.Generators()
	if len(generators) == 0 {
		return "  (暂无已注册的生成器)\n"
	}

	var sb strings.Builder
	for _, gen := range generators {
		annotations := gen.Annotations()
		if len(annotations) == 0 {
			continue
		}

		mainAnnotation := annotations[0]
		paramDefs := gen.ParamDefs()

		fmt.Fprintf(&sb, "  @%s - %s\n", mainAnnotation, gen.Name())

		if len(paramDefs) > 0 {
			sb.WriteString("    参数:\n")
			for _, param := range paramDefs {
				sb.WriteString("      ")
				sb.WriteString(FormatParamDef(param))
				sb.WriteString("\n")
			}
		}

		sb.WriteString("    示例:\n")
		fmt.Fprintf(&sb, "      @%s\n", mainAnnotation)
		for _, example := range examples(paramDefs) {
			fmt.Fprintf(&sb, "      @%s(%s)\n", mainAnnotation, example)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// examples 前两个布尔参数组成一个简写示例，第一个字符串参数给出赋值示例
// Default 按注解中的字面量书写，字符串带引号
func examples(params []ParamDef) []string {
	var flags []string
	var assign string
	for _, p := range params {
		switch {
		case p.Kind == "bool" && len(flags) < 2:
			flags = append(flags, p.Name)
		case p.Kind == "string" && assign == "":
			assign = p.Name + "=" + p.Default
		}
	}

	var result []string
	if len(flags) > 0 {
		result = append(result, strings.Join(flags, ", "))
	}
	if assign != "" {
		result = append(result, assign)
	}
	return result
}

// FormatParamDef 格式化单个参数定义
func FormatParamDef(param ParamDef) string {
	var sb strings.Builder
	sb.WriteString(param.Name)
	if param.Kind != "" {
		fmt.Fprintf(&sb, " <%s>", param.Kind)
	}
	if param.Required {
		sb.WriteString(" (必填)")
	}
	if param.Default != "" {
		fmt.Fprintf(&sb, " [默认: %s]", param.Default)
	}
	if param.Description != "" {
		sb.WriteString(" - ")
		sb.WriteString(param.Description)
	}
	return sb.String()
}
