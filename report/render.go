package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/bytedance/sonic"
	"github.com/davecgh/go-spew/spew"
	"github.com/mattn/go-runewidth"
)

const textTemplate = `{{- range $i, $e := . }}
{{- if $i }}{{ "\n" }}{{ end -}}
== {{ $e.Name }}{{ with $e.Table }} ({{ . }}){{ end }} ==
{{- with $e.Source }}
来源: {{ . }}
{{- end }}
特性: {{ $e.Config | default "(无)" }}
{{- with $e.Skipped }}
跳过: {{ join ", " . }}
{{- end }}
{{- if $e.Fields }}
字段:
{{ fieldTable $e.Fields | indent 2 }}
{{- end }}
{{- if $e.Create }}
创建规则:
{{ ruleTable $e.Create | indent 2 }}
{{- end }}
{{- if $e.Update }}
更新规则:
{{ ruleTable $e.Update | indent 2 }}
{{- end }}
{{- with $e.Queries }}
查询扩展: {{ join ", " . }}
{{- end }}
{{- with $e.SoftDelete }}
软删除: {{ .flag }} = {{ .set }} (按 {{ .key }})
{{- end }}
{{- with $e.Simulated }}
模拟创建:
{{ valueTable . | indent 2 }}
{{- end }}
{{ end }}`

var textTmpl = template.Must(template.New("report").
	Funcs(sprig.TxtFuncMap()).
	Funcs(template.FuncMap{
		"fieldTable": fieldTable,
		"ruleTable":  ruleTable,
		"valueTable": valueTable,
	}).
	Parse(textTemplate))

// WriteText 以对齐的表格输出，中文按显示宽度对齐
func WriteText(w io.Writer, entities []Entity) error {
	var buf bytes.Buffer
	if err := textTmpl.Execute(&buf, entities); err != nil {
		return fmt.Errorf("渲染报告失败: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteJSON 输出 JSON，map 的键按字典序
func WriteJSON(w io.Writer, entities []Entity) error {
	data, err := sonic.ConfigStd.MarshalIndent(entities, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化报告失败: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteDump 用 spew 输出完整的内部结构，用于调试
func WriteDump(w io.Writer, v ...any) {
	cfg := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
	cfg.Fdump(w, v...)
}

func fieldTable(rows []FieldRow) string {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		status := "✓"
		if !r.Present {
			status = "缺失"
		}
		typ := r.Type
		if typ == "" {
			typ = "-"
		}
		cells = append(cells, []string{r.Role, r.Column, typ, r.Kind, status})
	}
	return table([]string{"角色", "列", "类型", "分类", "状态"}, cells)
}

func ruleTable(rows []RuleRow) string {
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells = append(cells, []string{r.Column, r.Action, r.Source})
	}
	return table([]string{"列", "动作", "来源"}, cells)
}

func valueTable(values map[string]any) string {
	cells := make([][]string, 0, len(values))
	for _, k := range sortedKeys(values) {
		cells = append(cells, []string{k, fmt.Sprintf("%v", values[k])})
	}
	return table([]string{"列", "值"}, cells)
}

// table 渲染表格，列宽按 runewidth 计算，最后一列不补空格
func table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	var sb strings.Builder
	writeRow := func(row []string) {
		for i, cell := range row {
			if i > 0 {
				sb.WriteString("  ")
			}
			if i == len(row)-1 {
				sb.WriteString(cell)
			} else {
				sb.WriteString(runewidth.FillRight(cell, widths[i]))
			}
		}
		sb.WriteString("\n")
	}

	writeRow(header)
	sep := make([]string, len(header))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
