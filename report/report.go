// Package report 把实体的编译结果整理为可读的表格或 JSON，用于 explain 命令
package report

import (
	"fmt"
	"slices"
	"time"

	"github.com/donutnomad/autofield/compiler"
	"github.com/donutnomad/autofield/rule"
)

// FieldRow 一个角色的绑定情况
type FieldRow struct {
	Role    string `json:"role"`
	Column  string `json:"column"`
	Type    string `json:"type,omitempty"`
	Kind    string `json:"kind"`
	Present bool   `json:"present"`
}

// RuleRow 一条字段规则
type RuleRow struct {
	Column string `json:"column"`
	Action string `json:"action"`
	Source string `json:"source"`
}

// Entity 一个实体的报告
type Entity struct {
	Name       string         `json:"name"`
	Table      string         `json:"table,omitempty"`
	Source     string         `json:"source,omitempty"`
	Config     string         `json:"config"`
	Fields     []FieldRow     `json:"fields"`
	Create     []RuleRow      `json:"create"`
	Update     []RuleRow      `json:"update"`
	Queries    []string       `json:"queries"`
	SoftDelete map[string]any `json:"soft_delete,omitempty"`
	Skipped    []string       `json:"skipped,omitempty"`
	Simulated  map[string]any `json:"simulated,omitempty"`
}

// FromArtifacts 从编译结果构建报告，只列出已开启特性涉及的角色
func FromArtifacts(a *compiler.Artifacts) Entity {
	e := Entity{
		Name:    a.Entity,
		Config:  a.Config.Short(),
		Create:  ruleRows(a.Create),
		Update:  ruleRows(a.Update),
		Queries: a.Query.Names(),
	}
	for _, f := range a.Binding.Fields() {
		if !a.Binding.Relevant(f.Role) {
			continue
		}
		e.Fields = append(e.Fields, FieldRow{
			Role:    f.Role.String(),
			Column:  f.Column,
			Type:    f.Type,
			Kind:    f.Kind.String(),
			Present: f.Present,
		})
	}
	if sd, err := a.Custom.SoftDelete(); err == nil {
		e.SoftDelete = map[string]any{
			"key":  sd.KeyColumn,
			"flag": sd.FlagColumn,
			"set":  sd.FlagValue,
		}
	}
	return e
}

func ruleRows(rs rule.RuleSet) []RuleRow {
	rows := make([]RuleRow, 0, len(rs))
	for _, r := range rs {
		source := r.Source.String()
		if r.Source == rule.SourceConst {
			source = fmt.Sprintf("%v", r.Const)
		}
		rows = append(rows, RuleRow{Column: r.Column, Action: r.Action.String(), Source: source})
	}
	return rows
}

// Simulate 对空记录执行创建规则，返回规则写入的字段
func Simulate(a *compiler.Artifacts, env rule.Env) map[string]any {
	rec := rule.Record{}
	a.Create.Apply(rec, env)
	computed := rec.Computed()
	for k, v := range computed {
		if t, ok := v.(time.Time); ok {
			computed[k] = t.Format(time.RFC3339)
		}
	}
	return computed
}

// sortedKeys map 的键按字典序
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
