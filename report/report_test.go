package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donutnomad/autofield/compiler"
	"github.com/donutnomad/autofield/feature"
	"github.com/donutnomad/autofield/rule"
	"github.com/donutnomad/autofield/schema"
)

type fixedIDs struct{}

func (fixedIDs) NextID() string { return "1001" }

func compileOrder(t *testing.T) *compiler.Artifacts {
	t.Helper()
	cfg, err := feature.ParseArgs("snowflake_id, timestamps, version, soft_delete, state")
	require.NoError(t, err)
	a, err := compiler.Compile("Order", cfg, []schema.Column{
		{Name: "id", Type: "int64"},
		{Name: "create_time", Type: "time.Time"},
		{Name: "update_time", Type: "time.Time"},
		{Name: "version", Type: "int"},
		{Name: "delete_flag", Type: "int"},
		{Name: "state", Type: "string"},
		{Name: "state_name", Type: "string"},
	})
	require.NoError(t, err)
	return a
}

func TestFromArtifacts(t *testing.T) {
	e := FromArtifacts(compileOrder(t))

	assert.Equal(t, "Order", e.Name)
	assert.Equal(t, "snowflake_id, timestamps, version, soft_delete, state", e.Config)
	require.Len(t, e.Fields, 7)
	assert.Equal(t, FieldRow{Role: "Id", Column: "id", Type: "int64", Kind: "int", Present: true}, e.Fields[0])

	assert.Equal(t, RuleRow{Column: "version", Action: "SetIfUnset", Source: "1"}, e.Create[3])
	assert.Equal(t, []RuleRow{
		{Column: "update_time", Action: "AlwaysSet", Source: "now"},
		{Column: "version", Action: "IncrementOrInit", Source: "1"},
	}, e.Update)
	assert.Equal(t, []string{"find_not_deleted"}, e.Queries)
	assert.Equal(t, map[string]any{"key": "id", "flag": "delete_flag", "set": int64(1)}, e.SoftDelete)
}

func TestSimulate(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	values := Simulate(compileOrder(t), rule.Env{Now: now, IDs: fixedIDs{}})

	assert.Equal(t, map[string]any{
		"id":          int64(1001),
		"create_time": "2024-06-01T12:00:00Z",
		"update_time": "2024-06-01T12:00:00Z",
		"version":     int64(1),
		"delete_flag": int64(0),
		"state":       "1",
		"state_name":  "启用",
	}, values)
}

func TestTable(t *testing.T) {
	got := table([]string{"角色", "列"}, [][]string{{"Id", "id"}, {"TenantName", "tenant_name"}})
	want := strings.Join([]string{
		"角色        列",
		"----------  -----------",
		"Id          id",
		"TenantName  tenant_name",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestWriteText(t *testing.T) {
	e := FromArtifacts(compileOrder(t))
	e.Table = "orders"
	e.Source = "model/order.go:12"
	e.Simulated = map[string]any{"state": "1"}

	empty := Entity{Name: "Plain"}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, []Entity{e, empty}))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "== Order (orders) ==\n来源: model/order.go:12\n"))
	assert.Contains(t, out, "创建规则:\n  列           动作        来源\n")
	assert.Contains(t, out, "查询扩展: find_not_deleted\n")
	assert.Contains(t, out, "软删除: delete_flag = 1 (按 id)\n")
	assert.Contains(t, out, "模拟创建:\n  列     值\n")
	assert.Contains(t, out, "\n\n== Plain ==\n特性: (无)\n")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []Entity{FromArtifacts(compileOrder(t))}))
	out := buf.String()

	assert.Contains(t, out, `"name": "Order"`)
	assert.Contains(t, out, `"queries": [`)
	assert.NotContains(t, out, `"table"`)
	assert.True(t, strings.HasSuffix(out, "]\n"))
}

func TestWriteDump(t *testing.T) {
	var buf bytes.Buffer
	WriteDump(&buf, FromArtifacts(compileOrder(t)))
	assert.Contains(t, buf.String(), `Name: (string) (len=5) "Order"`)
}
