package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"

	"github.com/donutnomad/autofield/feature"
	"github.com/donutnomad/autofield/rule"
	"github.com/donutnomad/autofield/schema"
)

var columns = []schema.Column{
	{Name: "id", Type: "int64"},
	{Name: "create_by", Type: "string"},
	{Name: "tenant_id", Type: "int64"},
	{Name: "tenant_name", Type: "string"},
	{Name: "delete_flag", Type: "int8"},
}

func extensions(cfg feature.Config, cols []schema.Column) Extensions {
	return Build(cfg, schema.Bind(cfg, cols))
}

func TestBuildOnlyEnabled(t *testing.T) {
	tests := []struct {
		name     string
		cfg      feature.Config
		cols     []schema.Column
		expected []string
	}{
		{"全部关闭", feature.Default(), columns, nil},
		{"软删除", feature.Config{SoftDelete: true}, columns, []string{NameNotDeleted}},
		{"租户", feature.Config{Tenant: true}, columns, []string{NameByTenantID, NameByTenantName}},
		{"审计", feature.Config{Audit: true, Timestamps: true}, columns, []string{NameByCreatorID}},
		{"字段缺失时不生成", feature.Config{SoftDelete: true}, columns[:1], nil},
		{"全部开启", feature.EnableAll(), columns, []string{NameNotDeleted, NameByTenantID, NameByTenantName, NameByCreatorID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extensions(tt.cfg, tt.cols).Names())
		})
	}
}

func TestNotDeleted(t *testing.T) {
	ext := extensions(feature.Config{SoftDelete: true}, columns)

	p, ok := ext.NotDeleted()
	require.True(t, ok)
	assert.Equal(t, "delete_flag", p.Column)
	assert.Equal(t, int64(0), p.Value)
	assert.Equal(t, "delete_flag = 0", p.String())
	assert.Equal(t, clause.Eq{Column: clause.Column{Name: "delete_flag"}, Value: int64(0)}, p.Expression())

	assert.True(t, p.Match(rule.FromMap(map[string]any{"delete_flag": 0})))
	assert.False(t, p.Match(rule.FromMap(map[string]any{"delete_flag": int8(1)})))
	assert.False(t, p.Match(rule.Record{}))

	_, ok = ext.ByTenantID(1)
	assert.False(t, ok, "未开启的特性不提供查询")
}

func TestNotDeletedBoolFlag(t *testing.T) {
	cols := []schema.Column{{Name: "delete_flag", Type: "bool"}}
	p, ok := extensions(feature.Config{SoftDelete: true}, cols).NotDeleted()
	require.True(t, ok)
	assert.Equal(t, false, p.Value)
}

func TestTenantAndCreator(t *testing.T) {
	ext := extensions(feature.EnableAll(), columns)

	p, ok := ext.ByTenantID("42")
	require.True(t, ok)
	assert.Equal(t, int64(42), p.Value, "按字段类型转换")
	assert.True(t, p.Match(rule.FromMap(map[string]any{"tenant_id": 42})))

	p, ok = ext.ByTenantName("acme")
	require.True(t, ok)
	assert.Equal(t, "tenant_name = acme", p.String())

	p, ok = ext.ByCreatorID(7)
	require.True(t, ok)
	assert.Equal(t, "create_by", p.Column)
	assert.Equal(t, "7", p.Value)
	assert.True(t, ext.Has(NameByCreatorID))
}

func TestIn(t *testing.T) {
	p := In("id", 1, 2, 3)
	assert.Equal(t, clause.IN{Column: clause.Column{Name: "id"}, Values: []any{1, 2, 3}}, p.Expression())
	assert.True(t, p.Match(rule.FromMap(map[string]any{"id": int64(2)})))
	assert.False(t, p.Match(rule.FromMap(map[string]any{"id": 4})))

	p = Predicate{Column: "id", Op: OpIn, Value: []int64{5, 6}}
	assert.True(t, p.Match(rule.FromMap(map[string]any{"id": int64(6)})))
}
