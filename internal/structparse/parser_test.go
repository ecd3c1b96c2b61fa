package structparse

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderFile = filepath.Join("testdata", "entity", "order.go")

func fieldNames(fields []FieldInfo) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

func TestParseStruct(t *testing.T) {
	info, err := ParseStruct(orderFile, "Order")
	require.NoError(t, err)

	assert.Equal(t, "entity", info.PackageName)
	assert.Equal(t, []string{
		"ID", "CreateTime", "UpdateTime", "CreateBy", "UpdateBy",
		"ID", "Name", "Version", "Remark", "Cache", "a", "b",
	}, fieldNames(info.Fields))

	byIndex := info.Fields
	assert.Equal(t, "sf.ID", byIndex[0].Type)
	assert.Equal(t, "AuditBase", byIndex[1].SourceType)
	assert.Equal(t, "time.Time", byIndex[1].Type)
	assert.Equal(t, "tenant_", byIndex[5].EmbeddedPrefix)
	assert.Equal(t, "Tenant", byIndex[5].SourceType)
	assert.Equal(t, "sql.NullInt64", byIndex[7].Type)
	assert.Equal(t, `gorm:"column:memo" json:"remark"`, byIndex[8].Tag)

	assert.Equal(t, map[string]string{
		"sql":  "database/sql",
		"sf":   "github.com/bwmarrin/snowflake",
		"gorm": "gorm.io/gorm",
	}, info.Imports)
}

func TestParseStructKnownAndExternalEmbedded(t *testing.T) {
	info, err := ParseStruct(orderFile, "Legacy")
	require.NoError(t, err)

	assert.Equal(t, []string{"ID", "CreatedAt", "UpdatedAt", "DeletedAt", "NullString", "Name"}, fieldNames(info.Fields))
	assert.Equal(t, "gorm.Model", info.Fields[0].SourceType)
	assert.Equal(t, "gorm.DeletedAt", info.Fields[3].Type)
	assert.True(t, info.Fields[4].External)
	assert.False(t, info.Fields[5].External)
}

func TestParseStructCycle(t *testing.T) {
	info, err := ParseStruct(orderFile, "Loop")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name"}, fieldNames(info.Fields))
}

func TestParseStructErrors(t *testing.T) {
	_, err := ParseStruct(orderFile, "Broken")
	assert.ErrorContains(t, err, "Missing")

	_, err = ParseStruct(orderFile, "Nope")
	assert.ErrorIs(t, err, ErrStructNotFound)

	_, err = ParseStruct(filepath.Join("testdata", "missing.go"), "Order")
	assert.Error(t, err)
}

func TestParseGormEmbeddedTag(t *testing.T) {
	tests := []struct {
		name         string
		tag          string
		wantEmbedded bool
		wantPrefix   string
	}{
		{name: "embedded", tag: `gorm:"embedded"`, wantEmbedded: true},
		{name: "带前缀", tag: `gorm:"embedded;embeddedPrefix:tenant_"`, wantEmbedded: true, wantPrefix: "tenant_"},
		{name: "带其他标签", tag: `gorm:"embedded;embeddedPrefix:acc_" json:"account"`, wantEmbedded: true, wantPrefix: "acc_"},
		{name: "只有前缀", tag: `gorm:"embeddedPrefix:x_"`, wantPrefix: "x_"},
		{name: "非 gorm 标签", tag: `json:"data"`},
		{name: "空标签", tag: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedded, prefix := parseGormEmbeddedTag(tt.tag)
			assert.Equal(t, tt.wantEmbedded, embedded)
			assert.Equal(t, tt.wantPrefix, prefix)
		})
	}
}

func TestShouldExpandEmbeddedField(t *testing.T) {
	for typ, want := range map[string]bool{
		"AuditBase":      true,
		"*AuditBase":     true,
		"gorm.Model":     true,
		"time.Time":      false,
		"*int64":         false,
		"[]Item":         false,
		"map[string]any": false,
	} {
		assert.Equal(t, want, shouldExpandEmbeddedField(typ), typ)
	}
}
