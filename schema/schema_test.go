package schema

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donutnomad/autofield/feature"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		goType   string
		expected Kind
	}{
		{"", KindUnknown},
		{"int64", KindInt},
		{"*uint32", KindInt},
		{"sql.NullInt64", KindInt},
		{"snowflake.ID", KindInt},
		{"bool", KindBool},
		{"float64", KindFloat},
		{"string", KindString},
		{"*string", KindString},
		{"sql.NullString", KindString},
		{"uuid.UUID", KindString},
		{"time.Time", KindDatetime},
		{"*time.Time", KindDatetime},
		{"sql.NullTime", KindDatetime},
		{"gorm.DeletedAt", KindDatetime},
		{"map[string]any", KindOther},
		{"datatypes.JSON", KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.goType, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.goType))
		})
	}
}

func TestCoerce(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	assert.Equal(t, int64(42), Coerce(KindInt, "42"))
	assert.Equal(t, "42", Coerce(KindString, int64(42)))
	assert.Equal(t, false, Coerce(KindBool, 0))
	assert.Equal(t, now, Coerce(KindDatetime, now))
	assert.Equal(t, 1.5, Coerce(KindFloat, "1.5"))
	// 转换失败保留原值
	assert.Equal(t, "abc", Coerce(KindInt, "abc"))
	assert.Equal(t, "x", Coerce(KindOther, "x"))
	assert.Nil(t, Coerce(KindInt, nil))
}

func TestCoerceE(t *testing.T) {
	v, err := CoerceE(KindInt, "7")
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	_, err = CoerceE(KindInt, "active")
	assert.Error(t, err)

	v, err = CoerceE(KindOther, "active")
	require.NoError(t, err)
	assert.Equal(t, "active", v)
}

func TestRoles(t *testing.T) {
	roles := Roles()
	require.Len(t, roles, 11)

	columns := make([]string, 0, len(roles))
	for _, r := range roles {
		columns = append(columns, r.Column())
		got, ok := RoleOf(r.Column())
		require.True(t, ok)
		assert.Equal(t, r, got)
	}
	assert.Equal(t, []string{
		"id", "create_time", "update_time", "create_by", "update_by",
		"tenant_id", "tenant_name", "version", "delete_flag", "state", "state_name",
	}, columns)

	assert.Equal(t, []Role{RoleCreateTime, RoleUpdateTime}, RolesOf(feature.OptTimestamps))
	assert.Equal(t, []Role{RoleTenantID, RoleTenantName}, RolesOf(feature.OptTenant))
	assert.Empty(t, RolesOf(feature.OptDefaultState))

	_, ok := RoleOf("created_at")
	assert.False(t, ok)
}

func TestRoleAccept(t *testing.T) {
	assert.True(t, RoleDeleteFlag.Accept(KindBool))
	assert.True(t, RoleDeleteFlag.Accept(KindInt))
	assert.False(t, RoleDeleteFlag.Accept(KindString))
	assert.False(t, RoleVersion.Accept(KindString))
	assert.True(t, RoleVersion.Accept(KindUnknown))
	assert.False(t, RoleCreateTime.Accept(KindInt))
}

func TestBind(t *testing.T) {
	cfg := feature.Config{Timestamps: true, SoftDelete: true}
	columns := []Column{
		{Name: "create_time", Type: "time.Time"},
		{Name: "update_time", Type: "*time.Time"},
		{Name: "delete_flag", Type: "int8"},
		{Name: "id", Type: "int64"},
		{Name: "name", Type: "string"},
		{Name: "id", Type: "string"},
	}

	b := Bind(cfg, columns)

	assert.True(t, b.Has(RoleCreateTime))
	assert.True(t, b.Has(RoleDeleteFlag))
	assert.True(t, b.Has(RoleID), "与特性无关的角色也会绑定")
	assert.False(t, b.Has(RoleVersion))

	id := b.Field(RoleID)
	assert.Equal(t, "int64", id.Type, "重名字段以第一个为准")
	assert.Equal(t, KindInt, id.Kind)

	assert.True(t, b.Relevant(RoleUpdateTime))
	assert.False(t, b.Relevant(RoleID))
	assert.Len(t, b.Fields(), 11)

	missing := b.Field(RoleTenantName)
	assert.False(t, missing.Present)
	assert.Equal(t, "tenant_name", missing.Column)
}

type account struct {
	ID         int64
	Name       string
	CreateTime time.Time
	UpdateTime *time.Time
	DeleteFlag sql.NullInt16
	Remark     string `gorm:"column:memo"`
	Ignored    string `gorm:"-"`
}

func TestColumnsOf(t *testing.T) {
	columns, err := ColumnsOf(&account{}, nil)
	require.NoError(t, err)

	assert.Equal(t, []Column{
		{Name: "id", Type: "int64"},
		{Name: "name", Type: "string"},
		{Name: "create_time", Type: "time.Time"},
		{Name: "update_time", Type: "*time.Time"},
		{Name: "delete_flag", Type: "sql.NullInt16"},
		{Name: "memo", Type: "string"},
	}, columns)
}
