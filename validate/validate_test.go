package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donutnomad/autofield/feature"
	"github.com/donutnomad/autofield/schema"
)

func fullColumns() []schema.Column {
	return []schema.Column{
		{Name: "id", Type: "int64"},
		{Name: "create_time", Type: "time.Time"},
		{Name: "update_time", Type: "time.Time"},
		{Name: "create_by", Type: "string"},
		{Name: "update_by", Type: "string"},
		{Name: "tenant_id", Type: "int64"},
		{Name: "tenant_name", Type: "string"},
		{Name: "version", Type: "int"},
		{Name: "delete_flag", Type: "int8"},
		{Name: "state", Type: "string"},
		{Name: "state_name", Type: "string"},
	}
}

func without(columns []schema.Column, names ...string) []schema.Column {
	var result []schema.Column
outer:
	for _, c := range columns {
		for _, n := range names {
			if c.Name == n {
				continue outer
			}
		}
		result = append(result, c)
	}
	return result
}

func TestValidateOK(t *testing.T) {
	cfg := feature.EnableAll()
	assert.NoError(t, Validate(cfg, schema.Bind(cfg, fullColumns())))

	// 未开启的特性不要求字段
	cfg = feature.Config{Timestamps: true}
	columns := []schema.Column{{Name: "create_time"}, {Name: "update_time"}}
	assert.NoError(t, Validate(cfg, schema.Bind(cfg, columns)), "未知类型视为兼容")
}

func TestValidateMissingDependency(t *testing.T) {
	cfg := feature.Config{Audit: true}
	err := Validate(cfg, schema.Bind(cfg, fullColumns()))
	require.Error(t, err)

	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)

	var dep *MissingDependencyError
	require.ErrorAs(t, err, &dep)
	assert.Equal(t, "audit", dep.Feature)
	assert.Equal(t, "timestamps", dep.Requires)
}

func TestValidateEnableAllMissingTenantName(t *testing.T) {
	cfg := feature.EnableAll()
	err := Validate(cfg, schema.Bind(cfg, without(fullColumns(), "tenant_name")))

	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 1)

	var missing *MissingFieldError
	require.ErrorAs(t, errs[0], &missing)
	assert.Equal(t, feature.OptTenant, missing.Feature)
	assert.Equal(t, schema.RoleTenantName, missing.Role)
	assert.Equal(t, "TenantName", missing.Role.String())
}

func TestValidateCollectsAllInOrder(t *testing.T) {
	cfg := feature.Config{Audit: true, Version: true, SoftDelete: true}
	columns := []schema.Column{
		{Name: "create_by", Type: "time.Time"},
		{Name: "version", Type: "string"},
	}
	err := Validate(cfg, schema.Bind(cfg, columns))

	var errs Errors
	require.ErrorAs(t, err, &errs)
	require.Len(t, errs, 5)

	assert.IsType(t, &MissingDependencyError{}, errs[0])

	incompatible, ok := errs[1].(*IncompatibleTypeError)
	require.True(t, ok)
	assert.Equal(t, schema.RoleCreateBy, incompatible.Role)
	assert.Equal(t, "time.Time", incompatible.DeclaredType)

	missing, ok := errs[2].(*MissingFieldError)
	require.True(t, ok)
	assert.Equal(t, schema.RoleUpdateBy, missing.Role)

	incompatible, ok = errs[3].(*IncompatibleTypeError)
	require.True(t, ok)
	assert.Equal(t, schema.RoleVersion, incompatible.Role)
	assert.Equal(t, []schema.Kind{schema.KindInt}, incompatible.Expected)

	missing, ok = errs[4].(*MissingFieldError)
	require.True(t, ok)
	assert.Equal(t, feature.OptSoftDelete, missing.Feature)
	assert.Equal(t, schema.RoleDeleteFlag, missing.Role)

	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Contains(t, err.Error(), "5 个配置错误")
}

func TestValidateTypeCompatibility(t *testing.T) {
	tests := []struct {
		name    string
		cfg     feature.Config
		column  schema.Column
		wantErr bool
	}{
		{"字符串 ID", feature.Config{SnowflakeID: true}, schema.Column{Name: "id", Type: "string"}, false},
		{"浮点 ID", feature.Config{SnowflakeID: true}, schema.Column{Name: "id", Type: "float64"}, true},
		{"布尔删除标记", feature.Config{SoftDelete: true}, schema.Column{Name: "delete_flag", Type: "bool"}, false},
		{"时间删除标记", feature.Config{SoftDelete: true}, schema.Column{Name: "delete_flag", Type: "gorm.DeletedAt"}, true},
		{"整数状态", feature.Config{State: true}, schema.Column{Name: "state", Type: "int"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			columns := without(fullColumns(), tt.column.Name)
			columns = append(columns, tt.column)
			err := Validate(tt.cfg, schema.Bind(tt.cfg, columns))
			if tt.wantErr {
				var target *IncompatibleTypeError
				assert.ErrorAs(t, err, &target)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDefaultState(t *testing.T) {
	tests := []struct {
		name    string
		state   string
		column  schema.Column
		wantErr bool
	}{
		{"数字默认值写入整数字段", "2", schema.Column{Name: "state", Type: "int"}, false},
		{"文本默认值写入整数字段", "active", schema.Column{Name: "state", Type: "int"}, true},
		{"文本默认值写入字符串字段", "active", schema.Column{Name: "state", Type: "string"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := feature.Config{State: true, DefaultState: tt.state, DefaultStateName: feature.DefaultStateName}
			columns := without(fullColumns(), tt.column.Name)
			columns = append(columns, tt.column)

			err := Validate(cfg, schema.Bind(cfg, columns))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var target *InvalidDefaultError
			require.ErrorAs(t, err, &target)
			assert.Equal(t, feature.OptDefaultState, target.Option)
			assert.Equal(t, tt.state, target.Value)
			assert.Equal(t, schema.RoleState, target.Role)
			assert.Equal(t, "int", target.DeclaredType)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
			assert.Contains(t, err.Error(), "default_state")
		})
	}
}
