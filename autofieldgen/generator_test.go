package autofieldgen

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donutnomad/autofield/feature"
	"github.com/donutnomad/autofield/plugin"
	"github.com/donutnomad/autofield/validate"
)

func scanModel(t *testing.T) *plugin.ScanResult {
	t.Helper()
	scanner := plugin.NewScanner(plugin.WithAnnotationFilter(feature.AnnotationName))
	result, err := scanner.Scan(context.Background(), filepath.Join("testdata", "model"))
	require.NoError(t, err)
	return result
}

func targetByName(t *testing.T, result *plugin.ScanResult, name string) *plugin.AnnotatedTarget {
	t.Helper()
	for _, at := range result.All() {
		if at.Target.Name == name {
			return at
		}
	}
	t.Fatalf("未找到目标 %s", name)
	return nil
}

func TestNewAutoFieldGenerator(t *testing.T) {
	g := NewAutoFieldGenerator()
	assert.Equal(t, "autofield", g.Name())
	assert.Equal(t, []string{"AutoField"}, g.Annotations())
	assert.Equal(t, 10, g.Priority())

	defs := g.ParamDefs()
	require.Len(t, defs, 9)
	assert.Equal(t, plugin.ParamDef{
		Name:        "snowflake_id",
		Kind:        "bool",
		Default:     "false",
		Description: defs[0].Description,
	}, defs[0])
	assert.Equal(t, "string", defs[7].Kind)
	assert.Equal(t, `"1"`, defs[7].Default)

	help := plugin.FormatHelpText(registryWith(g))
	assert.Contains(t, help, "@AutoField - autofield")
	assert.Contains(t, help, "@AutoField(snowflake_id, timestamps)")
	assert.Contains(t, help, `@AutoField(default_state="1")`)
}

func registryWith(g plugin.Generator) *plugin.Registry {
	r := plugin.NewRegistry()
	r.MustRegister(g)
	return r
}

func TestCompileTarget(t *testing.T) {
	result := scanModel(t)

	order, err := CompileTarget(targetByName(t, result, "Order"), nil)
	require.NoError(t, err)
	assert.Equal(t, "orders", order.Model.TableName)
	assert.True(t, order.Artifacts.Config.Timestamps)
	assert.False(t, order.Artifacts.Config.Audit)
	assert.Equal(t, []string{"create_time", "update_time", "delete_flag"}, order.Artifacts.Create.Columns())

	account, err := CompileTarget(targetByName(t, result, "Account"), nil)
	require.NoError(t, err)
	assert.Equal(t, feature.EnableAll(), account.Artifacts.Config)
	assert.Len(t, account.Artifacts.Query.Names(), 4)

	_, err = CompileTarget(targetByName(t, result, "Bad"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, validate.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "model.go:")
	assert.Contains(t, err.Error(), "Bad")

	_, err = CompileTarget(targetByName(t, result, "Weird"), nil)
	assert.ErrorIs(t, err, feature.ErrInvalidOption)
}

func TestGenerate(t *testing.T) {
	result := scanModel(t)
	g := NewAutoFieldGenerator()

	genResult, err := g.Generate(&plugin.GenerateContext{
		Targets:     result.ByAnnotation(feature.AnnotationName),
		FileConfigs: result.FileConfigs,
	})
	require.NoError(t, err)

	// Bad 和 Weird 编译失败，不影响其他结构体
	assert.Len(t, genResult.Errors, 2)

	require.Len(t, genResult.Definitions, 1)
	var outputPath string
	for p := range genResult.Definitions {
		outputPath = p
	}
	assert.Equal(t, "model_autofield.go", filepath.Base(outputPath))

	code := genResult.Definitions[outputPath].String()
	assert.Contains(t, code, "package model")
	assert.Contains(t, code, "var OrderAutoField = compiler.MustRegisterModel(&Order{}, feature.Config{")
	assert.Contains(t, code, "var AccountAutoField = compiler.MustRegisterModel(&Account{}, feature.Config{")
	assert.Contains(t, code, "AutoField() *compiler.Artifacts")
	assert.Contains(t, code, "gormplugin.NotDeleted(OrderAutoField)")
	assert.Contains(t, code, "gormplugin.ByTenantName(AccountAutoField, name)")
	assert.Contains(t, code, "gormplugin.SoftDeleteMany(ctx, db, OrderAutoField, ids)")
	assert.NotContains(t, code, "OrderByTenantID")
	assert.NotContains(t, code, "BadAutoField")

	// 结构体按名称排序
	assert.Less(t, strings.Index(code, "AccountAutoField ="), strings.Index(code, "OrderAutoField ="))
}

func TestGenerateEmpty(t *testing.T) {
	genResult, err := NewAutoFieldGenerator().Generate(&plugin.GenerateContext{})
	require.NoError(t, err)
	assert.Empty(t, genResult.Definitions)
}

func TestConfigLiteral(t *testing.T) {
	cfg := feature.Default()
	cfg.Version = true
	cfg.DefaultStateName = `on"line`

	lit := configLiteral(cfg)
	assert.True(t, strings.HasPrefix(lit, "feature.Config{\n"))
	assert.Contains(t, lit, "\tVersion: true,\n")
	assert.Contains(t, lit, "\tAudit: false,\n")
	assert.Contains(t, lit, "\tDefaultState: \"1\",\n")
	assert.Contains(t, lit, "\tDefaultStateName: \"on\\\"line\",\n")
}

func TestScopeFuncs(t *testing.T) {
	scopes := scopeFuncs([]string{"find_by_creator_id", "find_not_deleted", "unknown"})
	require.Len(t, scopes, 2)
	assert.Equal(t, "ByCreatorID", scopes[0].suffix)
	assert.Equal(t, "id", scopes[0].param)
	assert.Equal(t, "NotDeleted", scopes[1].suffix)
	assert.Empty(t, scopes[1].param)
}
