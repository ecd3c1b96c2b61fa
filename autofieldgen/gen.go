package autofieldgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/donutnomad/gg"

	"github.com/donutnomad/autofield/feature"
	"github.com/donutnomad/autofield/query"
)

const (
	compilerPath   = "github.com/donutnomad/autofield/compiler"
	featurePath    = "github.com/donutnomad/autofield/feature"
	gormpluginPath = "github.com/donutnomad/autofield/gormplugin"
	gormPath       = "gorm.io/gorm"
	contextPath    = "context"
)

// generateEntity 生成单个结构体的注册变量、访问方法和辅助函数
func generateEntity(gen *gg.Generator, e *Entity) {
	group := gen.Body()
	name := e.Model.Name
	varName := name + "AutoField"
	a := e.Artifacts

	gen.P(compilerPath)
	gen.P(featurePath)

	group.Append(gg.LineComment("%s %s 的自动字段规则，导入包时注册到 compiler.Global()", varName, name))
	group.AddString(fmt.Sprintf("var %s = compiler.MustRegisterModel(&%s{}, %s)", varName, name, configLiteral(a.Config)))

	group.AddLine()
	group.Append(gg.LineComment("AutoField 返回 %s 的编译结果", name))
	group.Append(gg.Function("AutoField").
		WithReceiver(receiverVar(name), name).
		AddResult("", "*compiler.Artifacts").
		AddBody(gg.Return(gg.S(varName))))

	scopes := scopeFuncs(a.Query.Names())
	if len(scopes) > 0 || a.Custom.HasSoftDelete() {
		gen.P(gormpluginPath)
	}
	for _, s := range scopes {
		group.AddLine()
		group.Append(gg.LineComment("%s%s %s", name, s.suffix, s.doc))
		fn := gg.Function(name + s.suffix)
		args := []string{varName}
		if s.param != "" {
			fn.AddParameter(s.param, s.paramType)
			args = append(args, s.param)
		}
		fn.AddResult("", "gormplugin.Scope").
			AddBody(gg.Return(gg.S("gormplugin.%s(%s)", s.suffix, strings.Join(args, ", "))))
		group.Append(fn)
	}

	if a.Custom.HasSoftDelete() {
		gen.P(contextPath)
		gen.P(gormPath)

		group.AddLine()
		group.Append(gg.LineComment("%sSoftDelete 按主键软删除 %s，返回受影响的行数", name, name))
		group.Append(gg.Function(name+"SoftDelete").
			AddParameter("ctx", "context.Context").
			AddParameter("db", "*gorm.DB").
			AddParameter("id", "any").
			AddResult("", "int64").
			AddResult("", "error").
			AddBody(gg.Return(gg.S("gormplugin.SoftDelete(ctx, db, %s, id)", varName))))

		group.AddLine()
		group.Append(gg.LineComment("%sSoftDeleteMany 在一个事务中软删除多个 %s", name, name))
		group.Append(gg.Function(name+"SoftDeleteMany").
			AddParameter("ctx", "context.Context").
			AddParameter("db", "*gorm.DB").
			AddParameter("ids", "[]any").
			AddResult("", "int64").
			AddResult("", "error").
			AddBody(gg.Return(gg.S("gormplugin.SoftDeleteMany(ctx, db, %s, ids)", varName))))
	}
}

type scopeFunc struct {
	suffix    string // 同时是 gormplugin 中的函数名
	param     string
	paramType string
	doc       string
}

// scopeFuncs 按查询扩展生成作用域函数，顺序与 Names 一致
func scopeFuncs(names []string) []scopeFunc {
	var result []scopeFunc
	for _, n := range names {
		switch n {
		case query.NameNotDeleted:
			result = append(result, scopeFunc{suffix: "NotDeleted", doc: "只查询未删除的行"})
		case query.NameByTenantID:
			result = append(result, scopeFunc{suffix: "ByTenantID", param: "id", paramType: "any", doc: "按租户 ID 过滤"})
		case query.NameByTenantName:
			result = append(result, scopeFunc{suffix: "ByTenantName", param: "name", paramType: "string", doc: "按租户名称过滤"})
		case query.NameByCreatorID:
			result = append(result, scopeFunc{suffix: "ByCreatorID", param: "id", paramType: "any", doc: "按创建人过滤"})
		}
	}
	return result
}

// configLiteral 渲染完整的 feature.Config 字面量，每个字段都显式给出
func configLiteral(cfg feature.Config) string {
	fields := []struct {
		name  string
		value string
	}{
		{"SnowflakeID", strconv.FormatBool(cfg.SnowflakeID)},
		{"Timestamps", strconv.FormatBool(cfg.Timestamps)},
		{"Audit", strconv.FormatBool(cfg.Audit)},
		{"Tenant", strconv.FormatBool(cfg.Tenant)},
		{"Version", strconv.FormatBool(cfg.Version)},
		{"SoftDelete", strconv.FormatBool(cfg.SoftDelete)},
		{"State", strconv.FormatBool(cfg.State)},
		{"DefaultState", strconv.Quote(cfg.DefaultState)},
		{"DefaultStateName", strconv.Quote(cfg.DefaultStateName)},
	}

	var sb strings.Builder
	sb.WriteString("feature.Config{\n")
	for _, f := range fields {
		fmt.Fprintf(&sb, "\t%s: %s,\n", f.name, f.value)
	}
	sb.WriteString("}")
	return sb.String()
}

// receiverVar 接收者变量名，取类型名首字母小写
func receiverVar(name string) string {
	return strings.ToLower(name[:1])
}
