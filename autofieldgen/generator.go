// Package autofieldgen 为 @AutoField 结构体生成注册代码和查询辅助函数
package autofieldgen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/donutnomad/gg"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/donutnomad/autofield/feature"
	"github.com/donutnomad/autofield/plugin"
)

const generatorName = "autofield"

// AutoFieldGenerator 实现 plugin.Generator 接口
type AutoFieldGenerator struct {
	plugin.BaseGenerator
}

func NewAutoFieldGenerator() *AutoFieldGenerator {
	gen := &AutoFieldGenerator{
		BaseGenerator: *plugin.NewBaseGeneratorWithParams(
			generatorName,
			[]string{feature.AnnotationName},
			[]plugin.TargetKind{plugin.TargetStruct},
			paramDefs(),
		),
	}
	gen.SetPriority(10)
	return gen
}

// paramDefs 注解参数即 feature 的配置项
func paramDefs() []plugin.ParamDef {
	return lo.Map(feature.Options(), func(opt feature.OptionInfo, _ int) plugin.ParamDef {
		return plugin.ParamDef{
			Name:        opt.Name,
			Kind:        opt.Kind.String(),
			Default:     opt.Default,
			Description: opt.Description,
		}
	})
}

// Generate 执行代码生成
// 编译失败的结构体不生成代码，所有错误都会报告
func (g *AutoFieldGenerator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	result := plugin.NewGenerateResult()
	if len(ctx.Targets) == 0 {
		return result, nil
	}
	log := ctx.Log()

	// key: 输出路径
	fileEntities := make(map[string][]*Entity)
	for _, at := range ctx.Targets {
		entity, err := CompileTarget(at, nil)
		if err != nil {
			result.AddError(err)
			continue
		}
		for _, skipped := range entity.Model.Skipped {
			log.Warn("跳过无法展开的嵌入类型",
				zap.String("struct", at.Target.Name),
				zap.String("type", skipped))
		}

		fileConfig := ctx.GetFileConfig(at.Target.FilePath)
		outputPath := plugin.GetOutputPath(at.Target, "", fileConfig, g.Name(), ctx.DefaultOutput)
		fileEntities[outputPath] = append(fileEntities[outputPath], entity)

		log.Debug("处理结构体",
			zap.String("struct", at.Target.Name),
			zap.String("config", entity.Artifacts.Config.Short()),
			zap.String("output", outputPath))
	}

	outputPaths := make([]string, 0, len(fileEntities))
	for outputPath := range fileEntities {
		outputPaths = append(outputPaths, outputPath)
	}
	slices.Sort(outputPaths)

	for _, outputPath := range outputPaths {
		entities := fileEntities[outputPath]
		slices.SortFunc(entities, func(a, b *Entity) int {
			return strings.Compare(a.Model.Name, b.Model.Name)
		})
		gen, err := generateDefinition(entities)
		if err != nil {
			result.AddError(fmt.Errorf("生成 %s 失败: %w", outputPath, err))
			continue
		}
		result.AddDefinition(outputPath, gen)
	}
	return result, nil
}

// generateDefinition 为同一输出文件的结构体生成 gg 定义
func generateDefinition(entities []*Entity) (*gg.Generator, error) {
	if len(entities) == 0 {
		return nil, fmt.Errorf("没有目标需要生成")
	}
	pkgName := entities[0].Model.PackageName
	for _, e := range entities[1:] {
		if e.Model.PackageName != pkgName {
			return nil, fmt.Errorf("包名不一致: %s vs %s", pkgName, e.Model.PackageName)
		}
	}

	gen := gg.New()
	gen.SetPackage(pkgName)
	for i, e := range entities {
		if i > 0 {
			gen.Body().AddLine()
		}
		generateEntity(gen, e)
	}
	return gen, nil
}
