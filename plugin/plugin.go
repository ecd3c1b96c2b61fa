package plugin

// Generator 处理一个注解的生成器，例如 @AutoField
// 扫描结果按注解名分发，同一个注解只能绑定一个生成器
type Generator interface {
	Name() string

	// Annotations 第一个是主注解，其余是别名
	Annotations() []string

	// SupportedTargets 目前只有结构体
	SupportedTargets() []TargetKind

	// ParamDefs 注解参数说明，只用于 -h 帮助
	ParamDefs() []ParamDef

	// Priority 数字越小，在同一输出文件中越靠前
	Priority() int

	// Generate 编译目标并返回按输出路径分组的 gg 定义
	// 单个目标的错误放进 GenerateResult.Errors，不影响其它目标
	Generate(ctx *GenerateContext) (*GenerateResult, error)
}

// BaseGenerator 生成器的公共字段，嵌入后只需实现 Generate
type BaseGenerator struct {
	name        string
	annotations []string
	targets     []TargetKind
	paramDefs   []ParamDef
	priority    int
}

// NewBaseGeneratorWithParams 默认优先级 100
func NewBaseGeneratorWithParams(name string, annotations []string, targets []TargetKind, params []ParamDef) *BaseGenerator {
	return &BaseGenerator{
		name:        name,
		annotations: annotations,
		targets:     targets,
		paramDefs:   params,
		priority:    100,
	}
}

func (g *BaseGenerator) Name() string                   { return g.name }
func (g *BaseGenerator) Annotations() []string          { return g.annotations }
func (g *BaseGenerator) SupportedTargets() []TargetKind { return g.targets }
func (g *BaseGenerator) ParamDefs() []ParamDef          { return g.paramDefs }
func (g *BaseGenerator) Priority() int                  { return g.priority }

func (g *BaseGenerator) SetPriority(priority int) *BaseGenerator {
	g.priority = priority
	return g
}
