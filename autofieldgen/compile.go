package autofieldgen

import (
	"fmt"

	gormschema "gorm.io/gorm/schema"

	"github.com/donutnomad/autofield/compiler"
	"github.com/donutnomad/autofield/feature"
	"github.com/donutnomad/autofield/internal/gormparse"
	"github.com/donutnomad/autofield/internal/structparse"
	"github.com/donutnomad/autofield/plugin"
)

// Entity 一个带注解结构体的静态编译结果
type Entity struct {
	Target    *plugin.Target
	Model     *gormparse.GormModelInfo
	Artifacts *compiler.Artifacts
}

// ParseConfig 解析目标上的 @AutoField 注解
func ParseConfig(at *plugin.AnnotatedTarget) (feature.Config, error) {
	ann := at.Annotation(feature.AnnotationName)
	if ann == nil {
		return feature.Config{}, feature.ErrNoAnnotation
	}
	return feature.ParseArgs(ann.Args)
}

// CompileTarget 从源码解析字段后编译，错误带上 文件:行号
// namer 为 nil 时使用 gorm 默认命名规则
func CompileTarget(at *plugin.AnnotatedTarget, namer gormschema.Namer) (*Entity, error) {
	t := at.Target
	wrap := func(err error) error {
		return fmt.Errorf("%s:%d: %s: %w", t.FilePath, t.Line, t.Name, err)
	}

	cfg, err := ParseConfig(at)
	if err != nil {
		return nil, wrap(err)
	}

	info, err := structparse.ParseStruct(t.FilePath, t.Name)
	if err != nil {
		return nil, wrap(err)
	}
	model, err := gormparse.ParseGormModel(info, namer)
	if err != nil {
		return nil, wrap(err)
	}

	a, err := compiler.Compile(t.Name, cfg, model.Columns())
	if err != nil {
		return nil, wrap(err)
	}
	return &Entity{Target: t, Model: model, Artifacts: a}, nil
}
