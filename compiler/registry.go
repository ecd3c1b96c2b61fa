package compiler

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/donutnomad/autofield/feature"
)

// Registry 实体编译结果注册表
// 重复注册会替换原有结果，这是注册表唯一的修改操作
type Registry struct {
	mu sync.RWMutex

	// byName 实体名 -> 编译结果
	byName map[string]*Artifacts
	// byType 模型类型 -> 编译结果
	byType map[reflect.Type]*Artifacts

	logger *zap.Logger
}

// RegistryOption 注册表选项
type RegistryOption func(*Registry)

// WithLogger 设置日志
func WithLogger(l *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry 创建新的注册表
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		byName: make(map[string]*Artifacts),
		byType: make(map[reflect.Type]*Artifacts),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetLogger 替换日志
func (r *Registry) SetLogger(l *zap.Logger) {
	if l == nil {
		return
	}
	r.mu.Lock()
	r.logger = l
	r.mu.Unlock()
}

// Register 注册编译结果
func (r *Registry) Register(a *Artifacts) error {
	if a == nil || a.Entity == "" {
		return fmt.Errorf("编译结果缺少实体名")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byName[a.Entity]; ok {
		if old.Model != nil {
			delete(r.byType, old.Model)
		}
		r.logger.Debug("替换已注册的实体", zap.String("entity", a.Entity))
	}
	r.byName[a.Entity] = a
	if a.Model != nil {
		r.byType[a.Model] = a
	}

	r.logger.Debug("注册实体",
		zap.String("entity", a.Entity),
		zap.String("features", a.Config.Short()),
		zap.Int("create_rules", len(a.Create)),
		zap.Int("update_rules", len(a.Update)),
	)
	return nil
}

// MustRegister 注册编译结果，失败时 panic
func (r *Registry) MustRegister(a *Artifacts) {
	if err := r.Register(a); err != nil {
		panic(err)
	}
}

// RegisterModel 编译并注册模型
func (r *Registry) RegisterModel(model any, cfg feature.Config) (*Artifacts, error) {
	a, err := CompileModel(model, cfg)
	if err != nil {
		return nil, err
	}
	if err := r.Register(a); err != nil {
		return nil, err
	}
	return a, nil
}

// MustRegisterModel 编译并注册模型，失败时 panic
func (r *Registry) MustRegisterModel(model any, cfg feature.Config) *Artifacts {
	a, err := r.RegisterModel(model, cfg)
	if err != nil {
		panic(err)
	}
	return a
}

// Lookup 根据实体名查找
func (r *Registry) Lookup(entity string) (*Artifacts, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byName[entity]
	return a, ok
}

// LookupType 根据模型类型查找，指针类型会被解引用
func (r *Registry) LookupType(typ reflect.Type) (*Artifacts, bool) {
	for typ != nil && typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ == nil {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byType[typ]
	return a, ok
}

// Entities 返回所有已注册的实体名，按名称排序
func (r *Registry) Entities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, 0, len(r.byName))
	for name := range r.byName {
		result = append(result, name)
	}
	slices.Sort(result)
	return result
}

// 全局注册表
var globalRegistry = NewRegistry()

// Global 返回全局注册表
func Global() *Registry {
	return globalRegistry
}

// MustRegisterModel 向全局注册表注册模型，生成代码在包初始化时调用
func MustRegisterModel(model any, cfg feature.Config) *Artifacts {
	return globalRegistry.MustRegisterModel(model, cfg)
}
