// Package gormplugin 把编译好的自动字段规则挂到 gorm 的创建和更新回调上
package gormplugin

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/callbacks"
	"gorm.io/gorm/clause"

	"github.com/donutnomad/autofield/ambient"
	"github.com/donutnomad/autofield/compiler"
	"github.com/donutnomad/autofield/rule"
)

const (
	pluginName          = "autofield"
	createCallbackName  = "autofield:before_create"
	updateCallbackName  = "autofield:before_update"
	versionCallbackName = "autofield:increment_version"
	cleanupCallbackName = "autofield:after_update"

	// incrementKey 结构体更新时待在 SQL 中自增的版本规则
	incrementKey = "autofield:increment"
	// ownSetKey SET 子句由本插件生成，语句结束后需要移除
	ownSetKey = "autofield:own_set"
)

// Plugin gorm 插件
type Plugin struct {
	registry *compiler.Registry
	ids      rule.IDGenerator
	now      func() time.Time
	logger   *zap.Logger
}

// Option 插件选项
type Option func(*Plugin)

// WithRegistry 指定注册表，默认使用 compiler.Global()
func WithRegistry(r *compiler.Registry) Option {
	return func(p *Plugin) {
		if r != nil {
			p.registry = r
		}
	}
}

// WithIDGenerator 指定 ID 生成器，未指定时不生成 ID
func WithIDGenerator(g rule.IDGenerator) Option {
	return func(p *Plugin) {
		p.ids = g
	}
}

// WithClock 指定时钟
func WithClock(now func() time.Time) Option {
	return func(p *Plugin) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(p *Plugin) {
		if l != nil {
			p.logger = l
		}
	}
}

// New 创建插件
func New(opts ...Option) *Plugin {
	p := &Plugin{
		registry: compiler.Global(),
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Plugin) Name() string {
	return pluginName
}

// Initialize 注册回调，在 gorm 自带的 before 钩子之前执行
func (p *Plugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Create().Before("gorm:before_create").Register(createCallbackName, p.beforeCreate); err != nil {
		return fmt.Errorf("注册创建回调失败: %w", err)
	}
	if err := db.Callback().Update().Before("gorm:before_update").Register(updateCallbackName, p.beforeUpdate); err != nil {
		return fmt.Errorf("注册更新回调失败: %w", err)
	}
	if err := db.Callback().Update().After("gorm:before_update").Before("gorm:update").Register(versionCallbackName, incrementVersion); err != nil {
		return fmt.Errorf("注册版本回调失败: %w", err)
	}
	if err := db.Callback().Update().After("gorm:update").Register(cleanupCallbackName, cleanupSet); err != nil {
		return fmt.Errorf("注册更新回调失败: %w", err)
	}
	return nil
}

// env 构建本次操作的规则环境，同一条语句内的时间一致
func (p *Plugin) env(ctx context.Context) rule.Env {
	principal, _ := ambient.From(ctx)
	return rule.Env{
		Now:        p.now(),
		ActorID:    principal.ActorID,
		TenantID:   principal.TenantID,
		TenantName: principal.TenantName,
		IDs:        p.ids,
	}
}

func (p *Plugin) artifacts(db *gorm.DB) (*compiler.Artifacts, bool) {
	if db.Error != nil || db.Statement.Schema == nil {
		return nil, false
	}
	a, ok := p.registry.LookupType(db.Statement.Schema.ModelType)
	if !ok {
		p.logger.Debug("模型未注册，跳过", zap.String("table", db.Statement.Table))
	}
	return a, ok
}

func (p *Plugin) beforeCreate(db *gorm.DB) {
	a, ok := p.artifacts(db)
	if !ok || len(a.Create) == 0 {
		return
	}
	stmt := db.Statement
	env := p.env(stmt.Context)

	switch stmt.ReflectValue.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < stmt.ReflectValue.Len(); i++ {
			fillStruct(stmt, a.Create, reflect.Indirect(stmt.ReflectValue.Index(i)), env)
		}
	case reflect.Struct:
		fillStruct(stmt, a.Create, stmt.ReflectValue, env)
	case reflect.Map:
		if dest, ok := stmt.Dest.(map[string]any); ok {
			fillMap(stmt, a.Create, dest, env, nil)
		}
	}
}

func (p *Plugin) beforeUpdate(db *gorm.DB) {
	a, ok := p.artifacts(db)
	if !ok || len(a.Update) == 0 {
		return
	}
	stmt := db.Statement
	env := p.env(stmt.Context)

	if dest, ok := stmt.Dest.(map[string]any); ok {
		fillMap(stmt, a.Update, dest, env, incrementExpr)
		return
	}
	if stmt.ReflectValue.Kind() != reflect.Struct {
		return
	}

	// 先读更新值，再用模型上的当前值补齐
	rec := make(rule.Record, len(a.Update))
	if dv, ok := updatingStruct(stmt); ok {
		readInto(stmt, a.Update, dv, rec)
	}
	readInto(stmt, a.Update, stmt.ReflectValue, rec)

	unset := make(map[string]bool)
	for _, r := range a.Update {
		if !rec.IsSet(r.Column) {
			unset[r.Column] = true
		}
	}

	a.Update.Apply(rec, env)
	for _, r := range a.Update {
		v, ok := rec[r.Column]
		if !ok || v.State != rule.Computed {
			continue
		}
		if unset[r.Column] && incrementExpr(r) != nil {
			// 不知道库里的版本号，交给 SQL 自增
			stmt.Settings.Store(incrementKey, r)
			continue
		}
		stmt.SetColumn(r.Column, v.V, true)
	}
}

// updatingStruct Updates 传入的结构体，与模型是同一个值时返回 false
func updatingStruct(stmt *gorm.Statement) (reflect.Value, bool) {
	if stmt.Dest == nil {
		return reflect.Value{}, false
	}
	dv := reflect.ValueOf(stmt.Dest)
	for dv.Kind() == reflect.Ptr {
		dv = dv.Elem()
	}
	if dv.Kind() != reflect.Struct || dv == stmt.ReflectValue || dv.Type() != stmt.Schema.ModelType {
		return reflect.Value{}, false
	}
	return dv, true
}

// incrementVersion 在 gorm:update 之前生成 SET 子句，并把版本列换成自增表达式
func incrementVersion(db *gorm.DB) {
	v, ok := db.Statement.Settings.LoadAndDelete(incrementKey)
	if !ok || db.Error != nil {
		return
	}
	r := v.(rule.FieldRule)
	stmt := db.Statement
	if _, exists := stmt.Clauses["SET"]; exists {
		return
	}

	set := callbacks.ConvertToAssignments(stmt)
	if len(set) == 0 {
		return
	}
	set = slices.DeleteFunc(set, func(as clause.Assignment) bool {
		return as.Column.Name == r.Column
	})
	set = append(set, clause.Assignment{Column: clause.Column{Name: r.Column}, Value: incrementExpr(r)})
	stmt.AddClause(set)
	stmt.Settings.Store(ownSetKey, true)
}

// cleanupSet 同一个语句继续复用时不能带着这次的 SET
func cleanupSet(db *gorm.DB) {
	if _, ok := db.Statement.Settings.LoadAndDelete(ownSetKey); ok {
		delete(db.Statement.Clauses, "SET")
	}
}

// incrementExpr map 更新且没有提供版本号时，在 SQL 中自增
func incrementExpr(r rule.FieldRule) any {
	if r.Action != rule.IncrementOrInit {
		return nil
	}
	return gorm.Expr("COALESCE(?, 0) + 1", clause.Column{Name: r.Column})
}

// readInto 读取非零字段，已有值的列不覆盖
// 零值视为未设置，除非该列通过 Select 显式指定
func readInto(stmt *gorm.Statement, rs rule.RuleSet, rv reflect.Value, rec rule.Record) {
	selected := explicitColumns(stmt)
	for _, col := range rs.Columns() {
		if rec.IsSet(col) {
			continue
		}
		field := stmt.Schema.LookUpField(col)
		if field == nil {
			continue
		}
		if v, zero := field.ValueOf(stmt.Context, rv); !zero || selected[col] {
			rec.Set(col, v)
		}
	}
}

// explicitColumns Select 中按名称指定的列，"*" 不算
func explicitColumns(stmt *gorm.Statement) map[string]bool {
	if len(stmt.Selects) == 0 {
		return nil
	}
	cols := make(map[string]bool, len(stmt.Selects))
	for _, name := range stmt.Selects {
		if name == "*" {
			continue
		}
		if field := stmt.Schema.LookUpField(name); field != nil && field.DBName != "" {
			cols[field.DBName] = true
		}
	}
	return cols
}

func fillStruct(stmt *gorm.Statement, rs rule.RuleSet, rv reflect.Value, env rule.Env) {
	if rv.Kind() != reflect.Struct || !rv.CanAddr() {
		return
	}
	rec := make(rule.Record, len(rs))
	readInto(stmt, rs, rv, rec)
	rs.Apply(rec, env)
	for col, v := range rec.Computed() {
		field := stmt.Schema.LookUpField(col)
		if field == nil {
			continue
		}
		if err := field.Set(stmt.Context, rv, v); err != nil {
			_ = stmt.AddError(fmt.Errorf("设置字段 %s 失败: %w", col, err))
		}
	}
}

// fillMap map 的键可能是列名也可能是字段名，写回时沿用原来的键
func fillMap(stmt *gorm.Statement, rs rule.RuleSet, dest map[string]any, env rule.Env, fallback func(rule.FieldRule) any) {
	keys := make(map[string]string, len(dest))
	rec := make(rule.Record, len(dest))
	for k, v := range dest {
		col := k
		if field := stmt.Schema.LookUpField(k); field != nil && field.DBName != "" {
			col = field.DBName
		}
		keys[col] = k
		rec.Set(col, v)
	}

	var missing map[string]bool
	if fallback != nil {
		missing = make(map[string]bool)
		for _, r := range rs {
			if !rec.IsSet(r.Column) {
				missing[r.Column] = true
			}
		}
	}

	rs.Apply(rec, env)
	for _, r := range rs {
		v, ok := rec[r.Column]
		if !ok || v.State != rule.Computed {
			continue
		}
		value := v.V
		if missing[r.Column] {
			if expr := fallback(r); expr != nil {
				value = expr
			}
		}
		key, ok := keys[r.Column]
		if !ok {
			key = r.Column
		}
		dest[key] = value
	}
}
