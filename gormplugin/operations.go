package gormplugin

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"gorm.io/gorm"

	"github.com/donutnomad/autofield/compiler"
	"github.com/donutnomad/autofield/custom"
	"github.com/donutnomad/autofield/query"
)

// ErrNoModel 编译结果没有绑定模型类型，无法生成 SQL
var ErrNoModel = errors.New("autofield: 实体未绑定模型类型")

// SoftDelete 软删除单行，同时刷新更新时间、更新人和版本号
func SoftDelete(ctx context.Context, db *gorm.DB, a *compiler.Artifacts, key any) (int64, error) {
	op, err := a.Custom.SoftDelete()
	if err != nil {
		return 0, err
	}
	return softDelete(ctx, db, a, op.One(key))
}

// SoftDeleteMany 在一个事务中软删除多行，任一失败则全部回滚
func SoftDeleteMany[K any](ctx context.Context, db *gorm.DB, a *compiler.Artifacts, keys []K) (int64, error) {
	op, err := a.Custom.SoftDelete()
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = k
	}

	var affected int64
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := softDelete(ctx, tx, a, op.Many(values...))
		affected = n
		return err
	})
	return affected, err
}

func softDelete(ctx context.Context, db *gorm.DB, a *compiler.Artifacts, spec custom.SoftDeleteSpec) (int64, error) {
	model := a.NewModel()
	if model == nil {
		return 0, ErrNoModel
	}
	res := db.WithContext(ctx).
		Model(model).
		Where(spec.Filter().Expression()).
		Updates(spec.Assignments())
	if res.Error != nil {
		return 0, fmt.Errorf("软删除 %s 失败: %w", a.Entity, res.Error)
	}
	return res.RowsAffected, nil
}

// BatchInsert 分批插入，每行独立执行创建规则
// records 必须是结构体切片或结构体指针切片
func BatchInsert[T any](ctx context.Context, db *gorm.DB, records []T, batchSize int) error {
	if len(records) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = len(records)
	}
	if err := db.WithContext(ctx).CreateInBatches(records, batchSize).Error; err != nil {
		return fmt.Errorf("批量插入失败: %w", err)
	}
	return nil
}

// BatchUpdate 按条件批量更新，更新规则会补齐更新时间、更新人和版本号
func BatchUpdate(ctx context.Context, db *gorm.DB, a *compiler.Artifacts, spec custom.BatchUpdateSpec) (int64, error) {
	model := a.NewModel()
	if model == nil {
		return 0, ErrNoModel
	}
	if len(spec.Assignments) == 0 {
		return 0, custom.ErrEmptyAssignments
	}
	if len(spec.Filters) == 0 {
		return 0, custom.ErrMissingFilter
	}

	tx := db.WithContext(ctx).Model(model)
	for _, f := range spec.Filters {
		tx = tx.Where(f.Expression())
	}
	// 回调会往 map 里补字段，不能修改调用方的 map
	res := tx.Updates(maps.Clone(spec.Assignments))
	if res.Error != nil {
		return 0, fmt.Errorf("批量更新 %s 失败: %w", a.Entity, res.Error)
	}
	return res.RowsAffected, nil
}

// Scope gorm 查询作用域
type Scope = func(*gorm.DB) *gorm.DB

func scopeOf(p query.Predicate, ok bool) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if !ok {
			return db
		}
		return db.Where(p.Expression())
	}
}

// NotDeleted 过滤已软删除的行，未开启软删除时不加条件
func NotDeleted(a *compiler.Artifacts) Scope {
	return scopeOf(a.Query.NotDeleted())
}

// ByTenantID 按租户 ID 过滤
func ByTenantID(a *compiler.Artifacts, id any) Scope {
	return scopeOf(a.Query.ByTenantID(id))
}

// ByTenantName 按租户名称过滤
func ByTenantName(a *compiler.Artifacts, name string) Scope {
	return scopeOf(a.Query.ByTenantName(name))
}

// ByCreatorID 按创建人过滤
func ByCreatorID(a *compiler.Artifacts, id any) Scope {
	return scopeOf(a.Query.ByCreatorID(id))
}
