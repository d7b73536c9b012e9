package repository

import (
	"context"
	"fmt"

	"weekend-at-joes/pkg/ident"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository 是所有实体仓储共享的能力接口。
// 实体不支持的操作返回 ErrUnsupported，而不是拆成多个小接口。
type Repository[E any, ID ident.Key, C any] interface {
	Get(ctx context.Context, id ID) (E, error)
	Create(ctx context.Context, entity E) (E, error)
	Update(ctx context.Context, changeset C) (E, error)
	Delete(ctx context.Context, id ID) (E, error)
}

// crud 是基于 gorm 的通用实现，按 uuid 主键读写单表，不级联保存关联。
type crud[E any, ID ident.Key] struct {
	db   *gorm.DB
	name string
}

func newCrud[E any, ID ident.Key](db *gorm.DB, name string) crud[E, ID] {
	return crud[E, ID]{db: db, name: name}
}

func (c crud[E, ID]) get(ctx context.Context, id ID) (E, error) {
	var entity E
	err := c.db.WithContext(ctx).First(&entity, "uuid = ?", id).Error
	return entity, translate("get "+c.name, err)
}

func (c crud[E, ID]) create(ctx context.Context, entity E) (E, error) {
	err := c.db.WithContext(ctx).Omit(clause.Associations).Create(&entity).Error
	return entity, translate("create "+c.name, err)
}

// update 只写入 columns 中出现的列；columns 为空时仅确认实体存在。
func (c crud[E, ID]) update(ctx context.Context, id ID, columns map[string]any) (E, error) {
	if _, err := c.get(ctx, id); err != nil {
		return *new(E), err
	}
	if len(columns) > 0 {
		var model E
		err := c.db.WithContext(ctx).Model(&model).Where("uuid = ?", id).Updates(columns).Error
		if err != nil {
			return *new(E), translate("update "+c.name, err)
		}
	}
	return c.get(ctx, id)
}

// delete 返回被删除的实体；被其它行引用时得到 ErrConstraintViolation。
func (c crud[E, ID]) delete(ctx context.Context, id ID) (E, error) {
	entity, err := c.get(ctx, id)
	if err != nil {
		return entity, err
	}
	result := c.db.WithContext(ctx).Where("uuid = ?", id).Delete(new(E))
	if result.Error != nil {
		return *new(E), translate("delete "+c.name, result.Error)
	}
	if result.RowsAffected == 0 {
		return *new(E), translate("delete "+c.name, gorm.ErrRecordNotFound)
	}
	return entity, nil
}

func unsupported(op, entity string) error {
	return fmt.Errorf("%s %s: %w", op, entity, ErrUnsupported)
}
