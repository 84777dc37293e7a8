package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContentFilter describes pagination & search options shared by content collections.
type ContentFilter struct {
	Search   string
	Status   string
	ParentID string
	Tool     string
	Category string
	Page     int
	PageSize int
}

// documentRepository implements the operations every string-keyed collection shares.
type documentRepository[T any] struct {
	db *gorm.DB
}

func (r documentRepository[T]) GetByID(ctx context.Context, id string) (T, error) {
	var model T
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		var zero T
		return zero, err
	}
	return model, nil
}

// GetByIDForUpdate reads the row with FOR UPDATE so concurrent writers to the same parent
// serialise inside their transactions. Drivers without row locks ignore the clause.
func (r documentRepository[T]) GetByIDForUpdate(ctx context.Context, id string) (T, error) {
	var model T
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error
	if err != nil {
		var zero T
		return zero, err
	}
	return model, nil
}

func (r documentRepository[T]) FindByIDs(ctx context.Context, ids []string) ([]T, error) {
	var models []T
	if len(ids) == 0 {
		return models, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}

func (r documentRepository[T]) ListAll(ctx context.Context) ([]T, error) {
	var models []T
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}

func (r documentRepository[T]) Create(ctx context.Context, model *T) error {
	return r.db.WithContext(ctx).Create(model).Error
}

func (r documentRepository[T]) Update(ctx context.Context, model *T) error {
	return r.db.WithContext(ctx).Save(model).Error
}

func (r documentRepository[T]) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// updateSortOrders writes positions keyed by row id. Rows are parked on negative values first so
// the unique (parent, sort_order) index never sees two siblings sharing a position mid-update.
func (r documentRepository[T]) updateSortOrders(ctx context.Context, ids []string, orders []int) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range ids {
			if err := tx.Model(new(T)).Where("id = ?", id).Update("sort_order", -(i + 1)).Error; err != nil {
				return err
			}
		}
		for i, id := range ids {
			if err := tx.Model(new(T)).Where("id = ?", id).Update("sort_order", orders[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// page counts the filtered query, then applies ordering and pagination.
func (r documentRepository[T]) page(query *gorm.DB, order string, page, pageSize int) ([]T, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if order != "" {
		query = query.Order(order)
	}

	if pageSize > 0 {
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	var models []T
	if err := query.Find(&models).Error; err != nil {
		return nil, 0, err
	}
	return models, total, nil
}

func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
