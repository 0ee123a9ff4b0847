package postgres

import (
	"context"
	"errors"

	"github.com/dom/reader/internal/repository"
	"gorm.io/gorm"
)

// gormRepository implements repository.Repository for any gorm model.
// Every call opens a fresh session from the pool, so reads are snapshots
// and nothing is carried between requests.
type gormRepository[T any] struct {
	db *gorm.DB
}

func newGormRepository[T any](db *gorm.DB) gormRepository[T] {
	return gormRepository[T]{db: db}
}

func (r gormRepository[T]) GetOne(ctx context.Context, filter repository.Filter) (*T, error) {
	var entity T
	err := r.db.WithContext(ctx).Where(filter.Query, filter.Args...).Take(&entity).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &entity, nil
}

func (r gormRepository[T]) GetMany(ctx context.Context, filters ...repository.Filter) ([]*T, error) {
	query := r.db.WithContext(ctx)
	for _, f := range filters {
		query = query.Where(f.Query, f.Args...)
	}

	var entities []*T
	if err := query.Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

func (r gormRepository[T]) InsertOne(ctx context.Context, entity *T) (*T, error) {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return nil, translateError(err)
	}
	return entity, nil
}

func (r gormRepository[T]) InsertMany(ctx context.Context, entities []*T) (bool, error) {
	if len(entities) == 0 {
		return false, nil
	}
	result := r.db.WithContext(ctx).Create(entities)
	if result.Error != nil {
		return false, translateError(result.Error)
	}
	return result.RowsAffected >= 1, nil
}

func (r gormRepository[T]) UpdateOne(ctx context.Context, entity *T) (bool, error) {
	result := r.db.WithContext(ctx).Model(entity).Select("*").Updates(entity)
	if result.Error != nil {
		return false, translateError(result.Error)
	}
	return result.RowsAffected >= 1, nil
}

func (r gormRepository[T]) UpdateMany(ctx context.Context, entities []*T) (bool, error) {
	return false, repository.ErrNotSupported
}

func (r gormRepository[T]) DeleteOne(ctx context.Context, entity *T) (bool, error) {
	result := r.db.WithContext(ctx).Delete(entity)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected >= 1, nil
}

func (r gormRepository[T]) DeleteMany(ctx context.Context, entities []*T) (bool, error) {
	if len(entities) == 0 {
		return false, nil
	}

	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range entities {
			result := tx.Delete(e)
			if result.Error != nil {
				return result.Error
			}
			affected += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return affected >= 1, nil
}

func translateError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrDuplicate
	default:
		return err
	}
}
