package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostgresCollection implements Collection for a gorm model with a string "id" primary key
type PostgresCollection[T Entity] struct {
	db *gorm.DB
}

// NewPostgresCollection creates a new PostgresCollection
func NewPostgresCollection[T Entity](db *gorm.DB) *PostgresCollection[T] {
	return &PostgresCollection[T]{db: db}
}

// Get retrieves a row by ID from PostgreSQL
func (r *PostgresCollection[T]) Get(ctx context.Context, id string) (*T, error) {
	var v T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// List retrieves every row, oldest first
func (r *PostgresCollection[T]) List(ctx context.Context) ([]T, error) {
	out := []T{}
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Create creates a new row in PostgreSQL
func (r *PostgresCollection[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *PostgresCollection[T]) Patch(ctx context.Context, id string, fields map[string]any) error {
	return r.Mutate(ctx, id, func(v *T) error {
		return applyPatch(v, fields)
	})
}

// Mutate locks the row, applies fn and saves it inside one transaction
func (r *PostgresCollection[T]) Mutate(ctx context.Context, id string, fn func(*T) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var v T
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&v).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := fn(&v); err != nil {
			return err
		}
		return tx.Save(&v).Error
	})
}

// Delete deletes a row by ID from PostgreSQL
func (r *PostgresCollection[T]) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteMany deletes all rows with the given IDs
func (r *PostgresCollection[T]) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(new(T)).Error
}
