package postgres

import (
	"context"

	"github.com/dom/reader/internal/domain"
	"github.com/dom/reader/internal/repository"
	"gorm.io/gorm"
)

type readBookRepository struct {
	gormRepository[domain.ReadBook]
}

func NewReadBookRepository(db *gorm.DB) *readBookRepository {
	return &readBookRepository{gormRepository: newGormRepository[domain.ReadBook](db)}
}

func (r *readBookRepository) GetByIDForUser(ctx context.Context, id int64, userID string) (*domain.ReadBook, error) {
	return r.GetOne(ctx, repository.Where("id = ? AND user_id = ?", id, userID))
}

func (r *readBookRepository) ListByUser(ctx context.Context, userID string) ([]*domain.ReadBook, error) {
	var books []*domain.ReadBook
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC NULLS LAST, id DESC").
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return books, nil
}
